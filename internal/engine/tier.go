package engine

// ResolveTier maps a chargeable weight in grams to its weight tier. Weight
// below the lightest tier resolves to that tier; weight above the heaviest
// tier resolves to the heaviest tier and the excess is returned as
// overflowGrams for the overweight surcharge. Tier resolution never fails on
// weight alone.
func (s *Snapshot) ResolveTier(weightGrams int64) (WeightTier, int64) {
	if len(s.tiers) == 0 {
		return WeightTier{}, 0
	}
	if weightGrams < 0 {
		weightGrams = 0
	}

	lo, hi := 0, len(s.tiers)-1
	for lo <= hi {
		mid := (lo + hi) / 2
		tier := s.tiers[mid]
		if weightGrams >= tier.MinGrams && weightGrams <= tier.MaxGrams {
			return tier, 0
		}
		if weightGrams < tier.MinGrams {
			hi = mid - 1
		} else {
			lo = mid + 1
		}
	}

	heaviest := s.tiers[len(s.tiers)-1]
	if weightGrams > heaviest.MaxGrams {
		return heaviest, weightGrams - heaviest.MaxGrams
	}
	return s.tiers[0], 0
}

// VolumetricWeightGrams converts package dimensions into a volumetric weight.
// Returns 0 when any dimension is missing.
func (s *Snapshot) VolumetricWeightGrams(lengthCm, widthCm, heightCm int64) int64 {
	if lengthCm <= 0 || widthCm <= 0 || heightCm <= 0 {
		return 0
	}
	volumeCm3 := lengthCm * widthCm * heightCm
	// volumetric kg = cm³/divisor, carried in grams to stay integral
	return volumeCm3 * 1000 / s.volumetricDivisor
}

// ChargeableWeightGrams is the greater of real and volumetric weight.
func (s *Snapshot) ChargeableWeightGrams(realGrams, lengthCm, widthCm, heightCm int64) int64 {
	volumetric := s.VolumetricWeightGrams(lengthCm, widthCm, heightCm)
	if volumetric > realGrams {
		return volumetric
	}
	return realGrams
}
