package quote

import (
	"context"
	"errors"
	"net/http"

	validator "github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/openagora/shipping-engine/internal/common"
	"github.com/openagora/shipping-engine/internal/engine"
	"github.com/openagora/shipping-engine/internal/obs"
	"github.com/openagora/shipping-engine/internal/rates"
)

// Error codes specific to shipping quotes.
const (
	CodeShippingUnavailable = "SHIPPING_UNAVAILABLE"
	CodeMethodUnavailable   = "METHOD_UNAVAILABLE"
	CodeChargeUnavailable   = "CHARGE_UNAVAILABLE"
	CodeSnapshotStale       = "SNAPSHOT_STALE"
)

// SnapshotProvider yields the active configuration snapshot.
type SnapshotProvider interface {
	Current() (*engine.Snapshot, error)
}

// Service validates quote requests, runs them through the pricing engine and
// maps engine errors onto the API error taxonomy.
type Service struct {
	Provider SnapshotProvider
	Validate *validator.Validate
	Log      zerolog.Logger
}

// ItemRequest is one order line in a quote or options request.
type ItemRequest struct {
	ProducerID     int64 `json:"producerId" validate:"required,gt=0"`
	Qty            int   `json:"qty" validate:"required,gt=0"`
	UnitPriceCents int64 `json:"unitPriceCents" validate:"gte=0"`
	WeightGrams    int64 `json:"weightGrams" validate:"gte=0"`
	LengthCm       int64 `json:"lengthCm" validate:"gte=0"`
	WidthCm        int64 `json:"widthCm" validate:"gte=0"`
	HeightCm       int64 `json:"heightCm" validate:"gte=0"`
	Perishable     bool  `json:"perishable"`
	Fragile        bool  `json:"fragile"`
}

// QuoteRequest prices a shipment for one chosen delivery method.
type QuoteRequest struct {
	PostalCode  string        `json:"postalCode" validate:"required,min=3,max=10"`
	MethodCode  string        `json:"methodCode" validate:"required"`
	ChargeCodes []string      `json:"chargeCodes" validate:"dive,required"`
	Items       []ItemRequest `json:"items" validate:"required,min=1,dive"`
}

// OptionsRequest lists available delivery methods per producer.
type OptionsRequest struct {
	PostalCode string        `json:"postalCode" validate:"required,min=3,max=10"`
	Items      []ItemRequest `json:"items" validate:"required,min=1,dive"`
}

// LegResponse is the priced leg of one producer.
type LegResponse struct {
	ProducerID         int64  `json:"producerId"`
	TierCode           string `json:"tierCode"`
	ChargeableGrams    int64  `json:"chargeableGrams"`
	OverflowGrams      int64  `json:"overflowGrams"`
	ItemsSubtotalCents int64  `json:"itemsSubtotalCents"`
	BaseRateCents      int64  `json:"baseRateCents"`
	OverweightCents    int64  `json:"overweightCents"`
	Waived             bool   `json:"waived"`
	AmountCents        int64  `json:"amountCents"`
}

// ChargeResponse is one applied additional charge.
type ChargeResponse struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	AmountCents int64  `json:"amountCents"`
}

// DiscountResponse describes the applied multi-producer discount.
type DiscountResponse struct {
	PercentBps   int32 `json:"percentBps"`
	MinProducers int32 `json:"minProducers"`
	ProducerID   int64 `json:"producerId"`
}

// QuoteResponse is the full cost breakdown returned to the caller.
type QuoteResponse struct {
	SnapshotVersion   int64             `json:"snapshotVersion"`
	Currency          string            `json:"currency"`
	ZoneID            int64             `json:"zoneId"`
	ZoneName          string            `json:"zoneName"`
	MethodCode        string            `json:"methodCode"`
	Legs              []LegResponse     `json:"legs"`
	SubtotalCents     int64             `json:"subtotalCents"`
	DiscountCents     int64             `json:"discountCents"`
	Discount          *DiscountResponse `json:"discount,omitempty"`
	AdditionalCharges []ChargeResponse  `json:"additionalCharges"`
	TotalCents        int64             `json:"totalCents"`
}

// MethodOptionResponse is one priced delivery option.
type MethodOptionResponse struct {
	MethodCode  string `json:"methodCode"`
	Name        string `json:"name"`
	CostCents   int64  `json:"costCents"`
	Waived      bool   `json:"waived"`
	SupportsCOD bool   `json:"supportsCod"`
}

// ProducerOptionsResponse lists one producer's priced options.
type ProducerOptionsResponse struct {
	ProducerID int64                  `json:"producerId"`
	Options    []MethodOptionResponse `json:"options"`
}

// OptionsResponse is the per-producer availability listing.
type OptionsResponse struct {
	SnapshotVersion int64                     `json:"snapshotVersion"`
	Currency        string                    `json:"currency"`
	ZoneID          int64                     `json:"zoneId"`
	ZoneName        string                    `json:"zoneName"`
	Producers       []ProducerOptionsResponse `json:"producers"`
}

// ZoneResponse describes the zone serving a postal code.
type ZoneResponse struct {
	ZoneID     int64  `json:"zoneId"`
	ZoneName   string `json:"zoneName"`
	PostalCode string `json:"postalCode"`
}

// Quote prices a shipment. Returned errors are always *common.AppError.
func (s *Service) Quote(ctx context.Context, req QuoteRequest) (QuoteResponse, error) {
	ctx, span := otel.Tracer("quote.service").Start(ctx, "quote.compute")
	defer span.End()

	if err := s.validate(req); err != nil {
		return QuoteResponse{}, err
	}
	snapshot, appErr := s.snapshot()
	if appErr != nil {
		return QuoteResponse{}, appErr
	}
	span.SetAttributes(
		attribute.Int64("shipping.snapshot_version", snapshot.Version()),
		attribute.String("shipping.method", req.MethodCode),
	)

	result, err := snapshot.ComputeQuote(engine.QuoteInput{
		PostalCode:  req.PostalCode,
		MethodCode:  req.MethodCode,
		ChargeCodes: req.ChargeCodes,
		Items:       toEngineItems(req.Items),
	})
	if err != nil {
		return QuoteResponse{}, s.mapEngineError(ctx, err)
	}

	if obs.QuoteTotal != nil {
		obs.QuoteTotal.WithLabelValues("ok").Inc()
	}
	if obs.QuoteAmountCents != nil {
		obs.QuoteAmountCents.WithLabelValues(result.MethodCode).Observe(float64(result.Total))
	}
	return toQuoteResponse(result), nil
}

// Options lists the priced delivery options per producer.
func (s *Service) Options(ctx context.Context, req OptionsRequest) (OptionsResponse, error) {
	ctx, span := otel.Tracer("quote.service").Start(ctx, "quote.options")
	defer span.End()

	if err := s.validate(req); err != nil {
		return OptionsResponse{}, err
	}
	snapshot, appErr := s.snapshot()
	if appErr != nil {
		return OptionsResponse{}, appErr
	}

	result, err := snapshot.ListOptions(engine.OptionsInput{
		PostalCode: req.PostalCode,
		Items:      toEngineItems(req.Items),
	})
	if err != nil {
		return OptionsResponse{}, s.mapEngineError(ctx, err)
	}

	out := OptionsResponse{
		SnapshotVersion: result.SnapshotVersion,
		Currency:        result.Currency,
		ZoneID:          result.ZoneID,
		ZoneName:        result.ZoneName,
		Producers:       make([]ProducerOptionsResponse, 0, len(result.Producers)),
	}
	for _, producer := range result.Producers {
		options := make([]MethodOptionResponse, 0, len(producer.Options))
		for _, opt := range producer.Options {
			options = append(options, MethodOptionResponse{
				MethodCode:  opt.MethodCode,
				Name:        opt.Name,
				CostCents:   opt.Cost,
				Waived:      opt.Waived,
				SupportsCOD: opt.SupportsCOD,
			})
		}
		out.Producers = append(out.Producers, ProducerOptionsResponse{
			ProducerID: producer.ProducerID,
			Options:    options,
		})
	}
	return out, nil
}

// ResolveZone reports which zone serves a postal code.
func (s *Service) ResolveZone(ctx context.Context, postalCode string) (ZoneResponse, error) {
	_, span := otel.Tracer("quote.service").Start(ctx, "quote.resolve_zone")
	defer span.End()

	snapshot, appErr := s.snapshot()
	if appErr != nil {
		return ZoneResponse{}, appErr
	}
	zone, err := snapshot.ResolveZone(postalCode)
	if err != nil {
		return ZoneResponse{}, s.mapEngineError(ctx, err)
	}
	return ZoneResponse{ZoneID: zone.ID, ZoneName: zone.Name, PostalCode: postalCode}, nil
}

func (s *Service) validate(req any) error {
	if s.Validate == nil {
		return nil
	}
	if err := s.Validate.Struct(req); err != nil {
		var fields validator.ValidationErrors
		details := map[string]string{}
		if errors.As(err, &fields) {
			for _, f := range fields {
				details[f.Field()] = f.Tag()
			}
		}
		return &common.AppError{
			Code:       common.CodeValidation,
			Message:    "invalid request",
			HTTPStatus: http.StatusBadRequest,
			Err:        err,
			Details:    details,
		}
	}
	return nil
}

func (s *Service) snapshot() (*engine.Snapshot, *common.AppError) {
	snapshot, err := s.Provider.Current()
	if err != nil {
		s.countFailure("no_snapshot")
		return nil, &common.AppError{
			Code:       CodeSnapshotStale,
			Message:    "shipping configuration not loaded",
			HTTPStatus: http.StatusServiceUnavailable,
			Err:        err,
		}
	}
	return snapshot, nil
}

// mapEngineError converts typed engine errors into API errors. Configuration
// gaps (missing rate rows) are logged at error level: they need operator
// attention, not just a 4xx to the caller.
func (s *Service) mapEngineError(ctx context.Context, err error) error {
	var (
		zoneErr   *engine.ZoneResolutionError
		rateErr   *engine.RateNotConfiguredError
		methodErr *engine.MethodNotAvailableError
		chargeErr *engine.ChargeNotConfiguredError
		staleErr  *engine.SnapshotStaleError
	)
	switch {
	case errors.As(err, &zoneErr):
		s.countFailure("zone_unresolved")
		return &common.AppError{
			Code:       CodeShippingUnavailable,
			Message:    "no shipping available for this postal code",
			HTTPStatus: http.StatusUnprocessableEntity,
			Err:        err,
			Details:    map[string]string{"postalCode": zoneErr.PostalCode},
		}
	case errors.As(err, &rateErr):
		s.countFailure("rate_missing")
		s.Log.Error().
			Int64("producer_id", rateErr.ProducerID).
			Int64("zone_id", rateErr.ZoneID).
			Int64("tier_id", rateErr.TierID).
			Int64("method_id", rateErr.MethodID).
			Msg("shipping rate not configured")
		return &common.AppError{
			Code:       CodeMethodUnavailable,
			Message:    "delivery method cannot serve this shipment",
			HTTPStatus: http.StatusUnprocessableEntity,
			Err:        err,
		}
	case errors.As(err, &methodErr):
		s.countFailure("method_unavailable")
		return &common.AppError{
			Code:       CodeMethodUnavailable,
			Message:    methodErr.Reason,
			HTTPStatus: http.StatusUnprocessableEntity,
			Err:        err,
		}
	case errors.As(err, &chargeErr):
		s.countFailure("charge_unknown")
		return &common.AppError{
			Code:       CodeChargeUnavailable,
			Message:    "requested additional charge is not available",
			HTTPStatus: http.StatusUnprocessableEntity,
			Err:        err,
			Details:    map[string]string{"code": chargeErr.Code},
		}
	case errors.As(err, &staleErr):
		s.countFailure("snapshot_stale")
		return &common.AppError{
			Code:       CodeSnapshotStale,
			Message:    "shipping configuration is stale, try again shortly",
			HTTPStatus: http.StatusServiceUnavailable,
			Err:        err,
		}
	default:
		s.countFailure("invalid_input")
		return &common.AppError{
			Code:       common.CodeValidation,
			Message:    err.Error(),
			HTTPStatus: http.StatusBadRequest,
			Err:        err,
		}
	}
}

func (s *Service) countFailure(reason string) {
	if obs.QuoteTotal != nil {
		obs.QuoteTotal.WithLabelValues("error").Inc()
	}
	if obs.QuoteFailureTotal != nil {
		obs.QuoteFailureTotal.WithLabelValues(reason).Inc()
	}
}

func toEngineItems(items []ItemRequest) []engine.Item {
	out := make([]engine.Item, 0, len(items))
	for _, it := range items {
		out = append(out, engine.Item{
			ProducerID:  it.ProducerID,
			Qty:         it.Qty,
			UnitPrice:   it.UnitPriceCents,
			WeightGrams: it.WeightGrams,
			LengthCm:    it.LengthCm,
			WidthCm:     it.WidthCm,
			HeightCm:    it.HeightCm,
			Perishable:  it.Perishable,
			Fragile:     it.Fragile,
		})
	}
	return out
}

func toQuoteResponse(q engine.Quote) QuoteResponse {
	out := QuoteResponse{
		SnapshotVersion:   q.SnapshotVersion,
		Currency:          q.Currency,
		ZoneID:            q.ZoneID,
		ZoneName:          q.ZoneName,
		MethodCode:        q.MethodCode,
		Legs:              make([]LegResponse, 0, len(q.Legs)),
		SubtotalCents:     q.SubtotalBeforeDiscount,
		DiscountCents:     q.Discount,
		AdditionalCharges: make([]ChargeResponse, 0, len(q.AdditionalCharges)),
		TotalCents:        q.Total,
	}
	for _, leg := range q.Legs {
		out.Legs = append(out.Legs, LegResponse{
			ProducerID:         leg.ProducerID,
			TierCode:           leg.TierCode,
			ChargeableGrams:    leg.WeightGrams,
			OverflowGrams:      leg.OverflowGrams,
			ItemsSubtotalCents: leg.ItemsSubtotal,
			BaseRateCents:      leg.BaseRate,
			OverweightCents:    leg.Overweight,
			Waived:             leg.Waived,
			AmountCents:        leg.Amount,
		})
	}
	if q.DiscountRule != nil {
		out.Discount = &DiscountResponse{
			PercentBps:   q.DiscountRule.PercentBps,
			MinProducers: q.DiscountRule.MinProducers,
			ProducerID:   q.DiscountRule.ProducerID,
		}
	}
	for _, line := range q.AdditionalCharges {
		out.AdditionalCharges = append(out.AdditionalCharges, ChargeResponse{
			Code:        line.Code,
			Name:        line.Name,
			AmountCents: line.Amount,
		})
	}
	return out
}

// ensure rates.Provider satisfies the provider contract
var _ SnapshotProvider = (*rates.Provider)(nil)
