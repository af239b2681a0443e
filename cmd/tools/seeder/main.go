// Seeder loads a realistic Greek shipping configuration: seven zones, three
// weight tiers, three delivery methods and the full rate matrix, plus sample
// producer overrides so quotes behave like production from the first run.
package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping DB: %v", err)
	}

	seedZones(db)
	seedPostalPrefixes(db)
	seedWeightTiers(db)
	seedDeliveryMethods(db)
	seedRates(db)
	seedExtraWeightCharges(db)
	seedAdditionalCharges(db)
	seedProducerConfig(db)

	log.Println("Seeding completed successfully!")
}

const (
	zoneUrban     = 1
	zoneCapitals  = 2
	zoneMainland  = 3
	zoneIslands   = 4
	zoneRemote    = 5
	zoneAthens    = 6
	zoneSaloniki  = 7
	tier1kg       = 1
	tier2kg       = 2
	tier5kg       = 3
	methodCourier = 1
	methodPost    = 2
	methodEconomy = 3
)

func seedZones(db *sql.DB) {
	zones := []struct {
		ID   int64
		Name string
	}{
		{zoneUrban, "Urban Centers"},
		{zoneCapitals, "Mainland Prefecture Capitals"},
		{zoneMainland, "Rest of Mainland & Evia"},
		{zoneIslands, "Islands"},
		{zoneRemote, "Remote Areas"},
		{zoneAthens, "Athens"},
		{zoneSaloniki, "Thessaloniki"},
	}

	fmt.Println("Seeding Shipping Zones...")
	for _, z := range zones {
		_, err := db.Exec(`
			INSERT INTO shipping_zones (id, name, active) VALUES ($1, $2, TRUE)
			ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name`,
			z.ID, z.Name)
		if err != nil {
			log.Fatalf("Failed to seed zone %q: %v", z.Name, err)
		}
	}
	if _, err := db.Exec(`SELECT setval('shipping_zones_id_seq', (SELECT MAX(id) FROM shipping_zones))`); err != nil {
		log.Fatalf("Failed to bump zone sequence: %v", err)
	}
}

func seedPostalPrefixes(db *sql.DB) {
	prefixes := map[string]int64{
		// Athens metro postcodes start with 1
		"10": zoneAthens, "11": zoneAthens, "12": zoneAthens,
		"13": zoneAthens, "14": zoneAthens, "15": zoneAthens,
		"16": zoneAthens, "17": zoneAthens, "18": zoneAthens,
		"19": zoneAthens,
		// Thessaloniki
		"54": zoneSaloniki, "55": zoneSaloniki, "56": zoneSaloniki,
		"57": zoneSaloniki,
		// other urban centers (Patras, Larissa, Heraklion)
		"26": zoneUrban, "41": zoneUrban, "71": zoneUrban,
		// mainland prefecture capitals
		"21": zoneCapitals, "30": zoneCapitals, "32": zoneCapitals,
		"35": zoneCapitals, "38": zoneCapitals, "45": zoneCapitals,
		"50": zoneCapitals, "58": zoneCapitals, "60": zoneCapitals,
		// rest of mainland and Evia
		"2": zoneMainland, "3": zoneMainland, "4": zoneMainland,
		"5": zoneMainland, "6": zoneMainland,
		// islands
		"29": zoneIslands, "49": zoneIslands, "7": zoneIslands,
		"8": zoneIslands, "81": zoneIslands, "82": zoneIslands,
		"84": zoneIslands, "85": zoneIslands,
		// remote ferry-served areas
		"83": zoneRemote, "86": zoneRemote, "87": zoneRemote,
	}

	fmt.Println("Seeding Postal Code Prefixes...")
	for prefix, zoneID := range prefixes {
		_, err := db.Exec(`
			INSERT INTO postal_code_zones (prefix, zone_id) VALUES ($1, $2)
			ON CONFLICT (prefix) DO UPDATE SET zone_id = EXCLUDED.zone_id`,
			prefix, zoneID)
		if err != nil {
			log.Fatalf("Failed to seed prefix %q: %v", prefix, err)
		}
	}
}

func seedWeightTiers(db *sql.DB) {
	tiers := []struct {
		ID       int64
		Code     string
		MinGrams int64
		MaxGrams int64
	}{
		{tier1kg, "TIER_1KG", 0, 1000},
		{tier2kg, "TIER_2KG", 1001, 2000},
		{tier5kg, "TIER_5KG", 2001, 5000},
	}

	fmt.Println("Seeding Weight Tiers...")
	for _, t := range tiers {
		_, err := db.Exec(`
			INSERT INTO weight_tiers (id, code, min_grams, max_grams) VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO UPDATE SET code = EXCLUDED.code,
				min_grams = EXCLUDED.min_grams, max_grams = EXCLUDED.max_grams`,
			t.ID, t.Code, t.MinGrams, t.MaxGrams)
		if err != nil {
			log.Fatalf("Failed to seed weight tier %q: %v", t.Code, err)
		}
	}
	if _, err := db.Exec(`SELECT setval('weight_tiers_id_seq', (SELECT MAX(id) FROM weight_tiers))`); err != nil {
		log.Fatalf("Failed to bump tier sequence: %v", err)
	}
}

func seedDeliveryMethods(db *sql.DB) {
	methods := []struct {
		ID             int64
		Code           string
		Name           string
		MaxWeightGrams int64
		Perishable     bool
		Fragile        bool
		COD            bool
	}{
		{methodCourier, "COURIER", "Courier delivery", 0, true, true, true},
		{methodPost, "POST", "Postal delivery", 20000, false, true, true},
		{methodEconomy, "ECONOMY", "Economy shipping", 30000, false, false, false},
	}

	fmt.Println("Seeding Delivery Methods...")
	for _, m := range methods {
		_, err := db.Exec(`
			INSERT INTO delivery_methods
				(id, code, name, active, max_weight_grams,
				 suitable_for_perishable, suitable_for_fragile, supports_cod)
			VALUES ($1, $2, $3, TRUE, $4, $5, $6, $7)
			ON CONFLICT (id) DO UPDATE SET code = EXCLUDED.code, name = EXCLUDED.name,
				max_weight_grams = EXCLUDED.max_weight_grams,
				suitable_for_perishable = EXCLUDED.suitable_for_perishable,
				suitable_for_fragile = EXCLUDED.suitable_for_fragile,
				supports_cod = EXCLUDED.supports_cod`,
			m.ID, m.Code, m.Name, m.MaxWeightGrams, m.Perishable, m.Fragile, m.COD)
		if err != nil {
			log.Fatalf("Failed to seed delivery method %q: %v", m.Code, err)
		}
	}
	if _, err := db.Exec(`SELECT setval('delivery_methods_id_seq', (SELECT MAX(id) FROM delivery_methods))`); err != nil {
		log.Fatalf("Failed to bump method sequence: %v", err)
	}
}

func seedRates(db *sql.DB) {
	// cents per (zone, method) across the three tiers
	matrix := map[int64]map[int64][3]int64{
		zoneUrban:    {methodCourier: {350, 450, 600}, methodPost: {250, 350, 500}, methodEconomy: {200, 300, 450}},
		zoneCapitals: {methodCourier: {400, 500, 700}, methodPost: {300, 400, 600}, methodEconomy: {250, 350, 550}},
		zoneMainland: {methodCourier: {450, 550, 800}, methodPost: {350, 450, 700}, methodEconomy: {300, 400, 650}},
		zoneIslands:  {methodCourier: {550, 700, 1000}, methodPost: {450, 600, 900}, methodEconomy: {400, 550, 850}},
		zoneRemote:   {methodCourier: {700, 900, 1300}, methodPost: {600, 800, 1200}, methodEconomy: {550, 750, 1150}},
		zoneAthens:   {methodCourier: {300, 400, 550}, methodPost: {200, 300, 450}, methodEconomy: {150, 250, 400}},
		zoneSaloniki: {methodCourier: {300, 400, 550}, methodPost: {200, 300, 450}, methodEconomy: {150, 250, 400}},
	}
	tiers := []int64{tier1kg, tier2kg, tier5kg}

	// multi-producer discount: island and remote orders combining two or
	// more producers get 10% off the shipping sum
	discountZones := map[int64]bool{zoneIslands: true, zoneRemote: true}

	fmt.Println("Seeding Shipping Rates...")
	count := 0
	for zoneID, methods := range matrix {
		for methodID, prices := range methods {
			for i, tierID := range tiers {
				discountBps, minProducers := 0, 0
				if discountZones[zoneID] {
					discountBps, minProducers = 1000, 2
				}
				_, err := db.Exec(`
					INSERT INTO shipping_rates
						(zone_id, tier_id, method_id, price_cents, discount_bps, min_producers)
					VALUES ($1, $2, $3, $4, $5, $6)
					ON CONFLICT (zone_id, tier_id, method_id) DO UPDATE SET
						price_cents = EXCLUDED.price_cents,
						discount_bps = EXCLUDED.discount_bps,
						min_producers = EXCLUDED.min_producers`,
					zoneID, tierID, methodID, prices[i], discountBps, minProducers)
				if err != nil {
					log.Fatalf("Failed to seed rate (zone %d, tier %d, method %d): %v", zoneID, tierID, methodID, err)
				}
				count++
			}
		}
	}
	fmt.Printf("Seeded %d shipping rates\n", count)
}

func seedExtraWeightCharges(db *sql.DB) {
	perZone := map[int64]int64{
		zoneUrban:    100,
		zoneCapitals: 120,
		zoneMainland: 130,
		zoneIslands:  180,
		zoneRemote:   250,
		zoneAthens:   90,
		zoneSaloniki: 90,
	}

	fmt.Println("Seeding Extra Weight Charges...")
	for zoneID, cents := range perZone {
		_, err := db.Exec(`
			INSERT INTO extra_weight_charges (zone_id, price_per_kg_cents, active)
			SELECT $1, $2, TRUE
			WHERE NOT EXISTS (
				SELECT 1 FROM extra_weight_charges
				WHERE zone_id = $1 AND producer_id IS NULL AND method_id IS NULL
			)`,
			zoneID, cents)
		if err != nil {
			log.Fatalf("Failed to seed extra weight charge for zone %d: %v", zoneID, err)
		}
	}
}

func seedAdditionalCharges(db *sql.DB) {
	charges := []struct {
		Code        string
		Name        string
		PriceCents  int64
		PercentBps  int32
		Percentage  bool
		RequiresCOD bool
	}{
		{"cod", "Cash on delivery", 200, 0, false, true},
		{"insurance", "Shipment insurance", 0, 500, true, false},
		{"saturday", "Saturday delivery", 350, 0, false, false},
	}

	fmt.Println("Seeding Additional Charges...")
	for _, c := range charges {
		_, err := db.Exec(`
			INSERT INTO additional_charges
				(code, name, price_cents, percent_bps, is_percentage, requires_cod_support, active)
			VALUES ($1, $2, $3, $4, $5, $6, TRUE)
			ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name,
				price_cents = EXCLUDED.price_cents, percent_bps = EXCLUDED.percent_bps,
				is_percentage = EXCLUDED.is_percentage,
				requires_cod_support = EXCLUDED.requires_cod_support`,
			c.Code, c.Name, c.PriceCents, c.PercentBps, c.Percentage, c.RequiresCOD)
		if err != nil {
			log.Fatalf("Failed to seed additional charge %q: %v", c.Code, err)
		}
	}
}

func seedProducerConfig(db *sql.DB) {
	fmt.Println("Seeding Producer Configuration...")

	// every sample producer ships by courier; the first two also use post
	for producerID := int64(1); producerID <= 5; producerID++ {
		methods := []int64{methodCourier}
		if producerID <= 2 {
			methods = append(methods, methodPost)
		}
		for _, methodID := range methods {
			_, err := db.Exec(`
				INSERT INTO producer_shipping_methods (producer_id, method_id, enabled)
				VALUES ($1, $2, TRUE)
				ON CONFLICT (producer_id, method_id) DO UPDATE SET enabled = TRUE`,
				producerID, methodID)
			if err != nil {
				log.Fatalf("Failed to seed producer method (%d, %d): %v", producerID, methodID, err)
			}
		}
	}

	// producer 1 negotiated a flat island courier rate for the light tier
	if _, err := db.Exec(`
		INSERT INTO producer_shipping_rates (producer_id, zone_id, tier_id, method_id, price_cents)
		VALUES (1, $1, $2, $3, 500)
		ON CONFLICT (producer_id, zone_id, tier_id, method_id)
		DO UPDATE SET price_cents = EXCLUDED.price_cents`,
		zoneIslands, tier1kg, methodCourier); err != nil {
		log.Fatalf("Failed to seed producer rate: %v", err)
	}

	// producer 1 ships free to Athens above 50 EUR; producer 2 everywhere
	// above 80 EUR
	freeShipping := []struct {
		ProducerID int64
		ZoneID     any
		Threshold  int64
	}{
		{1, zoneAthens, 5000},
		{2, nil, 8000},
	}
	for _, rule := range freeShipping {
		_, err := db.Exec(`
			INSERT INTO producer_free_shipping (producer_id, zone_id, threshold_cents, active)
			SELECT $1, $2, $3, TRUE
			WHERE NOT EXISTS (
				SELECT 1 FROM producer_free_shipping
				WHERE producer_id = $1 AND zone_id IS NOT DISTINCT FROM $2
			)`,
			rule.ProducerID, rule.ZoneID, rule.Threshold)
		if err != nil {
			log.Fatalf("Failed to seed free shipping rule for producer %d: %v", rule.ProducerID, err)
		}
	}
}
