package rates

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openagora/shipping-engine/internal/engine"
)

// Store loads shipping configuration rows from Postgres. Every load reads all
// tables so the resulting snapshot is internally consistent.
type Store struct {
	Pool *pgxpool.Pool
}

// NewStore constructs a configuration store over the given pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{Pool: pool}
}

// versionQuery derives a monotonically increasing configuration generation
// from the newest updated_at across all configuration tables.
const versionQuery = `
SELECT COALESCE(MAX(EXTRACT(EPOCH FROM updated_at))::bigint, 0) FROM (
	SELECT updated_at FROM shipping_zones
	UNION ALL SELECT updated_at FROM postal_code_zones
	UNION ALL SELECT updated_at FROM weight_tiers
	UNION ALL SELECT updated_at FROM delivery_methods
	UNION ALL SELECT updated_at FROM shipping_rates
	UNION ALL SELECT updated_at FROM producer_shipping_rates
	UNION ALL SELECT updated_at FROM producer_free_shipping
	UNION ALL SELECT updated_at FROM extra_weight_charges
	UNION ALL SELECT updated_at FROM additional_charges
	UNION ALL SELECT updated_at FROM producer_shipping_methods
) changes`

// Load reads the full shipping configuration. The caller supplies snapshot
// policy (max age, currency, volumetric divisor) on the returned Config.
func (s *Store) Load(ctx context.Context) (engine.Config, error) {
	cfg := engine.Config{LoadedAt: time.Now()}

	if err := s.Pool.QueryRow(ctx, versionQuery).Scan(&cfg.Version); err != nil {
		return engine.Config{}, fmt.Errorf("load config version: %w", err)
	}

	var err error
	if cfg.Zones, err = collect(ctx, s.Pool,
		`SELECT id, name, active FROM shipping_zones ORDER BY id`,
		func(row pgx.Rows) (engine.Zone, error) {
			var z engine.Zone
			err := row.Scan(&z.ID, &z.Name, &z.Active)
			return z, err
		}); err != nil {
		return engine.Config{}, fmt.Errorf("load zones: %w", err)
	}

	if cfg.Prefixes, err = collect(ctx, s.Pool,
		`SELECT prefix, zone_id FROM postal_code_zones ORDER BY prefix`,
		func(row pgx.Rows) (engine.ZonePrefix, error) {
			var p engine.ZonePrefix
			err := row.Scan(&p.Prefix, &p.ZoneID)
			return p, err
		}); err != nil {
		return engine.Config{}, fmt.Errorf("load postal prefixes: %w", err)
	}

	if cfg.Tiers, err = collect(ctx, s.Pool,
		`SELECT id, code, min_grams, max_grams FROM weight_tiers ORDER BY min_grams`,
		func(row pgx.Rows) (engine.WeightTier, error) {
			var t engine.WeightTier
			err := row.Scan(&t.ID, &t.Code, &t.MinGrams, &t.MaxGrams)
			return t, err
		}); err != nil {
		return engine.Config{}, fmt.Errorf("load weight tiers: %w", err)
	}

	if cfg.Methods, err = collect(ctx, s.Pool,
		`SELECT id, code, name, active, max_weight_grams, max_length_cm, max_width_cm,
		        max_height_cm, suitable_for_perishable, suitable_for_fragile, supports_cod
		 FROM delivery_methods ORDER BY id`,
		func(row pgx.Rows) (engine.DeliveryMethod, error) {
			var m engine.DeliveryMethod
			err := row.Scan(&m.ID, &m.Code, &m.Name, &m.Active, &m.MaxWeightGrams,
				&m.MaxLengthCm, &m.MaxWidthCm, &m.MaxHeightCm,
				&m.SuitableForPerishable, &m.SuitableForFragile, &m.SupportsCOD)
			return m, err
		}); err != nil {
		return engine.Config{}, fmt.Errorf("load delivery methods: %w", err)
	}

	if cfg.Rates, err = collect(ctx, s.Pool,
		`SELECT zone_id, tier_id, method_id, price_cents, discount_bps, min_producers
		 FROM shipping_rates`,
		func(row pgx.Rows) (engine.ZoneRate, error) {
			var r engine.ZoneRate
			err := row.Scan(&r.ZoneID, &r.TierID, &r.MethodID, &r.Price, &r.DiscountBps, &r.MinProducers)
			return r, err
		}); err != nil {
		return engine.Config{}, fmt.Errorf("load shipping rates: %w", err)
	}

	if cfg.ProducerRates, err = collect(ctx, s.Pool,
		`SELECT producer_id, zone_id, tier_id, method_id, price_cents
		 FROM producer_shipping_rates`,
		func(row pgx.Rows) (engine.ProducerRate, error) {
			var r engine.ProducerRate
			err := row.Scan(&r.ProducerID, &r.ZoneID, &r.TierID, &r.MethodID, &r.Price)
			return r, err
		}); err != nil {
		return engine.Config{}, fmt.Errorf("load producer rates: %w", err)
	}

	if cfg.FreeShipping, err = collect(ctx, s.Pool,
		`SELECT producer_id, COALESCE(zone_id, 0), COALESCE(method_id, 0), threshold_cents, active
		 FROM producer_free_shipping`,
		func(row pgx.Rows) (engine.FreeShippingRule, error) {
			var r engine.FreeShippingRule
			err := row.Scan(&r.ProducerID, &r.ZoneID, &r.MethodID, &r.Threshold, &r.Active)
			return r, err
		}); err != nil {
		return engine.Config{}, fmt.Errorf("load free shipping rules: %w", err)
	}

	if cfg.ExtraWeight, err = collect(ctx, s.Pool,
		`SELECT COALESCE(producer_id, 0), COALESCE(zone_id, 0), COALESCE(method_id, 0),
		        price_per_kg_cents, active
		 FROM extra_weight_charges`,
		func(row pgx.Rows) (engine.ExtraWeightCharge, error) {
			var c engine.ExtraWeightCharge
			err := row.Scan(&c.ProducerID, &c.ZoneID, &c.MethodID, &c.PricePerKg, &c.Active)
			return c, err
		}); err != nil {
		return engine.Config{}, fmt.Errorf("load extra weight charges: %w", err)
	}

	if cfg.Charges, err = collect(ctx, s.Pool,
		`SELECT code, name, price_cents, percent_bps, is_percentage, requires_cod_support, active
		 FROM additional_charges`,
		func(row pgx.Rows) (engine.AdditionalCharge, error) {
			var c engine.AdditionalCharge
			err := row.Scan(&c.Code, &c.Name, &c.Price, &c.PercentBps, &c.IsPercentage, &c.RequiresCODSupport, &c.Active)
			return c, err
		}); err != nil {
		return engine.Config{}, fmt.Errorf("load additional charges: %w", err)
	}

	if cfg.ProducerMethods, err = collect(ctx, s.Pool,
		`SELECT producer_id, method_id, enabled FROM producer_shipping_methods`,
		func(row pgx.Rows) (engine.ProducerMethod, error) {
			var pm engine.ProducerMethod
			err := row.Scan(&pm.ProducerID, &pm.MethodID, &pm.Enabled)
			return pm, err
		}); err != nil {
		return engine.Config{}, fmt.Errorf("load producer methods: %w", err)
	}

	return cfg, nil
}

func collect[T any](ctx context.Context, pool *pgxpool.Pool, query string, scan func(pgx.Rows) (T, error)) ([]T, error) {
	rows, err := pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}
