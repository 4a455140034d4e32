package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Intentional-Operating-Culture-LLC/ioc-workspace-sub014/internal/domain"
)

// OrgProfileRepository define el contrato de persistencia para perfiles
// organizacionales recalculados.
type OrgProfileRepository interface {
	Upsert(ctx context.Context, profile domain.OrganizationProfile) error
	Get(ctx context.Context, orgID string) (domain.OrganizationProfile, error)
	ListOrgIDs(ctx context.Context) ([]string, error)
}

type PgOrgProfileRepository struct {
	pool *pgxpool.Pool
}

func NewPgOrgProfileRepository(pool *pgxpool.Pool) *PgOrgProfileRepository {
	return &PgOrgProfileRepository{pool: pool}
}

// Upsert reemplaza el perfil completo en una transacción: el recálculo es
// siempre una pasada total, nunca un parche incremental.
func (r *PgOrgProfileRepository) Upsert(ctx context.Context, profile domain.OrganizationProfile) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin org upsert: %w", err)
	}
	defer tx.Rollback(ctx)

	const headQuery = `
		INSERT INTO org_profiles (org_id, sample_size, coverage_percentage, computed_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (org_id)
		DO UPDATE SET
			sample_size = EXCLUDED.sample_size,
			coverage_percentage = EXCLUDED.coverage_percentage,
			computed_at = EXCLUDED.computed_at
	`
	_, err = tx.Exec(ctx, headQuery,
		profile.OrgID,
		profile.SampleSize,
		profile.CoveragePercentage,
		profile.ComputedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert org profile: %w", err)
	}

	for _, table := range []string{"org_facet_stats", "org_culture_types", "org_emergent_props"} {
		if _, err := tx.Exec(ctx, "DELETE FROM "+table+" WHERE org_id = $1", profile.OrgID); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	const statQuery = `
		INSERT INTO org_facet_stats (org_id, facet_id, mean, median, std_dev, diversity_index, sample_size)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for facetID, st := range profile.FacetStats {
		_, err := tx.Exec(ctx, statQuery,
			profile.OrgID,
			facetID,
			nullable(st.Mean),
			nullable(st.Median),
			nullable(st.StdDev),
			nullable(st.DiversityIndex),
			st.SampleSize,
		)
		if err != nil {
			return fmt.Errorf("insert facet stat %s: %w", facetID, err)
		}
	}

	const cultureQuery = `
		INSERT INTO org_culture_types (org_id, culture_type, strength)
		VALUES ($1, $2, $3)
	`
	for name, strength := range profile.CultureTypes {
		if _, err := tx.Exec(ctx, cultureQuery, profile.OrgID, name, strength); err != nil {
			return fmt.Errorf("insert culture type %s: %w", name, err)
		}
	}

	const emergentQuery = `
		INSERT INTO org_emergent_props (org_id, property, value)
		VALUES ($1, $2, $3)
	`
	for name, value := range profile.EmergentProperties {
		if _, err := tx.Exec(ctx, emergentQuery, profile.OrgID, name, value); err != nil {
			return fmt.Errorf("insert emergent property %s: %w", name, err)
		}
	}

	return tx.Commit(ctx)
}

func (r *PgOrgProfileRepository) Get(ctx context.Context, orgID string) (domain.OrganizationProfile, error) {
	const headQuery = `
		SELECT org_id, sample_size, coverage_percentage, computed_at
		FROM org_profiles
		WHERE org_id = $1
	`
	var profile domain.OrganizationProfile
	err := r.pool.QueryRow(ctx, headQuery, orgID).Scan(
		&profile.OrgID,
		&profile.SampleSize,
		&profile.CoveragePercentage,
		&profile.ComputedAt,
	)
	if err != nil {
		return domain.OrganizationProfile{}, err
	}

	profile.FacetStats = make(map[string]domain.FacetStatistic)
	const statQuery = `
		SELECT facet_id, mean, median, std_dev, diversity_index, sample_size
		FROM org_facet_stats
		WHERE org_id = $1
	`
	rows, err := r.pool.Query(ctx, statQuery, orgID)
	if err != nil {
		return domain.OrganizationProfile{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var st domain.FacetStatistic
		var mean, median, stdDev, diversity sql.NullFloat64
		if err := rows.Scan(&st.FacetID, &mean, &median, &stdDev, &diversity, &st.SampleSize); err != nil {
			return domain.OrganizationProfile{}, err
		}
		st.Mean = floatPtr(mean)
		st.Median = floatPtr(median)
		st.StdDev = floatPtr(stdDev)
		st.DiversityIndex = floatPtr(diversity)
		profile.FacetStats[st.FacetID] = st
	}
	if err := rows.Err(); err != nil {
		return domain.OrganizationProfile{}, err
	}

	profile.CultureTypes, err = r.stringFloatMap(ctx, "SELECT culture_type, strength FROM org_culture_types WHERE org_id = $1", orgID)
	if err != nil {
		return domain.OrganizationProfile{}, err
	}
	profile.EmergentProperties, err = r.stringFloatMap(ctx, "SELECT property, value FROM org_emergent_props WHERE org_id = $1", orgID)
	if err != nil {
		return domain.OrganizationProfile{}, err
	}

	return profile, nil
}

// ListOrgIDs devuelve las organizaciones con al menos un perfil agregado.
func (r *PgOrgProfileRepository) ListOrgIDs(ctx context.Context) ([]string, error) {
	const query = `
		SELECT DISTINCT org_id
		FROM trait_profiles
		WHERE kind = $1
		ORDER BY org_id
	`
	rows, err := r.pool.Query(ctx, query, domain.ProfileKindAggregated)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ids, nil
}

func (r *PgOrgProfileRepository) stringFloatMap(ctx context.Context, query, orgID string) (map[string]float64, error) {
	rows, err := r.pool.Query(ctx, query, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]float64)
	for rows.Next() {
		var name string
		var value float64
		if err := rows.Scan(&name, &value); err != nil {
			return nil, err
		}
		out[name] = value
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func nullable(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
