package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Intentional-Operating-Culture-LLC/ioc-workspace-sub014/internal/domain"
)

// ProfileRepository define el contrato de persistencia para reportes de rasgos.
type ProfileRepository interface {
	SaveReport(ctx context.Context, profile domain.TraitProfile) error
	FindSimilar(ctx context.Context, orgID, excludeProfileID string, scores domain.TraitScores, k int) ([]domain.TraitProfile, error)
	ListOrgFacetValues(ctx context.Context, orgID string) ([]domain.ProfileFacetValues, error)
}

type PgProfileRepository struct {
	pool *pgxpool.Pool
}

func NewPgProfileRepository(pool *pgxpool.Pool) *PgProfileRepository {
	return &PgProfileRepository{pool: pool}
}

// SaveReport persiste el perfil con sus facetas y etiquetas de patrón en una
// transacción: un reporte a medias no sirve para el análisis organizacional.
func (r *PgProfileRepository) SaveReport(ctx context.Context, profile domain.TraitProfile) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin save report: %w", err)
	}
	defer tx.Rollback(ctx)

	const headQuery = `
		INSERT INTO trait_profiles (
			id, assessment_id, org_id, subject_id, rater_id, kind,
			openness, conscientiousness, extraversion, agreeableness, neuroticism,
			completeness, consistency, trait_vector, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	var raterID interface{}
	if profile.RaterID != nil {
		raterID = *profile.RaterID
	}
	var consistency interface{}
	if profile.Report.Consistency != nil {
		consistency = *profile.Report.Consistency
	}

	scores := profile.Report.Scores
	_, err = tx.Exec(ctx, headQuery,
		profile.ID,
		profile.AssessmentID,
		profile.OrgID,
		profile.SubjectID,
		raterID,
		profile.Kind,
		scores.Openness,
		scores.Conscientiousness,
		scores.Extraversion,
		scores.Agreeableness,
		scores.Neuroticism,
		profile.Report.Completeness,
		consistency,
		scores.Vector(),
		profile.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert trait profile: %w", err)
	}

	const facetQuery = `
		INSERT INTO profile_facets (profile_id, facet_id, score, response_count, std_dev)
		VALUES ($1, $2, $3, $4, $5)
	`
	for facetID, fs := range profile.Report.Facets {
		if _, err := tx.Exec(ctx, facetQuery, profile.ID, facetID, fs.Score, fs.ResponseCount, fs.StdDev); err != nil {
			return fmt.Errorf("insert profile facet %s: %w", facetID, err)
		}
	}

	const patternQuery = `
		INSERT INTO profile_patterns (profile_id, label)
		VALUES ($1, $2)
	`
	for _, label := range profile.Patterns {
		if _, err := tx.Exec(ctx, patternQuery, profile.ID, label); err != nil {
			return fmt.Errorf("insert profile pattern %s: %w", label, err)
		}
	}

	return tx.Commit(ctx)
}

// FindSimilar devuelve los k perfiles agregados de la organización más cercanos
// al vector de rasgos dado, del más parecido al menos.
func (r *PgProfileRepository) FindSimilar(ctx context.Context, orgID, excludeProfileID string, scores domain.TraitScores, k int) ([]domain.TraitProfile, error) {
	if k <= 0 {
		k = 3
	}
	const query = `
		SELECT id, assessment_id, org_id, subject_id, rater_id, kind,
			openness, conscientiousness, extraversion, agreeableness, neuroticism,
			completeness, consistency, created_at
		FROM trait_profiles
		WHERE org_id = $1 AND kind = $2 AND id <> $3
		ORDER BY trait_vector <=> $4
		LIMIT $5
	`
	rows, err := r.pool.Query(ctx, query, orgID, domain.ProfileKindAggregated, excludeProfileID, scores.Vector(), k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanProfiles(rows)
}

// ListOrgFacetValues devuelve los puntajes de faceta de cada perfil agregado de
// la organización, agrupados por perfil.
func (r *PgProfileRepository) ListOrgFacetValues(ctx context.Context, orgID string) ([]domain.ProfileFacetValues, error) {
	const query = `
		SELECT tp.id, tp.subject_id, pf.facet_id, pf.score
		FROM trait_profiles tp
		JOIN profile_facets pf ON pf.profile_id = tp.id
		WHERE tp.org_id = $1 AND tp.kind = $2
		ORDER BY tp.id, pf.facet_id
	`
	rows, err := r.pool.Query(ctx, query, orgID, domain.ProfileKindAggregated)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []domain.ProfileFacetValues
	var current *domain.ProfileFacetValues
	for rows.Next() {
		var profileID, subjectID, facetID string
		var score float64
		if err := rows.Scan(&profileID, &subjectID, &facetID, &score); err != nil {
			return nil, err
		}
		if current == nil || current.ProfileID != profileID {
			profiles = append(profiles, domain.ProfileFacetValues{
				ProfileID: profileID,
				SubjectID: subjectID,
				Values:    make(map[string]float64),
			})
			current = &profiles[len(profiles)-1]
		}
		current.Values[facetID] = score
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return profiles, nil
}

func scanProfiles(rows pgxRows) ([]domain.TraitProfile, error) {
	var profiles []domain.TraitProfile
	for rows.Next() {
		var p domain.TraitProfile
		var raterID sql.NullString
		var consistency sql.NullFloat64
		if err := rows.Scan(
			&p.ID,
			&p.AssessmentID,
			&p.OrgID,
			&p.SubjectID,
			&raterID,
			&p.Kind,
			&p.Report.Scores.Openness,
			&p.Report.Scores.Conscientiousness,
			&p.Report.Scores.Extraversion,
			&p.Report.Scores.Agreeableness,
			&p.Report.Scores.Neuroticism,
			&p.Report.Completeness,
			&consistency,
			&p.CreatedAt,
		); err != nil {
			return nil, err
		}
		if raterID.Valid {
			id := raterID.String
			p.RaterID = &id
		}
		if consistency.Valid {
			v := consistency.Float64
			p.Report.Consistency = &v
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return profiles, nil
}

// pgxRows is a minimal interface to allow scanning from pgx rows and simplify testing.
type pgxRows interface {
	Next() bool
	Scan(...interface{}) error
	Err() error
	Close()
}
