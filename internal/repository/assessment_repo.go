package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Intentional-Operating-Culture-LLC/ioc-workspace-sub014/internal/domain"
)

// AssessmentRepository define el contrato de persistencia para assessments y
// las respuestas crudas de sus evaluadores.
type AssessmentRepository interface {
	GetByID(ctx context.Context, id string) (domain.Assessment, error)
	ListPendingIDs(ctx context.Context) ([]string, error)
	ListSubmissions(ctx context.Context, assessmentID string) ([]domain.RaterSubmission, error)
	MarkScored(ctx context.Context, assessmentID string) error
}

type PgAssessmentRepository struct {
	pool *pgxpool.Pool
}

func NewPgAssessmentRepository(pool *pgxpool.Pool) *PgAssessmentRepository {
	return &PgAssessmentRepository{pool: pool}
}

func (r *PgAssessmentRepository) GetByID(ctx context.Context, id string) (domain.Assessment, error) {
	const query = `
		SELECT id, org_id, subject_id, status, created_at, updated_at
		FROM assessments
		WHERE id = $1
	`
	var a domain.Assessment
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&a.ID,
		&a.OrgID,
		&a.SubjectID,
		&a.Status,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	return a, err
}

func (r *PgAssessmentRepository) ListPendingIDs(ctx context.Context) ([]string, error) {
	const query = `
		SELECT id
		FROM assessments
		WHERE status = $1
		ORDER BY created_at
	`
	rows, err := r.pool.Query(ctx, query, domain.AssessmentStatusPending)
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

// ListSubmissions devuelve los evaluadores invitados al assessment con sus
// respuestas. Un evaluador sin filas de respuesta queda con Answers vacío: es
// el caso "invitado que nunca envió" y la agregación lo excluye.
func (r *PgAssessmentRepository) ListSubmissions(ctx context.Context, assessmentID string) ([]domain.RaterSubmission, error) {
	const query = `
		SELECT rs.rater_id, rs.relationship, rs.weight, rs.submitted_at, ir.item_id, ir.value
		FROM rater_submissions rs
		LEFT JOIN item_responses ir
			ON ir.assessment_id = rs.assessment_id AND ir.rater_id = rs.rater_id
		WHERE rs.assessment_id = $1
		ORDER BY rs.rater_id, ir.item_id
	`
	rows, err := r.pool.Query(ctx, query, assessmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var submissions []domain.RaterSubmission
	var current *domain.RaterSubmission
	for rows.Next() {
		var (
			raterID      string
			relationship string
			weight       float64
			submittedAt  sql.NullTime
			itemID       sql.NullString
			value        sql.NullFloat64
		)
		if err := rows.Scan(&raterID, &relationship, &weight, &submittedAt, &itemID, &value); err != nil {
			return nil, err
		}

		if current == nil || current.RaterID != raterID {
			submissions = append(submissions, domain.RaterSubmission{
				RaterID:      raterID,
				Relationship: relationship,
				Weight:       weight,
			})
			current = &submissions[len(submissions)-1]
			if submittedAt.Valid {
				current.SubmittedAt = submittedAt.Time
			}
		}

		if itemID.Valid {
			answer := domain.ItemResponse{ItemID: itemID.String}
			if value.Valid {
				v := value.Float64
				answer.Value = &v
			}
			current.Answers = append(current.Answers, answer)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *PgAssessmentRepository) MarkScored(ctx context.Context, assessmentID string) error {
	const query = `
		UPDATE assessments
		SET status = $2, updated_at = $3
		WHERE id = $1
	`
	_, err := r.pool.Exec(ctx, query, assessmentID, domain.AssessmentStatusScored, time.Now().UTC())
	return err
}
