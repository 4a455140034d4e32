package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Intentional-Operating-Culture-LLC/ioc-workspace-sub014/internal/domain"
	"github.com/Intentional-Operating-Culture-LLC/ioc-workspace-sub014/internal/itembank"
	"github.com/Intentional-Operating-Culture-LLC/ioc-workspace-sub014/internal/repository"
	"github.com/Intentional-Operating-Culture-LLC/ioc-workspace-sub014/internal/scoring"
)

// ErrAssessmentNotFound indica que el assessment pedido no existe.
var ErrAssessmentNotFound = errors.New("assessment not found")

// ScoringService orquesta el pipeline de un assessment: componer respuestas,
// normalizar, calcular, agregar evaluadores, detectar patrones y persistir.
type ScoringService struct {
	assessments          repository.AssessmentRepository
	profiles             repository.ProfileRepository
	bank                 *itembank.Bank
	normalizer           *scoring.Normalizer
	calculator           *scoring.Calculator
	detector             *scoring.PatternDetector
	discrepancyThreshold float64
	workers              int
	logger               *zap.Logger
}

// NewScoringService arma el pipeline sobre la escala del banco de ítems. Un
// banco o catálogo de reglas inválido frena acá, no en medio de un lote.
func NewScoringService(
	assessments repository.AssessmentRepository,
	profiles repository.ProfileRepository,
	bank *itembank.Bank,
	detector *scoring.PatternDetector,
	discrepancyThreshold float64,
	workers int,
	logger *zap.Logger,
) (*ScoringService, error) {
	normalizer, err := scoring.NewNormalizer(bank.Scale())
	if err != nil {
		return nil, fmt.Errorf("init normalizer: %w", err)
	}
	calculator, err := scoring.NewCalculator(bank.Scale())
	if err != nil {
		return nil, fmt.Errorf("init calculator: %w", err)
	}
	if discrepancyThreshold <= 0 {
		discrepancyThreshold = 30
	}
	if workers <= 0 {
		workers = 8
	}
	return &ScoringService{
		assessments:          assessments,
		profiles:             profiles,
		bank:                 bank,
		normalizer:           normalizer,
		calculator:           calculator,
		detector:             detector,
		discrepancyThreshold: discrepancyThreshold,
		workers:              workers,
		logger:               logger,
	}, nil
}

// ScoreAssessment corre el pipeline completo para un assessment y devuelve el
// perfil agregado persistido. Evaluadores sin respuestas quedan excluidos de la
// agregación; sin ningún contribuyente la llamada falla con
// scoring.ErrInsufficientRaters.
func (s *ScoringService) ScoreAssessment(ctx context.Context, assessmentID string) (domain.TraitProfile, error) {
	assessment, err := s.assessments.GetByID(ctx, assessmentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.TraitProfile{}, ErrAssessmentNotFound
		}
		return domain.TraitProfile{}, fmt.Errorf("get assessment %s: %w", assessmentID, err)
	}

	submissions, err := s.assessments.ListSubmissions(ctx, assessmentID)
	if err != nil {
		return domain.TraitProfile{}, fmt.Errorf("list submissions for %s: %w", assessmentID, err)
	}

	now := time.Now().UTC()
	raterScores := make([]domain.RaterScores, 0, len(submissions))
	var pooled []domain.NormalizedResponse
	var contributors int
	for _, sub := range submissions {
		if math.IsNaN(sub.Weight) || sub.Weight <= 0 || sub.Weight > 1 {
			s.logger.Warn("rater excluded: invalid weight",
				zap.String("assessment_id", assessmentID),
				zap.String("rater_id", sub.RaterID),
				zap.Float64("weight", sub.Weight),
			)
			continue
		}
		rater := domain.RaterScores{
			RaterID:      sub.RaterID,
			Relationship: sub.Relationship,
			Weight:       sub.Weight,
		}
		if len(sub.Answers) == 0 {
			s.logger.Info("rater excluded: no submission",
				zap.String("assessment_id", assessmentID),
				zap.String("rater_id", sub.RaterID),
			)
			raterScores = append(raterScores, rater)
			continue
		}

		normalized := s.normalizer.Normalize(s.bank.Compose(sub.Answers))
		report := s.calculator.Score(normalized, scoring.CalcOptions{
			Normalize:  true,
			TotalItems: s.bank.Size(),
		})

		raterID := sub.RaterID
		individual := domain.TraitProfile{
			ID:           uuid.NewString(),
			AssessmentID: assessment.ID,
			OrgID:        assessment.OrgID,
			SubjectID:    assessment.SubjectID,
			RaterID:      &raterID,
			Kind:         domain.ProfileKindIndividual,
			Report:       report,
			CreatedAt:    now,
		}
		if err := s.profiles.SaveReport(ctx, individual); err != nil {
			return domain.TraitProfile{}, fmt.Errorf("save rater profile %s: %w", sub.RaterID, err)
		}

		rater.Scores = &report.Scores
		raterScores = append(raterScores, rater)
		pooled = append(pooled, normalized...)
		contributors++
	}

	aggregated, err := scoring.AggregateRaters(raterScores, scoring.AggregateOptions{DetectDiscrepancies: true})
	if err != nil {
		return domain.TraitProfile{}, fmt.Errorf("aggregate assessment %s: %w", assessmentID, err)
	}

	for _, dim := range domain.Dimensions() {
		if spread, ok := aggregated.Discrepancies[dim]; ok && spread >= s.discrepancyThreshold {
			s.logger.Warn("rater discrepancy above threshold",
				zap.String("assessment_id", assessmentID),
				zap.String("dimension", dim),
				zap.Float64("spread", spread),
				zap.Float64("threshold", s.discrepancyThreshold),
			)
		}
	}

	patterns := s.detector.Detect(aggregated.Scores)

	// Los cinco puntajes salen de la agregación ponderada; el detalle por faceta,
	// completeness y consistencia salen del pool de respuestas de los
	// contribuyentes.
	pooledReport := s.calculator.Score(pooled, scoring.CalcOptions{
		Normalize:  true,
		TotalItems: s.bank.Size() * contributors,
	})

	profile := domain.TraitProfile{
		ID:           uuid.NewString(),
		AssessmentID: assessment.ID,
		OrgID:        assessment.OrgID,
		SubjectID:    assessment.SubjectID,
		Kind:         domain.ProfileKindAggregated,
		Report: domain.TraitReport{
			Scores:       aggregated.Scores,
			Facets:       pooledReport.Facets,
			Completeness: pooledReport.Completeness,
			Consistency:  pooledReport.Consistency,
		},
		Patterns:  patterns,
		CreatedAt: now,
	}

	if err := s.profiles.SaveReport(ctx, profile); err != nil {
		return domain.TraitProfile{}, fmt.Errorf("save aggregated profile: %w", err)
	}
	if err := s.assessments.MarkScored(ctx, assessment.ID); err != nil {
		return domain.TraitProfile{}, fmt.Errorf("mark assessment %s scored: %w", assessment.ID, err)
	}

	s.logger.Info("assessment scored",
		zap.String("assessment_id", assessment.ID),
		zap.String("profile_id", profile.ID),
		zap.Int("raters", aggregated.RaterCount),
		zap.Strings("patterns", patterns),
	)

	s.logBenchmarks(ctx, profile)

	return profile, nil
}

// logBenchmarks busca los perfiles más parecidos de la organización por vector
// de rasgos. Es contexto para el equipo, no parte del pipeline: si falla solo
// se registra.
func (s *ScoringService) logBenchmarks(ctx context.Context, profile domain.TraitProfile) {
	similar, err := s.profiles.FindSimilar(ctx, profile.OrgID, profile.ID, profile.Report.Scores, 3)
	if err != nil {
		s.logger.Warn("benchmark lookup failed", zap.Error(err), zap.String("profile_id", profile.ID))
		return
	}
	if len(similar) == 0 {
		return
	}
	ids := make([]string, len(similar))
	for i, p := range similar {
		ids[i] = p.ID
	}
	s.logger.Info("nearest benchmark profiles",
		zap.String("profile_id", profile.ID),
		zap.Strings("similar_ids", ids),
	)
}

// BatchOutcome es el resultado de un miembro del lote. El error de un miembro
// no corta el lote; queda registrado acá.
type BatchOutcome struct {
	AssessmentID string
	ProfileID    string
	Patterns     []string
	Err          error
}

// ScoreBatch puntúa varios assessments con concurrencia acotada. Ningún
// resultado parcial de un miembro se publica antes de que su pipeline complete;
// cancelar el contexto aborta los miembros aún no procesados.
func (s *ScoringService) ScoreBatch(ctx context.Context, ids []string) []BatchOutcome {
	outcomes := make([]BatchOutcome, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			outcome := BatchOutcome{AssessmentID: id}
			if err := gctx.Err(); err != nil {
				outcome.Err = err
				outcomes[i] = outcome
				return nil
			}
			profile, err := s.ScoreAssessment(gctx, id)
			if err != nil {
				outcome.Err = err
				s.logger.Warn("batch member failed",
					zap.String("assessment_id", id),
					zap.Error(err),
				)
			} else {
				outcome.ProfileID = profile.ID
				outcome.Patterns = profile.Patterns
			}
			outcomes[i] = outcome
			return nil
		})
	}
	// Los errores de negocio quedan en outcomes, nunca en el grupo.
	_ = g.Wait()

	var failed int
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
		}
	}
	s.logger.Info("batch finished",
		zap.Int("total", len(ids)),
		zap.Int("scored", len(ids)-failed),
		zap.Int("failed", failed),
	)

	return outcomes
}

// ScorePending puntúa todos los assessments pendientes en un lote.
func (s *ScoringService) ScorePending(ctx context.Context) ([]BatchOutcome, error) {
	ids, err := s.assessments.ListPendingIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pending assessments: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return s.ScoreBatch(ctx, ids), nil
}
