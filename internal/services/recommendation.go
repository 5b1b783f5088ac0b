package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/coursebridge/coursebridge-backend/internal/logger"
	"github.com/coursebridge/coursebridge-backend/internal/normalization"
	"github.com/coursebridge/coursebridge-backend/internal/repos"
	"github.com/coursebridge/coursebridge-backend/internal/types"
)

const maxRecommendations = 4

// Scoring weights. The category term is constant post-filter (category is a
// hard gate) but stays in the sum so the score composition reads whole.
const (
	categoryWeight   = 5.0
	levelWeight      = 3.0
	sharedTagWeight  = 2.0
	priceWeight      = 2.0
	popularityCap    = 3.0
	completionWeight = 2.0
)

type RecommendationErrorKind string

const (
	RecommendationNotFound   RecommendationErrorKind = "not_found"
	RecommendationDataSource RecommendationErrorKind = "data_source"
)

// RecommendationError is the engine's internal failure type. It never
// crosses the public boundary: Recommend collapses it to an empty result so
// callers see "no recommendations" regardless of the cause.
type RecommendationError struct {
	Kind     RecommendationErrorKind
	CourseID uuid.UUID
	Err      error
}

func (e *RecommendationError) Error() string {
	return fmt.Sprintf("recommendation %s for course %s: %v", e.Kind, e.CourseID, e.Err)
}

func (e *RecommendationError) Unwrap() error { return e.Err }

// ScoredCourse is the per-request recommendation entry. It is never
// persisted; Score is internal while Relevance is the client-facing rank.
type ScoredCourse struct {
	ID             uuid.UUID         `json:"id"`
	ExternalID     *string           `json:"external_id,omitempty"`
	Name           string            `json:"name"`
	Description    string            `json:"description"`
	Price          *float64          `json:"price,omitempty"`
	LevelID        *uuid.UUID        `json:"level_id,omitempty"`
	StudentCount   int               `json:"student_count"`
	CompletionRate *float64          `json:"completion_rate,omitempty"`
	AverageStars   float64           `json:"average_stars"`
	Category       types.CategoryRef `json:"category"`
	Score          float64           `json:"-"`
	Relevance      float64           `json:"relevance"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

type RecommendationService interface {
	// Recommend returns up to four courses similar to the target, ordered by
	// descending relevance. It never fails: any load error degrades to an
	// empty slice (the feature is advisory, not critical path).
	Recommend(ctx context.Context, targetCourseID uuid.UUID, learnerID *uuid.UUID) []ScoredCourse
}

type recommendationService struct {
	db             *gorm.DB
	log            *logger.Logger
	courseRepo     repos.CourseRepo
	enrollmentRepo repos.EnrollmentRepo
}

func NewRecommendationService(
	db *gorm.DB,
	baseLog *logger.Logger,
	courseRepo repos.CourseRepo,
	enrollmentRepo repos.EnrollmentRepo,
) RecommendationService {
	serviceLog := baseLog.With("service", "RecommendationService")
	return &recommendationService{
		db:             db,
		log:            serviceLog,
		courseRepo:     courseRepo,
		enrollmentRepo: enrollmentRepo,
	}
}

func (rs *recommendationService) Recommend(ctx context.Context, targetCourseID uuid.UUID, learnerID *uuid.UUID) []ScoredCourse {
	results, err := rs.compute(ctx, targetCourseID, learnerID)
	if err != nil {
		var recErr *RecommendationError
		if errors.As(err, &recErr) && recErr.Kind == RecommendationNotFound {
			rs.log.Debug("recommendation target missing", "course_id", targetCourseID)
		} else {
			rs.log.Error("recommendation computation failed", "course_id", targetCourseID, "error", err)
		}
		return []ScoredCourse{}
	}
	return results
}

// compute is the fallible path: load snapshot, filter, dedup, score, rank,
// normalize. Loads are point-in-time; no consistency is guaranteed across
// the three reads.
func (rs *recommendationService) compute(ctx context.Context, targetCourseID uuid.UUID, learnerID *uuid.UUID) ([]ScoredCourse, error) {
	var (
		target   *types.Course
		catalog  []*types.Course
		enrolled = map[uuid.UUID]bool{}
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		c, err := rs.courseRepo.GetByID(gctx, nil, targetCourseID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &RecommendationError{Kind: RecommendationNotFound, CourseID: targetCourseID, Err: err}
			}
			return &RecommendationError{Kind: RecommendationDataSource, CourseID: targetCourseID, Err: fmt.Errorf("load target: %w", err)}
		}
		target = c
		return nil
	})

	g.Go(func() error {
		all, err := rs.courseRepo.ListCatalog(gctx, nil, repos.CatalogFilter{})
		if err != nil {
			return &RecommendationError{Kind: RecommendationDataSource, CourseID: targetCourseID, Err: fmt.Errorf("load catalog: %w", err)}
		}
		catalog = all
		return nil
	})

	if learnerID != nil {
		learner := *learnerID
		g.Go(func() error {
			ids, err := rs.enrollmentRepo.CourseIDsForUser(gctx, nil, learner)
			if err != nil {
				return &RecommendationError{Kind: RecommendationDataSource, CourseID: targetCourseID, Err: fmt.Errorf("load enrollments: %w", err)}
			}
			for _, id := range ids {
				enrolled[id] = true
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	candidates := filterEligible(target, catalog, enrolled)
	candidates = dedupCourses(candidates)

	scored := make([]ScoredCourse, 0, len(candidates))
	for _, c := range candidates {
		scored = append(scored, projectScored(c, similarityScore(target, c)))
	}

	// Stable sort keeps catalog iteration order on ties.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > maxRecommendations {
		scored = scored[:maxRecommendations]
	}

	normalizeRelevance(scored)
	return scored, nil
}

// filterEligible applies the eligibility rules in catalog order: never the
// target itself or its case-insensitive namesake, never a course the learner
// already took, never a course with any recorded enrollment platform-wide,
// and the candidate's category must equal the target's exactly.
func filterEligible(target *types.Course, catalog []*types.Course, enrolled map[uuid.UUID]bool) []*types.Course {
	targetName := normalization.FoldName(target.Name)

	eligible := make([]*types.Course, 0, len(catalog))
	for _, c := range catalog {
		if c == nil || c.ID == target.ID {
			continue
		}
		if normalization.FoldName(c.Name) == targetName {
			continue
		}
		if enrolled[c.ID] {
			continue
		}
		if c.StudentCount > 0 {
			continue
		}
		if !sameCategory(target, c) {
			continue
		}
		eligible = append(eligible, c)
	}
	return eligible
}

func sameCategory(a, b *types.Course) bool {
	if a.CategoryID == nil || b.CategoryID == nil {
		return false
	}
	return *a.CategoryID == *b.CategoryID
}

// dedupCourses collapses candidates sharing an external content id or a
// case-insensitive name, keeping the first-seen entry.
func dedupCourses(candidates []*types.Course) []*types.Course {
	seenExternal := make(map[string]bool, len(candidates))
	seenName := make(map[string]bool, len(candidates))

	out := make([]*types.Course, 0, len(candidates))
	for _, c := range candidates {
		name := normalization.FoldName(c.Name)
		external := ""
		if c.ExternalID != nil {
			external = *c.ExternalID
		}
		if external != "" && seenExternal[external] {
			continue
		}
		if seenName[name] {
			continue
		}
		if external != "" {
			seenExternal[external] = true
		}
		seenName[name] = true
		out = append(out, c)
	}
	return out
}

// similarityScore sums the weighted similarity terms between target and
// candidate. Optional inputs (price, popularity, completion rate) contribute
// only when present.
func similarityScore(target, candidate *types.Course) float64 {
	score := 0.0

	if sameCategory(target, candidate) {
		score += categoryWeight
	}
	if target.LevelID != nil && candidate.LevelID != nil && *target.LevelID == *candidate.LevelID {
		score += levelWeight
	}

	targetTags := target.TagIDSet()
	shared := 0
	for _, t := range candidate.Tags {
		if t != nil && targetTags[t.ID] {
			shared++
		}
	}
	score += sharedTagWeight * float64(shared)

	if p := priceProximity(target.Price, candidate.Price); p > 0 {
		score += p
	}

	score += candidate.AverageStars()

	if candidate.StudentCount > 0 {
		score += math.Min(popularityCap, math.Log10(float64(candidate.StudentCount)))
	}

	if candidate.CompletionRate != nil {
		score += (*candidate.CompletionRate / 100) * completionWeight
	}

	return score
}

// priceProximity yields up to priceWeight for close prices and 0 when either
// price is absent or zero.
func priceProximity(a, b *float64) float64 {
	if a == nil || b == nil || *a == 0 || *b == 0 {
		return 0
	}
	max := math.Max(*a, *b)
	return priceWeight * (1 - math.Abs(*a-*b)/max)
}

// normalizeRelevance min-max scales scores into [0,1]. A degenerate range
// (all selected scores equal) maps everything to 1.
func normalizeRelevance(scored []ScoredCourse) {
	if len(scored) == 0 {
		return
	}
	minScore, maxScore := scored[0].Score, scored[0].Score
	for _, s := range scored[1:] {
		if s.Score < minScore {
			minScore = s.Score
		}
		if s.Score > maxScore {
			maxScore = s.Score
		}
	}
	span := maxScore - minScore
	for i := range scored {
		if span == 0 {
			scored[i].Relevance = 1
			continue
		}
		scored[i].Relevance = (scored[i].Score - minScore) / span
	}
}

func projectScored(c *types.Course, score float64) ScoredCourse {
	return ScoredCourse{
		ID:             c.ID,
		ExternalID:     c.ExternalID,
		Name:           c.Name,
		Description:    c.Description,
		Price:          c.Price,
		LevelID:        c.LevelID,
		StudentCount:   c.StudentCount,
		CompletionRate: c.CompletionRate,
		AverageStars:   c.AverageStars(),
		Category:       c.Category.Ref(),
		Score:          score,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}
