package recommend

import (
	"context"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/sponsorboard/internal/db"
)

// DefaultAlgorithmVersion tags recommendations produced by this engine
const DefaultAlgorithmVersion = "rule_based_v1"

// DefaultLimit is the number of recommendations produced when the
// caller does not ask for a specific count
const DefaultLimit = 10

// minimumScore is the relevance threshold; candidates scoring at or
// below it are discarded before ranking
const minimumScore = 0.3

// cacheWindow is how long persisted recommendations satisfy a
// non-refresh generation request
const cacheWindow = 24 * time.Hour

// RetentionPeriod is how long recommendation records are kept before
// the purge removes them
const RetentionPeriod = 30 * 24 * time.Hour

// Store is the narrow persistence interface the engine depends on.
// *db.DB satisfies it; tests use in-memory fakes.
type Store interface {
	GetOrCreatePreferences(ctx context.Context, userID uuid.UUID) (*db.UserPreference, error)
	GetActiveJobs(ctx context.Context, filters db.JobFilters) ([]db.Job, error)
	GetAppliedJobIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	CountRecentRecommendations(ctx context.Context, userID uuid.UUID, since time.Time) (int, error)
	ListRecommendations(ctx context.Context, userID uuid.UUID, limit int) ([]db.Recommendation, error)
	GetRecommendationByID(ctx context.Context, id uuid.UUID) (*db.Recommendation, error)
	UpsertRecommendation(ctx context.Context, input *db.RecommendationUpsertInput) (*db.Recommendation, error)
	DeleteRecommendation(ctx context.Context, userID, jobID uuid.UUID) error
	DeleteRecommendationsOlderThan(ctx context.Context, userID uuid.UUID, cutoff time.Time) (int64, error)
	MarkRecommendationViewed(ctx context.Context, id uuid.UUID) error
	MarkRecommendationClicked(ctx context.Context, id uuid.UUID) error
	SaveRecommendationFeedback(ctx context.Context, id uuid.UUID, tag, notes string) error
	GetRecommendationStats(ctx context.Context, userID uuid.UUID) (*db.RecommendationStats, error)
	CreateBatch(ctx context.Context, input *db.BatchCreateInput) (*db.RecommendationBatch, error)
}

// Engine orchestrates candidate selection, scoring, ranking, and
// persistence for recommendation generation runs
type Engine struct {
	store   Store
	scorer  *Scorer
	version string
}

// NewEngine creates an Engine with the default weights and version
func NewEngine(store Store) *Engine {
	return NewEngineWithScorer(store, NewScorer(DefaultWeights()), DefaultAlgorithmVersion)
}

// NewEngineWithScorer creates an Engine with a custom scorer and
// algorithm version tag
func NewEngineWithScorer(store Store, scorer *Scorer, version string) *Engine {
	return &Engine{store: store, scorer: scorer, version: version}
}

// scoredJob pairs a candidate with its score for ranking
type scoredJob struct {
	job    db.Job
	result ScoreResult
}

// Generate produces up to limit ranked recommendations for a user.
//
// Unless refresh is set, recommendations persisted within the last 24
// hours satisfy the request directly. Otherwise the candidate pool is
// selected, scored, ranked, and persisted, and one batch audit record is
// written. An empty candidate set yields an empty result, not an error.
func (e *Engine) Generate(ctx context.Context, userID uuid.UUID, limit int, refresh bool) ([]db.Recommendation, error) {
	start := time.Now()
	if limit <= 0 {
		limit = DefaultLimit
	}

	prefs, err := e.store.GetOrCreatePreferences(ctx, userID)
	if err != nil {
		return nil, &GenerationError{UserID: userID, Err: err}
	}

	if !refresh {
		count, err := e.store.CountRecentRecommendations(ctx, userID, start.Add(-cacheWindow))
		if err != nil {
			return nil, &GenerationError{UserID: userID, Err: err}
		}
		if count >= limit {
			cached, err := e.store.ListRecommendations(ctx, userID, limit)
			if err != nil {
				return nil, &GenerationError{UserID: userID, Err: err}
			}
			log.Printf("[engine] Returning %d cached recommendations for user %s", len(cached), userID)
			return cached, nil
		}
	}

	appliedJobIDs, err := e.store.GetAppliedJobIDs(ctx, userID)
	if err != nil {
		return nil, &GenerationError{UserID: userID, Err: err}
	}

	candidates, err := e.store.GetActiveJobs(ctx, buildJobFilters(prefs, appliedJobIDs))
	if err != nil {
		return nil, &GenerationError{UserID: userID, Err: err}
	}
	if len(candidates) == 0 {
		log.Printf("[engine] No eligible jobs found for user %s", userID)
		return []db.Recommendation{}, nil
	}

	scored := make([]scoredJob, 0, len(candidates))
	for i := range candidates {
		result, ok := e.scoreCandidate(&candidates[i], prefs)
		if !ok || result.Overall <= minimumScore {
			continue
		}
		scored = append(scored, scoredJob{job: candidates[i], result: result})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].result.Overall > scored[j].result.Overall
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}

	recommendations := make([]db.Recommendation, 0, len(scored))
	for _, sc := range scored {
		if refresh {
			if err := e.store.DeleteRecommendation(ctx, userID, sc.job.ID); err != nil {
				return nil, &GenerationError{UserID: userID, Err: err}
			}
		}
		rec, err := e.store.UpsertRecommendation(ctx, &db.RecommendationUpsertInput{
			UserID:               userID,
			JobID:                sc.job.ID,
			MatchScore:           sc.result.Overall,
			SkillMatchScore:      sc.result.Skill,
			LocationMatchScore:   sc.result.Location,
			SalaryMatchScore:     sc.result.Salary,
			CompanyMatchScore:    sc.result.Company,
			ExperienceMatchScore: sc.result.Experience,
			MatchReasons:         sc.result.Reasons,
			Algorithm:            e.version,
			Overwrite:            refresh,
		})
		if err != nil {
			return nil, &GenerationError{UserID: userID, Err: err}
		}
		job := sc.job
		rec.Job = &job
		recommendations = append(recommendations, *rec)
	}

	if len(recommendations) > 0 {
		total := 0.0
		for _, rec := range recommendations {
			total += rec.MatchScore
		}
		elapsed := int(time.Since(start).Milliseconds())
		_, err := e.store.CreateBatch(ctx, &db.BatchCreateInput{
			UserID:               userID,
			AlgorithmVersion:     e.version,
			TotalRecommendations: len(recommendations),
			AverageScore:         total / float64(len(recommendations)),
			GenerationTimeMs:     elapsed,
			PreferencesSnapshot:  prefs.Snapshot(e.version),
		})
		if err != nil {
			return nil, &GenerationError{UserID: userID, Err: err}
		}
		log.Printf("[engine] Generated %d recommendations for user %s in %dms",
			len(recommendations), userID, elapsed)
	}

	return recommendations, nil
}

// scoreCandidate scores one job, isolating panics so a malformed job
// record cannot abort the whole run
func (e *Engine) scoreCandidate(job *db.Job, prefs *db.UserPreference) (result ScoreResult, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[engine] Skipping job %s: scoring failed: %v", job.ID, r)
			ok = false
		}
	}()
	return e.scorer.Score(job, prefs), true
}

// List returns a user's persisted recommendations, best score first
func (e *Engine) List(ctx context.Context, userID uuid.UUID, limit int) ([]db.Recommendation, error) {
	return e.store.ListRecommendations(ctx, userID, limit)
}

// Get retrieves one recommendation by ID
func (e *Engine) Get(ctx context.Context, id uuid.UUID) (*db.Recommendation, error) {
	rec, err := e.store.GetRecommendationByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrRecommendationNotFound
	}
	return rec, nil
}

// MarkViewed flips the viewed flag; repeated calls are no-ops
func (e *Engine) MarkViewed(ctx context.Context, id uuid.UUID) error {
	if _, err := e.Get(ctx, id); err != nil {
		return err
	}
	return e.store.MarkRecommendationViewed(ctx, id)
}

// MarkClicked flips the clicked flag; repeated calls are no-ops
func (e *Engine) MarkClicked(ctx context.Context, id uuid.UUID) error {
	if _, err := e.Get(ctx, id); err != nil {
		return err
	}
	return e.store.MarkRecommendationClicked(ctx, id)
}

// SubmitFeedback validates and stores a feedback tag with notes.
// Resubmission overwrites the previous feedback.
func (e *Engine) SubmitFeedback(ctx context.Context, id uuid.UUID, tag, notes string) error {
	if !db.IsValidFeedback(tag) {
		return ErrInvalidFeedback
	}
	if _, err := e.Get(ctx, id); err != nil {
		return err
	}
	return e.store.SaveRecommendationFeedback(ctx, id, tag, notes)
}

// Stats aggregates a user's recommendation history
func (e *Engine) Stats(ctx context.Context, userID uuid.UUID) (*db.RecommendationStats, error) {
	return e.store.GetRecommendationStats(ctx, userID)
}

// PurgeStale removes a user's recommendations older than the retention
// period and returns the count removed
func (e *Engine) PurgeStale(ctx context.Context, userID uuid.UUID) (int64, error) {
	return e.store.DeleteRecommendationsOlderThan(ctx, userID, time.Now().Add(-RetentionPeriod))
}
