package db

import (
	"time"

	"github.com/google/uuid"
)

// Feedback tag constants: the closed set a user may submit
const (
	FeedbackHelpful        = "helpful"
	FeedbackNotHelpful     = "not_helpful"
	FeedbackNotInterested  = "not_interested"
	FeedbackAlreadyApplied = "already_applied"
)

// IsValidFeedback reports whether tag is in the closed feedback set
func IsValidFeedback(tag string) bool {
	switch tag {
	case FeedbackHelpful, FeedbackNotHelpful, FeedbackNotInterested, FeedbackAlreadyApplied:
		return true
	}
	return false
}

// Recommendation ties one user to one job with its match scoring.
// Exactly one record may exist per (user, job) pair.
type Recommendation struct {
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"user_id"`
	JobID  uuid.UUID `json:"job_id"`
	Job    *Job      `json:"job,omitempty"` // joined

	// Scoring
	MatchScore           float64     `json:"match_score"`
	SkillMatchScore      float64     `json:"skill_match_score"`
	LocationMatchScore   float64     `json:"location_match_score"`
	SalaryMatchScore     float64     `json:"salary_match_score"`
	CompanyMatchScore    float64     `json:"company_match_score"`
	ExperienceMatchScore float64     `json:"experience_match_score"`
	MatchReasons         StringArray `json:"match_reasons"`

	// Interaction flags, each a one-way transition stamped on first occurrence
	Viewed    bool       `json:"viewed"`
	ViewedAt  *time.Time `json:"viewed_at,omitempty"`
	Clicked   bool       `json:"clicked"`
	ClickedAt *time.Time `json:"clicked_at,omitempty"`
	Applied   bool       `json:"applied"`
	AppliedAt *time.Time `json:"applied_at,omitempty"`

	// Feedback
	Feedback      *string    `json:"feedback,omitempty"`
	FeedbackAt    *time.Time `json:"feedback_at,omitempty"`
	FeedbackNotes string     `json:"feedback_notes,omitempty"`

	Algorithm string    `json:"recommendation_algorithm"`
	CreatedAt time.Time `json:"created_at"`
}

// RecommendationUpsertInput carries one scored job into the store
type RecommendationUpsertInput struct {
	UserID               uuid.UUID
	JobID                uuid.UUID
	MatchScore           float64
	SkillMatchScore      float64
	LocationMatchScore   float64
	SalaryMatchScore     float64
	CompanyMatchScore    float64
	ExperienceMatchScore float64
	MatchReasons         []string
	Algorithm            string
	Overwrite            bool // refresh mode: replace an existing record's scores
}

// RecommendationBatch is the append-only audit record of one generation run
type RecommendationBatch struct {
	ID                   uuid.UUID              `json:"id"`
	UserID               uuid.UUID              `json:"user_id"`
	AlgorithmVersion     string                 `json:"algorithm_version"`
	TotalRecommendations int                    `json:"total_recommendations"`
	AverageScore         float64                `json:"average_score"`
	GenerationTimeMs     int                    `json:"generation_time_ms"`
	PreferencesSnapshot  map[string]interface{} `json:"preferences_snapshot"`
	CreatedAt            time.Time              `json:"created_at"`
}

// BatchCreateInput summarizes a finished generation run
type BatchCreateInput struct {
	UserID               uuid.UUID
	AlgorithmVersion     string
	TotalRecommendations int
	AverageScore         float64
	GenerationTimeMs     int
	PreferencesSnapshot  map[string]interface{}
}

// RecommendationStats aggregates a user's recommendation history
type RecommendationStats struct {
	Total            int        `json:"total_recommendations"`
	ViewedCount      int        `json:"viewed_count"`
	ClickedCount     int        `json:"clicked_count"`
	AppliedCount     int        `json:"applied_count"`
	FeedbackCount    int        `json:"feedback_count"`
	AverageScore     float64    `json:"average_score"`
	LastGenerated    *time.Time `json:"last_generated,omitempty"`
	GenerationTimeMs int        `json:"generation_time_ms"`
}
