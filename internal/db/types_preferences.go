package db

import (
	"time"

	"github.com/google/uuid"
)

// Notification frequency constants
const (
	NotifyDaily    = "daily"
	NotifyWeekly   = "weekly"
	NotifyMonthly  = "monthly"
	NotifyDisabled = "disabled"
)

// DefaultMaxRecommendations is the per-user recommendation cap applied
// when a preference record is created lazily.
const DefaultMaxRecommendations = 10

// UserPreference holds one user's job-matching preferences.
// At most one record exists per user; it is created lazily with
// defaults on first access.
type UserPreference struct {
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"user_id"`

	// Location
	PreferredLocations StringArray `json:"preferred_locations"`
	OpenToRemote       bool        `json:"open_to_remote"`
	OpenToHybrid       bool        `json:"open_to_hybrid"`

	// Job type
	PreferredIndustries StringArray `json:"preferred_industries"`
	ExperienceLevel     string      `json:"experience_level"`

	// Salary
	MinSalary      *int   `json:"min_salary,omitempty"`
	MaxSalary      *int   `json:"max_salary,omitempty"`
	SalaryCurrency string `json:"salary_currency"`

	// Skills and keywords
	KeySkills     StringArray `json:"key_skills"`
	AvoidKeywords StringArray `json:"avoid_keywords"`

	// Company
	PreferredCompanySizes StringArray `json:"preferred_company_sizes"`
	AvoidCompanies        []uuid.UUID `json:"avoid_companies"`

	// Visa sponsorship
	RequiresSponsorship bool        `json:"requires_sponsorship"`
	VisaTypesNeeded     StringArray `json:"visa_types_needed"`

	// Recommendation settings
	NotificationFrequency string `json:"notification_frequency"`
	MaxRecommendations    int    `json:"max_recommendations"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PreferenceUpdateInput carries the mutable preference fields
type PreferenceUpdateInput struct {
	PreferredLocations    []string
	OpenToRemote          bool
	OpenToHybrid          bool
	PreferredIndustries   []string
	ExperienceLevel       string
	MinSalary             *int
	MaxSalary             *int
	SalaryCurrency        string
	KeySkills             []string
	AvoidKeywords         []string
	PreferredCompanySizes []string
	AvoidCompanies        []uuid.UUID
	RequiresSponsorship   bool
	VisaTypesNeeded       []string
	NotificationFrequency string
	MaxRecommendations    int
}

// snapshotSkillLimit caps the key-skill list stored in batch snapshots
const snapshotSkillLimit = 10

// Snapshot captures the preference fields that matter for batch trend
// analysis. Key skills are truncated to keep the stored JSON small.
func (p *UserPreference) Snapshot(algorithmVersion string) map[string]interface{} {
	skills := []string(p.KeySkills)
	if len(skills) > snapshotSkillLimit {
		skills = skills[:snapshotSkillLimit]
	}
	return map[string]interface{}{
		"preferred_locations":  []string(p.PreferredLocations),
		"experience_level":     p.ExperienceLevel,
		"min_salary":           p.MinSalary,
		"max_salary":           p.MaxSalary,
		"key_skills":           skills,
		"requires_sponsorship": p.RequiresSponsorship,
		"open_to_remote":       p.OpenToRemote,
		"preferred_industries": []string(p.PreferredIndustries),
		"algorithm_version":    algorithmVersion,
	}
}
