package db

import (
	"time"

	"github.com/google/uuid"
)

// Job status constants
const (
	JobStatusDraft  = "draft"
	JobStatusActive = "active"
	JobStatusClosed = "closed"
)

// Sponsor status constants
const (
	SponsorStatusActive    = "active"
	SponsorStatusSuspended = "suspended"
	SponsorStatusRevoked   = "revoked"
)

// VisaTypeSkilledWorker is the default visa route assumed when a user
// requires sponsorship but has not listed any specific visa types.
const VisaTypeSkilledWorker = "skilled_worker"

// Experience level constants
const (
	ExperienceEntry     = "entry"
	ExperienceMid       = "mid"
	ExperienceSenior    = "senior"
	ExperienceLead      = "lead"
	ExperienceExecutive = "executive"
)

// Company size constants
const (
	CompanySizeStartup    = "startup"
	CompanySizeSmall      = "small"
	CompanySizeMedium     = "medium"
	CompanySizeLarge      = "large"
	CompanySizeEnterprise = "enterprise"
)

// Company represents an employer, read-only to the recommendation core
type Company struct {
	ID            uuid.UUID   `json:"id"`
	Name          string      `json:"name"`
	IsSponsor     bool        `json:"is_sponsor"`
	SponsorStatus string      `json:"sponsor_status"`
	SponsorTypes  StringArray `json:"sponsor_types"`
	Industry      string      `json:"industry,omitempty"`
	CompanySize   string      `json:"company_size,omitempty"`
	City          string      `json:"city,omitempty"`
}

// Job represents a job posting with its owning company joined in
type Job struct {
	ID                 uuid.UUID   `json:"id"`
	Title              string      `json:"title"`
	Description        string      `json:"description"`
	RequiredSkills     StringArray `json:"required_skills"`
	SalaryMin          *int        `json:"salary_min,omitempty"`
	SalaryMax          *int        `json:"salary_max,omitempty"`
	Location           string      `json:"location,omitempty"`
	IsRemote           bool        `json:"is_remote"`
	IsHybrid           bool        `json:"is_hybrid"`
	ExperienceRequired string      `json:"experience_required,omitempty"`
	Status             string      `json:"status"`
	Company            Company     `json:"company"`
	CreatedAt          time.Time   `json:"created_at"`
}

// JobFilters narrows the active-job query for candidate selection.
// Zero-valued fields are skipped; every populated filter ANDs into the
// WHERE clause. Results are always ordered newest first.
type JobFilters struct {
	SponsorOnly     bool        // active, licensed sponsor companies only
	ExcludeJobIDs   []uuid.UUID // jobs the user already applied to
	VisaTypes       []string    // company must sponsor at least one of these
	Industries      []string
	CompanySizes    []string
	AvoidCompanyIDs []uuid.UUID
	LocationTerms   []string // substring match against job location or company city
	Limit           int
}
