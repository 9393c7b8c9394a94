package types

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// UpdatePreferencesRequest carries a full preference update. The record
// is replaced wholesale; omitted list fields clear their stored values.
type UpdatePreferencesRequest struct {
	PreferredLocations    []string    `json:"preferred_locations" validate:"omitempty,dive,min=1"`
	OpenToRemote          bool        `json:"open_to_remote"`
	OpenToHybrid          bool        `json:"open_to_hybrid"`
	PreferredIndustries   []string    `json:"preferred_industries" validate:"omitempty,dive,min=1"`
	ExperienceLevel       string      `json:"experience_level" validate:"omitempty,oneof=entry mid senior lead executive"`
	MinSalary             *int        `json:"min_salary" validate:"omitempty,gte=0"`
	MaxSalary             *int        `json:"max_salary" validate:"omitempty,gte=0"`
	SalaryCurrency        string      `json:"salary_currency" validate:"omitempty,len=3"`
	KeySkills             []string    `json:"key_skills" validate:"omitempty,dive,min=1"`
	AvoidKeywords         []string    `json:"avoid_keywords" validate:"omitempty,dive,min=1"`
	PreferredCompanySizes []string    `json:"preferred_company_sizes" validate:"omitempty,dive,oneof=startup small medium large enterprise"`
	AvoidCompanies        []uuid.UUID `json:"avoid_companies"`
	RequiresSponsorship   bool        `json:"requires_sponsorship"`
	VisaTypesNeeded       []string    `json:"visa_types_needed" validate:"omitempty,dive,min=1"`
	NotificationFrequency string      `json:"notification_frequency" validate:"omitempty,oneof=daily weekly monthly disabled"`
	MaxRecommendations    int         `json:"max_recommendations" validate:"omitempty,min=1,max=50"`
}

// Validate validates the UpdatePreferencesRequest using the validator.
func (r *UpdatePreferencesRequest) Validate() error {
	validate := validator.New()
	if err := validate.Struct(r); err != nil {
		return err
	}
	return r.checkSalaryRange()
}

// checkSalaryRange rejects an inverted salary band
func (r *UpdatePreferencesRequest) checkSalaryRange() error {
	if r.MinSalary != nil && r.MaxSalary != nil && *r.MaxSalary < *r.MinSalary {
		return &SalaryRangeError{Min: *r.MinSalary, Max: *r.MaxSalary}
	}
	return nil
}

// SalaryRangeError indicates max_salary below min_salary.
type SalaryRangeError struct {
	Min int
	Max int
}

func (e *SalaryRangeError) Error() string {
	return fmt.Sprintf("max_salary (%d) must not be below min_salary (%d)", e.Max, e.Min)
}
