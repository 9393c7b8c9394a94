package types

import "github.com/go-playground/validator/v10"

// GenerateRequest asks for a new recommendation run.
// Limit zero means the engine default; Refresh bypasses the cache and
// re-scores everything.
type GenerateRequest struct {
	Limit   int  `json:"limit" validate:"omitempty,min=1,max=50"`
	Refresh bool `json:"refresh"`
}

// FeedbackRequest carries a user's verdict on one recommendation.
type FeedbackRequest struct {
	Feedback string `json:"feedback" validate:"required,oneof=helpful not_helpful not_interested already_applied"`
	Notes    string `json:"notes" validate:"omitempty,max=2000"`
}

// Validate validates the GenerateRequest using the validator.
func (r *GenerateRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the FeedbackRequest using the validator.
func (r *FeedbackRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
