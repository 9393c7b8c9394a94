package recommend

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrInvalidFeedback indicates a feedback tag outside the closed set
var ErrInvalidFeedback = errors.New("invalid feedback tag")

// ErrRecommendationNotFound indicates the recommendation does not exist
var ErrRecommendationNotFound = errors.New("recommendation not found")

// GenerationError wraps an unexpected failure during a generation run.
// Distinct from an empty result, which is not an error.
type GenerationError struct {
	UserID uuid.UUID
	Err    error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("recommendation generation failed for user %s: %v", e.UserID, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}
