package db

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// User represents a job seeker account
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	PasswordHash string    `json:"-" db:"password_hash"` // Never serialize to JSON
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserCreateInput is used when registering a new user
type UserCreateInput struct {
	Email        string
	FullName     string
	PasswordHash string
}

// StringArray handles JSONB string arrays
type StringArray []string

// Scan implements the Scanner interface for StringArray
func (a *StringArray) Scan(src interface{}) error {
	if src == nil {
		*a = []string{}
		return nil
	}
	var source []byte
	switch v := src.(type) {
	case []byte:
		source = v
	case string:
		source = []byte(v)
	default:
		return errors.New("failed to scan StringArray: unsupported source type")
	}
	if len(source) == 0 {
		*a = []string{}
		return nil
	}
	return json.Unmarshal(source, a)
}

// Value marshals the array for storage in a JSONB column
func (a StringArray) Value() (interface{}, error) {
	if a == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(a)
}
