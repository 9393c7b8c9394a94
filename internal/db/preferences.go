package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const preferenceSelectColumns = `id, user_id, preferred_locations, open_to_remote, open_to_hybrid,
	        preferred_industries, experience_level, min_salary, max_salary, salary_currency,
	        key_skills, avoid_keywords, preferred_company_sizes, avoid_companies,
	        requires_sponsorship, visa_types_needed, notification_frequency, max_recommendations,
	        created_at, updated_at`

// GetOrCreatePreferences retrieves the user's preference record, creating
// it with defaults on first access
func (db *DB) GetOrCreatePreferences(ctx context.Context, userID uuid.UUID) (*UserPreference, error) {
	prefs, err := db.getPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}
	if prefs != nil {
		return prefs, nil
	}

	// ON CONFLICT DO NOTHING keeps a concurrent first access from failing
	_, err = db.pool.Exec(ctx,
		`INSERT INTO user_preferences (user_id)
		 VALUES ($1)
		 ON CONFLICT (user_id) DO NOTHING`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create preferences: %w", err)
	}

	prefs, err = db.getPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}
	if prefs == nil {
		return nil, fmt.Errorf("preferences missing after create for user %s", userID)
	}
	return prefs, nil
}

// UpdatePreferences replaces the user's preference record, creating it
// first if it does not exist yet
func (db *DB) UpdatePreferences(ctx context.Context, userID uuid.UUID, input *PreferenceUpdateInput) (*UserPreference, error) {
	if _, err := db.GetOrCreatePreferences(ctx, userID); err != nil {
		return nil, err
	}

	row := db.pool.QueryRow(ctx, fmt.Sprintf(
		`UPDATE user_preferences SET
		     preferred_locations = $2,
		     open_to_remote = $3,
		     open_to_hybrid = $4,
		     preferred_industries = $5,
		     experience_level = $6,
		     min_salary = $7,
		     max_salary = $8,
		     salary_currency = $9,
		     key_skills = $10,
		     avoid_keywords = $11,
		     preferred_company_sizes = $12,
		     avoid_companies = $13,
		     requires_sponsorship = $14,
		     visa_types_needed = $15,
		     notification_frequency = $16,
		     max_recommendations = $17,
		     updated_at = NOW()
		 WHERE user_id = $1
		 RETURNING %s`, preferenceSelectColumns),
		userID,
		StringArray(input.PreferredLocations), input.OpenToRemote, input.OpenToHybrid,
		StringArray(input.PreferredIndustries), input.ExperienceLevel,
		input.MinSalary, input.MaxSalary, input.SalaryCurrency,
		StringArray(input.KeySkills), StringArray(input.AvoidKeywords),
		StringArray(input.PreferredCompanySizes), input.AvoidCompanies,
		input.RequiresSponsorship, StringArray(input.VisaTypesNeeded),
		input.NotificationFrequency, input.MaxRecommendations,
	)

	prefs, err := scanPreferences(row)
	if err != nil {
		return nil, fmt.Errorf("failed to update preferences: %w", err)
	}
	return prefs, nil
}

// getPreferences retrieves the preference record, or nil if absent
func (db *DB) getPreferences(ctx context.Context, userID uuid.UUID) (*UserPreference, error) {
	row := db.pool.QueryRow(ctx, fmt.Sprintf(
		`SELECT %s FROM user_preferences WHERE user_id = $1`, preferenceSelectColumns),
		userID,
	)
	prefs, err := scanPreferences(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}
	return prefs, nil
}

// scanPreferences scans one preference row
func scanPreferences(row pgx.Row) (*UserPreference, error) {
	var p UserPreference
	err := row.Scan(
		&p.ID, &p.UserID, &p.PreferredLocations, &p.OpenToRemote, &p.OpenToHybrid,
		&p.PreferredIndustries, &p.ExperienceLevel, &p.MinSalary, &p.MaxSalary, &p.SalaryCurrency,
		&p.KeySkills, &p.AvoidKeywords, &p.PreferredCompanySizes, &p.AvoidCompanies,
		&p.RequiresSponsorship, &p.VisaTypesNeeded, &p.NotificationFrequency, &p.MaxRecommendations,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
