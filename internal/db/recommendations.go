package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const recommendationSelectColumns = `r.id, r.user_id, r.job_id,
	        r.match_score, r.skill_match_score, r.location_match_score,
	        r.salary_match_score, r.company_match_score, r.experience_match_score,
	        r.match_reasons, r.viewed, r.viewed_at, r.clicked, r.clicked_at,
	        r.applied, r.applied_at, r.feedback, r.feedback_at, r.feedback_notes,
	        r.recommendation_algorithm, r.created_at`

// ListRecommendations retrieves a user's persisted recommendations with
// their jobs joined in, best score first, most recent breaking ties
func (db *DB) ListRecommendations(ctx context.Context, userID uuid.UUID, limit int) ([]Recommendation, error) {
	query := fmt.Sprintf(
		`SELECT %s, %s
		 FROM recommendations r
		 JOIN jobs j ON j.id = r.job_id
		 JOIN companies c ON c.id = j.company_id
		 WHERE r.user_id = $1
		 ORDER BY r.match_score DESC, r.created_at DESC`,
		recommendationSelectColumns, jobSelectColumns)

	args := []interface{}{userID}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list recommendations: %w", err)
	}
	defer rows.Close()

	var recs []Recommendation
	for rows.Next() {
		rec, err := scanRecommendationWithJob(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, *rec)
	}
	return recs, nil
}

// GetRecommendationByID retrieves one recommendation with its job joined in
func (db *DB) GetRecommendationByID(ctx context.Context, id uuid.UUID) (*Recommendation, error) {
	rows, err := db.pool.Query(ctx, fmt.Sprintf(
		`SELECT %s, %s
		 FROM recommendations r
		 JOIN jobs j ON j.id = r.job_id
		 JOIN companies c ON c.id = j.company_id
		 WHERE r.id = $1`,
		recommendationSelectColumns, jobSelectColumns),
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get recommendation: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, nil
	}
	return scanRecommendationWithJob(rows)
}

// CountRecentRecommendations counts a user's recommendations created at
// or after the given time
func (db *DB) CountRecentRecommendations(ctx context.Context, userID uuid.UUID, since time.Time) (int, error) {
	var count int
	err := db.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM recommendations WHERE user_id = $1 AND created_at >= $2`,
		userID, since,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count recent recommendations: %w", err)
	}
	return count, nil
}

// UpsertRecommendation stores one scored job for a user. The unique
// (user_id, job_id) constraint makes this safe under concurrent
// generation runs. With Overwrite set the record's scores and creation
// time are replaced; otherwise an existing record is returned untouched.
func (db *DB) UpsertRecommendation(ctx context.Context, input *RecommendationUpsertInput) (*Recommendation, error) {
	conflictAction := "DO NOTHING"
	if input.Overwrite {
		conflictAction = `DO UPDATE SET
		     match_score = EXCLUDED.match_score,
		     skill_match_score = EXCLUDED.skill_match_score,
		     location_match_score = EXCLUDED.location_match_score,
		     salary_match_score = EXCLUDED.salary_match_score,
		     company_match_score = EXCLUDED.company_match_score,
		     experience_match_score = EXCLUDED.experience_match_score,
		     match_reasons = EXCLUDED.match_reasons,
		     recommendation_algorithm = EXCLUDED.recommendation_algorithm,
		     created_at = NOW()`
	}

	query := fmt.Sprintf(
		`INSERT INTO recommendations (user_id, job_id, match_score, skill_match_score,
		                              location_match_score, salary_match_score, company_match_score,
		                              experience_match_score, match_reasons, recommendation_algorithm)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (user_id, job_id) %s
		 RETURNING %s`,
		conflictAction, recommendationBareColumns())

	rec, err := scanRecommendation(db.pool.QueryRow(ctx, query,
		input.UserID, input.JobID, input.MatchScore, input.SkillMatchScore,
		input.LocationMatchScore, input.SalaryMatchScore, input.CompanyMatchScore,
		input.ExperienceMatchScore, StringArray(input.MatchReasons), input.Algorithm,
	))
	if err == nil {
		return rec, nil
	}
	if err != pgx.ErrNoRows {
		return nil, fmt.Errorf("failed to upsert recommendation: %w", err)
	}

	// DO NOTHING on conflict returns no row; fetch the surviving record
	rec, err = scanRecommendation(db.pool.QueryRow(ctx, fmt.Sprintf(
		`SELECT %s FROM recommendations r WHERE r.user_id = $1 AND r.job_id = $2`,
		recommendationSelectColumns),
		input.UserID, input.JobID,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch existing recommendation: %w", err)
	}
	return rec, nil
}

// DeleteRecommendation removes the record for one (user, job) pair
func (db *DB) DeleteRecommendation(ctx context.Context, userID, jobID uuid.UUID) error {
	_, err := db.pool.Exec(ctx,
		`DELETE FROM recommendations WHERE user_id = $1 AND job_id = $2`,
		userID, jobID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete recommendation: %w", err)
	}
	return nil
}

// DeleteRecommendationsOlderThan removes a user's recommendations created
// strictly before the cutoff and returns how many were removed
func (db *DB) DeleteRecommendationsOlderThan(ctx context.Context, userID uuid.UUID, cutoff time.Time) (int64, error) {
	result, err := db.pool.Exec(ctx,
		`DELETE FROM recommendations WHERE user_id = $1 AND created_at < $2`,
		userID, cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old recommendations: %w", err)
	}
	return result.RowsAffected(), nil
}

// MarkRecommendationViewed flips the viewed flag, stamping the timestamp
// only on the first transition. Safe to call repeatedly.
func (db *DB) MarkRecommendationViewed(ctx context.Context, id uuid.UUID) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE recommendations SET viewed = TRUE, viewed_at = NOW()
		 WHERE id = $1 AND viewed = FALSE`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark recommendation viewed: %w", err)
	}
	return nil
}

// MarkRecommendationClicked flips the clicked flag, stamping the
// timestamp only on the first transition. Safe to call repeatedly.
func (db *DB) MarkRecommendationClicked(ctx context.Context, id uuid.UUID) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE recommendations SET clicked = TRUE, clicked_at = NOW()
		 WHERE id = $1 AND clicked = FALSE`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark recommendation clicked: %w", err)
	}
	return nil
}

// SaveRecommendationFeedback stores a feedback tag and notes. Feedback
// may be resubmitted; later submissions overwrite earlier ones.
func (db *DB) SaveRecommendationFeedback(ctx context.Context, id uuid.UUID, tag, notes string) error {
	result, err := db.pool.Exec(ctx,
		`UPDATE recommendations SET feedback = $2, feedback_at = NOW(), feedback_notes = $3
		 WHERE id = $1`,
		id, tag, notes,
	)
	if err != nil {
		return fmt.Errorf("failed to save feedback: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("recommendation not found: %s", id)
	}
	return nil
}

// GetRecommendationStats aggregates a user's recommendation history
func (db *DB) GetRecommendationStats(ctx context.Context, userID uuid.UUID) (*RecommendationStats, error) {
	var stats RecommendationStats
	err := db.pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE viewed),
		        COUNT(*) FILTER (WHERE clicked),
		        COUNT(*) FILTER (WHERE applied),
		        COUNT(*) FILTER (WHERE feedback IS NOT NULL),
		        COALESCE(AVG(match_score), 0)
		 FROM recommendations WHERE user_id = $1`,
		userID,
	).Scan(&stats.Total, &stats.ViewedCount, &stats.ClickedCount,
		&stats.AppliedCount, &stats.FeedbackCount, &stats.AverageScore)
	if err != nil {
		return nil, fmt.Errorf("failed to get recommendation stats: %w", err)
	}

	batch, err := db.GetLatestBatch(ctx, userID)
	if err != nil {
		return nil, err
	}
	if batch != nil {
		stats.LastGenerated = &batch.CreatedAt
		stats.GenerationTimeMs = batch.GenerationTimeMs
	}
	return &stats, nil
}

// ListUserIDsWithRecommendations returns every user holding at least one
// recommendation record. Used by the scheduled purge sweep.
func (db *DB) ListUserIDsWithRecommendations(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := db.pool.Query(ctx, `SELECT DISTINCT user_id FROM recommendations`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users with recommendations: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// CreateBatch writes the append-only audit record for one generation run
func (db *DB) CreateBatch(ctx context.Context, input *BatchCreateInput) (*RecommendationBatch, error) {
	snapshotJSON, err := json.Marshal(input.PreferencesSnapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal preferences snapshot: %w", err)
	}

	batch := RecommendationBatch{
		UserID:               input.UserID,
		AlgorithmVersion:     input.AlgorithmVersion,
		TotalRecommendations: input.TotalRecommendations,
		AverageScore:         input.AverageScore,
		GenerationTimeMs:     input.GenerationTimeMs,
		PreferencesSnapshot:  input.PreferencesSnapshot,
	}
	err = db.pool.QueryRow(ctx,
		`INSERT INTO recommendation_batches (user_id, algorithm_version, total_recommendations,
		                                     average_score, generation_time_ms, preferences_snapshot)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		input.UserID, input.AlgorithmVersion, input.TotalRecommendations,
		input.AverageScore, input.GenerationTimeMs, snapshotJSON,
	).Scan(&batch.ID, &batch.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create batch: %w", err)
	}
	return &batch, nil
}

// GetLatestBatch retrieves the most recent batch for a user, or nil
func (db *DB) GetLatestBatch(ctx context.Context, userID uuid.UUID) (*RecommendationBatch, error) {
	var b RecommendationBatch
	var snapshotJSON []byte
	err := db.pool.QueryRow(ctx,
		`SELECT id, user_id, algorithm_version, total_recommendations, average_score,
		        generation_time_ms, preferences_snapshot, created_at
		 FROM recommendation_batches
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT 1`,
		userID,
	).Scan(&b.ID, &b.UserID, &b.AlgorithmVersion, &b.TotalRecommendations,
		&b.AverageScore, &b.GenerationTimeMs, &snapshotJSON, &b.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest batch: %w", err)
	}
	if snapshotJSON != nil {
		_ = json.Unmarshal(snapshotJSON, &b.PreferencesSnapshot)
	}
	return &b, nil
}

// recommendationBareColumns lists the recommendation columns without the
// "r." prefix for use in RETURNING clauses
func recommendationBareColumns() string {
	return `id, user_id, job_id, match_score, skill_match_score, location_match_score,
	        salary_match_score, company_match_score, experience_match_score,
	        match_reasons, viewed, viewed_at, clicked, clicked_at,
	        applied, applied_at, feedback, feedback_at, feedback_notes,
	        recommendation_algorithm, created_at`
}

// scanRecommendation scans a bare recommendation row
func scanRecommendation(row pgx.Row) (*Recommendation, error) {
	var r Recommendation
	var feedbackNotes *string
	err := row.Scan(
		&r.ID, &r.UserID, &r.JobID,
		&r.MatchScore, &r.SkillMatchScore, &r.LocationMatchScore,
		&r.SalaryMatchScore, &r.CompanyMatchScore, &r.ExperienceMatchScore,
		&r.MatchReasons, &r.Viewed, &r.ViewedAt, &r.Clicked, &r.ClickedAt,
		&r.Applied, &r.AppliedAt, &r.Feedback, &r.FeedbackAt, &feedbackNotes,
		&r.Algorithm, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if feedbackNotes != nil {
		r.FeedbackNotes = *feedbackNotes
	}
	return &r, nil
}

// scanRecommendationWithJob scans a recommendation row with its job and
// company columns appended
func scanRecommendationWithJob(rows pgx.Rows) (*Recommendation, error) {
	var r Recommendation
	var j Job
	var feedbackNotes *string
	var description, location, experienceRequired *string
	var industry, companySize, city *string

	err := rows.Scan(
		&r.ID, &r.UserID, &r.JobID,
		&r.MatchScore, &r.SkillMatchScore, &r.LocationMatchScore,
		&r.SalaryMatchScore, &r.CompanyMatchScore, &r.ExperienceMatchScore,
		&r.MatchReasons, &r.Viewed, &r.ViewedAt, &r.Clicked, &r.ClickedAt,
		&r.Applied, &r.AppliedAt, &r.Feedback, &r.FeedbackAt, &feedbackNotes,
		&r.Algorithm, &r.CreatedAt,
		&j.ID, &j.Title, &description, &j.RequiredSkills, &j.SalaryMin, &j.SalaryMax,
		&location, &j.IsRemote, &j.IsHybrid, &experienceRequired, &j.Status, &j.CreatedAt,
		&j.Company.ID, &j.Company.Name, &j.Company.IsSponsor, &j.Company.SponsorStatus,
		&j.Company.SponsorTypes, &industry, &companySize, &city,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan recommendation: %w", err)
	}

	if feedbackNotes != nil {
		r.FeedbackNotes = *feedbackNotes
	}
	if description != nil {
		j.Description = *description
	}
	if location != nil {
		j.Location = *location
	}
	if experienceRequired != nil {
		j.ExperienceRequired = *experienceRequired
	}
	if industry != nil {
		j.Company.Industry = *industry
	}
	if companySize != nil {
		j.Company.CompanySize = *companySize
	}
	if city != nil {
		j.Company.City = *city
	}
	r.Job = &j
	return &r, nil
}
