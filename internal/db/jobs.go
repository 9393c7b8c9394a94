package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const jobSelectColumns = `j.id, j.title, j.description, j.required_skills, j.salary_min, j.salary_max,
	        j.location, j.is_remote, j.is_hybrid, j.experience_required, j.status, j.created_at,
	        c.id, c.name, c.is_sponsor, c.sponsor_status, c.sponsor_types, c.industry, c.company_size, c.city`

// GetActiveJobs retrieves active job postings matching the given filters,
// newest first, with the owning company joined in
func (db *DB) GetActiveJobs(ctx context.Context, filters JobFilters) ([]Job, error) {
	conditions := []string{"j.status = 'active'"}
	var args []interface{}
	argNum := 1

	addArg := func(v interface{}) int {
		args = append(args, v)
		n := argNum
		argNum++
		return n
	}

	if filters.SponsorOnly {
		conditions = append(conditions, "c.is_sponsor = TRUE", "c.sponsor_status = 'active'")
	}
	if len(filters.ExcludeJobIDs) > 0 {
		n := addArg(filters.ExcludeJobIDs)
		conditions = append(conditions, fmt.Sprintf("NOT (j.id = ANY($%d))", n))
	}
	if len(filters.VisaTypes) > 0 {
		// JSONB "exists any" keeps only companies sponsoring at least one needed type
		n := addArg(filters.VisaTypes)
		conditions = append(conditions, fmt.Sprintf("c.sponsor_types ?| $%d", n))
	}
	if len(filters.Industries) > 0 {
		n := addArg(filters.Industries)
		conditions = append(conditions, fmt.Sprintf("c.industry = ANY($%d)", n))
	}
	if len(filters.CompanySizes) > 0 {
		n := addArg(filters.CompanySizes)
		conditions = append(conditions, fmt.Sprintf("c.company_size = ANY($%d)", n))
	}
	if len(filters.AvoidCompanyIDs) > 0 {
		n := addArg(filters.AvoidCompanyIDs)
		conditions = append(conditions, fmt.Sprintf("NOT (c.id = ANY($%d))", n))
	}
	if len(filters.LocationTerms) > 0 {
		var terms []string
		for _, term := range filters.LocationTerms {
			n := addArg(term)
			// Substring match in either direction against job location or company city
			terms = append(terms, fmt.Sprintf(
				`(j.location <> '' AND (j.location ILIKE '%%' || $%d || '%%' OR $%d ILIKE '%%' || j.location || '%%'))
				 OR (c.city <> '' AND (c.city ILIKE '%%' || $%d || '%%' OR $%d ILIKE '%%' || c.city || '%%'))`,
				n, n, n, n))
		}
		conditions = append(conditions, "("+strings.Join(terms, " OR ")+")")
	}

	query := fmt.Sprintf(
		`SELECT %s
		 FROM jobs j
		 JOIN companies c ON c.id = j.company_id
		 WHERE %s
		 ORDER BY j.created_at DESC`,
		jobSelectColumns, strings.Join(conditions, " AND "))

	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", addArg(filters.Limit))
	}

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list active jobs: %w", err)
	}
	defer rows.Close()

	var jobs []Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	return jobs, nil
}

// GetJobByID retrieves a single job with its company joined in
func (db *DB) GetJobByID(ctx context.Context, id uuid.UUID) (*Job, error) {
	rows, err := db.pool.Query(ctx, fmt.Sprintf(
		`SELECT %s
		 FROM jobs j
		 JOIN companies c ON c.id = j.company_id
		 WHERE j.id = $1`, jobSelectColumns),
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, nil
	}
	return scanJob(rows)
}

// GetAppliedJobIDs returns the IDs of jobs the user has already applied to
func (db *DB) GetAppliedJobIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT job_id FROM applications WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get applied job ids: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan applied job id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// scanJob scans one joined job/company row
func scanJob(rows pgx.Rows) (*Job, error) {
	var j Job
	var description, location, experienceRequired *string
	var industry, companySize, city *string

	err := rows.Scan(
		&j.ID, &j.Title, &description, &j.RequiredSkills, &j.SalaryMin, &j.SalaryMax,
		&location, &j.IsRemote, &j.IsHybrid, &experienceRequired, &j.Status, &j.CreatedAt,
		&j.Company.ID, &j.Company.Name, &j.Company.IsSponsor, &j.Company.SponsorStatus,
		&j.Company.SponsorTypes, &industry, &companySize, &city,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan job: %w", err)
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
	return &j, nil
}
