package recommend

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/sponsorboard/internal/db"
)

func intPtr(v int) *int { return &v }

func sponsorJob() db.Job {
	return db.Job{
		ID:             uuid.New(),
		Title:          "Backend Engineer",
		Description:    "Build APIs in Go and Postgres",
		RequiredSkills: db.StringArray{"Go", "PostgreSQL", "Docker"},
		SalaryMin:      intPtr(60000),
		SalaryMax:      intPtr(80000),
		Location:       "London",
		ExperienceRequired: db.ExperienceMid,
		Status:             db.JobStatusActive,
		Company: db.Company{
			ID:            uuid.New(),
			Name:          "Acme Ltd",
			IsSponsor:     true,
			SponsorStatus: db.SponsorStatusActive,
			SponsorTypes:  db.StringArray{db.VisaTypeSkilledWorker},
			Industry:      "Technology",
			CompanySize:   db.CompanySizeMedium,
			City:          "London",
		},
	}
}

func basePrefs() db.UserPreference {
	return db.UserPreference{
		ID:                  uuid.New(),
		UserID:              uuid.New(),
		PreferredLocations:  db.StringArray{"London"},
		ExperienceLevel:     db.ExperienceMid,
		MinSalary:           intPtr(55000),
		MaxSalary:           intPtr(75000),
		KeySkills:           db.StringArray{"Go", "PostgreSQL"},
		RequiresSponsorship: true,
		VisaTypesNeeded:     db.StringArray{db.VisaTypeSkilledWorker},
	}
}

func TestScoreStrongMatch(t *testing.T) {
	scorer := NewScorer(DefaultWeights())
	job := sponsorJob()
	prefs := basePrefs()

	result := scorer.Score(&job, &prefs)

	assert.Greater(t, result.Overall, 0.7)
	assert.LessOrEqual(t, result.Overall, 1.0)
	assert.Equal(t, 1.0, result.Sponsorship)
	assert.Equal(t, 1.0, result.Experience)
	assert.Equal(t, 0.8, result.Location)
	assert.NotEmpty(t, result.Reasons)
}

func TestScoreSubScoresInRange(t *testing.T) {
	scorer := NewScorer(DefaultWeights())
	job := sponsorJob()
	prefs := basePrefs()

	result := scorer.Score(&job, &prefs)

	for name, score := range map[string]float64{
		"skill":       result.Skill,
		"location":    result.Location,
		"salary":      result.Salary,
		"company":     result.Company,
		"experience":  result.Experience,
		"sponsorship": result.Sponsorship,
		"overall":     result.Overall,
	} {
		assert.GreaterOrEqual(t, score, 0.0, name)
		assert.LessOrEqual(t, score, 1.0, name)
	}
}

func TestScoreOverallIsWeightedSum(t *testing.T) {
	scorer := NewScorer(DefaultWeights())

	remoteJob := sponsorJob()
	remoteJob.IsRemote = true

	nonSponsorJob := sponsorJob()
	nonSponsorJob.Company.IsSponsor = false

	sparseJob := sponsorJob()
	sparseJob.RequiredSkills = nil
	sparseJob.SalaryMin = nil
	sparseJob.SalaryMax = nil
	sparseJob.ExperienceRequired = ""

	mismatchPrefs := basePrefs()
	mismatchPrefs.KeySkills = db.StringArray{"Rust", "Haskell"}
	mismatchPrefs.PreferredLocations = db.StringArray{"Aberdeen"}
	mismatchPrefs.ExperienceLevel = db.ExperienceExecutive
	mismatchPrefs.MinSalary = intPtr(120000)
	mismatchPrefs.MaxSalary = intPtr(150000)

	tests := []struct {
		name  string
		job   db.Job
		prefs db.UserPreference
	}{
		{name: "strong match", job: sponsorJob(), prefs: basePrefs()},
		{name: "remote job", job: remoteJob, prefs: basePrefs()},
		{name: "non-sponsor company", job: nonSponsorJob, prefs: basePrefs()},
		{name: "sparse job data", job: sparseJob, prefs: basePrefs()},
		{name: "mismatched preferences", job: sponsorJob(), prefs: mismatchPrefs},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := scorer.Score(&tt.job, &tt.prefs)

			want := result.Skill*0.25 +
				result.Location*0.20 +
				result.Salary*0.15 +
				result.Company*0.15 +
				result.Experience*0.15 +
				result.Sponsorship*0.10
			assert.InDelta(t, want, result.Overall, 1e-9)
		})
	}
}

func TestSkillScore(t *testing.T) {
	t.Run("neutral when user has no skills", func(t *testing.T) {
		job := sponsorJob()
		prefs := basePrefs()
		prefs.KeySkills = nil

		score, reasons := skillScore(&job, &prefs)
		assert.Equal(t, 0.5, score)
		assert.Empty(t, reasons)
	})

	t.Run("neutral when job lists no skills", func(t *testing.T) {
		job := sponsorJob()
		job.RequiredSkills = nil
		prefs := basePrefs()

		score, _ := skillScore(&job, &prefs)
		assert.Equal(t, 0.5, score)
	})

	t.Run("avoided keyword is a hard zero", func(t *testing.T) {
		job := sponsorJob()
		job.Description = "Maintain a legacy PHP monolith"
		prefs := basePrefs()
		prefs.AvoidKeywords = db.StringArray{"PHP"}

		score, reasons := skillScore(&job, &prefs)
		assert.Equal(t, 0.0, score)
		require.Len(t, reasons, 1)
		assert.Contains(t, reasons[0], "avoided keyword")
	})

	t.Run("exact overlap scales with job skill coverage", func(t *testing.T) {
		job := sponsorJob() // 3 required skills
		prefs := basePrefs()
		prefs.KeySkills = db.StringArray{"go", "postgresql"}

		score, reasons := skillScore(&job, &prefs)
		// 2 of 3 skills matched, boosted 1.2x
		assert.InDelta(t, 2.0/3.0*1.2, score, 1e-9)
		require.Len(t, reasons, 1)
		assert.Contains(t, reasons[0], "Matches 2 key skills")
	})

	t.Run("full overlap is capped at one", func(t *testing.T) {
		job := sponsorJob()
		job.RequiredSkills = db.StringArray{"Go"}
		prefs := basePrefs()
		prefs.KeySkills = db.StringArray{"Go"}

		score, _ := skillScore(&job, &prefs)
		assert.Equal(t, 1.0, score)
	})

	t.Run("substring overlap scores partial credit", func(t *testing.T) {
		job := sponsorJob()
		job.RequiredSkills = db.StringArray{"Golang", "Kubernetes"}
		prefs := basePrefs()
		prefs.KeySkills = db.StringArray{"go"}

		score, reasons := skillScore(&job, &prefs)
		// one of two job skills has a substring match, weighted 0.7
		assert.InDelta(t, 0.5*0.7, score, 1e-9)
		require.Len(t, reasons, 1)
		assert.Contains(t, reasons[0], "Partial skill match")
	})

	t.Run("no overlap at all", func(t *testing.T) {
		job := sponsorJob()
		job.Title = "Accountant"
		job.Description = "Quarterly reporting"
		job.RequiredSkills = db.StringArray{"Excel"}
		prefs := basePrefs()

		score, reasons := skillScore(&job, &prefs)
		assert.Equal(t, 0.3, score)
		assert.Empty(t, reasons)
	})
}

func TestLocationScore(t *testing.T) {
	tests := []struct {
		name      string
		setupJob  func(*db.Job)
		setupPref func(*db.UserPreference)
		want      float64
	}{
		{
			name:      "remote job for remote-open user",
			setupJob:  func(j *db.Job) { j.IsRemote = true },
			setupPref: func(p *db.UserPreference) { p.OpenToRemote = true },
			want:      1.0,
		},
		{
			name:      "hybrid job for hybrid-open user",
			setupJob:  func(j *db.Job) { j.IsHybrid = true },
			setupPref: func(p *db.UserPreference) { p.OpenToHybrid = true },
			want:      0.9,
		},
		{
			name:      "remote job for user not open to remote falls through",
			setupJob:  func(j *db.Job) { j.IsRemote = true; j.Location = "Leeds"; j.Company.City = "Leeds" },
			setupPref: func(p *db.UserPreference) {},
			want:      0.2,
		},
		{
			name:      "job location matches preference",
			setupJob:  func(j *db.Job) { j.Location = "Central London" },
			setupPref: func(p *db.UserPreference) {},
			want:      0.8,
		},
		{
			name:      "company city matches when job location does not",
			setupJob:  func(j *db.Job) { j.Location = "Hybrid - see description"; j.Company.City = "Greater London" },
			setupPref: func(p *db.UserPreference) {},
			want:      0.8,
		},
		{
			name:      "no match anywhere",
			setupJob:  func(j *db.Job) { j.Location = "Manchester"; j.Company.City = "Manchester" },
			setupPref: func(p *db.UserPreference) {},
			want:      0.2,
		},
		{
			name:      "no location preferences is neutral",
			setupJob:  func(j *db.Job) {},
			setupPref: func(p *db.UserPreference) { p.PreferredLocations = nil },
			want:      0.6,
		},
		{
			name:      "blank preference entries never match blank locations",
			setupJob:  func(j *db.Job) { j.Location = ""; j.Company.City = "" },
			setupPref: func(p *db.UserPreference) { p.PreferredLocations = db.StringArray{""} },
			want:      0.2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := sponsorJob()
			prefs := basePrefs()
			tt.setupJob(&job)
			tt.setupPref(&prefs)

			score, _ := locationScore(&job, &prefs)
			assert.Equal(t, tt.want, score)
		})
	}
}

func TestSalaryScore(t *testing.T) {
	t.Run("neutral when job has no salary", func(t *testing.T) {
		job := sponsorJob()
		job.SalaryMin = nil
		prefs := basePrefs()

		score, _ := salaryScore(&job, &prefs)
		assert.Equal(t, 0.5, score)
	})

	t.Run("neutral when user has no expectation", func(t *testing.T) {
		job := sponsorJob()
		prefs := basePrefs()
		prefs.MinSalary = nil

		score, _ := salaryScore(&job, &prefs)
		assert.Equal(t, 0.5, score)
	})

	t.Run("job minimum meets user minimum", func(t *testing.T) {
		job := sponsorJob() // 60-80k
		prefs := basePrefs() // wants 55-75k

		score, reasons := salaryScore(&job, &prefs)
		assert.GreaterOrEqual(t, score, 0.8)
		assert.LessOrEqual(t, score, 1.0)
		require.Len(t, reasons, 1)
		assert.Contains(t, reasons[0], "£60000+")
	})

	t.Run("ranges overlap but job starts lower", func(t *testing.T) {
		job := sponsorJob()
		job.SalaryMin = intPtr(50000)
		job.SalaryMax = intPtr(65000)
		prefs := basePrefs() // wants 55-75k

		score, reasons := salaryScore(&job, &prefs)
		assert.GreaterOrEqual(t, score, 0.6)
		assert.Less(t, score, 0.8)
		require.Len(t, reasons, 1)
		assert.Contains(t, reasons[0], "partially")
	})

	t.Run("close but below expectations", func(t *testing.T) {
		job := sponsorJob()
		job.SalaryMin = intPtr(40000)
		job.SalaryMax = intPtr(46000)
		prefs := basePrefs() // min 55k; 46k >= 44k threshold

		score, _ := salaryScore(&job, &prefs)
		assert.Equal(t, 0.4, score)
	})

	t.Run("far below expectations", func(t *testing.T) {
		job := sponsorJob()
		job.SalaryMin = intPtr(25000)
		job.SalaryMax = intPtr(30000)
		prefs := basePrefs()

		score, _ := salaryScore(&job, &prefs)
		assert.Equal(t, 0.1, score)
	})

	t.Run("missing job max is padded from job min", func(t *testing.T) {
		job := sponsorJob()
		job.SalaryMin = intPtr(60000)
		job.SalaryMax = nil // padded to 72k
		prefs := basePrefs()

		score, _ := salaryScore(&job, &prefs)
		assert.GreaterOrEqual(t, score, 0.8)
	})
}

func TestCompanyScore(t *testing.T) {
	t.Run("base score with no preferences set", func(t *testing.T) {
		job := sponsorJob()
		prefs := basePrefs()

		score, reasons := companyScore(&job, &prefs)
		assert.Equal(t, 0.5, score)
		assert.Empty(t, reasons)
	})

	t.Run("size and industry bonuses accumulate", func(t *testing.T) {
		job := sponsorJob()
		prefs := basePrefs()
		prefs.PreferredCompanySizes = db.StringArray{db.CompanySizeMedium}
		prefs.PreferredIndustries = db.StringArray{"Technology"}

		score, reasons := companyScore(&job, &prefs)
		assert.Equal(t, 1.0, score)
		assert.Len(t, reasons, 2)
	})

	t.Run("avoided company is zero regardless of bonuses", func(t *testing.T) {
		job := sponsorJob()
		prefs := basePrefs()
		prefs.PreferredIndustries = db.StringArray{"Technology"}
		prefs.AvoidCompanies = []uuid.UUID{job.Company.ID}

		score, _ := companyScore(&job, &prefs)
		assert.Equal(t, 0.0, score)
	})
}

func TestExperienceScore(t *testing.T) {
	tests := []struct {
		name      string
		jobLevel  string
		userLevel string
		want      float64
	}{
		{"exact match", db.ExperienceSenior, db.ExperienceSenior, 1.0},
		{"one level apart", db.ExperienceSenior, db.ExperienceMid, 0.8},
		{"two levels apart", db.ExperienceLead, db.ExperienceMid, 0.5},
		{"far apart", db.ExperienceExecutive, db.ExperienceEntry, 0.2},
		{"unknown user level defaults to mid", db.ExperienceMid, "wizard", 1.0},
		{"job with no stated level", "", db.ExperienceSenior, 0.6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := sponsorJob()
			job.ExperienceRequired = tt.jobLevel
			prefs := basePrefs()
			prefs.ExperienceLevel = tt.userLevel

			score, _ := experienceScore(&job, &prefs)
			assert.Equal(t, tt.want, score)
		})
	}
}

func TestSponsorshipScore(t *testing.T) {
	t.Run("full marks when sponsorship not needed", func(t *testing.T) {
		job := sponsorJob()
		job.Company.IsSponsor = false
		prefs := basePrefs()
		prefs.RequiresSponsorship = false

		score, _ := sponsorshipScore(&job, &prefs)
		assert.Equal(t, 1.0, score)
	})

	t.Run("non-sponsor is zero", func(t *testing.T) {
		job := sponsorJob()
		job.Company.IsSponsor = false
		prefs := basePrefs()

		score, _ := sponsorshipScore(&job, &prefs)
		assert.Equal(t, 0.0, score)
	})

	t.Run("suspended sponsor licence is zero", func(t *testing.T) {
		job := sponsorJob()
		job.Company.SponsorStatus = db.SponsorStatusSuspended
		prefs := basePrefs()

		score, _ := sponsorshipScore(&job, &prefs)
		assert.Equal(t, 0.0, score)
	})

	t.Run("visa type covered by licence", func(t *testing.T) {
		job := sponsorJob()
		prefs := basePrefs()

		score, reasons := sponsorshipScore(&job, &prefs)
		assert.Equal(t, 1.0, score)
		require.Len(t, reasons, 1)
		assert.Contains(t, reasons[0], "skilled_worker")
	})

	t.Run("sponsor without the needed visa type", func(t *testing.T) {
		job := sponsorJob()
		job.Company.SponsorTypes = db.StringArray{"global_talent"}
		prefs := basePrefs()

		score, _ := sponsorshipScore(&job, &prefs)
		assert.Equal(t, 0.3, score)
	})

	t.Run("sponsor with no types listed", func(t *testing.T) {
		job := sponsorJob()
		prefs := basePrefs()
		prefs.VisaTypesNeeded = nil

		score, reasons := sponsorshipScore(&job, &prefs)
		assert.Equal(t, 0.9, score)
		assert.NotEmpty(t, reasons)
	})
}

func TestScoreReasonOrdering(t *testing.T) {
	scorer := NewScorer(DefaultWeights())
	job := sponsorJob()
	prefs := basePrefs()
	prefs.PreferredIndustries = db.StringArray{"Technology"}

	result := scorer.Score(&job, &prefs)

	// Reasons accumulate in factor order: skills before location before
	// salary before company before sponsorship.
	require.GreaterOrEqual(t, len(result.Reasons), 4)
	assert.Contains(t, result.Reasons[0], "key skills")
	assert.Contains(t, result.Reasons[1], "Location")
}

func TestWeightsValidate(t *testing.T) {
	assert.NoError(t, DefaultWeights().Validate())
	assert.InDelta(t, 1.0, DefaultWeights().Sum(), 1e-9)

	bad := DefaultWeights()
	bad.Skills = 0.5
	assert.Error(t, bad.Validate())

	negative := DefaultWeights()
	negative.Salary = -0.15
	assert.Error(t, negative.Validate())
}
