package recommend

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jonathan/sponsorboard/internal/db"
)

// Scorer computes match scores for (job, preferences) pairs
type Scorer struct {
	weights Weights
}

// NewScorer creates a Scorer with the given weight configuration
func NewScorer(weights Weights) *Scorer {
	return &Scorer{weights: weights}
}

// ScoreResult holds the six sub-scores, the weighted overall score, and
// the ordered human-readable match reasons accumulated while scoring
type ScoreResult struct {
	Overall     float64
	Skill       float64
	Location    float64
	Salary      float64
	Company     float64
	Experience  float64
	Sponsorship float64
	Reasons     []string
}

// Score computes all sub-scores for a job against the user's preferences
// and combines them with the configured weights. Every sub-score and the
// overall score is in [0, 1].
func (s *Scorer) Score(job *db.Job, prefs *db.UserPreference) ScoreResult {
	var result ScoreResult
	var reasons []string

	result.Skill, reasons = skillScore(job, prefs)
	result.Reasons = append(result.Reasons, reasons...)

	result.Location, reasons = locationScore(job, prefs)
	result.Reasons = append(result.Reasons, reasons...)

	result.Salary, reasons = salaryScore(job, prefs)
	result.Reasons = append(result.Reasons, reasons...)

	result.Company, reasons = companyScore(job, prefs)
	result.Reasons = append(result.Reasons, reasons...)

	result.Experience, reasons = experienceScore(job, prefs)
	result.Reasons = append(result.Reasons, reasons...)

	result.Sponsorship, reasons = sponsorshipScore(job, prefs)
	result.Reasons = append(result.Reasons, reasons...)

	result.Overall = clamp01(
		result.Skill*s.weights.Skills +
			result.Location*s.weights.Location +
			result.Salary*s.weights.Salary +
			result.Company*s.weights.Company +
			result.Experience*s.weights.Experience +
			result.Sponsorship*s.weights.Sponsorship)

	return result
}

// skillScore scores the overlap between the user's key skills and the
// job's required skills. Avoid-keywords are a hard exclusion signal.
func skillScore(job *db.Job, prefs *db.UserPreference) (float64, []string) {
	if len(prefs.KeySkills) == 0 || len(job.RequiredSkills) == 0 {
		return 0.5, nil // neutral when either side has no skill data
	}

	jobText := strings.ToLower(job.Title + " " + job.Description + " " + strings.Join(job.RequiredSkills, " "))
	for _, avoid := range prefs.AvoidKeywords {
		if avoid != "" && strings.Contains(jobText, strings.ToLower(avoid)) {
			return 0.0, []string{fmt.Sprintf("Job contains avoided keyword: %s", avoid)}
		}
	}

	userSkills := normalizeSkillSet(prefs.KeySkills)
	jobSkills := normalizeSkillSet(job.RequiredSkills)

	var matched []string
	for skill := range userSkills {
		if jobSkills[skill] {
			matched = append(matched, skill)
		}
	}
	if len(matched) > 0 {
		sort.Strings(matched)
		listed := matched
		if len(listed) > 3 {
			listed = listed[:3]
		}
		reason := fmt.Sprintf("Matches %d key skills: %s", len(matched), strings.Join(listed, ", "))
		ratio := float64(len(matched)) / float64(len(jobSkills))
		return min(1.0, ratio*1.2), []string{reason}
	}

	// Substring-based partial matching between every skill pair
	partialMatches := 0
	for jobSkill := range jobSkills {
		for userSkill := range userSkills {
			if strings.Contains(jobSkill, userSkill) || strings.Contains(userSkill, jobSkill) {
				partialMatches++
				break
			}
		}
	}
	if partialMatches > 0 {
		reason := fmt.Sprintf("Partial skill match (%d related skills)", partialMatches)
		return float64(partialMatches) / float64(len(jobSkills)) * 0.7, []string{reason}
	}

	return 0.3, nil
}

// locationScore scores the job's location against the user's remote,
// hybrid, and location preferences
func locationScore(job *db.Job, prefs *db.UserPreference) (float64, []string) {
	if job.IsRemote && prefs.OpenToRemote {
		return 1.0, []string{"Remote work available"}
	}
	if job.IsHybrid && prefs.OpenToHybrid {
		return 0.9, []string{"Hybrid work available"}
	}

	if len(prefs.PreferredLocations) > 0 {
		jobLocation := strings.ToLower(job.Location)
		companyCity := strings.ToLower(job.Company.City)
		for _, preferred := range prefs.PreferredLocations {
			p := strings.ToLower(strings.TrimSpace(preferred))
			if p == "" {
				continue
			}
			if fuzzyLocationMatch(p, jobLocation) || fuzzyLocationMatch(p, companyCity) {
				return 0.8, []string{fmt.Sprintf("Location matches preference: %s", preferred)}
			}
		}
		return 0.2, nil
	}

	return 0.6, nil // neutral when no location preference at all
}

// fuzzyLocationMatch reports a case-insensitive substring match in either
// direction; both inputs must already be lowercased
func fuzzyLocationMatch(preferred, actual string) bool {
	if actual == "" {
		return false
	}
	return strings.Contains(actual, preferred) || strings.Contains(preferred, actual)
}

// salaryScore scores the overlap between the job's salary range and the
// user's expectations. Missing bounds are padded: job max defaults to
// 1.2x job min, user max to 1.5x user min.
func salaryScore(job *db.Job, prefs *db.UserPreference) (float64, []string) {
	if job.SalaryMin == nil || prefs.MinSalary == nil {
		return 0.5, nil // neutral when salary data missing
	}

	jobMin := float64(*job.SalaryMin)
	jobMax := jobMin * 1.2
	if job.SalaryMax != nil {
		jobMax = float64(*job.SalaryMax)
	}
	userMin := float64(*prefs.MinSalary)
	userMax := userMin * 1.5
	if prefs.MaxSalary != nil {
		userMax = float64(*prefs.MaxSalary)
	}

	if jobMax >= userMin && jobMin <= userMax {
		overlap := min(jobMax, userMax) - max(jobMin, userMin)
		userRange := userMax - userMin
		overlapRatio := 1.0
		if userRange > 0 {
			overlapRatio = overlap / userRange
		}

		if jobMin >= userMin {
			reason := fmt.Sprintf("Salary meets expectations (£%d+)", *job.SalaryMin)
			return min(1.0, 0.8+overlapRatio*0.2), []string{reason}
		}
		return 0.6 + overlapRatio*0.2, []string{"Salary partially meets expectations"}
	}

	if jobMax >= userMin*0.8 {
		return 0.4, []string{"Salary close to expectations"}
	}
	return 0.1, nil
}

// companyScore starts from a neutral base and adds size and industry
// bonuses. An avoided company always scores zero, regardless of bonuses.
func companyScore(job *db.Job, prefs *db.UserPreference) (float64, []string) {
	score := 0.5
	var reasons []string

	if job.Company.CompanySize != "" && containsString(prefs.PreferredCompanySizes, job.Company.CompanySize) {
		score += 0.2
		reasons = append(reasons, fmt.Sprintf("Company size matches preference: %s", job.Company.CompanySize))
	}
	if job.Company.Industry != "" && containsString(prefs.PreferredIndustries, job.Company.Industry) {
		score += 0.3
		reasons = append(reasons, fmt.Sprintf("Industry matches preference: %s", job.Company.Industry))
	}

	for _, avoided := range prefs.AvoidCompanies {
		if avoided == job.Company.ID {
			return 0.0, reasons
		}
	}

	return min(1.0, score), reasons
}

// experienceLevels maps level tags onto an ordinal scale
var experienceLevels = map[string]int{
	db.ExperienceEntry:     1,
	db.ExperienceMid:       2,
	db.ExperienceSenior:    3,
	db.ExperienceLead:      4,
	db.ExperienceExecutive: 5,
}

// experienceScore scores by ordinal distance between the user's and the
// job's experience level. A job with no stated level scores a flat 0.6,
// bypassing the ordinal table.
func experienceScore(job *db.Job, prefs *db.UserPreference) (float64, []string) {
	if job.ExperienceRequired == "" {
		return 0.6, nil
	}

	userLevel, ok := experienceLevels[prefs.ExperienceLevel]
	if !ok {
		userLevel = experienceLevels[db.ExperienceMid]
	}
	jobLevel, ok := experienceLevels[job.ExperienceRequired]
	if !ok {
		jobLevel = experienceLevels[db.ExperienceMid]
	}

	diff := userLevel - jobLevel
	if diff < 0 {
		diff = -diff
	}
	switch diff {
	case 0:
		return 1.0, []string{fmt.Sprintf("Experience level perfect match: %s", prefs.ExperienceLevel)}
	case 1:
		return 0.8, []string{"Experience level close match"}
	case 2:
		return 0.5, nil
	default:
		return 0.2, nil
	}
}

// sponsorshipScore scores the company's ability to sponsor the user's
// visa. Users who don't need sponsorship always score full marks.
func sponsorshipScore(job *db.Job, prefs *db.UserPreference) (float64, []string) {
	if !prefs.RequiresSponsorship {
		return 1.0, nil
	}

	if !job.Company.IsSponsor || job.Company.SponsorStatus != db.SponsorStatusActive {
		return 0.0, nil
	}

	if len(prefs.VisaTypesNeeded) > 0 {
		for _, needed := range prefs.VisaTypesNeeded {
			if containsString(job.Company.SponsorTypes, needed) {
				return 1.0, []string{fmt.Sprintf("Company can sponsor %s visa", needed)}
			}
		}
		return 0.3, nil // sponsor, but maybe not for this visa type
	}

	return 0.9, []string{"Company is licensed visa sponsor"}
}

// normalizeSkillSet lowercases and trims skills into a lookup set,
// dropping empties
func normalizeSkillSet(skills []string) map[string]bool {
	set := make(map[string]bool, len(skills))
	for _, skill := range skills {
		normalized := strings.ToLower(strings.TrimSpace(skill))
		if normalized != "" {
			set[normalized] = true
		}
	}
	return set
}

func containsString(list []string, target string) bool {
	for _, item := range list {
		if item == target {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
