package recommend

import (
	"github.com/google/uuid"
	"github.com/jonathan/sponsorboard/internal/db"
)

// maxCandidates bounds the pool of jobs scored per generation run
const maxCandidates = 200

// buildJobFilters translates a user's preferences into the job query
// that produces the candidate pool. Every populated preference narrows
// the pool; the base set is always active jobs at active, licensed
// sponsor companies, minus jobs already applied to.
func buildJobFilters(prefs *db.UserPreference, appliedJobIDs []uuid.UUID) db.JobFilters {
	filters := db.JobFilters{
		SponsorOnly:   true,
		ExcludeJobIDs: appliedJobIDs,
		Limit:         maxCandidates,
	}

	if prefs.RequiresSponsorship {
		if len(prefs.VisaTypesNeeded) > 0 {
			filters.VisaTypes = prefs.VisaTypesNeeded
		} else {
			// No specific visa types listed: assume the standard route
			filters.VisaTypes = []string{db.VisaTypeSkilledWorker}
		}
	}

	if len(prefs.PreferredIndustries) > 0 {
		filters.Industries = prefs.PreferredIndustries
	}
	if len(prefs.PreferredCompanySizes) > 0 {
		filters.CompanySizes = prefs.PreferredCompanySizes
	}
	if len(prefs.AvoidCompanies) > 0 {
		filters.AvoidCompanyIDs = prefs.AvoidCompanies
	}

	// Location narrows the pool only for users not open to remote work
	if !prefs.OpenToRemote && len(prefs.PreferredLocations) > 0 {
		filters.LocationTerms = prefs.PreferredLocations
	}

	return filters
}
