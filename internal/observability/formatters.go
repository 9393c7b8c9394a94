// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/sponsorboard/internal/db"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to max runes with an ellipsis
func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max-3] + "..."
	}
	return s
}

// joinTruncated joins items with commas, capped at max characters
func joinTruncated(items []string, max int) string {
	return truncate(strings.Join(items, ", "), max)
}

// PrintPreferences outputs a human-readable summary of the matching
// preferences a generation run will use.
func (p *Printer) PrintPreferences(prefs *db.UserPreference) {
	if prefs == nil {
		return
	}

	var sb strings.Builder

	if len(prefs.PreferredLocations) > 0 {
		sb.WriteString(fmt.Sprintf("Locations:   %s\n", joinTruncated(prefs.PreferredLocations, 40)))
	}
	flags := []string{}
	if prefs.OpenToRemote {
		flags = append(flags, "remote")
	}
	if prefs.OpenToHybrid {
		flags = append(flags, "hybrid")
	}
	if len(flags) > 0 {
		sb.WriteString(fmt.Sprintf("Open to:     %s\n", strings.Join(flags, ", ")))
	}
	if prefs.ExperienceLevel != "" {
		sb.WriteString(fmt.Sprintf("Experience:  %s\n", prefs.ExperienceLevel))
	}
	if prefs.MinSalary != nil || prefs.MaxSalary != nil {
		sb.WriteString(fmt.Sprintf("Salary:      %s %s\n", formatSalaryBand(prefs.MinSalary, prefs.MaxSalary), prefs.SalaryCurrency))
	}
	if prefs.RequiresSponsorship {
		visas := "any visa route"
		if len(prefs.VisaTypesNeeded) > 0 {
			visas = joinTruncated(prefs.VisaTypesNeeded, 35)
		}
		sb.WriteString(fmt.Sprintf("Sponsorship: required (%s)\n", visas))
	}

	if len(prefs.KeySkills) > 0 {
		sb.WriteString("\nKey Skills:\n")
		count := min(len(prefs.KeySkills), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", prefs.KeySkills[i]))
		}
		if len(prefs.KeySkills) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(prefs.KeySkills)-maxItemsToShow))
		}
	}

	p.printBox("MATCHING PREFERENCES", strings.TrimSuffix(sb.String(), "\n"))
}

// formatSalaryBand renders an open or closed salary band
func formatSalaryBand(minSalary, maxSalary *int) string {
	switch {
	case minSalary != nil && maxSalary != nil:
		return fmt.Sprintf("%d – %d", *minSalary, *maxSalary)
	case minSalary != nil:
		return fmt.Sprintf("%d+", *minSalary)
	case maxSalary != nil:
		return fmt.Sprintf("up to %d", *maxSalary)
	}
	return ""
}

// PrintRecommendations outputs the top recommendations with scores and
// the reasons behind each match.
func (p *Printer) PrintRecommendations(recs []db.Recommendation) {
	if len(recs) == 0 {
		p.printBox("RECOMMENDATIONS", "No matching jobs found")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total recommendations: %d\n\n", len(recs)))

	count := min(len(recs), maxItemsToShow)
	for i := 0; i < count; i++ {
		rec := recs[i]
		title := rec.JobID.String()
		if rec.Job != nil {
			title = fmt.Sprintf("%s @ %s", rec.Job.Title, rec.Job.Company.Name)
		}
		sb.WriteString(fmt.Sprintf("#%d  %s\n", i+1, truncate(title, 48)))
		sb.WriteString(fmt.Sprintf("    Score: %.2f (skills %.2f, location %.2f)\n",
			rec.MatchScore, rec.SkillMatchScore, rec.LocationMatchScore))
		if len(rec.MatchReasons) > 0 {
			sb.WriteString(fmt.Sprintf("    %s\n", truncate(rec.MatchReasons[0], 48)))
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(recs) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more recommendations", len(recs)-maxItemsToShow))
	}

	p.printBox("TOP RECOMMENDATIONS", sb.String())
}

// PrintBatchSummary outputs the audit record of one generation run.
func (p *Printer) PrintBatchSummary(batch *db.RecommendationBatch) {
	if batch == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Algorithm:  %s\n", batch.AlgorithmVersion))
	sb.WriteString(fmt.Sprintf("Produced:   %d recommendations\n", batch.TotalRecommendations))
	sb.WriteString(fmt.Sprintf("Avg score:  %.2f\n", batch.AverageScore))
	sb.WriteString(fmt.Sprintf("Elapsed:    %dms", batch.GenerationTimeMs))

	p.printBox("GENERATION RUN", sb.String())
}

// PrintStats outputs a user's recommendation history aggregates.
func (p *Printer) PrintStats(stats *db.RecommendationStats) {
	if stats == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total:      %d\n", stats.Total))
	sb.WriteString(fmt.Sprintf("Viewed:     %d\n", stats.ViewedCount))
	sb.WriteString(fmt.Sprintf("Clicked:    %d\n", stats.ClickedCount))
	sb.WriteString(fmt.Sprintf("Applied:    %d\n", stats.AppliedCount))
	sb.WriteString(fmt.Sprintf("Feedback:   %d\n", stats.FeedbackCount))
	sb.WriteString(fmt.Sprintf("Avg score:  %.2f", stats.AverageScore))
	if stats.LastGenerated != nil {
		sb.WriteString(fmt.Sprintf("\nLast run:   %s", stats.LastGenerated.Format("2006-01-02 15:04")))
	}

	p.printBox("RECOMMENDATION HISTORY", sb.String())
}
