// Package processing turns raw SerpApi job entries into corpus records
// and provides the text helpers the report binary builds its
// description statistics on.
package processing

import (
	"crypto/sha1"
	"encoding/hex"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jaytaylor/html2text"

	"github.com/taoufikbo/preprint-empirical/internal/models"
	"github.com/taoufikbo/preprint-empirical/internal/serpapi"
)

// JobID derives the deduplication key for a raw job. The hash input is
// chosen in priority order: apply link, generic link, then the
// title+company concatenation. Identical inputs always produce the
// same id, which makes re-collection idempotent.
//
// When all three sources are empty there is nothing stable to hash and
// a random UUID is issued instead, so degenerate entries never
// collapse into a single corpus row.
func JobID(job serpapi.RawJob) string {
	key := job.ApplyLink
	if key == "" {
		key = job.Link
	}
	if key == "" {
		key = job.Title + job.CompanyName
	}
	if key == "" {
		return uuid.NewString()
	}

	sum := sha1.Sum([]byte(key))
	return hex.EncodeToString(sum[:])
}

// NormalizeJob maps one raw job plus its query context into the fixed
// corpus schema. It is total: absent fields become empty strings, and
// the raw payload is kept verbatim for auditability.
func NormalizeJob(job serpapi.RawJob, spec models.QuerySpec, now time.Time) models.Record {
	applyLink := job.ApplyLink
	if applyLink == "" {
		applyLink = job.Link
	}

	return models.Record{
		ID:          JobID(job),
		Title:       job.Title,
		Company:     job.CompanyName,
		Location:    job.Location,
		Description: job.Description,
		DatePosted:  job.Date,
		Source:      job.Source,
		ApplyLink:   applyLink,
		Raw:         string(job.Payload),
		RoleQuery:   spec.Role,
		Country:     spec.Country,
		Language:    spec.Hints.HostLanguage,
		RetrievedAt: now.UTC().Format(time.RFC3339),
	}
}

var blankRuns = regexp.MustCompile(`\n\s*\n`)

// CleanDescription strips HTML markup from a posting description and
// squeezes runs of blank lines.
func CleanDescription(input string) string {
	if input == "" {
		return ""
	}

	text, err := html2text.FromString(input, html2text.Options{TextOnly: true})
	if err != nil {
		text = input
	}

	text = blankRuns.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// Postings label their duties section differently per market; any of
// these markers counts as the start of it.
var sectionMarkers = []string{
	"missions",
	"responsabilités",
	"responsibilities",
	"responsabilities",
	"your role",
	"you will",
	"what you'll do",
	"your responsibilities",
	"vos missions",
	"aufgaben",
	"業務内容",
}

const sectionMaxLines = 40

// ResponsibilitySection extracts the duties section from a cleaned
// description, capped at a fixed number of lines. It returns the
// section and whether a marker was found; without a marker the input
// comes back unchanged.
func ResponsibilitySection(text string) (string, bool) {
	lines := strings.Split(text, "\n")

	start := -1
	for i, line := range lines {
		lower := strings.ToLower(line)
		for _, marker := range sectionMarkers {
			if strings.Contains(lower, marker) {
				start = i
				break
			}
		}
		if start >= 0 {
			break
		}
	}

	if start < 0 {
		return text, false
	}

	end := start + sectionMaxLines
	if end > len(lines) {
		end = len(lines)
	}
	return strings.TrimSpace(strings.Join(lines[start:end], "\n")), true
}
