package processing_test

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/taoufikbo/preprint-empirical/internal/models"
	"github.com/taoufikbo/preprint-empirical/internal/processing"
	"github.com/taoufikbo/preprint-empirical/internal/serpapi"
)

func frSpec() models.QuerySpec {
	return models.QuerySpec{
		Country: "France",
		Role:    "Scrum Master",
		Query:   "Scrum Master",
		Hints:   models.LocaleHints{Location: "France", HostLanguage: "fr", GeoCode: "fr"},
	}
}

func TestJobIDDeterministic(t *testing.T) {
	job := serpapi.RawJob{
		Title:       "Scrum Master",
		CompanyName: "ACME",
		ApplyLink:   "https://example.com/apply/1",
	}
	require.Equal(t, processing.JobID(job), processing.JobID(job))
	require.Len(t, processing.JobID(job), 40) // sha1 hex
}

func TestJobIDPriorityChain(t *testing.T) {
	full := serpapi.RawJob{
		Title:       "Scrum Master",
		CompanyName: "ACME",
		ApplyLink:   "https://example.com/apply/1",
		Link:        "https://example.com/view/1",
	}
	noApply := full
	noApply.ApplyLink = ""
	noLinks := noApply
	noLinks.Link = ""

	// apply_link wins over link, link wins over title+company
	require.NotEqual(t, processing.JobID(full), processing.JobID(noApply))
	require.NotEqual(t, processing.JobID(noApply), processing.JobID(noLinks))

	// changing an unused field does not change the id
	other := full
	other.Title = "Product Owner"
	require.Equal(t, processing.JobID(full), processing.JobID(other))
}

func TestJobIDDistinctWithoutLinks(t *testing.T) {
	// three postings with no links but distinct title+company pairs
	ids := make(map[string]struct{})
	for i := 0; i < 3; i++ {
		job := serpapi.RawJob{
			Title:       "Scrum Master",
			CompanyName: fmt.Sprintf("Company %d", i),
		}
		ids[processing.JobID(job)] = struct{}{}
	}
	require.Len(t, ids, 3)
}

func TestJobIDFallsBackToUUID(t *testing.T) {
	a := processing.JobID(serpapi.RawJob{})
	b := processing.JobID(serpapi.RawJob{})
	require.NotEmpty(t, a)
	require.NotEmpty(t, b)
	require.NotEqual(t, a, b)
}

func TestNormalizeJob(t *testing.T) {
	payload := json.RawMessage(`{"title": "Scrum Master", "company_name": "ACME"}`)
	job := serpapi.RawJob{
		Title:       "Scrum Master",
		CompanyName: "ACME",
		Location:    "Paris, France",
		Description: "Facilite les cérémonies agiles.",
		Date:        "3 days ago",
		Source:      "LinkedIn",
		Link:        "https://example.com/view/1",
		Payload:     payload,
	}
	now := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)

	rec := processing.NormalizeJob(job, frSpec(), now)

	require.Equal(t, processing.JobID(job), rec.ID)
	require.Equal(t, "Scrum Master", rec.Title)
	require.Equal(t, "ACME", rec.Company)
	require.Equal(t, "Paris, France", rec.Location)
	require.Equal(t, "3 days ago", rec.DatePosted)
	require.Equal(t, "LinkedIn", rec.Source)
	// no apply_link: falls back to the generic link
	require.Equal(t, "https://example.com/view/1", rec.ApplyLink)
	require.Equal(t, string(payload), rec.Raw)
	require.Equal(t, "Scrum Master", rec.RoleQuery)
	require.Equal(t, "France", rec.Country)
	require.Equal(t, "fr", rec.Language)
	require.Equal(t, "2025-06-01T12:30:00Z", rec.RetrievedAt)
}

func TestNormalizeJobTotalOverEmptyInput(t *testing.T) {
	rec := processing.NormalizeJob(serpapi.RawJob{}, frSpec(), time.Now())
	require.NotEmpty(t, rec.ID)
	require.Empty(t, rec.Title)
	require.Empty(t, rec.Company)
	require.Empty(t, rec.ApplyLink)
	require.NotEmpty(t, rec.RetrievedAt)

	parsed, err := time.Parse(time.RFC3339, rec.RetrievedAt)
	require.NoError(t, err)
	require.Equal(t, time.UTC, parsed.Location())
}

func TestCleanDescription(t *testing.T) {
	input := "<p>Vos missions:</p><ul><li>Animer les rituels</li></ul>\n\n\n\nFin."
	got := processing.CleanDescription(input)
	require.NotContains(t, got, "<")
	require.Contains(t, got, "Animer les rituels")
	require.NotContains(t, got, "\n\n\n")

	require.Empty(t, processing.CleanDescription(""))
}

func TestResponsibilitySection(t *testing.T) {
	text := "About us\nGreat company\nYour responsibilities\nRun the ceremonies\nCoach the team"
	got, found := processing.ResponsibilitySection(text)
	require.True(t, found)
	require.True(t, strings.HasPrefix(got, "Your responsibilities"))
	require.Contains(t, got, "Coach the team")
	require.NotContains(t, got, "About us")
}

func TestResponsibilitySectionNoMarker(t *testing.T) {
	text := "Just a plain posting without any markers"
	got, found := processing.ResponsibilitySection(text)
	require.False(t, found)
	require.Equal(t, text, got)
}

func TestResponsibilitySectionCapped(t *testing.T) {
	lines := []string{"Aufgaben:"}
	for i := 0; i < 60; i++ {
		lines = append(lines, fmt.Sprintf("Task %d", i))
	}
	got, found := processing.ResponsibilitySection(strings.Join(lines, "\n"))
	require.True(t, found)
	require.Len(t, strings.Split(got, "\n"), 40)
}

func TestResponsibilitySectionJapanese(t *testing.T) {
	text := "会社概要\n業務内容\nスクラムイベントの運営"
	got, found := processing.ResponsibilitySection(text)
	require.True(t, found)
	require.Contains(t, got, "スクラムイベントの運営")
}
