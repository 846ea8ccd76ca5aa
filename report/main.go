// The report binary prints balance statistics for a collected corpus:
// how many postings exist per country, role and language, which
// companies dominate, and how much usable description text the
// postings carry.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/olekukonko/tablewriter"

	"github.com/taoufikbo/preprint-empirical/internal/corpus"
	"github.com/taoufikbo/preprint-empirical/internal/logger"
	"github.com/taoufikbo/preprint-empirical/internal/models"
	"github.com/taoufikbo/preprint-empirical/internal/processing"
)

const topCompanies = 10

func main() {
	input := flag.String("input", "data/raw/google_jobs.csv", "corpus CSV to report on")
	flag.Parse()

	log := logger.New("report")

	records, err := corpus.NewStore(*input, log).Load()
	if err != nil {
		log.Error("load corpus", slog.Any("err", err))
		os.Exit(1)
	}
	if len(records) == 0 {
		log.Warn("corpus is empty", slog.String("path", *input))
		return
	}

	fmt.Printf("Corpus: %s (%d records)\n\n", *input, len(records))
	renderPivot(os.Stdout, records)
	renderLanguages(os.Stdout, records)
	renderCompanies(os.Stdout, records)
	renderDescriptions(os.Stdout, records)
}

// renderPivot prints the country × role count matrix with totals.
func renderPivot(w io.Writer, records []models.Record) {
	countries := distinct(records, func(r models.Record) string { return r.Country })
	roles := distinct(records, func(r models.Record) string { return r.RoleQuery })

	counts := make(map[string]map[string]int, len(countries))
	for _, r := range records {
		if counts[r.Country] == nil {
			counts[r.Country] = make(map[string]int, len(roles))
		}
		counts[r.Country][r.RoleQuery]++
	}

	fmt.Fprintln(w, "Postings by country and role:")
	table := tablewriter.NewWriter(w)
	table.SetHeader(append(append([]string{"Country"}, roles...), "Total"))
	for _, country := range countries {
		row := []string{country}
		total := 0
		for _, role := range roles {
			n := counts[country][role]
			total += n
			row = append(row, fmt.Sprintf("%d", n))
		}
		table.Append(append(row, fmt.Sprintf("%d", total)))
	}
	table.Render()
	fmt.Fprintln(w)
}

func renderLanguages(w io.Writer, records []models.Record) {
	counts := make(map[string]int)
	for _, r := range records {
		lang := r.Language
		if lang == "" {
			lang = "unknown"
		}
		counts[lang]++
	}

	fmt.Fprintln(w, "Postings by language:")
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Language", "Count"})
	for _, lang := range sortedKeys(counts) {
		table.Append([]string{lang, fmt.Sprintf("%d", counts[lang])})
	}
	table.Render()
	fmt.Fprintln(w)
}

func renderCompanies(w io.Writer, records []models.Record) {
	counts := make(map[string]int)
	for _, r := range records {
		if r.Company == "" {
			continue
		}
		counts[r.Company]++
	}
	if len(counts) == 0 {
		return
	}

	type pair struct {
		name  string
		count int
	}
	pairs := make([]pair, 0, len(counts))
	for name, count := range counts {
		pairs = append(pairs, pair{name, count})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].count == pairs[j].count {
			return pairs[i].name < pairs[j].name
		}
		return pairs[i].count > pairs[j].count
	})
	if len(pairs) > topCompanies {
		pairs = pairs[:topCompanies]
	}

	fmt.Fprintln(w, "Top companies:")
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Company", "Postings"})
	for _, p := range pairs {
		table.Append([]string{p.name, fmt.Sprintf("%d", p.count)})
	}
	table.Render()
	fmt.Fprintln(w)
}

// renderDescriptions reports, per country, the average cleaned
// description length and how many postings expose a recognizable
// responsibilities section.
func renderDescriptions(w io.Writer, records []models.Record) {
	type agg struct {
		count       int
		totalRunes  int
		withSection int
	}
	aggs := make(map[string]*agg)
	for _, r := range records {
		a := aggs[r.Country]
		if a == nil {
			a = &agg{}
			aggs[r.Country] = a
		}
		clean := processing.CleanDescription(r.Description)
		a.count++
		a.totalRunes += len([]rune(clean))
		if _, found := processing.ResponsibilitySection(clean); found {
			a.withSection++
		}
	}

	fmt.Fprintln(w, "Description coverage by country:")
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Country", "Avg Length", "With Duties Section"})
	for _, country := range sortedKeys(aggs) {
		a := aggs[country]
		table.Append([]string{
			country,
			fmt.Sprintf("%d", a.totalRunes/a.count),
			fmt.Sprintf("%d/%d", a.withSection, a.count),
		})
	}
	table.Render()
}

func distinct(records []models.Record, key func(models.Record) string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range records {
		k := key(r)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
