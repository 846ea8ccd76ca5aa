package config

import "github.com/taoufikbo/preprint-empirical/internal/models"

// The query matrix is static by design: four countries, three agile
// roles each. Japan mixes katakana and English titles because local
// postings use both.

var roleQueries = map[string]map[string]string{
	"France": {
		"Product Owner":   "Product Owner",
		"Scrum Master":    "Scrum Master",
		"Product Manager": "Product Manager",
	},
	"USA": {
		"Product Owner":   "Product Owner",
		"Scrum Master":    "Scrum Master",
		"Product Manager": "Product Manager",
	},
	"Germany": {
		"Product Owner":   "Product Owner",
		"Scrum Master":    "Scrum Master",
		"Product Manager": "Product Manager",
	},
	"Japan": {
		"Product Owner":   "プロダクトオーナー OR Product Owner",
		"Scrum Master":    "スクラムマスター OR Scrum Master",
		"Product Manager": "プロダクトマネージャー OR Product Manager",
	},
}

var localeHints = map[string]models.LocaleHints{
	"France":  {Location: "France", HostLanguage: "fr", GeoCode: "fr", GoogleDomain: "google.fr"},
	"USA":     {Location: "United States", HostLanguage: "en", GeoCode: "us", GoogleDomain: "google.com"},
	"Germany": {Location: "Germany", HostLanguage: "de", GeoCode: "de", GoogleDomain: "google.de"},
	"Japan":   {Location: "Japan", HostLanguage: "ja", GeoCode: "jp", GoogleDomain: "google.co.jp"},
}

// Countries and Roles fix the traversal order so repeated runs visit
// the matrix identically.
var (
	Countries = []string{"France", "USA", "Germany", "Japan"}
	Roles     = []string{"Product Owner", "Scrum Master", "Product Manager"}
)

// QueryMatrix expands the static configuration into the ordered list
// of query specs the orchestrator walks.
func QueryMatrix() []models.QuerySpec {
	specs := make([]models.QuerySpec, 0, len(Countries)*len(Roles))
	for _, country := range Countries {
		hints, ok := localeHints[country]
		if !ok {
			hints = models.LocaleHints{Location: country, HostLanguage: "en"}
		}
		for _, role := range Roles {
			specs = append(specs, models.QuerySpec{
				Country: country,
				Role:    role,
				Query:   roleQueries[country][role],
				Hints:   hints,
			})
		}
	}
	return specs
}
