package models

// LocaleHints carries the search-engine localisation parameters for one country.
type LocaleHints struct {
	Location     string // human-readable location, e.g. "United States"
	HostLanguage string // hl parameter, also recorded as the record language
	GeoCode      string // gl parameter
	GoogleDomain string // e.g. "google.co.jp"
}

// QuerySpec drives one fetch operation: a (country, role) pair with its
// query text and locale hints. Defined at startup, never mutated.
type QuerySpec struct {
	Country string
	Role    string
	Query   string
	Hints   LocaleHints
}

// Record is the normalized job posting persisted to the corpus CSV.
// Field order defines the column order; missing source fields stay as
// empty strings so the schema is fixed-width across all rows.
type Record struct {
	ID          string `csv:"id"`
	Title       string `csv:"title"`
	Company     string `csv:"company"`
	Location    string `csv:"location"`
	Description string `csv:"description"`
	DatePosted  string `csv:"date_posted"`
	Source      string `csv:"source"`
	ApplyLink   string `csv:"apply_link"`
	Raw         string `csv:"raw"`
	RoleQuery   string `csv:"role_query"`
	Country     string `csv:"country"`
	Language    string `csv:"language"`
	RetrievedAt string `csv:"retrieved_at"`
}
