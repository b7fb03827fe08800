package ingest

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/mediazoo/laukaainfo/api/internal/entity"
)

const (
	defaultName     = "Nimetön"
	defaultCategory = "Muu"
	idPrefix        = "company-"
	taglineLimit    = 100
	ellipsis        = "..."
)

var slugJunk = regexp.MustCompile(`[^a-z0-9]`)

// Assembler builds Company records from rows. Fallback ids depend on the
// number of companies assembled so far, so one Assembler serves one run.
type Assembler struct {
	columns     Columns
	media       MediaExtractor
	phoneRegion string
	count       int
}

// AssemblerOption customises an Assembler.
type AssemblerOption func(*Assembler)

// WithColumns overrides the synonym table.
func WithColumns(columns Columns) AssemblerOption {
	return func(a *Assembler) {
		if columns != nil {
			a.columns = columns
		}
	}
}

// WithProxyPath sets the media endpoint that Drive links are rewritten to.
func WithProxyPath(path string) AssemblerOption {
	return func(a *Assembler) {
		if path != "" {
			a.media.Drive.ProxyPath = path
		}
	}
}

// WithPhoneRegion sets the default region for phone number parsing.
func WithPhoneRegion(region string) AssemblerOption {
	return func(a *Assembler) {
		if region != "" {
			a.phoneRegion = region
		}
	}
}

// NewAssembler returns an Assembler with the default synonym table.
func NewAssembler(opts ...AssemblerOption) *Assembler {
	a := &Assembler{
		columns:     DefaultColumns,
		media:       MediaExtractor{Drive: DriveRewriter{ProxyPath: DefaultProxyPath}},
		phoneRegion: DefaultPhoneRegion,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.media.Columns = a.columns
	return a
}

// Assemble converts one row and advances the running count.
func (a *Assembler) Assemble(row Row) entity.Company {
	name := a.columns.Lookup(row, FieldName)
	if name == "" {
		name = defaultName
	}
	category := a.columns.Lookup(row, FieldCategory)
	if category == "" {
		category = defaultCategory
	}

	id := a.columns.Lookup(row, FieldID)
	if id == "" {
		id = fmt.Sprintf("%s-%d", Slug(name), a.count)
	}

	description := a.columns.Lookup(row, FieldDescription)
	phone := a.columns.Lookup(row, FieldPhone)
	website := a.columns.Lookup(row, FieldWebsite)
	lat, lon := ExtractGeo(row, a.columns)

	company := entity.Company{
		ID:          idPrefix + id,
		Name:        name,
		Category:    category,
		Tagline:     Tagline(description),
		Description: description,
		Address:     a.columns.Lookup(row, FieldAddress),
		Phone:       phone,
		PhoneLink:   PhoneLink(phone, a.phoneRegion),
		Email:       a.columns.Lookup(row, FieldEmail),
		Website:     website,
		WebsiteLink: WebsiteLink(website),
		Lat:         lat,
		Lon:         lon,
		Media:       a.media.Extract(row),
	}
	if company.HasLocation() {
		company.MapLink = MapLink(lat, lon)
	}

	a.count++
	return company
}

// Slug lowercases and keeps only ASCII letters and digits.
func Slug(name string) string {
	return slugJunk.ReplaceAllString(strings.ToLower(name), "")
}

// Tagline shortens a description to its first 100 characters plus an ellipsis.
func Tagline(description string) string {
	if utf8.RuneCountInString(description) <= taglineLimit {
		return description
	}
	runes := []rune(description)
	return string(runes[:taglineLimit]) + ellipsis
}

// MapLink builds a map search URL for a coordinate pair.
func MapLink(lat, lon string) string {
	return fmt.Sprintf("https://www.google.com/maps?q=%s,%s", lat, lon)
}
