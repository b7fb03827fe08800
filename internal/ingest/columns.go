package ingest

import "strings"

// Field names a logical company attribute that may appear under several
// spreadsheet column names.
type Field string

const (
	FieldID          Field = "id"
	FieldName        Field = "name"
	FieldCategory    Field = "category"
	FieldDescription Field = "description"
	FieldAddress     Field = "address"
	FieldPhone       Field = "phone"
	FieldEmail       Field = "email"
	FieldWebsite     Field = "website"
	FieldImages      Field = "images"
	FieldVideo       Field = "video"
	FieldLat         Field = "lat"
	FieldLon         Field = "lon"
)

// Columns is the ordered synonym table: for each field, the candidate
// column names in priority order.
type Columns map[Field][]string

// DefaultColumns covers the English and Finnish headers used by the sheet.
var DefaultColumns = Columns{
	FieldID:          {"rowid"},
	FieldName:        {"name", "nimi"},
	FieldCategory:    {"category", "kategoria"},
	FieldDescription: {"description", "esittely", "kuvaus"},
	FieldAddress:     {"address", "osoite"},
	FieldPhone:       {"phone", "puhelin"},
	FieldEmail:       {"email", "sähköposti", "sahkoposti"},
	FieldWebsite:     {"website", "nettisivu"},
	FieldImages:      {"images", "kuvat", "kuva", "photos", "kuvalinkit"},
	FieldVideo:       {"youtubeurl", "youtube link", "video", "video url"},
	FieldLat:         {"lat"},
	FieldLon:         {"lon", "lng"},
}

// Lookup returns the first non-empty value among the field's candidate columns.
func (c Columns) Lookup(row Row, field Field) string {
	return FirstNonEmpty(row, c[field]...)
}

// FirstNonEmpty checks keys in order and returns the first non-blank value.
func FirstNonEmpty(row Row, keys ...string) string {
	for _, key := range keys {
		if value := strings.TrimSpace(row.Values[key]); value != "" {
			return value
		}
	}
	return ""
}
