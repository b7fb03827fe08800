package ingest

import (
	"regexp"
	"strings"
)

var coordinateJunk = regexp.MustCompile(`[^0-9.,-]`)

// Fuzzy column-name fragments, checked only when an exact column is missing.
var (
	latFragments = []string{"leveys", "koordinaatti_n"}
	lonFragments = []string{"pituus", "koordinaatti_e", "x-koord"}
)

// CleanCoordinate keeps digits, separators and sign, then converts a
// decimal comma to a point.
func CleanCoordinate(raw string) string {
	cleaned := coordinateJunk.ReplaceAllString(raw, "")
	return strings.ReplaceAll(cleaned, ",", ".")
}

// ExtractGeo resolves latitude and longitude strings for a row. Values are
// not parsed; either may be empty.
func ExtractGeo(row Row, columns Columns) (lat, lon string) {
	if columns == nil {
		columns = DefaultColumns
	}

	if raw := columns.Lookup(row, FieldLat); raw != "" {
		lat = CleanCoordinate(raw)
	}
	if raw := columns.Lookup(row, FieldLon); raw != "" {
		lon = CleanCoordinate(raw)
	}
	if lat != "" && lon != "" {
		return lat, lon
	}

	for _, key := range row.Keys {
		value := strings.TrimSpace(row.Values[key])
		if value == "" {
			continue
		}
		if lat == "" && containsAny(key, latFragments) {
			lat = CleanCoordinate(value)
		}
		if lon == "" && containsAny(key, lonFragments) {
			lon = CleanCoordinate(value)
		}
	}
	return lat, lon
}

func containsAny(s string, fragments []string) bool {
	for _, fragment := range fragments {
		if strings.Contains(s, fragment) {
			return true
		}
	}
	return false
}
