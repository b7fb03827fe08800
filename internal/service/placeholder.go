package service

import (
	"fmt"
	"html"
	"unicode/utf8"
)

const placeholderDetailLimit = 80

const placeholderTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="600" height="400" viewBox="0 0 600 400">
    <rect width="600" height="400" fill="#2c3e50"/>
    <circle cx="300" cy="150" r="50" fill="none" stroke="#e74c3c" stroke-width="5"/>
    <line x1="280" y1="130" x2="320" y2="170" stroke="#e74c3c" stroke-width="5"/>
    <line x1="320" y1="130" x2="280" y2="170" stroke="#e74c3c" stroke-width="5"/>
    <text x="300" y="240" text-anchor="middle" font-family="Arial" font-size="20" fill="#ecf0f1" font-weight="bold">Mediaa ei voitu noutaa</text>
    <text x="300" y="270" text-anchor="middle" font-family="Arial" font-size="14" fill="#bdc3c7">Google Drive -tiedosto ei ole julkinen tai palvelin on estetty.</text>
    <text x="300" y="310" text-anchor="middle" font-family="Arial" font-size="11" fill="#95a5a6">ID: %s</text>
    <text x="300" y="330" text-anchor="middle" font-family="Arial" font-size="10" fill="#7f8c8d">%s...</text>
</svg>`

// PlaceholderSVG renders the "media unavailable" graphic for fileID with a
// shortened diagnostics line.
func PlaceholderSVG(fileID, detail string) []byte {
	return []byte(fmt.Sprintf(placeholderTemplate, html.EscapeString(fileID), html.EscapeString(truncateRunes(detail, placeholderDetailLimit))))
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}
