package ingest

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/mediazoo/laukaainfo/api/internal/entity"
)

// DefaultProxyPath is the media endpoint that Drive links are rewritten to.
const DefaultProxyPath = "get_image.php"

var (
	driveIDPattern      = regexp.MustCompile(`(?:id=|/d/|file/d/)([A-Za-z0-9_-]{25,35})`)
	youtubeQueryPattern = regexp.MustCompile(`v=([^&]+)`)
	youtubeShortPattern = regexp.MustCompile(`youtu\.be/([^?/]+)`)
	imageExtPattern     = regexp.MustCompile(`(?i)\.(jpg|jpeg|png|webp|gif|svg|avif)($|\?)`)
	listSplitPattern    = regexp.MustCompile(`[,;\n\r]+`)
)

const urlTrimSet = " \t\n\r\x00\x0B\"'\\"

// DriveRewriter maps Google Drive links to the local media proxy.
type DriveRewriter struct {
	ProxyPath string
}

// DriveFileID extracts the Drive file identifier from a link, if any.
func DriveFileID(link string) (string, bool) {
	m := driveIDPattern.FindStringSubmatch(link)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Rewrite returns a proxy-relative URL for Drive links and the input otherwise.
func (r DriveRewriter) Rewrite(link string) string {
	if link == "" {
		return link
	}
	id, ok := DriveFileID(link)
	if !ok {
		return link
	}
	path := r.ProxyPath
	if path == "" {
		path = DefaultProxyPath
	}
	return path + "?id=" + id
}

// EmbedYouTube rewrites watch and short links to the embeddable player URL.
func EmbedYouTube(link string) string {
	if link == "" {
		return link
	}
	if m := youtubeQueryPattern.FindStringSubmatch(link); m != nil {
		return "https://www.youtube.com/embed/" + m[1]
	}
	if m := youtubeShortPattern.FindStringSubmatch(link); m != nil {
		return "https://www.youtube.com/embed/" + m[1]
	}
	return link
}

// listParser turns a cleaned cell into candidate URLs, or nil when the
// encoding does not apply.
type listParser func(raw string) []string

// imageListParsers run in order; the first non-empty result wins.
var imageListParsers = []listParser{parseJSONList, parseDelimitedList}

func parseJSONList(raw string) []string {
	if !strings.HasPrefix(raw, "[") {
		return nil
	}
	var items []any
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil
	}
	urls := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			urls = append(urls, s)
		}
	}
	if len(urls) == 0 {
		return nil
	}
	return urls
}

func parseDelimitedList(raw string) []string {
	cleaned := strings.NewReplacer("[", "", "]", "", `"`, "", "'", "").Replace(raw)
	return listSplitPattern.Split(cleaned, -1)
}

// ParseImageList decodes an image cell (JSON array or delimited list) into URLs.
func ParseImageList(raw string) []string {
	raw = cleanListCell(raw)
	if raw == "" {
		return nil
	}
	for _, parse := range imageListParsers {
		if urls := parse(raw); len(urls) > 0 {
			return urls
		}
	}
	return nil
}

func cleanListCell(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.ReplaceAll(raw, `\"`, `"`)
	if len(raw) >= 2 && isQuote(raw[0]) && isQuote(raw[len(raw)-1]) {
		raw = raw[1 : len(raw)-1]
	}
	return raw
}

func isQuote(b byte) bool {
	return b == '"' || b == '\''
}

func normalizeCandidate(candidate string) string {
	candidate = strings.Trim(candidate, urlTrimSet)
	return strings.ReplaceAll(candidate, `\/`, "/")
}

// looksLikeImage accepts Drive-hosted content and links with a known image extension.
func looksLikeImage(link string) bool {
	return strings.Contains(link, "drive.google.com") ||
		strings.Contains(link, "googleusercontent.com") ||
		imageExtPattern.MatchString(link) ||
		strings.Contains(link, "file/d/")
}

// MediaExtractor derives the media list of a row.
type MediaExtractor struct {
	Columns Columns
	Drive   DriveRewriter
}

// Extract returns images in source order followed by at most one video.
func (m MediaExtractor) Extract(row Row) []entity.Media {
	columns := m.Columns
	if columns == nil {
		columns = DefaultColumns
	}

	media := make([]entity.Media, 0)
	for _, candidate := range ParseImageList(columns.Lookup(row, FieldImages)) {
		link := normalizeCandidate(candidate)
		if link == "" || !strings.HasPrefix(link, "http") {
			continue
		}
		if !looksLikeImage(link) {
			continue
		}
		media = append(media, entity.Media{Type: entity.MediaImage, URL: m.Drive.Rewrite(link)})
	}

	if video := columns.Lookup(row, FieldVideo); video != "" {
		media = append(media, entity.Media{Type: entity.MediaVideo, URL: EmbedYouTube(video)})
	}
	return media
}
