package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediazoo/laukaainfo/api/internal/entity"
)

func rowOf(pairs ...string) Row {
	row := Row{Values: map[string]string{}}
	for i := 0; i+1 < len(pairs); i += 2 {
		row.Keys = append(row.Keys, pairs[i])
		row.Values[pairs[i]] = pairs[i+1]
	}
	return row
}

func TestMediaExtractor_JSONArray(t *testing.T) {
	raw := `["https://drive.google.com/file/d/ABCDEFGHIJKLMNOPQRSTUVWXY/view","https://example.com/a.jpg"]`
	media := MediaExtractor{}.Extract(rowOf("images", raw))

	require.Len(t, media, 2)
	assert.Equal(t, entity.Media{Type: entity.MediaImage, URL: "get_image.php?id=ABCDEFGHIJKLMNOPQRSTUVWXY"}, media[0])
	assert.Equal(t, entity.Media{Type: entity.MediaImage, URL: "https://example.com/a.jpg"}, media[1])
}

func TestMediaExtractor_CommaSeparated(t *testing.T) {
	media := MediaExtractor{}.Extract(rowOf("kuvat", "https://example.com/a.jpg, https://example.com/b.png"))

	require.Len(t, media, 2)
	assert.Equal(t, "https://example.com/a.jpg", media[0].URL)
	assert.Equal(t, "https://example.com/b.png", media[1].URL)
}

func TestMediaExtractor_Encodings(t *testing.T) {
	tests := map[string]struct {
		raw    string
		expect []string
	}{
		"semicolon and newline": {
			raw:    "https://example.com/a.webp;https://example.com/b.gif\nhttps://example.com/c.svg?v=2",
			expect: []string{"https://example.com/a.webp", "https://example.com/b.gif", "https://example.com/c.svg?v=2"},
		},
		"escaped slashes in json": {
			raw:    `["https:\/\/example.com\/x.png"]`,
			expect: []string{"https://example.com/x.png"},
		},
		"surrounding quotes": {
			raw:    `"https://example.com/a.jpg"`,
			expect: []string{"https://example.com/a.jpg"},
		},
		"escaped inner quotes": {
			raw:    `[\"https://example.com/a.jpg\",\"https://example.com/b.jpg\"]`,
			expect: []string{"https://example.com/a.jpg", "https://example.com/b.jpg"},
		},
		"broken json falls back to split": {
			raw:    `["https://example.com/a.jpg", "https://example.com/b.jpg"`,
			expect: []string{"https://example.com/a.jpg", "https://example.com/b.jpg"},
		},
		"non http and non image dropped": {
			raw:    "ftp://example.com/a.jpg, https://example.com/page.html, /local.png, https://example.com/ok.AVIF",
			expect: []string{"https://example.com/ok.AVIF"},
		},
		"googleusercontent kept": {
			raw:    "https://lh3.googleusercontent.com/abc",
			expect: []string{"https://lh3.googleusercontent.com/abc"},
		},
		"drive open link rewritten": {
			raw:    "https://drive.google.com/open?id=1AbCdEfGhIjKlMnOpQrStUvWxYz012345",
			expect: []string{"get_image.php?id=1AbCdEfGhIjKlMnOpQrStUvWxYz012345"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			media := MediaExtractor{}.Extract(rowOf("images", tt.raw))
			urls := make([]string, 0, len(media))
			for _, m := range media {
				assert.Equal(t, entity.MediaImage, m.Type)
				urls = append(urls, m.URL)
			}
			assert.Equal(t, tt.expect, urls)
		})
	}
}

func TestMediaExtractor_ImageColumnPriority(t *testing.T) {
	row := rowOf("photos", "https://example.com/photos.jpg", "kuva", "https://example.com/kuva.jpg", "images", "")
	media := MediaExtractor{}.Extract(row)

	require.Len(t, media, 1)
	assert.Equal(t, "https://example.com/kuva.jpg", media[0].URL)
}

func TestMediaExtractor_VideoAppendedLast(t *testing.T) {
	row := rowOf(
		"video", "https://youtu.be/dQw4w9WgXcQ",
		"images", "https://example.com/a.jpg",
	)
	media := MediaExtractor{}.Extract(row)

	require.Len(t, media, 2)
	assert.Equal(t, entity.MediaImage, media[0].Type)
	assert.Equal(t, entity.Media{Type: entity.MediaVideo, URL: "https://www.youtube.com/embed/dQw4w9WgXcQ"}, media[1])
}

func TestMediaExtractor_NoMediaIsEmptySlice(t *testing.T) {
	media := MediaExtractor{}.Extract(rowOf("name", "Acme"))
	require.NotNil(t, media)
	assert.Empty(t, media)
}

func TestDriveRewriter(t *testing.T) {
	r := DriveRewriter{ProxyPath: "/media"}
	assert.Equal(t, "/media?id=ABCDEFGHIJKLMNOPQRSTUVWXYZ", r.Rewrite("https://drive.google.com/uc?export=view&id=ABCDEFGHIJKLMNOPQRSTUVWXYZ"))
	assert.Equal(t, "https://example.com/d/short", r.Rewrite("https://example.com/d/short"))
	assert.Equal(t, "", r.Rewrite(""))

	id, ok := DriveFileID("https://drive.google.com/file/d/ABCDEFGHIJKLMNOPQRSTUVWXY/view?usp=sharing")
	require.True(t, ok)
	assert.Equal(t, "ABCDEFGHIJKLMNOPQRSTUVWXY", id)
}

func TestEmbedYouTube(t *testing.T) {
	tests := map[string]string{
		"https://www.youtube.com/watch?v=abc123&t=10s": "https://www.youtube.com/embed/abc123",
		"https://youtu.be/xyz789?si=tracking":          "https://www.youtube.com/embed/xyz789",
		"https://vimeo.com/12345":                      "https://vimeo.com/12345",
		"":                                             "",
	}
	for input, expect := range tests {
		assert.Equal(t, expect, EmbedYouTube(input), input)
	}
}
