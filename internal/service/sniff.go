package service

import "bytes"

var (
	jpegMagic = []byte{0xFF, 0xD8, 0xFF}
	pngMagic  = []byte("\x89PNG")
	gifMagic  = []byte("GIF8")
	riffMagic = []byte("RIFF")
	webpMagic = []byte("WEBP")
)

// SniffImage identifies JPEG, PNG, GIF and WebP payloads by their leading
// bytes and returns the matching content type, or "" for anything else.
func SniffImage(data []byte) string {
	if len(data) < 10 {
		return ""
	}
	switch {
	case bytes.HasPrefix(data, jpegMagic):
		return "image/jpeg"
	case bytes.HasPrefix(data, pngMagic):
		return "image/png"
	case bytes.HasPrefix(data, gifMagic):
		return "image/gif"
	case bytes.HasPrefix(data, riffMagic) && bytes.Contains(data[8:], webpMagic):
		return "image/webp"
	}
	return ""
}
