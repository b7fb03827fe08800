package dto

// MediaResult is the outcome of resolving one Drive file id.
type MediaResult struct {
	Data        []byte
	ContentType string
	CacheHit    bool
	Placeholder bool
	// Attempts lists "host:status" for each endpoint that was tried and rejected.
	Attempts []string
}
