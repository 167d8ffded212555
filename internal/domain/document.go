package domain

// Page is the plain-text content extracted from a fetched URL.
type Page struct {
	URL   string
	Title string
	Text  string
}

// Chunk is one embeddable unit of a document.
type Chunk struct {
	DatabaseID string
	Source     string // document URL
	Index      int    // position within the document
	Text       string
}

// ScoredChunk is a chunk returned by similarity search.
type ScoredChunk struct {
	Chunk
	Score float64
}
