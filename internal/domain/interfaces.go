package domain

// Document represents a single uploaded text file known to the system.
type Document struct {
	StoredName string
	Text       string
}

// Chunk is a bounded, ordered part of a document used for retrieval.
// IDs are zero-based ordinals in left-to-right text order and stay stable
// across persistence round-trips.
type Chunk struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

// IndexedDocument is the persisted chunk sequence of one document.
type IndexedDocument struct {
	StoredName string
	Chunks     []Chunk
}

// ScoredChunk is a chunk matched against a query, with its relevance score.
type ScoredChunk struct {
	StoredName string `json:"stored_filename"`
	ChunkID    int    `json:"chunk_id"`
	Score      int    `json:"score"`
	Text       string `json:"text"`
}

// AnswerContext points back at a chunk that supported an answer.
type AnswerContext struct {
	StoredName string `json:"stored_filename"`
	ChunkID    int    `json:"chunk_id"`
	Score      int    `json:"score"`
	Snippet    string `json:"snippet"`
}

// Answer is the synthesized response to one question.
type Answer struct {
	Text     string          `json:"answer"`
	Contexts []AnswerContext `json:"contexts"`
}

// Chunker splits documents into chunks suitable for retrieval indexing.
type Chunker interface {
	Chunk(document Document) ([]Chunk, error)
}

// Scorer ranks chunk text against a query and classifies question shape.
type Scorer interface {
	Score(query, chunkText string) int
	LooksQuantitative(query string) bool
}

// Answerer extracts a short answer from ranked chunks.
type Answerer interface {
	Synthesize(query string, results []ScoredChunk, maxSentences int) string
}

// QAService defines the operations exposed by the application core.
type QAService interface {
	Ingest(storedName string) (chunkCount int, err error)
	Search(query string, topK int) ([]ScoredChunk, error)
	Ask(question string, topK int) (Answer, error)
}
