package models

// DocumentMetadata describes the origin of an extracted document.
type DocumentMetadata struct {
	Source      string `json:"source"`
	FileType    string `json:"file_type"`
	ContentHash string `json:"content_hash"`
	ByteSize    int    `json:"byte_size"`
}

// Document is the plain-text content of one uploaded file together with its
// origin metadata. It only lives long enough to be split into chunks.
type Document struct {
	Text     string
	Metadata DocumentMetadata
}

// ChunkMetadata is the document metadata plus the chunk's position within its
// document. ChunkID is a 0-based sequence index in order of production.
type ChunkMetadata struct {
	DocumentMetadata
	ChunkID int `json:"chunk_id"`
}

// Chunk is a bounded fragment of a document's text, the unit of indexing and
// retrieval.
type Chunk struct {
	Text     string
	Metadata ChunkMetadata
}

// SearchResult is one retrieved chunk with its similarity score. Score is a
// vector distance: lower means more similar, and results are always ordered
// ascending by Score.
type SearchResult struct {
	Text     string                 `json:"text"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
	Score    float64                `json:"score"`
}

// IndexStats is a read-only snapshot of the vector index. It is rendered on
// every page, so a backing-store failure is reported through Error instead of
// failing the whole request.
type IndexStats struct {
	TotalDocuments int    `json:"total_documents"`
	CollectionName string `json:"collection_name"`
	EmbeddingModel string `json:"embedding_model"`
	Error          string `json:"error,omitempty"`
}

// IngestedDocument is one entry in the session's list of processed files.
type IngestedDocument struct {
	Name     string `json:"name"`
	FileType string `json:"file_type"`
	ByteSize int    `json:"byte_size"`
}
