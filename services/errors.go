package services

import "errors"

// Failure taxonomy for the ingestion and retrieval pipeline. Every external
// call is translated into one of these sentinels (wrapped around the cause) at
// the component boundary, so callers can match with errors.Is and decide
// whether to skip, retry, or abort.
var (
	ErrUnsupportedType   = errors.New("unsupported file type")
	ErrTooLarge          = errors.New("file exceeds size limit")
	ErrAlreadyProcessed  = errors.New("file already processed")
	ErrExtractionFailure = errors.New("text extraction failed")
	ErrEmbeddingFailure  = errors.New("embedding generation failed")
	ErrIndexWriteFailure = errors.New("vector index write failed")
	ErrIndexReadFailure  = errors.New("vector index read failed")
	ErrCompletionFailure = errors.New("completion generation failed")
)
