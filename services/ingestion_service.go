package services

import (
	"context"
	"fmt"
	"log"

	"github.com/maxagent/rag/models"
)

// UploadedFile is one raw file in an ingestion batch.
type UploadedFile struct {
	Name    string
	Content []byte
}

// ChunkIndexer is the slice of the vector index the ingestion gate needs.
type ChunkIndexer interface {
	Add(ctx context.Context, chunks []models.Chunk) error
}

// IngestionService runs the write path: gate checks, extraction, chunking and
// the index write, one file at a time.
type IngestionService struct {
	chunker     *Chunker
	indexer     ChunkIndexer
	maxFileSize int
}

func NewIngestionService(chunker *Chunker, indexer ChunkIndexer, maxFileSize int) *IngestionService {
	if maxFileSize <= 0 {
		maxFileSize = 10 * 1024 * 1024
	}
	return &IngestionService{
		chunker:     chunker,
		indexer:     indexer,
		maxFileSize: maxFileSize,
	}
}

// IngestFiles processes a batch strictly sequentially. Per-file failures are
// isolated: a bad file is reported in the Skipped list and the rest of the
// batch proceeds.
func (s *IngestionService) IngestFiles(ctx context.Context, session *Session, files []UploadedFile) models.IngestBatchResponse {
	report := models.IngestBatchResponse{Ingested: []models.IngestedDocument{}}
	for _, file := range files {
		doc, err := s.ingestFile(ctx, session, file)
		if err != nil {
			log.Printf("INGEST: Skipping %s: %v", file.Name, err)
			report.Skipped = append(report.Skipped, models.SkippedFile{Name: file.Name, Reason: err.Error()})
			continue
		}
		log.Printf("INGEST: Successfully ingested %s (%d bytes)", file.Name, doc.ByteSize)
		report.Ingested = append(report.Ingested, doc)
	}
	return report
}

// ingestFile runs the gate for a single file. The allow-list is checked before
// any hashing overhead, and the content hash is only marked after the index
// write succeeds, so a file that failed partway can be retried.
func (s *IngestionService) ingestFile(ctx context.Context, session *Session, file UploadedFile) (models.IngestedDocument, error) {
	var none models.IngestedDocument

	fileType := FileType(file.Name)
	if !IsSupportedFile(file.Name) {
		return none, fmt.Errorf("%w: %s", ErrUnsupportedType, fileType)
	}
	if len(file.Content) > s.maxFileSize {
		return none, fmt.Errorf("%w: %d bytes (limit %d)", ErrTooLarge, len(file.Content), s.maxFileSize)
	}

	contentHash := HashContent(file.Content)
	if !session.ShouldIngest(contentHash) {
		return none, fmt.Errorf("%w: %s", ErrAlreadyProcessed, file.Name)
	}

	text, err := ExtractText(file.Content, file.Name)
	if err != nil {
		return none, err
	}

	docMeta := models.DocumentMetadata{
		Source:      file.Name,
		FileType:    fileType,
		ContentHash: contentHash,
		ByteSize:    len(file.Content),
	}

	pieces := s.chunker.Split(text)
	log.Printf("INGEST: Split %s into %d chunks.", file.Name, len(pieces))

	chunks := make([]models.Chunk, 0, len(pieces))
	for i, piece := range pieces {
		chunks = append(chunks, models.Chunk{
			Text:     piece,
			Metadata: models.ChunkMetadata{DocumentMetadata: docMeta, ChunkID: i},
		})
	}
	if err := s.indexer.Add(ctx, chunks); err != nil {
		return none, err
	}

	doc := models.IngestedDocument{
		Name:     file.Name,
		FileType: fileType,
		ByteSize: len(file.Content),
	}
	session.MarkIngested(contentHash, doc)
	return doc, nil
}
