package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxagent/rag/models"
)

type fakeIndexer struct {
	batches [][]models.Chunk
	err     error
}

func (f *fakeIndexer) Add(_ context.Context, chunks []models.Chunk) error {
	if f.err != nil {
		return f.err
	}
	f.batches = append(f.batches, chunks)
	return nil
}

func newTestIngestion(indexer ChunkIndexer) *IngestionService {
	return NewIngestionService(NewChunker(100, 20), indexer, 1024)
}

func txtFile(name, content string) UploadedFile {
	return UploadedFile{Name: name, Content: []byte(content)}
}

func TestIngestFilesHappyPath(t *testing.T) {
	indexer := &fakeIndexer{}
	svc := newTestIngestion(indexer)
	session := newSession()

	report := svc.IngestFiles(context.Background(), session, []UploadedFile{
		txtFile("notes.txt", "the vacation policy grants 30 days per year"),
	})

	require.Len(t, report.Ingested, 1)
	assert.Empty(t, report.Skipped)
	assert.Equal(t, "notes.txt", report.Ingested[0].Name)
	assert.Equal(t, ".txt", report.Ingested[0].FileType)

	require.Len(t, indexer.batches, 1)
	chunks := indexer.batches[0]
	require.NotEmpty(t, chunks)
	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.Metadata.ChunkID)
		assert.Equal(t, "notes.txt", chunk.Metadata.Source)
		assert.Equal(t, ".txt", chunk.Metadata.FileType)
		assert.Equal(t, HashContent([]byte("the vacation policy grants 30 days per year")), chunk.Metadata.ContentHash)
	}

	assert.Len(t, session.IngestedDocuments(), 1)
}

func TestIngestFilesRejectsDuplicateContent(t *testing.T) {
	indexer := &fakeIndexer{}
	svc := newTestIngestion(indexer)
	session := newSession()

	// Identical bytes under two different names: the second must be rejected.
	report := svc.IngestFiles(context.Background(), session, []UploadedFile{
		txtFile("original.txt", "same content"),
		txtFile("copy.txt", "same content"),
	})

	require.Len(t, report.Ingested, 1)
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, "copy.txt", report.Skipped[0].Name)
	assert.Contains(t, report.Skipped[0].Reason, "already processed")
	assert.Len(t, indexer.batches, 1, "duplicate must not add index entries")
}

func TestIngestFilesRejectsUnsupportedType(t *testing.T) {
	indexer := &fakeIndexer{}
	svc := newTestIngestion(indexer)
	session := newSession()

	report := svc.IngestFiles(context.Background(), session, []UploadedFile{
		txtFile("image.png", "not really an image"),
		txtFile("fine.txt", "valid content"),
	})

	require.Len(t, report.Skipped, 1)
	assert.Equal(t, "image.png", report.Skipped[0].Name)
	assert.Contains(t, report.Skipped[0].Reason, "unsupported file type")
	require.Len(t, report.Ingested, 1)
	assert.Equal(t, "fine.txt", report.Ingested[0].Name)
}

func TestIngestFilesRejectsOversizedFile(t *testing.T) {
	indexer := &fakeIndexer{}
	svc := NewIngestionService(NewChunker(100, 20), indexer, 10)
	session := newSession()

	report := svc.IngestFiles(context.Background(), session, []UploadedFile{
		txtFile("big.txt", "this file is larger than ten bytes"),
	})

	require.Len(t, report.Skipped, 1)
	assert.Contains(t, report.Skipped[0].Reason, "exceeds size limit")
	assert.Empty(t, indexer.batches)
	// Rejected before hashing: the ledger must stay clean.
	assert.True(t, session.ShouldIngest(HashContent([]byte("this file is larger than ten bytes"))))
}

func TestIngestFilesFailedWriteIsRetryable(t *testing.T) {
	indexer := &fakeIndexer{err: ErrIndexWriteFailure}
	svc := newTestIngestion(indexer)
	session := newSession()

	report := svc.IngestFiles(context.Background(), session, []UploadedFile{
		txtFile("notes.txt", "content that fails to index"),
	})
	require.Len(t, report.Skipped, 1)
	assert.Empty(t, report.Ingested)

	// The hash must not be marked, so the same file can be retried.
	indexer.err = nil
	report = svc.IngestFiles(context.Background(), session, []UploadedFile{
		txtFile("notes.txt", "content that fails to index"),
	})
	require.Len(t, report.Ingested, 1)
	assert.Empty(t, report.Skipped)
}

func TestIngestFilesBatchIsolation(t *testing.T) {
	indexer := &fakeIndexer{}
	svc := newTestIngestion(indexer)
	session := newSession()

	report := svc.IngestFiles(context.Background(), session, []UploadedFile{
		txtFile("a.txt", "first document"),
		txtFile("bad.exe", "nope"),
		txtFile("b.txt", "second document"),
	})

	assert.Len(t, report.Ingested, 2)
	assert.Len(t, report.Skipped, 1)
	assert.Len(t, indexer.batches, 2)
}
