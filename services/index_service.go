package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"sync"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings"
	"github.com/google/uuid"

	"github.com/maxagent/rag/models"
)

// VectorIndex persists (vector, text, metadata) rows in a Chroma collection
// and answers nearest-neighbour queries. Search scores are distances as
// reported by the store: results are ordered ascending, lower = more similar.
type VectorIndex struct {
	mu         sync.Mutex
	client     chromago.Client
	collection chromago.Collection
	name       string
	embedder   Embedder
	topK       int
}

// NewVectorIndex opens (or creates) the named collection. Opening fails if the
// collection was written with a different embedding model than the configured
// one.
func NewVectorIndex(ctx context.Context, client chromago.Client, name string, embedder Embedder, topK int) (*VectorIndex, error) {
	if topK <= 0 {
		topK = 5
	}
	collection, err := openCollection(ctx, client, name, embedder.ModelName())
	if err != nil {
		return nil, err
	}
	return &VectorIndex{
		client:     client,
		collection: collection,
		name:       name,
		embedder:   embedder,
		topK:       topK,
	}, nil
}

func openCollection(ctx context.Context, client chromago.Client, name, embeddingModel string) (chromago.Collection, error) {
	collection, err := client.GetOrCreateCollection(
		ctx,
		name,
		chromago.WithCollectionMetadataCreate(
			chromago.NewMetadata(
				chromago.NewStringAttribute("embedding_model", embeddingModel),
				chromago.NewStringAttribute("created_by", "rag_service"),
			),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create collection %q: %w", name, err)
	}
	if stored := collectionEmbeddingModel(collection); stored != "" && stored != embeddingModel {
		return nil, fmt.Errorf("collection %q was written with embedding model %q but %q is configured; reset the index before switching models", name, stored, embeddingModel)
	}
	return collection, nil
}

// collectionEmbeddingModel reads the embedding_model attribute recorded when
// the collection was created. The metadata type exposes no map accessor, so it
// goes through a JSON round-trip.
func collectionEmbeddingModel(collection chromago.Collection) string {
	meta := collection.Metadata()
	if meta == nil {
		return ""
	}
	jsonBytes, err := json.Marshal(meta)
	if err != nil {
		return ""
	}
	var metaMap map[string]interface{}
	if err := json.Unmarshal(jsonBytes, &metaMap); err != nil {
		return ""
	}
	model, _ := metaMap["embedding_model"].(string)
	return model
}

// Add embeds each chunk and persists one row per chunk. There is no rollback
// across entries: on failure the error names the chunk that stopped the batch,
// and rows written before it remain in the index.
func (idx *VectorIndex) Add(ctx context.Context, chunks []models.Chunk) error {
	for i, chunk := range chunks {
		vector, err := idx.embedder.EmbedText(ctx, chunk.Text)
		if err != nil {
			return fmt.Errorf("chunk %d of %d from %s not indexed: %w", i, len(chunks), chunk.Metadata.Source, err)
		}
		embedding := embeddings.NewEmbeddingFromFloat32(vector)
		metadata := chromago.NewDocumentMetadata(
			chromago.NewStringAttribute("source", chunk.Metadata.Source),
			chromago.NewStringAttribute("file_type", chunk.Metadata.FileType),
			chromago.NewStringAttribute("content_hash", chunk.Metadata.ContentHash),
			chromago.NewIntAttribute("byte_size", int64(chunk.Metadata.ByteSize)),
			chromago.NewIntAttribute("chunk_id", int64(chunk.Metadata.ChunkID)),
		)
		docID := chromago.DocumentID(fmt.Sprintf("%s-chunk%d", uuid.New().String(), chunk.Metadata.ChunkID))
		err = idx.currentCollection().Add(ctx,
			chromago.WithIDs(docID),
			chromago.WithTexts(chunk.Text),
			chromago.WithEmbeddings(embedding),
			chromago.WithMetadatas(metadata),
		)
		if err != nil {
			return fmt.Errorf("%w: chunk %d of %d from %s: %v", ErrIndexWriteFailure, i, len(chunks), chunk.Metadata.Source, err)
		}
	}
	return nil
}

// Search embeds the query and returns the k nearest entries, ascending by
// distance. An empty index yields an empty slice, not an error. k <= 0 falls
// back to the configured top-K.
func (idx *VectorIndex) Search(ctx context.Context, query string, k int) ([]models.SearchResult, error) {
	count, err := idx.Count(ctx)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return []models.SearchResult{}, nil
	}
	k = clampResultCount(k, idx.topK, count)

	vector, err := idx.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, err
	}

	results, err := idx.currentCollection().Query(ctx,
		chromago.WithQueryEmbeddings(embeddings.NewEmbeddingFromFloat32(vector)),
		chromago.WithNResults(k),
		chromago.WithIncludeQuery(chromago.IncludeDocuments, chromago.IncludeMetadatas, chromago.Include("distances")),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIndexReadFailure, err)
	}

	var texts []string
	var metadatas []map[string]interface{}
	var distances []float64
	documentGroups := results.GetDocumentsGroups()
	metadataGroups := results.GetMetadatasGroups()
	distanceGroups := results.GetDistancesGroups()
	if len(documentGroups) > 0 {
		for i, doc := range documentGroups[0] {
			if doc.ContentString() == "" {
				continue
			}
			texts = append(texts, doc.ContentString())
			if len(metadataGroups) > 0 && i < len(metadataGroups[0]) {
				metadatas = append(metadatas, metadataToMap(metadataGroups[0][i]))
			} else {
				metadatas = append(metadatas, map[string]interface{}{})
			}
			if len(distanceGroups) > 0 && i < len(distanceGroups[0]) {
				distances = append(distances, float64(distanceGroups[0][i]))
			} else {
				distances = append(distances, 0)
			}
		}
	}
	return newSearchResults(texts, metadatas, distances), nil
}

// clampResultCount resolves the effective result count: a non-positive request
// falls back to the configured top-K, and no query asks for more entries than
// the collection holds.
func clampResultCount(k, topK, count int) int {
	if k <= 0 {
		k = topK
	}
	if k > count {
		k = count
	}
	return k
}

// newSearchResults pairs up the parallel result slices and pins the ordering
// contract: ascending distance, stable for ties.
func newSearchResults(texts []string, metadatas []map[string]interface{}, distances []float64) []models.SearchResult {
	out := make([]models.SearchResult, 0, len(texts))
	for i, text := range texts {
		result := models.SearchResult{Text: text}
		if i < len(metadatas) {
			result.Metadata = metadatas[i]
		}
		if i < len(distances) {
			result.Score = distances[i]
		}
		out = append(out, result)
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Score < out[b].Score })
	return out
}

// metadataToMap converts a DocumentMetadata to a plain map. The struct has no
// public accessor for its values, so marshal it to JSON and back.
func metadataToMap(meta chromago.DocumentMetadata) map[string]interface{} {
	if meta == nil {
		return map[string]interface{}{}
	}
	jsonBytes, err := json.Marshal(meta)
	if err != nil {
		log.Printf("WARN: could not marshal document metadata: %v", err)
		return map[string]interface{}{}
	}
	var metaMap map[string]interface{}
	if err := json.Unmarshal(jsonBytes, &metaMap); err != nil {
		log.Printf("WARN: could not unmarshal document metadata: %v", err)
		return map[string]interface{}{}
	}
	return metaMap
}

// Count returns the number of stored entries, 0 for an empty collection.
func (idx *VectorIndex) Count(ctx context.Context) (int, error) {
	count, err := idx.currentCollection().Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrIndexReadFailure, err)
	}
	return int(count), nil
}

// Reset irreversibly drops every stored entry and recreates the collection,
// leaving the index ready for new writes. Safe on an already-empty index.
func (idx *VectorIndex) Reset(ctx context.Context) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if err := idx.client.DeleteCollection(ctx, idx.name); err != nil {
		// The collection may simply not exist yet.
		log.Printf("INDEX WARN: could not delete collection %q: %v", idx.name, err)
	}
	collection, err := openCollection(ctx, idx.client, idx.name, idx.embedder.ModelName())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIndexWriteFailure, err)
	}
	idx.collection = collection
	return nil
}

// Stats is a read-only snapshot rendered on every page. A backing-store error
// surfaces in the Error field with zero counts instead of failing the call.
func (idx *VectorIndex) Stats(ctx context.Context) models.IndexStats {
	stats := models.IndexStats{
		CollectionName: idx.name,
		EmbeddingModel: idx.embedder.ModelName(),
	}
	count, err := idx.Count(ctx)
	if err != nil {
		stats.Error = err.Error()
		return stats
	}
	stats.TotalDocuments = count
	return stats
}

func (idx *VectorIndex) currentCollection() chromago.Collection {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return idx.collection
}
