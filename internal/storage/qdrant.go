// ABOUTME: Qdrant-backed vector index over gRPC using a cosine collection
// ABOUTME: The collection is recreated on every build so the index mirrors one ingestion
package storage

import (
	"context"
	"fmt"
	"sync"

	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/harper/guia/internal/models"
)

// qdrantUpsertBatch bounds the size of one upsert request
const qdrantUpsertBatch = 256

// Payload keys stored with every point
const (
	payloadContent  = "content"
	payloadSource   = "source"
	payloadPage     = "page"
	payloadPosition = "position"
	payloadOrder    = "order"
	payloadChunkID  = "chunk_id"
)

// QdrantStorage is a vector index stored in a Qdrant collection
type QdrantStorage struct {
	conn        *grpc.ClientConn
	points      pb.PointsClient
	collections pb.CollectionsClient
	collection  string

	mu    sync.RWMutex
	dims  int
	built bool
}

// NewQdrantStorage connects to Qdrant at the given gRPC address
func NewQdrantStorage(addr, collection string) (*QdrantStorage, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial qdrant %s: %w", addr, err)
	}
	return &QdrantStorage{
		conn:        conn,
		points:      pb.NewPointsClient(conn),
		collections: pb.NewCollectionsClient(conn),
		collection:  collection,
	}, nil
}

// Close closes the underlying gRPC connection
func (q *QdrantStorage) Close() error {
	return q.conn.Close()
}

// Index recreates the collection and upserts every entry
func (q *QdrantStorage) Index(ctx context.Context, entries []models.IndexEntry) error {
	dims, err := ValidateEntries(entries)
	if err != nil {
		return err
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.built {
		return &models.IndexBuildError{Reason: "index already built"}
	}

	if err := q.resetCollection(ctx, dims); err != nil {
		return &models.IndexBuildError{Reason: "prepare collection " + q.collection, Err: err}
	}

	wait := true
	for start := 0; start < len(entries); start += qdrantUpsertBatch {
		end := min(start+qdrantUpsertBatch, len(entries))
		batch := make([]*pb.PointStruct, 0, end-start)
		for _, e := range entries[start:end] {
			batch = append(batch, pointFromEntry(e))
		}
		_, err := q.points.Upsert(ctx, &pb.UpsertPoints{
			CollectionName: q.collection,
			Wait:           &wait,
			Points:         batch,
		})
		if err != nil {
			return &models.IndexBuildError{Reason: fmt.Sprintf("upsert %d points", len(batch)), Err: err}
		}
	}

	q.dims = dims
	q.built = true
	return nil
}

// Search returns up to k nearest chunks. Extra candidates are fetched so
// equal scores at the cut-off can be resolved by ingestion order.
func (q *QdrantStorage) Search(ctx context.Context, vector []float32, k int) ([]models.ScoredChunk, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidK, k)
	}

	q.mu.RLock()
	built, dims := q.built, q.dims
	q.mu.RUnlock()

	if !built {
		return nil, ErrNotBuilt
	}
	if len(vector) != dims {
		return nil, fmt.Errorf("%w: index has %d, query has %d", ErrDimensionMismatch, dims, len(vector))
	}

	resp, err := q.points.Search(ctx, &pb.SearchPoints{
		CollectionName: q.collection,
		Vector:         vector,
		Limit:          uint64(2 * k),
		WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant search: %w", err)
	}

	results := make([]models.ScoredChunk, 0, len(resp.GetResult()))
	for _, hit := range resp.GetResult() {
		results = append(results, models.ScoredChunk{
			Chunk: chunkFromPayload(hit.GetPayload()),
			Score: float64(hit.GetScore()),
		})
	}

	SortScored(results)
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

func (q *QdrantStorage) resetCollection(ctx context.Context, dims int) error {
	list, err := q.collections.List(ctx, &pb.ListCollectionsRequest{})
	if err != nil {
		return fmt.Errorf("list collections: %w", err)
	}
	for _, c := range list.GetCollections() {
		if c.GetName() == q.collection {
			if _, err := q.collections.Delete(ctx, &pb.DeleteCollection{CollectionName: q.collection}); err != nil {
				return fmt.Errorf("delete collection: %w", err)
			}
			break
		}
	}

	_, err = q.collections.Create(ctx, &pb.CreateCollection{
		CollectionName: q.collection,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     uint64(dims),
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create collection: %w", err)
	}
	return nil
}

func pointFromEntry(e models.IndexEntry) *pb.PointStruct {
	c := e.Chunk
	return &pb.PointStruct{
		Id: &pb.PointId{
			PointIdOptions: &pb.PointId_Uuid{Uuid: c.ID},
		},
		Vectors: &pb.Vectors{
			VectorsOptions: &pb.Vectors_Vector{
				Vector: &pb.Vector{Data: e.Vector},
			},
		},
		Payload: map[string]*pb.Value{
			payloadChunkID:  stringValue(c.ID),
			payloadContent:  stringValue(c.Content),
			payloadSource:   stringValue(c.Source),
			payloadPage:     intValue(c.Page),
			payloadPosition: intValue(c.Position),
			payloadOrder:    intValue(c.Order),
		},
	}
}

func chunkFromPayload(payload map[string]*pb.Value) models.Chunk {
	return models.Chunk{
		ID:       payload[payloadChunkID].GetStringValue(),
		Content:  payload[payloadContent].GetStringValue(),
		Source:   payload[payloadSource].GetStringValue(),
		Page:     int(payload[payloadPage].GetIntegerValue()),
		Position: int(payload[payloadPosition].GetIntegerValue()),
		Order:    int(payload[payloadOrder].GetIntegerValue()),
	}
}

func stringValue(s string) *pb.Value {
	return &pb.Value{Kind: &pb.Value_StringValue{StringValue: s}}
}

func intValue(i int) *pb.Value {
	return &pb.Value{Kind: &pb.Value_IntegerValue{IntegerValue: int64(i)}}
}
