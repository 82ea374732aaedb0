package dense

import (
	"context"
	"crypto/sha1"
	"encoding/binary"
	"fmt"

	"cloudfuze.com/retriever/internal/retriever/domain"
	qdrant "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// hnswM and hnswEfSearch are the fixed ANN parameters spec §4.3 requires for
// determinism across identical inputs and store state.
const (
	hnswM         = 48
	hnswEfSearch  = 100
	vectorDistance = qdrant.Distance_Cosine
)

// payloadIDField stores the original chunk id alongside the point so it can
// be read back verbatim, since the numeric point id derived for Qdrant is a
// one-way hash and cannot be reversed into the chunk id fusion needs to
// match against the sparse index.
const payloadIDField = "_original_id"

// QdrantStore is the production VectorStore backend.
type QdrantStore struct {
	client     qdrant.PointsClient
	collection qdrant.CollectionsClient
	name       string
}

// NewQdrantStore dials a Qdrant gRPC endpoint. It does not create the
// collection; call EnsureCollection once at startup.
func NewQdrantStore(addr, collectionName string) (*QdrantStore, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial qdrant: %w", err)
	}
	return &QdrantStore{
		client:     qdrant.NewPointsClient(conn),
		collection: qdrant.NewCollectionsClient(conn),
		name:       collectionName,
	}, nil
}

// EnsureCollection creates the collection with fixed HNSW parameters. It
// issues the create request without first checking whether the collection
// already exists, and returns that request's error.
func (s *QdrantStore) EnsureCollection(ctx context.Context, dim int) error {
	_, err := s.collection.Create(ctx, &qdrant.CreateCollection{
		CollectionName: s.name,
		VectorsConfig: &qdrant.VectorsConfig{
			Config: &qdrant.VectorsConfig_Params{
				Params: &qdrant.VectorParams{
					Size:     uint64(dim),
					Distance: vectorDistance,
					HnswConfig: &qdrant.HnswConfigDiff{
						M:       ptrUint64(hnswM),
						EfConstruct: ptrUint64(100),
					},
				},
			},
		},
	})
	return err
}

func (s *QdrantStore) SimilaritySearch(ctx context.Context, vector []float32, k int) ([]Candidate, error) {
	resp, err := s.client.Search(ctx, &qdrant.SearchPoints{
		CollectionName: s.name,
		Vector:         vector,
		Limit:          uint64(k),
		WithPayload:    &qdrant.WithPayloadSelector{SelectorOptions: &qdrant.WithPayloadSelector_Enable{Enable: true}},
		Params: &qdrant.SearchParams{
			HnswEf: ptrUint64(hnswEfSearch),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant search: %w", err)
	}
	out := make([]Candidate, 0, len(resp.GetResult()))
	for _, pt := range resp.GetResult() {
		md := payloadToMetadata(pt.GetPayload())
		text, _ := md["text"].(string)
		delete(md, "text")
		chunkID, _ := md[payloadIDField].(string)
		delete(md, payloadIDField)
		out = append(out, Candidate{
			ChunkID:  chunkID,
			Text:     text,
			Metadata: domain.Metadata(md),
			Score:    float64(pt.GetScore()),
		})
	}
	return out, nil
}

func (s *QdrantStore) AddDocuments(ctx context.Context, chunks []domain.Chunk) error {
	points := make([]*qdrant.PointStruct, 0, len(chunks))
	for _, c := range chunks {
		payload := map[string]*qdrant.Value{
			"text":         {Kind: &qdrant.Value_StringValue{StringValue: c.Text}},
			payloadIDField: {Kind: &qdrant.Value_StringValue{StringValue: c.ID}},
		}
		for k, v := range c.Metadata {
			payload[k] = toQdrantValue(v)
		}
		points = append(points, &qdrant.PointStruct{
			Id:      chunkIDToPointID(c.ID),
			Vectors: &qdrant.Vectors{VectorsOptions: &qdrant.Vectors_Vector{Vector: &qdrant.Vector{Data: c.Embedding}}},
			Payload: payload,
		})
	}
	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{CollectionName: s.name, Points: points})
	return err
}

func (s *QdrantStore) Count(ctx context.Context) (int, error) {
	resp, err := s.client.Count(ctx, &qdrant.CountPoints{CollectionName: s.name})
	if err != nil {
		return 0, err
	}
	return int(resp.GetResult().GetCount()), nil
}

// chunkIDToPointID derives a deterministic numeric point id (the first 8
// bytes of the SHA-1 of the chunk's stable string id, read big-endian), so
// re-ingesting the same chunk upserts the same
// Qdrant point instead of creating a duplicate.
func chunkIDToPointID(chunkID string) *qdrant.PointId {
	sum := sha1.Sum([]byte(chunkID))
	return &qdrant.PointId{
		PointIdOptions: &qdrant.PointId_Num{Num: binary.BigEndian.Uint64(sum[:8])},
	}
}

func toQdrantValue(v any) *qdrant.Value {
	switch t := v.(type) {
	case string:
		return &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: t}}
	case bool:
		return &qdrant.Value{Kind: &qdrant.Value_BoolValue{BoolValue: t}}
	case float64:
		return &qdrant.Value{Kind: &qdrant.Value_DoubleValue{DoubleValue: t}}
	case int:
		return &qdrant.Value{Kind: &qdrant.Value_IntegerValue{IntegerValue: int64(t)}}
	default:
		return &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: fmt.Sprintf("%v", t)}}
	}
}

func payloadToMetadata(payload map[string]*qdrant.Value) map[string]any {
	out := make(map[string]any, len(payload))
	for k, v := range payload {
		switch kind := v.GetKind().(type) {
		case *qdrant.Value_StringValue:
			out[k] = kind.StringValue
		case *qdrant.Value_BoolValue:
			out[k] = kind.BoolValue
		case *qdrant.Value_DoubleValue:
			out[k] = kind.DoubleValue
		case *qdrant.Value_IntegerValue:
			out[k] = kind.IntegerValue
		}
	}
	return out
}

func ptrUint64(v uint64) *uint64 { return &v }
