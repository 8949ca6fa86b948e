package repository

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/RobelK1738/Buddys-Brain/internal/domain"
	"github.com/google/uuid"
	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
)

const (
	defaultVectorDimension = 1024
)

// QdrantConnectionConfig holds configuration for Qdrant connection
type QdrantConnectionConfig struct {
	Host            string
	Port            int
	Collection      string
	APIKey          string // Qdrant Cloud API Key (enables TLS automatically)
	UseTLS          bool   // Explicitly enable TLS without API Key
	VectorDimension int
}

// apiKeyInterceptor creates a unary interceptor that adds API key to metadata
func apiKeyInterceptor(apiKey string) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		ctx = metadata.AppendToOutgoingContext(ctx, "api-key", apiKey)
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}

// QdrantRepository handles vector operations with Qdrant. One point per
// searchable resource; the point id equals the resource id.
type QdrantRepository struct {
	conn            *grpc.ClientConn
	pointsClient    pb.PointsClient
	collectClient   pb.CollectionsClient
	collectionName  string
	vectorDimension int
}

// NewQdrantRepository creates a new QdrantRepository.
// Supports both local Qdrant (insecure) and Qdrant Cloud (TLS + API Key).
func NewQdrantRepository(cfg *QdrantConnectionConfig) (*QdrantRepository, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	vectorDimension := cfg.VectorDimension
	if vectorDimension <= 0 {
		vectorDimension = defaultVectorDimension
	}

	var opts []grpc.DialOption

	// TLS is enabled if an APIKey is set or UseTLS is explicitly true
	useTLS := cfg.UseTLS || cfg.APIKey != ""

	if useTLS {
		tlsConfig := &tls.Config{
			MinVersion: tls.VersionTLS13,
		}
		creds := credentials.NewTLS(tlsConfig)
		opts = append(opts, grpc.WithTransportCredentials(creds))

		if cfg.APIKey != "" {
			opts = append(opts, grpc.WithUnaryInterceptor(apiKeyInterceptor(cfg.APIKey)))
		}
	} else {
		// Local mode: no TLS, no authentication
		opts = append(opts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	}

	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to qdrant: %w", err)
	}

	return &QdrantRepository{
		conn:            conn,
		pointsClient:    pb.NewPointsClient(conn),
		collectClient:   pb.NewCollectionsClient(conn),
		collectionName:  cfg.Collection,
		vectorDimension: vectorDimension,
	}, nil
}

// Close closes the gRPC connection
func (r *QdrantRepository) Close() error {
	return r.conn.Close()
}

// EnsureCollection creates the collection if it doesn't exist. An existing
/// collection with a mismatched vector size is a hard error: mixed dimensions
// would break similarity search.
func (r *QdrantRepository) EnsureCollection(ctx context.Context) error {
	info, err := r.collectClient.Get(ctx, &pb.GetCollectionInfoRequest{
		CollectionName: r.collectionName,
	})
	if err == nil {
		if size, ok := collectionVectorSize(info.GetResult()); ok {
			if size != uint64(r.vectorDimension) {
				return fmt.Errorf("collection %s has vector size %d, expected %d", r.collectionName, size, r.vectorDimension)
			}
		}
		return nil // Collection exists
	}

	_, err = r.collectClient.Create(ctx, &pb.CreateCollection{
		CollectionName: r.collectionName,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     uint64(r.vectorDimension),
					Distance: pb.Distance_Cosine,
				},
			},
		},
		HnswConfig: &pb.HnswConfigDiff{
			M:                 optionalUint64(16),
			EfConstruct:       optionalUint64(128),
			FullScanThreshold: optionalUint64(10000),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	return nil
}

func optionalUint64(v uint64) *uint64 {
	return &v
}

func collectionVectorSize(info *pb.CollectionInfo) (uint64, bool) {
	if info == nil {
		return 0, false
	}

	config := info.GetConfig()
	if config == nil {
		return 0, false
	}

	params := config.GetParams()
	if params == nil {
		return 0, false
	}

	vectors := params.GetVectorsConfig()
	if vectors == nil {
		return 0, false
	}

	if single := vectors.GetParams(); single != nil {
		if size := single.GetSize(); size > 0 {
			return size, true
		}
	}

	return 0, false
}

// ResourcePayload is the projection stored with each vector. It carries every
// field the search response needs, so a similarity hit never requires a
// second lookup.
type ResourcePayload struct {
	ResourceID string           `json:"resource_id"`
	Title      string           `json:"title"`
	Summary    string           `json:"summary"`
	MediaLink  string           `json:"media_link"`
	MediaType  domain.MediaType `json:"media_type"`
	Course     string           `json:"course"`
}

// VectorPoint pairs a resource's embedding with its payload for batch upsert.
type VectorPoint struct {
	ID      string
	Vector  []float32
	Payload *ResourcePayload
}

// Upsert inserts or updates a single vector with payload.
func (r *QdrantRepository) Upsert(ctx context.Context, pointID string, vector []float32, payload *ResourcePayload) error {
	point, err := buildPoint(pointID, vector, payload)
	if err != nil {
		return err
	}

	_, err = r.pointsClient.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: r.collectionName,
		Points:         []*pb.PointStruct{point},
	})
	if err != nil {
		return fmt.Errorf("failed to upsert point: %w", err)
	}

	return nil
}

// UpsertBatch inserts or updates multiple vectors in one request.
func (r *QdrantRepository) UpsertBatch(ctx context.Context, points []VectorPoint) error {
	if len(points) == 0 {
		return nil
	}

	pbPoints := make([]*pb.PointStruct, 0, len(points))
	for _, p := range points {
		point, err := buildPoint(p.ID, p.Vector, p.Payload)
		if err != nil {
			return err
		}
		pbPoints = append(pbPoints, point)
	}

	_, err := r.pointsClient.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: r.collectionName,
		Points:         pbPoints,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert points: %w", err)
	}

	return nil
}

func buildPoint(pointID string, vector []float32, payload *ResourcePayload) (*pb.PointStruct, error) {
	uid, err := uuid.Parse(pointID)
	if err != nil {
		return nil, fmt.Errorf("invalid point ID: %w", err)
	}

	return &pb.PointStruct{
		Id: &pb.PointId{
			PointIdOptions: &pb.PointId_Uuid{
				Uuid: uid.String(),
			},
		},
		Vectors: &pb.Vectors{
			VectorsOptions: &pb.Vectors_Vector{
				Vector: &pb.Vector{
					Data: vector,
				},
			},
		},
		Payload: map[string]*pb.Value{
			"resource_id": {Kind: &pb.Value_StringValue{StringValue: payload.ResourceID}},
			"title":       {Kind: &pb.Value_StringValue{StringValue: payload.Title}},
			"summary":     {Kind: &pb.Value_StringValue{StringValue: payload.Summary}},
			"media_link":  {Kind: &pb.Value_StringValue{StringValue: payload.MediaLink}},
			"media_type":  {Kind: &pb.Value_StringValue{StringValue: string(payload.MediaType)}},
			"course":      {Kind: &pb.Value_StringValue{StringValue: payload.Course}},
		},
	}, nil
}

// VectorSearchResult represents a scored hit from Qdrant.
type VectorSearchResult struct {
	ID      string
	Score   float32
	Payload *ResourcePayload
}

// Search performs a vector similarity search over the candidate pool.
func (r *QdrantRepository) Search(ctx context.Context, vector []float32, limit int) ([]VectorSearchResult, error) {
	req := &pb.SearchPoints{
		CollectionName: r.collectionName,
		Vector:         vector,
		Limit:          uint64(limit),
		WithPayload: &pb.WithPayloadSelector{
			SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true},
		},
	}

	resp, err := r.pointsClient.Search(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	results := make([]VectorSearchResult, len(resp.Result))
	for i, scored := range resp.Result {
		results[i] = VectorSearchResult{
			ID:      scored.Id.GetUuid(),
			Score:   scored.Score,
			Payload: parsePayload(scored.Payload),
		}
	}

	return results, nil
}

func parsePayload(payload map[string]*pb.Value) *ResourcePayload {
	if payload == nil {
		return nil
	}

	p := &ResourcePayload{}
	if v, ok := payload["resource_id"]; ok {
		p.ResourceID = v.GetStringValue()
	}
	if v, ok := payload["title"]; ok {
		p.Title = v.GetStringValue()
	}
	if v, ok := payload["summary"]; ok {
		p.Summary = v.GetStringValue()
	}
	if v, ok := payload["media_link"]; ok {
		p.MediaLink = v.GetStringValue()
	}
	if v, ok := payload["media_type"]; ok {
		p.MediaType = domain.MediaType(v.GetStringValue())
	}
	if v, ok := payload["course"]; ok {
		p.Course = v.GetStringValue()
	}

	return p
}

// Delete deletes a point by ID. Deleting a missing point is a no-op.
func (r *QdrantRepository) Delete(ctx context.Context, pointID string) error {
	uid, err := uuid.Parse(pointID)
	if err != nil {
		return fmt.Errorf("invalid point ID: %w", err)
	}

	_, err = r.pointsClient.Delete(ctx, &pb.DeletePoints{
		CollectionName: r.collectionName,
		Points: &pb.PointsSelector{
			PointsSelectorOneOf: &pb.PointsSelector_Points{
				Points: &pb.PointsIdsList{
					Ids: []*pb.PointId{
						{PointIdOptions: &pb.PointId_Uuid{Uuid: uid.String()}},
					},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete point: %w", err)
	}

	return nil
}
