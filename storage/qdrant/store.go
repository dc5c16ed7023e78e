package qdrant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/poiesic/taxonomist/ai"
	"github.com/poiesic/taxonomist/core"
	"github.com/poiesic/taxonomist/storage"
	qdrant "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
)

// DefaultAddress is the gRPC address of a local Qdrant server.
const DefaultAddress = "localhost:6334"

// Payload fields stored with every point.
const (
	payloadID   = "id"
	payloadText = "text"
)

// pointNamespace seeds the name-based UUIDs used as point ids.
var pointNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/poiesic/taxonomist"))

// PointID returns the Qdrant point id for an entry id.
func PointID(entryID string) string {
	return uuid.NewSHA1(pointNamespace, []byte(entryID)).String()
}

// Store is a storage.TaxonomyStore backed by Qdrant.
type Store struct {
	conn        *grpc.ClientConn
	points      qdrant.PointsClient
	collections qdrant.CollectionsClient
	embedder    ai.Embedder
	dimensions  int
	logger      *slog.Logger

	mu     sync.RWMutex
	closed bool
}

var _ storage.TaxonomyStore = (*Store)(nil)

// Option configures a Store.
type Option func(*Store) error

// WithEmbedder sets the embedder used for entries inserted without a vector.
func WithEmbedder(embedder ai.Embedder) Option {
	return func(s *Store) error {
		s.embedder = embedder
		return nil
	}
}

// WithDimensions sets the vector size used when creating collections.
func WithDimensions(dims int) Option {
	return func(s *Store) error {
		if dims < 0 {
			return fmt.Errorf("dimensions cannot be negative: %d", dims)
		}
		s.dimensions = dims
		return nil
	}
}

// WithClients uses existing gRPC clients instead of dialing an address.
func WithClients(points qdrant.PointsClient, collections qdrant.CollectionsClient) Option {
	return func(s *Store) error {
		if points == nil || collections == nil {
			return errors.New("qdrant clients cannot be nil")
		}
		s.points = points
		s.collections = collections
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		s.logger = logger
		return nil
	}
}

// Open connects to the Qdrant server at addr. The connection is lazy; the
// first collection call reports an unreachable server.
func Open(addr string, opts ...Option) (*Store, error) {
	s := &Store{logger: slog.Default()}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "qdrant-store")

	if s.points == nil {
		if addr == "" {
			addr = DefaultAddress
		}
		conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			return nil, storage.Wrap("open", "", fmt.Errorf("could not connect to Qdrant: %w", err))
		}
		s.conn = conn
		s.points = qdrant.NewPointsClient(conn)
		s.collections = qdrant.NewCollectionsClient(conn)
		s.logger.Debug("connected", "addr", addr)
	}
	return s, nil
}

// Close closes the gRPC connection if the store dialed one.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

func (s *Store) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// EnsureCollection returns the named collection, creating it with cosine
// distance if it does not exist.
func (s *Store) EnsureCollection(ctx context.Context, name string) (storage.Collection, error) {
	if s.isClosed() {
		return nil, storage.Wrap("ensure collection", name, storage.ErrStorageClosed)
	}
	if name == "" {
		return nil, storage.Wrap("ensure collection", name, errors.New("collection name is required"))
	}

	info, err := s.collections.Get(ctx, &qdrant.GetCollectionInfoRequest{CollectionName: name})
	if err == nil {
		dims := int(info.GetResult().GetConfig().GetParams().GetVectorsConfig().GetParams().GetSize())
		if s.dimensions > 0 && dims > 0 && dims != s.dimensions {
			return nil, storage.Wrap("ensure collection", name, fmt.Errorf("%w: collection has %d dimensions, configured %d",
				storage.ErrDimensionMismatch, dims, s.dimensions))
		}
		return &Collection{store: s, name: name, dimensions: dims}, nil
	}
	if status.Code(err) != codes.NotFound {
		return nil, storage.Wrap("ensure collection", name, err)
	}

	if s.dimensions <= 0 {
		return nil, storage.Wrap("ensure collection", name, errors.New("dimensions must be configured to create a Qdrant collection"))
	}
	if err := s.createCollection(ctx, name); err != nil {
		return nil, storage.Wrap("ensure collection", name, err)
	}
	return &Collection{store: s, name: name, dimensions: s.dimensions}, nil
}

func (s *Store) createCollection(ctx context.Context, name string) error {
	_, err := s.collections.Create(ctx, &qdrant.CreateCollection{
		CollectionName: name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(s.dimensions),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	for _, field := range []string{core.MetadataKind, core.MetadataParentCategory} {
		_, err := s.points.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
			CollectionName: name,
			FieldName:      field,
			FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
			Wait:           proto.Bool(true),
		})
		if err != nil {
			return fmt.Errorf("failed to index %s: %w", field, err)
		}
	}
	s.logger.Info("created collection", "collection", name, "dimensions", s.dimensions)
	return nil
}

// DeleteCollection removes the named collection.
func (s *Store) DeleteCollection(ctx context.Context, name string) error {
	if s.isClosed() {
		return storage.Wrap("delete collection", name, storage.ErrStorageClosed)
	}

	resp, err := s.collections.Delete(ctx, &qdrant.DeleteCollection{CollectionName: name})
	if status.Code(err) == codes.NotFound || (err == nil && !resp.GetResult()) {
		return storage.Wrap("delete collection", name, storage.ErrCollectionNotFound)
	}
	if err != nil {
		return storage.Wrap("delete collection", name, err)
	}
	s.logger.Info("deleted collection", "collection", name)
	return nil
}

// Collection is a storage.Collection backed by a Qdrant collection.
type Collection struct {
	store      *Store
	name       string
	dimensions int
}

var _ storage.Collection = (*Collection)(nil)

// Name returns the collection name.
func (c *Collection) Name() string {
	return c.name
}

// Insert upserts entries, one point per request.
func (c *Collection) Insert(ctx context.Context, entries ...*core.Entry) error {
	if c.store.isClosed() {
		return storage.Wrap("insert", c.name, storage.ErrStorageClosed)
	}

	prepared, _, err := storage.PrepareEntries(ctx, c.store.embedder, c.dimensions, entries)
	if err != nil {
		return storage.Wrap("insert", c.name, err)
	}

	for _, entry := range prepared {
		_, err := c.store.points.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: c.name,
			Points:         []*qdrant.PointStruct{toPoint(entry)},
			Wait:           proto.Bool(true),
		})
		if err != nil {
			return storage.Wrap("insert", c.name, fmt.Errorf("entry %q: %w", entry.ID, err))
		}
	}
	c.store.logger.Debug("inserted entries", "collection", c.name, "count", len(prepared))
	return nil
}

// QueryNearest returns up to topK entries matching filter, best first.
// All filtered candidates are fetched so ties are broken by id rather than by
// Qdrant's internal order.
func (c *Collection) QueryNearest(ctx context.Context, vector []float32, topK int, filter core.Filter) ([]core.Match, error) {
	if c.store.isClosed() {
		return nil, storage.Wrap("query", c.name, storage.ErrStorageClosed)
	}
	if err := storage.ValidateQuery(vector, topK, filter, c.dimensions); err != nil {
		return nil, storage.Wrap("query", c.name, err)
	}

	qfilter := toFilter(filter)
	candidates, err := c.count(ctx, qfilter)
	if err != nil {
		return nil, storage.Wrap("query", c.name, err)
	}
	if candidates == 0 {
		return []core.Match{}, nil
	}

	resp, err := c.store.points.Search(ctx, &qdrant.SearchPoints{
		CollectionName: c.name,
		Vector:         storage.NormalizeVector(vector),
		Limit:          candidates,
		Filter:         qfilter,
		WithPayload:    &qdrant.WithPayloadSelector{SelectorOptions: &qdrant.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, storage.Wrap("query", c.name, err)
	}

	matches := make([]core.Match, 0, len(resp.GetResult()))
	for _, hit := range resp.GetResult() {
		entry, err := fromPayload(hit.GetPayload())
		if err != nil {
			return nil, storage.Wrap("query", c.name, err)
		}
		if !filter.Matches(entry) {
			continue
		}
		matches = append(matches, core.Match{Entry: entry, Similarity: hit.GetScore()})
	}
	return storage.RankMatches(matches, topK), nil
}

// Get returns the entry with the given id, without its vector.
func (c *Collection) Get(ctx context.Context, id string) (*core.Entry, error) {
	if c.store.isClosed() {
		return nil, storage.Wrap("get", c.name, storage.ErrStorageClosed)
	}

	resp, err := c.store.points.Get(ctx, &qdrant.GetPoints{
		CollectionName: c.name,
		Ids:            []*qdrant.PointId{pointID(id)},
		WithPayload:    &qdrant.WithPayloadSelector{SelectorOptions: &qdrant.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, storage.Wrap("get", c.name, err)
	}
	if len(resp.GetResult()) == 0 {
		return nil, storage.Wrap("get", c.name, fmt.Errorf("%w: %s", storage.ErrNotFound, id))
	}

	entry, err := fromPayload(resp.GetResult()[0].GetPayload())
	if err != nil {
		return nil, storage.Wrap("get", c.name, err)
	}
	return entry, nil
}

// Count returns the exact number of points in the collection.
func (c *Collection) Count(ctx context.Context) (int, error) {
	if c.store.isClosed() {
		return 0, storage.Wrap("count", c.name, storage.ErrStorageClosed)
	}
	n, err := c.count(ctx, nil)
	if err != nil {
		return 0, storage.Wrap("count", c.name, err)
	}
	return int(n), nil
}

func (c *Collection) count(ctx context.Context, filter *qdrant.Filter) (uint64, error) {
	resp, err := c.store.points.Count(ctx, &qdrant.CountPoints{
		CollectionName: c.name,
		Filter:         filter,
		Exact:          proto.Bool(true),
	})
	if err != nil {
		return 0, err
	}
	return resp.GetResult().GetCount(), nil
}

func pointID(entryID string) *qdrant.PointId {
	return &qdrant.PointId{PointIdOptions: &qdrant.PointId_Uuid{Uuid: PointID(entryID)}}
}

func stringValue(v string) *qdrant.Value {
	return &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: v}}
}

func toPoint(entry *core.Entry) *qdrant.PointStruct {
	payload := map[string]*qdrant.Value{
		payloadID:   stringValue(entry.ID),
		payloadText: stringValue(entry.Text),
	}
	for k, v := range entry.Metadata() {
		payload[k] = stringValue(v)
	}

	return &qdrant.PointStruct{
		Id:      pointID(entry.ID),
		Vectors: &qdrant.Vectors{VectorsOptions: &qdrant.Vectors_Vector{Vector: &qdrant.Vector{Data: entry.Vector}}},
		Payload: payload,
	}
}

func fromPayload(payload map[string]*qdrant.Value) (*core.Entry, error) {
	md := make(map[string]string, 2)
	for _, key := range []string{core.MetadataKind, core.MetadataParentCategory} {
		if v, ok := payload[key]; ok {
			md[key] = v.GetStringValue()
		}
	}
	entry, err := core.EntryFromMetadata(payload[payloadID].GetStringValue(), payload[payloadText].GetStringValue(), nil, md)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrSerializationFailed, err)
	}
	return entry, nil
}

// toFilter translates a core.Filter into keyword match conditions.
func toFilter(filter core.Filter) *qdrant.Filter {
	where := filter.Where()
	keys := slices.Sorted(maps.Keys(where))

	must := make([]*qdrant.Condition, 0, len(keys))
	for _, k := range keys {
		must = append(must, &qdrant.Condition{
			ConditionOneOf: &qdrant.Condition_Field{
				Field: &qdrant.FieldCondition{
					Key:   k,
					Match: &qdrant.Match{MatchValue: &qdrant.Match_Keyword{Keyword: where[k]}},
				},
			},
		})
	}
	return &qdrant.Filter{Must: must}
}
