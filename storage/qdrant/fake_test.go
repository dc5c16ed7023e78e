package qdrant

import (
	"context"
	"slices"
	"sync"

	"github.com/poiesic/taxonomist/storage"
	qdrant "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type fakePoint struct {
	vector  []float32
	payload map[string]*qdrant.Value
}

// fakeServer keeps Qdrant state in memory and implements the subset of the
// points and collections APIs the store uses.
type fakeServer struct {
	mu          sync.Mutex
	collections map[string]uint64
	points      map[string]map[string]fakePoint
	indexed     map[string][]string
	searches    []*qdrant.SearchPoints
}

func newFakeServer() *fakeServer {
	return &fakeServer{
		collections: make(map[string]uint64),
		points:      make(map[string]map[string]fakePoint),
		indexed:     make(map[string][]string),
	}
}

type fakePoints struct {
	qdrant.PointsClient
	srv *fakeServer
}

type fakeCollections struct {
	qdrant.CollectionsClient
	srv *fakeServer
}

func (f *fakeCollections) Get(ctx context.Context, in *qdrant.GetCollectionInfoRequest, _ ...grpc.CallOption) (*qdrant.GetCollectionInfoResponse, error) {
	f.srv.mu.Lock()
	defer f.srv.mu.Unlock()
	size, ok := f.srv.collections[in.CollectionName]
	if !ok {
		return nil, status.Errorf(codes.NotFound, "Collection `%s` doesn't exist!", in.CollectionName)
	}
	return &qdrant.GetCollectionInfoResponse{
		Result: &qdrant.CollectionInfo{
			Config: &qdrant.CollectionConfig{
				Params: &qdrant.CollectionParams{
					VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{Size: size, Distance: qdrant.Distance_Cosine}),
				},
			},
		},
	}, nil
}

func (f *fakeCollections) Create(ctx context.Context, in *qdrant.CreateCollection, _ ...grpc.CallOption) (*qdrant.CollectionOperationResponse, error) {
	f.srv.mu.Lock()
	defer f.srv.mu.Unlock()
	f.srv.collections[in.CollectionName] = in.GetVectorsConfig().GetParams().GetSize()
	f.srv.points[in.CollectionName] = make(map[string]fakePoint)
	return &qdrant.CollectionOperationResponse{Result: true}, nil
}

func (f *fakeCollections) Delete(ctx context.Context, in *qdrant.DeleteCollection, _ ...grpc.CallOption) (*qdrant.CollectionOperationResponse, error) {
	f.srv.mu.Lock()
	defer f.srv.mu.Unlock()
	_, ok := f.srv.collections[in.CollectionName]
	delete(f.srv.collections, in.CollectionName)
	delete(f.srv.points, in.CollectionName)
	return &qdrant.CollectionOperationResponse{Result: ok}, nil
}

func (f *fakePoints) CreateFieldIndex(ctx context.Context, in *qdrant.CreateFieldIndexCollection, _ ...grpc.CallOption) (*qdrant.PointsOperationResponse, error) {
	f.srv.mu.Lock()
	defer f.srv.mu.Unlock()
	f.srv.indexed[in.CollectionName] = append(f.srv.indexed[in.CollectionName], in.FieldName)
	return &qdrant.PointsOperationResponse{}, nil
}

func (f *fakePoints) Upsert(ctx context.Context, in *qdrant.UpsertPoints, _ ...grpc.CallOption) (*qdrant.PointsOperationResponse, error) {
	f.srv.mu.Lock()
	defer f.srv.mu.Unlock()
	coll, ok := f.srv.points[in.CollectionName]
	if !ok {
		return nil, status.Error(codes.NotFound, "collection not found")
	}
	for _, p := range in.Points {
		coll[p.GetId().GetUuid()] = fakePoint{
			vector:  p.GetVectors().GetVector().GetData(),
			payload: p.GetPayload(),
		}
	}
	return &qdrant.PointsOperationResponse{}, nil
}

func (f *fakePoints) Count(ctx context.Context, in *qdrant.CountPoints, _ ...grpc.CallOption) (*qdrant.CountResponse, error) {
	f.srv.mu.Lock()
	defer f.srv.mu.Unlock()
	var n uint64
	for _, p := range f.srv.points[in.CollectionName] {
		if matchesFilter(p, in.GetFilter()) {
			n++
		}
	}
	return &qdrant.CountResponse{Result: &qdrant.CountResult{Count: n}}, nil
}

func (f *fakePoints) Search(ctx context.Context, in *qdrant.SearchPoints, _ ...grpc.CallOption) (*qdrant.SearchResponse, error) {
	f.srv.mu.Lock()
	defer f.srv.mu.Unlock()
	f.srv.searches = append(f.srv.searches, in)

	var hits []*qdrant.ScoredPoint
	for id, p := range f.srv.points[in.CollectionName] {
		if !matchesFilter(p, in.GetFilter()) {
			continue
		}
		hits = append(hits, &qdrant.ScoredPoint{
			Id:      &qdrant.PointId{PointIdOptions: &qdrant.PointId_Uuid{Uuid: id}},
			Payload: p.payload,
			Score:   storage.DotProduct(in.Vector, p.vector),
		})
	}
	slices.SortFunc(hits, func(a, b *qdrant.ScoredPoint) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return 0
	})
	if uint64(len(hits)) > in.Limit {
		hits = hits[:in.Limit]
	}
	return &qdrant.SearchResponse{Result: hits}, nil
}

func (f *fakePoints) Get(ctx context.Context, in *qdrant.GetPoints, _ ...grpc.CallOption) (*qdrant.GetResponse, error) {
	f.srv.mu.Lock()
	defer f.srv.mu.Unlock()
	var result []*qdrant.RetrievedPoint
	for _, id := range in.Ids {
		if p, ok := f.srv.points[in.CollectionName][id.GetUuid()]; ok {
			result = append(result, &qdrant.RetrievedPoint{Id: id, Payload: p.payload})
		}
	}
	return &qdrant.GetResponse{Result: result}, nil
}

func matchesFilter(p fakePoint, filter *qdrant.Filter) bool {
	for _, cond := range filter.GetMust() {
		field := cond.GetField()
		if p.payload[field.GetKey()].GetStringValue() != field.GetMatch().GetKeyword() {
			return false
		}
	}
	return true
}
