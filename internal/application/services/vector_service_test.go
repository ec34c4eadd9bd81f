package services_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	impl "github.com/motorchat/datastore/internal/application/services"
	"github.com/motorchat/datastore/internal/core/domain/embedding"
)

type vectorStoreMock struct {
	createFn      func(ctx context.Context, name string, metadata map[string]string) (*embedding.Collection, error)
	getFn         func(ctx context.Context, name string) (*embedding.Collection, error)
	getOrCreateFn func(ctx context.Context, name string, metadata map[string]string) (*embedding.Collection, error)
	addFn         func(ctx context.Context, collectionName string, records []embedding.Record) error
	queryFn       func(ctx context.Context, collectionName string, queryVectors [][]float32, limit int) ([]embedding.QueryResult, error)
	deleteFn      func(ctx context.Context, name string) error
}

func (m *vectorStoreMock) CreateCollection(ctx context.Context, name string, metadata map[string]string) (*embedding.Collection, error) {
	if m.createFn != nil {
		return m.createFn(ctx, name, metadata)
	}
	return &embedding.Collection{Name: name}, nil
}
func (m *vectorStoreMock) GetCollection(ctx context.Context, name string) (*embedding.Collection, error) {
	if m.getFn != nil {
		return m.getFn(ctx, name)
	}
	return nil, embedding.ErrCollectionNotFound
}
func (m *vectorStoreMock) GetOrCreateCollection(ctx context.Context, name string, metadata map[string]string) (*embedding.Collection, error) {
	if m.getOrCreateFn != nil {
		return m.getOrCreateFn(ctx, name, metadata)
	}
	return &embedding.Collection{Name: name}, nil
}
func (m *vectorStoreMock) AddEmbeddings(ctx context.Context, collectionName string, records []embedding.Record) error {
	if m.addFn != nil {
		return m.addFn(ctx, collectionName, records)
	}
	return nil
}
func (m *vectorStoreMock) QueryEmbeddings(ctx context.Context, collectionName string, queryVectors [][]float32, limit int) ([]embedding.QueryResult, error) {
	if m.queryFn != nil {
		return m.queryFn(ctx, collectionName, queryVectors, limit)
	}
	return nil, nil
}
func (m *vectorStoreMock) DeleteCollection(ctx context.Context, name string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, name)
	}
	return nil
}

func TestVectorDisabled_AllSentinels(t *testing.T) {
	svc := impl.NewVectorService(nil, 0, quietLogger())
	ctx := context.Background()

	if svc.Enabled() {
		t.Fatal("Enabled() = true for nil store")
	}
	if c := svc.CreateCollection(ctx, "c", nil); c != nil {
		t.Fatalf("CreateCollection on disabled store = %#v, want nil", c)
	}
	if c := svc.GetOrCreateCollection(ctx, "c", nil); c != nil {
		t.Fatalf("GetOrCreateCollection on disabled store = %#v, want nil", c)
	}
	if svc.AddEmbeddings(ctx, "c", []embedding.Record{{ID: "1", Vector: []float32{1}}}) {
		t.Fatal("AddEmbeddings on disabled store = true, want false")
	}
	if r := svc.QueryEmbeddings(ctx, "c", [][]float32{{1}}, 1); r != nil {
		t.Fatalf("QueryEmbeddings on disabled store = %#v, want nil", r)
	}
	if svc.DeleteCollection(ctx, "c") {
		t.Fatal("DeleteCollection on disabled store = true, want false")
	}
}

func TestVectorCreateCollection_ErrorReturnsNil(t *testing.T) {
	store := &vectorStoreMock{createFn: func(ctx context.Context, name string, metadata map[string]string) (*embedding.Collection, error) {
		return nil, errors.New("boom")
	}}
	svc := impl.NewVectorService(store, 0, quietLogger())
	if c := svc.CreateCollection(context.Background(), "c", nil); c != nil {
		t.Fatalf("CreateCollection = %#v, want nil on error", c)
	}
}

func TestVectorGetOrCreate_CoalescesConcurrentCalls(t *testing.T) {
	var calls int32
	release := make(chan struct{})
	store := &vectorStoreMock{getOrCreateFn: func(ctx context.Context, name string, metadata map[string]string) (*embedding.Collection, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return &embedding.Collection{Name: name}, nil
	}}
	svc := impl.NewVectorService(store, 0, quietLogger())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if c := svc.GetOrCreateCollection(context.Background(), "shared", nil); c == nil {
				t.Error("GetOrCreateCollection returned nil")
			}
		}()
	}
	// Let the goroutines pile onto the in-flight call before releasing it.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("store was called %d times, want 1", n)
	}
}

func TestVectorQuery_DefaultLimit(t *testing.T) {
	var gotLimit int
	store := &vectorStoreMock{queryFn: func(ctx context.Context, collectionName string, queryVectors [][]float32, limit int) ([]embedding.QueryResult, error) {
		gotLimit = limit
		return []embedding.QueryResult{{}}, nil
	}}
	svc := impl.NewVectorService(store, 7, quietLogger())

	if r := svc.QueryEmbeddings(context.Background(), "c", [][]float32{{1, 2}}, 0); r == nil {
		t.Fatal("QueryEmbeddings returned nil")
	}
	if gotLimit != 7 {
		t.Fatalf("limit = %d, want configured default 7", gotLimit)
	}
}

func TestVectorAddAndDelete_ErrorMapping(t *testing.T) {
	store := &vectorStoreMock{
		addFn:    func(ctx context.Context, collectionName string, records []embedding.Record) error { return nil },
		deleteFn: func(ctx context.Context, name string) error { return embedding.ErrCollectionNotFound },
	}
	svc := impl.NewVectorService(store, 0, quietLogger())
	ctx := context.Background()

	if !svc.AddEmbeddings(ctx, "c", []embedding.Record{{ID: "1", Vector: []float32{1}}}) {
		t.Fatal("AddEmbeddings = false, want true")
	}
	if svc.DeleteCollection(ctx, "missing") {
		t.Fatal("DeleteCollection on missing collection = true, want false")
	}
}
