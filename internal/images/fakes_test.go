package images

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"
)

// fakeRepo is an in-memory Repository for tests
type fakeRepo struct {
	mu              sync.Mutex
	records         []ImageRecord
	nextID          int
	bulkInsertCalls int
	listCalls       int
	updateErr       error
	deleteErr       error
}

func (f *fakeRepo) matches(rec ImageRecord, search string) bool {
	if search == "" {
		return true
	}
	s := strings.ToLower(search)
	return strings.Contains(strings.ToLower(rec.Name), s) ||
		strings.Contains(strings.ToLower(rec.Description), s)
}

func (f *fakeRepo) filtered(search string) []ImageRecord {
	var out []ImageRecord
	for _, rec := range f.records {
		if f.matches(rec, search) {
			out = append(out, rec)
		}
	}
	return out
}

func (f *fakeRepo) List(ctx context.Context, q ListQuery) ([]ImageRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++

	recs := f.filtered(q.Search)
	sort.SliceStable(recs, func(i, j int) bool {
		var less bool
		if q.SortBy == SortByDate {
			less = recs[i].UpdatedAt.Before(recs[j].UpdatedAt)
		} else {
			less = recs[i].Name < recs[j].Name
		}
		if q.Order == OrderDesc {
			return !less
		}
		return less
	})

	if q.Skip >= len(recs) {
		return nil, nil
	}
	end := min(q.Skip+q.Limit, len(recs))
	return recs[q.Skip:end], nil
}

func (f *fakeRepo) Count(ctx context.Context, search string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.filtered(search)), nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id string) (*ImageRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rec := range f.records {
		if rec.ID == id {
			r := rec
			return &r, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeRepo) Insert(ctx context.Context, rec *ImageRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	rec.ID = fmt.Sprintf("rec-%d", f.nextID)
	f.records = append(f.records, *rec)
	return nil
}

func (f *fakeRepo) BulkInsert(ctx context.Context, recs []ImageRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bulkInsertCalls++
	for i := range recs {
		f.nextID++
		recs[i].ID = fmt.Sprintf("rec-%d", f.nextID)
		f.records = append(f.records, recs[i])
	}
	return nil
}

func (f *fakeRepo) UpdateDescription(ctx context.Context, id, description string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	for i := range f.records {
		if f.records[i].ID == id {
			f.records[i].Description = description
			return nil
		}
	}
	return ErrNotFound
}

func (f *fakeRepo) DeleteByID(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i := range f.records {
		if f.records[i].ID == id {
			f.records = append(f.records[:i], f.records[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// fakeStorage is an in-memory ObjectStorage for tests
type fakeStorage struct {
	mu          sync.Mutex
	objects     map[string][]byte
	deletedKeys []string
	presigned   int
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}}
}

func (f *fakeStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[key]
	if !ok {
		return nil, fmt.Errorf("no such key: %s", key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeStorage) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletedKeys = append(f.deletedKeys, key)
	delete(f.objects, key)
	return nil
}

func (f *fakeStorage) PresignGet(ctx context.Context, key string, expires time.Duration) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.presigned++
	return fmt.Sprintf("https://signed.test/GET/%s?sig=%d", key, f.presigned), nil
}

func (f *fakeStorage) PresignPut(ctx context.Context, key string, expires time.Duration) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.presigned++
	return fmt.Sprintf("https://signed.test/PUT/%s?sig=%d", key, f.presigned), nil
}
