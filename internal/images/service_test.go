package images

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBaseURL = "http://localhost:8080"

func newTestService(repo *fakeRepo, store *fakeStorage) *Service {
	return NewService(repo, store, 10*time.Minute, 10*time.Minute, testBaseURL)
}

func seedRecords(repo *fakeRepo, names ...string) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i, name := range names {
		repo.records = append(repo.records, ImageRecord{
			ID:        name + "-id",
			Name:      name,
			UpdatedAt: base.Add(time.Duration(i) * time.Hour),
		})
	}
}

func listNames(res *ListResult) []string {
	names := make([]string, 0, len(res.Data))
	for _, d := range res.Data {
		names = append(names, d.ImageFile.Name)
	}
	return names
}

func TestListSortsByNameAscending(t *testing.T) {
	repo := &fakeRepo{}
	seedRecords(repo, "Test2", "Test1")
	svc := newTestService(repo, newFakeStorage())

	res, err := svc.List(context.Background(), ListParams{Page: 1, Limit: 2, SortBy: SortByName, Order: OrderAsc})
	require.NoError(t, err)

	assert.Equal(t, []string{"Test1", "Test2"}, listNames(res))
	assert.Equal(t, 1, res.TotalPages)
	assert.Equal(t, 2, res.TotalRecords)
	assert.Nil(t, res.NextPageLink)
}

func TestListDescendingReversesAscending(t *testing.T) {
	repo := &fakeRepo{}
	seedRecords(repo, "b", "c", "a")
	svc := newTestService(repo, newFakeStorage())

	asc, err := svc.List(context.Background(), ListParams{Page: 1, Limit: 10, SortBy: SortByName, Order: OrderAsc})
	require.NoError(t, err)
	desc, err := svc.List(context.Background(), ListParams{Page: 1, Limit: 10, SortBy: SortByName, Order: OrderDesc})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c"}, listNames(asc))
	assert.Equal(t, []string{"c", "b", "a"}, listNames(desc))
}

func TestListSortsByDate(t *testing.T) {
	repo := &fakeRepo{}
	// seedRecords assigns increasing UpdatedAt in insertion order.
	seedRecords(repo, "oldest", "middle", "newest")
	svc := newTestService(repo, newFakeStorage())

	res, err := svc.List(context.Background(), ListParams{Page: 1, Limit: 10, SortBy: SortByDate, Order: OrderDesc})
	require.NoError(t, err)

	assert.Equal(t, []string{"newest", "middle", "oldest"}, listNames(res))
}

func TestListPageWindowClamped(t *testing.T) {
	repo := &fakeRepo{}
	seedRecords(repo, "a", "b", "c", "d", "e")
	svc := newTestService(repo, newFakeStorage())

	// Page 3 at limit 2 can serve only the one remaining record.
	res, err := svc.List(context.Background(), ListParams{Page: 3, Limit: 2, SortBy: SortByName, Order: OrderAsc})
	require.NoError(t, err)
	assert.Equal(t, []string{"e"}, listNames(res))
	assert.Equal(t, 3, res.TotalPages)

	// A page past the end is empty, not an error.
	res, err = svc.List(context.Background(), ListParams{Page: 9, Limit: 2, SortBy: SortByName, Order: OrderAsc})
	require.NoError(t, err)
	assert.Empty(t, res.Data)
}

func TestListNextPageLink(t *testing.T) {
	repo := &fakeRepo{}
	seedRecords(repo, "a", "b", "c", "d", "e")
	svc := newTestService(repo, newFakeStorage())

	res, err := svc.List(context.Background(), ListParams{Page: 1, Limit: 2, SortBy: SortByName, Order: OrderAsc})
	require.NoError(t, err)
	require.NotNil(t, res.NextPageLink)
	assert.Contains(t, *res.NextPageLink, testBaseURL+"/ImageFiles?")
	assert.Contains(t, *res.NextPageLink, "page=2")
	assert.Contains(t, *res.NextPageLink, "limit=2")
	assert.Contains(t, *res.NextPageLink, "sortBy=Name")

	// Absent on the last page.
	res, err = svc.List(context.Background(), ListParams{Page: 3, Limit: 2, SortBy: SortByName, Order: OrderAsc})
	require.NoError(t, err)
	assert.Nil(t, res.NextPageLink)
}

func TestListSearchFiltersBeforePagination(t *testing.T) {
	repo := &fakeRepo{}
	seedRecords(repo, "holiday-1", "holiday-2", "work-1")
	svc := newTestService(repo, newFakeStorage())

	res, err := svc.List(context.Background(), ListParams{Page: 1, Limit: 1, SortBy: SortByName, Order: OrderAsc, Search: "HOLIDAY"})
	require.NoError(t, err)

	assert.Equal(t, []string{"holiday-1"}, listNames(res))
	assert.Equal(t, 2, res.TotalRecords)
	assert.Equal(t, 2, res.TotalPages)
	require.NotNil(t, res.NextPageLink)
	assert.Contains(t, *res.NextPageLink, "search=HOLIDAY")
}

func TestListInvalidSortField(t *testing.T) {
	repo := &fakeRepo{}
	seedRecords(repo, "a")
	svc := newTestService(repo, newFakeStorage())

	_, err := svc.List(context.Background(), ListParams{Page: 1, Limit: 10, SortBy: "Size", Order: OrderAsc})
	require.ErrorIs(t, err, ErrInvalidSortField)
	assert.Contains(t, err.Error(), "Size")
	assert.Zero(t, repo.listCalls)
}

func TestListSignsEveryRecordFreshly(t *testing.T) {
	repo := &fakeRepo{}
	seedRecords(repo, "a", "b")
	store := newFakeStorage()
	svc := newTestService(repo, store)

	first, err := svc.List(context.Background(), ListParams{Page: 1, Limit: 10, SortBy: SortByName, Order: OrderAsc})
	require.NoError(t, err)
	second, err := svc.List(context.Background(), ListParams{Page: 1, Limit: 10, SortBy: SortByName, Order: OrderAsc})
	require.NoError(t, err)

	assert.Contains(t, first.Data[0].SignedURL, "/GET/a")
	// Signing happens per request, never cached.
	assert.NotEqual(t, first.Data[0].SignedURL, second.Data[0].SignedURL)
	assert.Equal(t, 4, store.presigned)
}

func TestIssueUploadURLs(t *testing.T) {
	svc := newTestService(&fakeRepo{}, newFakeStorage())

	_, err := svc.IssueUploadURLs(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoFileNames)

	urls, err := svc.IssueUploadURLs(context.Background(), []string{"cat.jpg", "dog.png"})
	require.NoError(t, err)
	require.Len(t, urls, 2)
	assert.Equal(t, "cat.jpg", urls[0].FileName)
	assert.Contains(t, urls[0].URL, "/PUT/cat.jpg")
	assert.Contains(t, urls[1].URL, "/PUT/dog.png")
}

func TestUpdateDescriptionNotFound(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo, newFakeStorage())

	err := svc.UpdateDescription(context.Background(), "missing", "new text")
	assert.ErrorIs(t, err, ErrNotFound)
	// Never creates a record.
	assert.Empty(t, repo.records)
}

func TestUpdateDescriptionIdempotent(t *testing.T) {
	repo := &fakeRepo{}
	seedRecords(repo, "a")
	svc := newTestService(repo, newFakeStorage())

	require.NoError(t, svc.UpdateDescription(context.Background(), "a-id", "same text"))
	require.NoError(t, svc.UpdateDescription(context.Background(), "a-id", "same text"))
	assert.Equal(t, "same text", repo.records[0].Description)
}

func TestDeleteNotFoundSkipsStorage(t *testing.T) {
	repo := &fakeRepo{}
	store := newFakeStorage()
	svc := newTestService(repo, store)

	err := svc.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, store.deletedKeys)
}

func TestDeleteRemovesObjectThenRecord(t *testing.T) {
	repo := &fakeRepo{}
	seedRecords(repo, "a")
	store := newFakeStorage()
	store.objects["a"] = []byte("bytes")
	svc := newTestService(repo, store)

	require.NoError(t, svc.Delete(context.Background(), "a-id"))
	assert.Equal(t, []string{"a"}, store.deletedKeys)
	assert.Empty(t, repo.records)
}

func TestDeleteReportsOrphanedRecord(t *testing.T) {
	repo := &fakeRepo{}
	seedRecords(repo, "a")
	repo.deleteErr = errors.New("store rejected the write")
	store := newFakeStorage()
	svc := newTestService(repo, store)

	err := svc.Delete(context.Background(), "a-id")
	require.Error(t, err)
	// The object delete already happened; the record remains orphaned.
	assert.Equal(t, []string{"a"}, store.deletedKeys)
	assert.Len(t, repo.records, 1)
}
