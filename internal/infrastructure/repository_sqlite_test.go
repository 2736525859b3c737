package infrastructure

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/media-grab-go/internal/domain"
)

func newTestRepository(t *testing.T) *SQLiteFetchRepository {
	t.Helper()
	repo, err := NewSQLiteFetchRepository(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteFetchRepository_CreateAndFind(t *testing.T) {
	repo := newTestRepository(t)

	req := domain.NewFetchRequest("https://www.tiktok.com/@u/video/123")
	require.NoError(t, repo.Create(req))

	found, err := repo.FindByID(req.ID)
	require.NoError(t, err)
	assert.Equal(t, req.URL, found.URL)
	assert.Equal(t, domain.StatusUnresolved, found.Status)
}

func TestSQLiteFetchRepository_Update(t *testing.T) {
	repo := newTestRepository(t)

	req := domain.NewFetchRequest("https://www.instagram.com/reel/abc/")
	require.NoError(t, repo.Create(req))

	req.MarkResolving()
	req.MarkResolved(&domain.ContentDescriptor{
		ID:       "abc",
		Platform: domain.PlatformInstagram,
		Kind:     domain.KindVideo,
		Title:    "a reel",
	})
	require.NoError(t, repo.Update(req))

	found, err := repo.FindByID(req.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusResolved, found.Status)
	assert.Equal(t, "a reel", found.Title)
	assert.Equal(t, domain.PlatformInstagram, found.Platform)
}

func TestSQLiteFetchRepository_FindPendingOrder(t *testing.T) {
	repo := newTestRepository(t)

	older := domain.NewFetchRequest("https://www.tiktok.com/@u/video/1")
	older.CreatedAt = time.Now().Add(-time.Hour)
	newer := domain.NewFetchRequest("https://www.tiktok.com/@u/video/2")
	active := domain.NewFetchRequest("https://www.tiktok.com/@u/video/3")
	active.MarkResolving()

	require.NoError(t, repo.Create(newer))
	require.NoError(t, repo.Create(older))
	require.NoError(t, repo.Create(active))

	pending, err := repo.FindPending()
	require.NoError(t, err)
	require.Len(t, pending, 2)
	// Submission order: oldest first.
	assert.Equal(t, older.ID, pending[0].ID)
	assert.Equal(t, newer.ID, pending[1].ID)
}

func TestSQLiteFetchRepository_CountByStatus(t *testing.T) {
	repo := newTestRepository(t)

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(domain.NewFetchRequest("https://www.tiktok.com/@u/video/1")))
	}
	failed := domain.NewFetchRequest("https://www.tiktok.com/@u/video/2")
	failed.MarkFailed(&domain.ExhaustedSourcesError{})
	require.NoError(t, repo.Create(failed))

	count, err := repo.CountByStatus(domain.StatusUnresolved)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	total, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
}

func TestSQLiteFetchRepository_Stats(t *testing.T) {
	repo := newTestRepository(t)

	pending := domain.NewFetchRequest("https://www.tiktok.com/@u/video/1")
	require.NoError(t, repo.Create(pending))

	delivered := domain.NewFetchRequest("https://www.tiktok.com/@u/video/2")
	delivered.MarkDelivered(domain.TransmitAttachment)
	require.NoError(t, repo.Create(delivered))

	// A cleaned request keeps its delivered outcome for statistics.
	cleanedDelivered := domain.NewFetchRequest("https://www.tiktok.com/@u/video/3")
	cleanedDelivered.MarkDelivered(domain.TransmitStreamed)
	cleanedDelivered.MarkCleaned()
	require.NoError(t, repo.Create(cleanedDelivered))

	cleanedRejected := domain.NewFetchRequest("https://www.tiktok.com/@u/video/4")
	cleanedRejected.MarkRejected("file exceeds size limit")
	cleanedRejected.MarkCleaned()
	require.NoError(t, repo.Create(cleanedRejected))

	cleanedFailed := domain.NewFetchRequest("https://www.tiktok.com/@u/video/5")
	cleanedFailed.MarkFailed(&domain.ExhaustedSourcesError{})
	cleanedFailed.MarkCleaned()
	require.NoError(t, repo.Create(cleanedFailed))

	stats, err := repo.GetStats()
	require.NoError(t, err)
	assert.Equal(t, int64(5), stats.Total)
	assert.Equal(t, int64(1), stats.Pending)
	assert.Equal(t, int64(2), stats.Delivered)
	assert.Equal(t, int64(1), stats.Rejected)
	assert.Equal(t, int64(1), stats.Failed)
}

func TestSQLiteFetchRepository_Delete(t *testing.T) {
	repo := newTestRepository(t)

	req := domain.NewFetchRequest("https://www.tiktok.com/@u/video/1")
	require.NoError(t, repo.Create(req))
	require.NoError(t, repo.Delete(req.ID))

	_, err := repo.FindByID(req.ID)
	assert.Error(t, err)
}
