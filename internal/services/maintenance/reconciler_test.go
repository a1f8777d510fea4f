package maintenance

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/anoixa/photo-share/database/models"
	"github.com/anoixa/photo-share/database/repo/accounts"
	"github.com/anoixa/photo-share/database/repo/photos"
	"github.com/anoixa/photo-share/storage"
	"github.com/anoixa/photo-share/utils/generator"
)

const orphanName = "1700000000000000000_orphan.png"

type fixture struct {
	users  *accounts.Repository
	photos *photos.Repository
	blobs  *storage.LocalStorage
	rec    *Reconciler
}

func setup(t *testing.T) *fixture {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))

	blobs, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	f := &fixture{
		users:  accounts.NewRepository(db),
		photos: photos.NewRepository(db),
		blobs:  blobs,
	}
	f.rec = NewReconciler(f.users, f.photos, blobs, 10*time.Minute)
	return f
}

func (f *fixture) user(t *testing.T) *models.User {
	t.Helper()
	u := &models.User{ID: uuid.NewString(), LoginName: uuid.NewString(), Password: "x", FirstName: "A", LastName: "B"}
	require.NoError(t, f.users.Insert(context.Background(), u))
	return u
}

func (f *fixture) photo(t *testing.T, owner *models.User, withBlob bool) *models.Photo {
	t.Helper()
	ctx := context.Background()
	p := &models.Photo{ID: uuid.NewString(), FileName: generator.PhotoFileName("p.png", time.Now()), DateTime: time.Now(), UserID: owner.ID}
	if withBlob {
		require.NoError(t, f.blobs.SaveWithContext(ctx, p.FileName, bytes.NewReader([]byte("img"))))
	}
	require.NoError(t, f.photos.Insert(ctx, p))
	return p
}

func TestRun_DanglingRows(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	owner := f.user(t)
	good := f.photo(t, owner, true)
	dangling := f.photo(t, owner, false)

	stats, err := f.rec.Run(ctx, Options{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.DanglingRows)
	assert.Equal(t, 0, stats.DeletedRows)
	_, err = f.photos.FindByID(ctx, dangling.ID)
	require.NoError(t, err, "dry run keeps the row")

	stats, err = f.rec.Run(ctx, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.DeletedRows)
	assert.False(t, stats.Failed())

	_, err = f.photos.FindByID(ctx, dangling.ID)
	assert.Error(t, err)
	_, err = f.photos.FindByID(ctx, good.ID)
	assert.NoError(t, err)
}

func TestRun_OrphanBlobs(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	owner := f.user(t)
	kept := f.photo(t, owner, true)
	require.NoError(t, f.blobs.SaveWithContext(ctx, orphanName, bytes.NewReader([]byte("x"))))

	// 宽限期内的文件不处理
	stats, err := f.rec.Run(ctx, Options{StorageOnly: true})
	require.NoError(t, err)
	assert.Equal(t, 0, stats.OrphanBlobs)

	f.rec.now = func() time.Time { return time.Now().Add(time.Hour) }
	stats, err = f.rec.Run(ctx, Options{StorageOnly: true})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.OrphanBlobs)
	assert.Equal(t, 1, stats.DeletedBlobs)

	exists, err := f.blobs.Exists(ctx, orphanName)
	require.NoError(t, err)
	assert.False(t, exists)
	exists, err = f.blobs.Exists(ctx, kept.FileName)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestRun_StaleComments(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	owner := f.user(t)
	p := f.photo(t, owner, true)

	ghost := uuid.NewString()
	for _, author := range []string{owner.ID, ghost, ghost} {
		require.NoError(t, f.photos.AppendComment(ctx, p.ID, &models.Comment{
			ID: uuid.NewString(), Comment: "c", DateTime: time.Now(), UserID: author,
		}))
	}

	stats, err := f.rec.Run(ctx, Options{DBOnly: true})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.StaleAuthors)
	assert.Equal(t, int64(2), stats.PulledComments)

	stored, err := f.photos.FindByID(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, stored.Comments, 1)
	assert.Equal(t, owner.ID, stored.Comments[0].UserID)
}

func TestRun_DBOnlySkipsStorage(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	require.NoError(t, f.blobs.SaveWithContext(ctx, orphanName, bytes.NewReader([]byte("x"))))
	f.rec.now = func() time.Time { return time.Now().Add(time.Hour) }

	stats, err := f.rec.Run(ctx, Options{DBOnly: true})
	require.NoError(t, err)
	assert.Equal(t, 0, stats.OrphanBlobs)

	exists, err := f.blobs.Exists(ctx, orphanName)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestRun_SkipsForeignObjects(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	require.NoError(t, f.blobs.SaveWithContext(ctx, "README.txt", bytes.NewReader([]byte("x"))))
	require.NoError(t, f.blobs.SaveWithContext(ctx, orphanName, bytes.NewReader([]byte("x"))))
	f.rec.now = func() time.Time { return time.Now().Add(time.Hour) }

	stats, err := f.rec.Run(ctx, Options{StorageOnly: true})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.OrphanBlobs)

	exists, err := f.blobs.Exists(ctx, "README.txt")
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = f.blobs.Exists(ctx, orphanName)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRun_OrphanOwners(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	alive := f.user(t)
	gone := f.user(t)
	kept := f.photo(t, alive, true)
	first := f.photo(t, gone, true)
	second := f.photo(t, gone, true)
	require.NoError(t, f.users.DeleteByID(ctx, gone.ID))

	stats, err := f.rec.Run(ctx, Options{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.OrphanOwners)
	assert.Equal(t, 0, stats.DeletedRows)
	_, err = f.photos.FindByID(ctx, first.ID)
	require.NoError(t, err, "dry run keeps the row")

	stats, err = f.rec.Run(ctx, Options{DBOnly: true})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.OrphanOwners)
	assert.Equal(t, 2, stats.DeletedRows)
	assert.Equal(t, 2, stats.DeletedBlobs)
	assert.False(t, stats.Failed())

	for _, p := range []*models.Photo{first, second} {
		_, err = f.photos.FindByID(ctx, p.ID)
		assert.Error(t, err)
		exists, err := f.blobs.Exists(ctx, p.FileName)
		require.NoError(t, err)
		assert.False(t, exists)
	}
	_, err = f.photos.FindByID(ctx, kept.ID)
	assert.NoError(t, err)
}

func TestScanner_StartStop(t *testing.T) {
	f := setup(t)
	s := NewScanner(f.rec, 10*time.Millisecond)
	s.Start()
	time.Sleep(30 * time.Millisecond)
	s.Stop()
	s.Stop()
}
