package archive

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"testing"
	"time"

	"github.com/anoixa/photo-share/database"
	"github.com/anoixa/photo-share/database/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newProvider(t *testing.T) database.Provider {
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	p := database.NewGormProviderFromDB(db, "sqlite")
	require.NoError(t, p.Migrate(context.Background()))
	return p
}

func seed(t *testing.T, p database.Provider) (*models.User, *models.Photo) {
	ctx := context.Background()
	u := &models.User{
		ID:        uuid.NewString(),
		LoginName: "amy",
		Password:  "$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA",
		FirstName: "Amy",
		LastName:  "Lee",
		Location:  "Oslo",
	}
	require.NoError(t, p.Users().Insert(ctx, u))

	now := time.Now().UTC().Truncate(time.Second)
	photo := &models.Photo{
		ID:       uuid.NewString(),
		FileName: "1700000000000000000_cat.png",
		DateTime: now,
		UserID:   u.ID,
		Comments: []models.Comment{
			{ID: uuid.NewString(), Comment: "first", DateTime: now, UserID: u.ID},
			{ID: uuid.NewString(), Comment: "second", DateTime: now.Add(time.Minute), UserID: u.ID},
		},
	}
	require.NoError(t, p.Photos().Insert(ctx, photo))
	return u, photo
}

func TestExportImport_RoundTrip(t *testing.T) {
	ctx := context.Background()
	src := newProvider(t)
	u, photo := seed(t, src)

	var buf bytes.Buffer
	meta, err := Export(ctx, src, &buf)
	require.NoError(t, err)
	assert.Equal(t, int64(1), meta.RecordCount["users"])
	assert.Equal(t, int64(1), meta.RecordCount["photos"])

	dst := newProvider(t)
	stats, err := Import(ctx, dst, bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Users)
	assert.Equal(t, 1, stats.Photos)
	assert.Equal(t, "sqlite", stats.Metadata.Database)

	got, err := dst.Users().FindByLoginName(ctx, "AMY")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, u.Password, got.Password)
	assert.Equal(t, "Oslo", got.Location)

	gotPhoto, err := dst.Photos().FindByID(ctx, photo.ID)
	require.NoError(t, err)
	require.Len(t, gotPhoto.Comments, 2)
	assert.Equal(t, "first", gotPhoto.Comments[0].Comment)
	assert.Equal(t, "second", gotPhoto.Comments[1].Comment)
}

// TestImport_SkipsExisting 测试重复导入时跳过已有记录
func TestImport_SkipsExisting(t *testing.T) {
	ctx := context.Background()
	src := newProvider(t)
	seed(t, src)

	var buf bytes.Buffer
	_, err := Export(ctx, src, &buf)
	require.NoError(t, err)

	stats, err := Import(ctx, src, bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Users)
	assert.Equal(t, 1, stats.SkippedUsers)
	assert.Equal(t, 1, stats.SkippedPhotos)

	n, err := src.Photos().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestImport_InvalidArchive(t *testing.T) {
	_, err := Import(context.Background(), newProvider(t), bytes.NewReader([]byte("not gzip")))
	assert.Error(t, err)
}

func TestImport_MissingMetadata(t *testing.T) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	require.NoError(t, tw.WriteHeader(&tar.Header{Name: usersFile, Mode: 0644, Size: 0}))
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())

	_, err := Import(context.Background(), newProvider(t), io.Reader(&buf))
	assert.ErrorContains(t, err, metadataFile)
}
