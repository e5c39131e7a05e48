package images

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "tradejournal/internal/errors"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := NewStore(filepath.Join(t.TempDir(), DirName))
	require.NoError(t, err)
	return s
}

func TestPutAndGet(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	ref, err := s.Put(ctx, pngHeader)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "img_"))
	assert.True(t, strings.HasSuffix(ref, ".png"))

	data, ok := s.Get(ctx, ref)
	require.True(t, ok)
	assert.Equal(t, pngHeader, data)
}

func TestPutDefaultsToJPEG(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	ref, err := s.Put(context.Background(), []byte("just some bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(ref, ".jpg"))
}

func TestPutEmpty(t *testing.T) {
	t.Parallel()

	_, err := newTestStore(t).Put(context.Background(), nil)
	assert.ErrorIs(t, err, apperrors.ErrImage)
}

func TestPutDataURL(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()
	encoded := base64.StdEncoding.EncodeToString(pngHeader)

	for _, input := range []string{"data:image/png;base64," + encoded, encoded} {
		ref, err := s.PutDataURL(ctx, input)
		require.NoError(t, err)

		data, ok := s.Get(ctx, ref)
		require.True(t, ok)
		assert.Equal(t, pngHeader, data)
	}

	_, err := s.PutDataURL(ctx, "data:image/png;base64,%%%")
	assert.ErrorIs(t, err, apperrors.ErrImage)
}

func TestDataURL(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	ref, err := s.Put(ctx, pngHeader)
	require.NoError(t, err)

	assert.Equal(t, "data:image/png;base64,"+base64.StdEncoding.EncodeToString(pngHeader), s.DataURL(ctx, ref))
	assert.Equal(t, "", s.DataURL(ctx, "img_missing.jpg"))
}

func TestLegacyReference(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "img_1700000000000.jpg"), []byte{0xff, 0xd8}, 0644))

	url := s.DataURL(context.Background(), "img_1700000000000.jpg")
	assert.True(t, strings.HasPrefix(url, "data:image/jpeg;base64,"))
}

func TestPathTraversalRejected(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	s, err := NewStore(filepath.Join(root, DirName))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(root, "secret.txt"), []byte("secret"), 0644))

	for _, ref := range []string{"../secret.txt", "..", "", "a/b.jpg", `..\secret.txt`, ".hidden"} {
		_, ok := s.Get(context.Background(), ref)
		assert.False(t, ok, ref)
		assert.False(t, ValidReference(ref), ref)
	}
	assert.Error(t, s.Delete(context.Background(), "../secret.txt"))
	assert.FileExists(t, filepath.Join(root, "secret.txt"))
}

func TestDelete(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	ref, err := s.Put(ctx, pngHeader)
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, ref))
	_, ok := s.Get(ctx, ref)
	assert.False(t, ok)

	assert.NoError(t, s.Delete(ctx, ref))
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "image/png", ContentType("img_x.PNG"))
	assert.Equal(t, "image/webp", ContentType("img_x.webp"))
	assert.Equal(t, "image/jpeg", ContentType("img_x"))
}
