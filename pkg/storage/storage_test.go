package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStorageGet(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "report.doc"), []byte("Hello"), 0o644))

	s, err := NewFileStorage(dir)
	require.NoError(t, err)

	data, err := s.Get(context.Background(), "report.doc")
	require.NoError(t, err)
	assert.Equal(t, "Hello", string(data))
}

func TestFileStorageGetMissing(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStorage(dir)
	require.NoError(t, err)

	_, err = s.Get(context.Background(), "missing.html")
	var nf *ErrNotFound
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "missing.html", nf.Key)
	assert.Equal(t, filepath.Join(dir, "missing.html"), nf.Location)
}

func TestFileStorageGetDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
	s, err := NewFileStorage(dir)
	require.NoError(t, err)

	_, err = s.Get(context.Background(), "sub")
	require.Error(t, err)
	var nf *ErrNotFound
	assert.False(t, errors.As(err, &nf))
}

func TestFileStorageLocationIsAbsolute(t *testing.T) {
	t.Chdir(t.TempDir())
	s, err := NewFileStorage("htmls")
	require.NoError(t, err)

	assert.True(t, filepath.IsAbs(s.Base()))
	assert.Equal(t, filepath.Join(s.Base(), "index.html"), s.Location("index.html"))
}

func TestFileStorageListSkipsDirectories(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.html"), []byte("b"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.html"), []byte("a"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.html"), 0o755))
	require.NoError(t, os.Symlink(filepath.Join(dir, "a.html"), filepath.Join(dir, "link.html")))
	require.NoError(t, os.Symlink(filepath.Join(dir, "nested.html"), filepath.Join(dir, "dirlink.html")))

	s, err := NewFileStorage(dir)
	require.NoError(t, err)

	keys, err := s.List(context.Background())
	require.NoError(t, err)
	sort.Strings(keys)
	assert.Equal(t, []string{"a.html", "b.html", "link.html"}, keys)
}

func TestFileStorageListMissingRoot(t *testing.T) {
	s, err := NewFileStorage(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)

	_, err = s.List(context.Background())
	var nf *ErrNotFound
	require.True(t, errors.As(err, &nf))
	assert.Empty(t, nf.Key)
	assert.Contains(t, nf.Error(), "storage root not found")
}

func TestFileStoragePutAndPing(t *testing.T) {
	base := filepath.Join(t.TempDir(), "htmls")
	s, err := NewFileStorage(base)
	require.NoError(t, err)

	require.Error(t, s.Ping(context.Background()))
	require.NoError(t, s.Put(context.Background(), "index.html", strings.NewReader("<p>hi</p>")))
	require.NoError(t, s.Ping(context.Background()))

	data, err := os.ReadFile(filepath.Join(base, "index.html"))
	require.NoError(t, err)
	assert.Equal(t, "<p>hi</p>", string(data))
}

func TestMemoryStorage(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStorage("test")
	require.NoError(t, m.Put(ctx, "a.html", strings.NewReader("A")))

	data, err := m.Get(ctx, "a.html")
	require.NoError(t, err)
	assert.Equal(t, "A", string(data))

	// returned slice is a copy
	data[0] = 'Z'
	again, _ := m.Get(ctx, "a.html")
	assert.Equal(t, "A", string(again))

	m.Delete("a.html")
	_, err = m.Get(ctx, "a.html")
	var nf *ErrNotFound
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "mem://test/a.html", nf.Location)
}

func TestDemoStorageHasRoutePages(t *testing.T) {
	m := NewDemoStorage()
	keys, err := m.List(context.Background())
	require.NoError(t, err)
	sort.Strings(keys)
	assert.Equal(t, []string{"index.html", "index2.html", "index3.html", "index4.html"}, keys)
}

func TestS3Location(t *testing.T) {
	s := &S3Storage{bucketName: "pages"}
	assert.Equal(t, "s3://pages/pages/index.html", s.Location("index.html"))
	assert.Equal(t, "s3", s.Backend())
}
