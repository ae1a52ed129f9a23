package uploads

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, maxSize int64) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir(), "/images", maxSize)
	require.NoError(t, err)
	return store
}

// uploadHeader builds a multipart.FileHeader the way a real form post would.
func uploadHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(32<<20))

	_, header, err := req.FormFile("image")
	require.NoError(t, err)
	return header
}

func TestStore_Save(t *testing.T) {
	store := newTestStore(t, 0)

	path, err := store.Save(uploadHeader(t, "photo.PNG", []byte("fake png bytes")))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(path, "/images/product-"), "public path: %s", path)
	assert.True(t, strings.HasSuffix(path, ".png"), "extension is lowercased: %s", path)

	name := filepath.Base(path)
	data, err := os.ReadFile(filepath.Join(store.dir, name))
	require.NoError(t, err)
	assert.Equal(t, []byte("fake png bytes"), data)
}

func TestStore_Save_RejectsNonImages(t *testing.T) {
	store := newTestStore(t, 0)

	for _, filename := range []string{"malware.exe", "page.html", "noextension", "archive.tar.gz"} {
		t.Run(filename, func(t *testing.T) {
			_, err := store.Save(uploadHeader(t, filename, []byte("data")))
			assert.ErrorIs(t, err, ErrNotAnImage)
		})
	}
}

func TestStore_Save_RejectsOversized(t *testing.T) {
	store := newTestStore(t, 10)

	_, err := store.Save(uploadHeader(t, "big.jpg", bytes.Repeat([]byte("x"), 11)))
	assert.ErrorIs(t, err, ErrFileTooLarge)

	_, err = store.Save(uploadHeader(t, "small.jpg", []byte("tiny")))
	assert.NoError(t, err)
}

func TestStore_Remove(t *testing.T) {
	store := newTestStore(t, 0)

	path, err := store.Save(uploadHeader(t, "photo.jpg", []byte("data")))
	require.NoError(t, err)

	require.NoError(t, store.Remove(path))
	_, err = os.Stat(filepath.Join(store.dir, filepath.Base(path)))
	assert.True(t, os.IsNotExist(err))

	// Removing again or removing foreign paths is a no-op
	assert.NoError(t, store.Remove(path))
	assert.NoError(t, store.Remove("/elsewhere/file.jpg"))
}

func TestStore_CleanupOrphans(t *testing.T) {
	store := newTestStore(t, 0)

	kept, err := store.Save(uploadHeader(t, "kept.jpg", []byte("kept")))
	require.NoError(t, err)
	orphan, err := store.Save(uploadHeader(t, "orphan.jpg", []byte("orphan")))
	require.NoError(t, err)

	// A stray file without the product prefix is never touched
	stray := filepath.Join(store.dir, "notes.txt")
	require.NoError(t, os.WriteFile(stray, []byte("keep me"), 0644))

	removed, err := store.CleanupOrphans([]string{kept})
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = os.Stat(filepath.Join(store.dir, filepath.Base(kept)))
	assert.NoError(t, err, "referenced image survives")

	_, err = os.Stat(filepath.Join(store.dir, filepath.Base(orphan)))
	assert.True(t, os.IsNotExist(err), "orphaned image is removed")

	_, err = os.Stat(stray)
	assert.NoError(t, err, "non-product files are ignored")
}
