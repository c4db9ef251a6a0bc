package media

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectName(t *testing.T) {
	a := ObjectName("memories", "Beach Day.JPG")
	b := ObjectName("memories", "Beach Day.JPG")
	assert.True(t, strings.HasPrefix(a, "memories/"))
	assert.True(t, strings.HasSuffix(a, ".jpg"))
	assert.NotEqual(t, a, b)
}

func TestDiskPutServeRemove(t *testing.T) {
	ctx := context.Background()
	d, err := NewDisk(t.TempDir(), "/media")
	require.NoError(t, err)

	url, err := d.Put(ctx, "memories/a.jpg", "image/jpeg", strings.NewReader("jpeg-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "/media/memories/a.jpg", url)

	mux := http.NewServeMux()
	mux.Handle("/media/", d.Handler())
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.Equal(t, "jpeg-bytes", string(body))

	require.NoError(t, d.Remove(ctx, []string{url, "/media/memories/missing.jpg"}))
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	err = d.Remove(ctx, []string{"https://elsewhere.example/x.jpg"})
	assert.ErrorIs(t, err, ErrOutsideBucket)
}

func TestDiskRejectsEscapes(t *testing.T) {
	d, err := NewDisk(t.TempDir(), "/media/")
	require.NoError(t, err)

	url, err := d.Put(context.Background(), "../../etc/passwd", "text/plain", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, "/media/etc/passwd", url)

	_, err = d.Put(context.Background(), "..", "text/plain", strings.NewReader("x"))
	assert.Error(t, err)
}
