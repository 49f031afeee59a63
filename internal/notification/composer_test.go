package notification

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "confreg/pkg/domain-errors"
)

func writeAsset(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("jpegbytes"), 0o644))
}

func TestComposeSubstitutesTokens(t *testing.T) {
	var gotPath, gotUser string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser = r.URL.Query().Get("user")
		w.Write([]byte("<html>{imgheader}<p>Welcome</p>{map}</html>"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	writeAsset(t, dir, "header.jpg")
	writeAsset(t, dir, "map.jpg")

	c := NewComposer(srv.URL, dir)
	content, err := c.Compose(context.Background(), "invitation", "pat.jones@example.com", nil)

	require.NoError(t, err)
	assert.Equal(t, "/invitation", gotPath)
	assert.Equal(t, "pat.jones@example.com", gotUser)
	assert.Contains(t, content.HTML, "<img src=cid:imgheader />")
	assert.Contains(t, content.HTML, "<img src=cid:map />")
	assert.NotContains(t, content.HTML, "{imgheader}")
	require.Len(t, content.Resources, 2)
	assert.Equal(t, "imgheader", content.Resources[0].CID)
}

func TestComposeLeavesUnusedTokensAlone(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><p>No images here</p></html>"))
	}))
	defer srv.Close()

	c := NewComposer(srv.URL, t.TempDir())
	content, err := c.Compose(context.Background(), "reminder", "pat.jones@example.com", nil)

	require.NoError(t, err)
	assert.Empty(t, content.Resources)
}

func TestComposeMissingAssetDropsToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>{imgheader}</html>"))
	}))
	defer srv.Close()

	c := NewComposer(srv.URL, t.TempDir())
	content, err := c.Compose(context.Background(), "invitation", "pat.jones@example.com", nil)

	require.NoError(t, err)
	assert.Equal(t, "<html></html>", content.HTML)
	assert.Empty(t, content.Resources)
}

func TestComposeTemplateServerDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewComposer(srv.URL, t.TempDir())
	_, err := c.Compose(context.Background(), "invitation", "pat.jones@example.com", nil)

	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
}
