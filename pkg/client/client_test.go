package client

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/haierkeys/ecrit-note-service/pkg/editor"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateNote(t *testing.T) {
	var gotBody, gotAuth, gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)
		gotAuth = r.Header.Get("Authorization")
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"code":1,"status":true,"message":"ok","data":{"id":"n1"}}`)
	}))
	defer srv.Close()

	c := New(srv.URL+"/", "tok")
	err := c.UpdateNote(context.Background(), "n1", editor.Draft{Title: "T", Slug: "t", Content: "body"})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPatch, gotMethod)
	assert.Equal(t, "/api/notes/n1", gotPath)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.JSONEq(t, `{"title":"T","slug":"t","content":"body"}`, gotBody)
}

func TestUpdateNote_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = io.WriteString(w, `{"code":505,"status":false,"message":"slug already in use","details":"slug"}`)
	}))
	defer srv.Close()

	err := New(srv.URL, "tok").UpdateNote(context.Background(), "n1", editor.Draft{})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Equal(t, 505, apiErr.Code)
	assert.Equal(t, "slug already in use", apiErr.Message)
	assert.Contains(t, apiErr.Error(), "slug")
}

func TestUpdateNote_NonJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "bad gateway")
	}))
	defer srv.Close()

	err := New(srv.URL, "").UpdateNote(context.Background(), "n1", editor.Draft{})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "bad gateway", apiErr.Message)
}

func TestGetNote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"code":1,"status":true,"data":{"id":"n1","title":"T","slug":"t","content":"c","public":true,"updatedAt":"2024-01-02 03:04:05"}}`)
	}))
	defer srv.Close()

	n, err := New(srv.URL, "tok").GetNote(context.Background(), "n1")
	require.NoError(t, err)
	assert.Equal(t, "n1", n.ID)
	assert.True(t, n.Public)
	assert.Equal(t, editor.Draft{Title: "T", Slug: "t", Content: "c"}, n.Draft())
}

// 编辑器通过客户端保存，失败时得到可重试的 SaveError
func TestClientAsEditorSaver(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = io.WriteString(w, `{"code":503,"status":false,"message":"db error"}`)
			return
		}
		_, _ = io.WriteString(w, `{"code":1,"status":true}`)
	}))
	defer srv.Close()

	var _ editor.Saver = (*Client)(nil)
	ed := editor.NewCoordinator("n1", editor.Draft{}, New(srv.URL, "tok"), editor.Options{})
	defer ed.Close()

	ed.SetContent("x")
	var saveErr *editor.SaveError
	require.ErrorAs(t, ed.Save(context.Background()), &saveErr)
	var apiErr *APIError
	assert.ErrorAs(t, saveErr, &apiErr)
	assert.Equal(t, editor.StateDirty, ed.State())

	fail.Store(false)
	require.NoError(t, ed.Save(context.Background()))
	assert.Equal(t, editor.StateClean, ed.State())
}
