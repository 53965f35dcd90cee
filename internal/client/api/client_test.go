package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return NewClient(ts.URL, 2*time.Second)
}

func TestRegister_SendsCredentials(t *testing.T) {
	var got credentials

	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/register", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	})

	err := c.Register(context.Background(), "alice", []byte("secret"))
	require.NoError(t, err)
	assert.Equal(t, credentials{Username: "alice", Password: "secret"}, got)
}

func TestRegister_DuplicateSurfacesAPIError(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"code":"already_exists","message":"user already exists"}`))
	})

	err := c.Register(context.Background(), "alice", []byte("secret"))
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Equal(t, "already_exists", apiErr.Code)
}

func TestLogin_WrongPassword(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"code":"unauthorized","message":"wrong password"}`))
	})

	err := c.Login(context.Background(), "alice", []byte("bad"))

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "unauthorized", apiErr.Code)
}

func TestList(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/files", r.URL.Path)
		assert.Equal(t, "alice", r.URL.Query().Get("username"))
		assert.Equal(t, "docs", r.URL.Query().Get("path"))
		_, _ = w.Write([]byte(`{"folders":["sub"],"files":["a.txt"]}`))
	})

	l, err := c.List(context.Background(), "alice", "docs")
	require.NoError(t, err)
	assert.Equal(t, []string{"sub"}, l.Folders)
	assert.Equal(t, []string{"a.txt"}, l.Files)
}

func TestUpload_SendsMultipart(t *testing.T) {
	var gotName string
	var gotBody []byte

	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/files/upload", r.URL.Path)
		f, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()

		gotName = header.Filename
		gotBody, err = io.ReadAll(f)
		require.NoError(t, err)

		assert.Equal(t, "alice", r.FormValue("username"))
		assert.Equal(t, "docs", r.FormValue("path"))

		w.WriteHeader(http.StatusCreated)
	})

	name, err := c.Upload(context.Background(), "alice", "docs", "/tmp/report.pdf", strings.NewReader("pdf bytes"))
	require.NoError(t, err)

	assert.Equal(t, "report.pdf", name)
	assert.Equal(t, "report.pdf", gotName)
	assert.Equal(t, []byte("pdf bytes"), gotBody)
}

func TestDownload_WritesBody(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/files/download", r.URL.Path)
		assert.Equal(t, "a.txt", r.URL.Query().Get("name"))
		_, _ = w.Write([]byte("file payload"))
	})

	var buf bytes.Buffer
	n, err := c.Download(context.Background(), "alice", "", "a.txt", &buf)
	require.NoError(t, err)
	assert.Equal(t, int64(len("file payload")), n)
	assert.Equal(t, "file payload", buf.String())
}

func TestDownload_Missing(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"code":"not_found","message":"entry not found"}`))
	})

	var buf bytes.Buffer
	_, err := c.Download(context.Background(), "alice", "", "nope.txt", &buf)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "not_found", apiErr.Code)
	assert.Zero(t, buf.Len())
}

func TestAPIError_NonJSONBody(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gateway exploded", http.StatusBadGateway)
	})

	err := c.CreateFolder(context.Background(), "alice", "", "docs")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "unexpected_response", apiErr.Code)
}
