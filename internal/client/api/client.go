// Package api implements a thin HTTP client for the FileKeeper server.
// Each method maps to one endpoint; server-side failure payloads are
// surfaced as *APIError so callers can branch on the machine code.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"
)

// APIError is the decoded failure payload of the server.
type APIError struct {
	StatusCode int
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server error %d (%s): %s", e.StatusCode, e.Code, e.Message)
}

// Listing is one directory level of a user tree.
type Listing struct {
	Folders []string `json:"folders"`
	Files   []string `json:"files"`
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type entryRequest struct {
	Username string `json:"username"`
	Path     string `json:"path"`
	Name     string `json:"name"`
}

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// apiError decodes the failure body of resp. A body that is not the
// expected JSON still yields a usable *APIError with the raw status.
func apiError(resp *http.Response) error {
	e := &APIError{StatusCode: resp.StatusCode}
	if err := json.NewDecoder(resp.Body).Decode(e); err != nil {
		e.Code = "unexpected_response"
		e.Message = resp.Status
	}
	return e
}

func (c *Client) postJSON(ctx context.Context, endpoint string, body any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return apiError(resp)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// Register creates a new account. The password slice is not retained.
func (c *Client) Register(ctx context.Context, username string, password []byte) error {
	return c.postJSON(ctx, "/api/register", credentials{Username: username, Password: string(password)})
}

// Login verifies the credentials with the server.
func (c *Client) Login(ctx context.Context, username string, password []byte) error {
	return c.postJSON(ctx, "/api/login", credentials{Username: username, Password: string(password)})
}

// List returns the folders and files one level under relPath.
func (c *Client) List(ctx context.Context, username, relPath string) (*Listing, error) {
	q := url.Values{"username": {username}, "path": {relPath}}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/files?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}

	var l Listing
	if err := json.NewDecoder(resp.Body).Decode(&l); err != nil {
		return nil, err
	}
	return &l, nil
}

// CreateFolder creates a folder named name under relPath.
func (c *Client) CreateFolder(ctx context.Context, username, relPath, name string) error {
	return c.postJSON(ctx, "/api/folders", entryRequest{Username: username, Path: relPath, Name: name})
}

// DeleteFile removes the file name under relPath.
func (c *Client) DeleteFile(ctx context.Context, username, relPath, name string) error {
	return c.postJSON(ctx, "/api/files/delete", entryRequest{Username: username, Path: relPath, Name: name})
}

// DeleteFolder removes the folder name (and everything in it) under relPath.
func (c *Client) DeleteFolder(ctx context.Context, username, relPath, name string) error {
	return c.postJSON(ctx, "/api/folders/delete", entryRequest{Username: username, Path: relPath, Name: name})
}

// Upload streams the file at localPath into the folder relPath. The
// server stores it under the local file's base name, which is returned.
func (c *Client) Upload(ctx context.Context, username, relPath, localPath string, r io.Reader) (string, error) {
	name := filepath.Base(localPath)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("username", username); err != nil {
		return "", err
	}
	if err := mw.WriteField("path", relPath); err != nil {
		return "", err
	}
	fw, err := mw.CreateFormFile("file", name)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(fw, r); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/files/upload", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return "", apiError(resp)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return name, nil
}

// Download fetches the file name under relPath and writes its bytes to w.
// It returns the number of bytes written.
func (c *Client) Download(ctx context.Context, username, relPath, name string, w io.Writer) (int64, error) {
	q := url.Values{"username": {username}, "path": {relPath}, "name": {name}}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/files/download?"+q.Encode(), nil)
	if err != nil {
		return 0, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, apiError(resp)
	}

	return io.Copy(w, resp.Body)
}
