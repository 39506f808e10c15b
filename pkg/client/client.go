// Package client is a Go client for the clouddrive HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// DefaultDedupWindow is how long a finished listing keeps answering
// identical requests.
const DefaultDedupWindow = time.Second

var (
	ErrEmptyToken = errors.New("client: empty token")
	ErrEmptyID    = errors.New("client: empty id")
	ErrEmptyName  = errors.New("client: empty name")
)

// APIError is a non-2xx response. Message comes from the error envelope.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("clouddrive: %d %s", e.StatusCode, e.Message)
}

// Client talks to one API server. It is safe for concurrent use.
type Client struct {
	addr   string
	client *http.Client
	window time.Duration

	mu      sync.Mutex
	pending map[string]*listCall
}

type listCall struct {
	done  chan struct{}
	items []Item
	err   error
}

// New returns a Client for the API rooted at addr, e.g.
// "http://localhost:5000/api". http.DefaultClient is used if client is nil.
func New(addr string, client *http.Client) *Client {
	if client == nil {
		client = http.DefaultClient
	}

	return &Client{
		addr:    strings.TrimRight(addr, "/"),
		client:  client,
		window:  DefaultDedupWindow,
		pending: make(map[string]*listCall),
	}
}

// SetDedupWindow changes how long completed listings are shared.
func (c *Client) SetDedupWindow(d time.Duration) {
	c.mu.Lock()
	c.window = d
	c.mu.Unlock()
}

func listKey(folderID, token string) string {
	folder := folderID
	if folder == "" {
		folder = "root"
	}
	prefix := token
	if len(prefix) > 10 {
		prefix = prefix[:10]
	}
	return "files-" + folder + "-" + prefix
}

// ListFiles returns the folders and files of folderID ("" is the root).
// Identical calls made while a request is in flight, or within the dedup
// window after it finished, share its result.
func (c *Client) ListFiles(ctx context.Context, token, folderID string) ([]Item, error) {
	if token == "" {
		return nil, ErrEmptyToken
	}

	key := listKey(folderID, token)

	c.mu.Lock()
	call, ok := c.pending[key]
	if !ok {
		call = &listCall{done: make(chan struct{})}
		c.pending[key] = call
		go c.runList(context.WithoutCancel(ctx), key, call, token, folderID)
	}
	c.mu.Unlock()

	select {
	case <-call.done:
		return call.items, call.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// runList performs a shared listing. Its context ignores the cancellation
// of whichever caller started it; each caller stops waiting on its own.
func (c *Client) runList(ctx context.Context, key string, call *listCall, token, folderID string) {
	call.items, call.err = c.listFiles(ctx, token, folderID)
	close(call.done)

	c.mu.Lock()
	window := c.window
	c.mu.Unlock()

	time.AfterFunc(window, func() {
		c.mu.Lock()
		if c.pending[key] == call {
			delete(c.pending, key)
		}
		c.mu.Unlock()
	})
}

func (c *Client) listFiles(ctx context.Context, token, folderID string) ([]Item, error) {
	params := url.Values{}
	if folderID != "" {
		params.Set("folderId", folderID)
	}

	var listing struct {
		Files []Item `json:"files"`
	}
	if err := c.do(ctx, http.MethodGet, "/files?"+params.Encode(), token, nil, "", &listing); err != nil {
		return nil, err
	}
	if listing.Files == nil {
		return []Item{}, nil
	}
	return listing.Files, nil
}

// forget drops every shared listing so the next call sees fresh data.
func (c *Client) forget() {
	c.mu.Lock()
	c.pending = make(map[string]*listCall)
	c.mu.Unlock()
}

// UploadFile sends src as a multipart upload into folderID ("" is the root).
func (c *Client) UploadFile(ctx context.Context, token, name string, src io.Reader, folderID string) (*File, error) {
	if token == "" {
		return nil, ErrEmptyToken
	}
	if name == "" {
		return nil, ErrEmptyName
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		return nil, fmt.Errorf("client: build upload: %w", err)
	}
	if _, err := io.Copy(part, src); err != nil {
		return nil, fmt.Errorf("client: read upload source: %w", err)
	}
	if folderID != "" {
		if err := writer.WriteField("folderId", folderID); err != nil {
			return nil, fmt.Errorf("client: build upload: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("client: build upload: %w", err)
	}

	var result struct {
		File File `json:"file"`
	}
	if err := c.do(ctx, http.MethodPost, "/files/upload", token, &body, writer.FormDataContentType(), &result); err != nil {
		return nil, err
	}

	c.forget()
	return &result.File, nil
}

func (c *Client) DeleteFile(ctx context.Context, token, id string) error {
	if id == "" {
		return ErrEmptyID
	}
	if err := c.do(ctx, http.MethodDelete, "/files/"+url.PathEscape(id), token, nil, "", nil); err != nil {
		return err
	}
	c.forget()
	return nil
}

func (c *Client) RenameFile(ctx context.Context, token, id, name string) (*File, error) {
	if id == "" {
		return nil, ErrEmptyID
	}

	var result struct {
		File File `json:"file"`
	}
	if err := c.doJSON(ctx, http.MethodPut, "/files/"+url.PathEscape(id), token, map[string]string{"name": name}, &result); err != nil {
		return nil, err
	}
	c.forget()
	return &result.File, nil
}

// MoveFile moves a file into folderID; "" moves it to the root.
func (c *Client) MoveFile(ctx context.Context, token, id, folderID string) (*File, error) {
	if id == "" {
		return nil, ErrEmptyID
	}

	var target *string
	if folderID != "" {
		target = &folderID
	}

	var result struct {
		File File `json:"file"`
	}
	if err := c.doJSON(ctx, http.MethodPatch, "/files/"+url.PathEscape(id)+"/move", token, map[string]*string{"folderId": target}, &result); err != nil {
		return nil, err
	}
	c.forget()
	return &result.File, nil
}

func (c *Client) CreateFolder(ctx context.Context, token, name, parentID string) (*Folder, error) {
	if name == "" {
		return nil, ErrEmptyName
	}

	var parent *string
	if parentID != "" {
		parent = &parentID
	}

	var result struct {
		Folder Folder `json:"folder"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/folders", token, map[string]interface{}{"name": name, "parentId": parent}, &result); err != nil {
		return nil, err
	}
	c.forget()
	return &result.Folder, nil
}

func (c *Client) StorageUsage(ctx context.Context, token string) (*Usage, error) {
	var usage Usage
	if err := c.do(ctx, http.MethodGet, "/storage", token, nil, "", &usage); err != nil {
		return nil, err
	}
	return &usage, nil
}

// DownloadURL returns a short lived link to the file content.
func (c *Client) DownloadURL(ctx context.Context, token, id string) (string, error) {
	if id == "" {
		return "", ErrEmptyID
	}

	var link struct {
		URL string `json:"url"`
	}
	if err := c.do(ctx, http.MethodGet, "/files/"+url.PathEscape(id)+"/download", token, nil, "", &link); err != nil {
		return "", err
	}
	return link.URL, nil
}

func (c *Client) doJSON(ctx context.Context, method, uri, token string, payload, obj interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("client: encode request: %w", err)
	}
	return c.do(ctx, method, uri, token, bytes.NewReader(data), "application/json", obj)
}

// do performs the request and decodes the "data" member of the response
// envelope into obj.
func (c *Client) do(ctx context.Context, method, uri, token string, body io.Reader, contentType string, obj interface{}) error {
	if token == "" {
		return ErrEmptyToken
	}

	req, err := http.NewRequestWithContext(ctx, method, c.addr+uri, body)
	if err != nil {
		return fmt.Errorf("client: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	res, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("client: %w", err)
	}
	defer res.Body.Close()

	var envelope struct {
		Data    json.RawMessage `json:"data"`
		Message string          `json:"message"`
		Error   *struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	decodeErr := json.NewDecoder(res.Body).Decode(&envelope)

	if res.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: res.StatusCode, Message: http.StatusText(res.StatusCode)}
		if decodeErr == nil && envelope.Error != nil {
			apiErr.Code = envelope.Error.Code
			if envelope.Error.Message != "" {
				apiErr.Message = envelope.Error.Message
			}
		} else if decodeErr == nil && envelope.Message != "" {
			apiErr.Message = envelope.Message
		}
		return apiErr
	}

	if decodeErr != nil {
		return fmt.Errorf("client: decode response: %w", decodeErr)
	}
	if obj == nil || len(envelope.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, obj); err != nil {
		return fmt.Errorf("client: decode data: %w", err)
	}
	return nil
}
