// Package client HTTP client for the note API, used by the editor to save drafts
// Package client 笔记 API 的 HTTP 客户端，编辑器通过它保存草稿
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/haierkeys/ecrit-note-service/pkg/app"
	"github.com/haierkeys/ecrit-note-service/pkg/editor"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
)

var codec = sonic.ConfigStd

// APIError a non-success envelope returned by the server
// APIError 服务端返回的失败响应
type APIError struct {
	StatusCode int
	Code       int
	Message    string
	Details    string
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("api error %d (http %d): %s: %s", e.Code, e.StatusCode, e.Message, e.Details)
	}
	return fmt.Sprintf("api error %d (http %d): %s", e.Code, e.StatusCode, e.Message)
}

// Client 笔记 API 客户端
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// Option Client 选项
type Option func(*Client)

// WithHTTPClient 使用自定义 http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// New 创建客户端，baseURL 形如 http://127.0.0.1:9000
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Note 服务端返回的笔记
type Note struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Slug      string `json:"slug"`
	Content   string `json:"content"`
	Public    bool   `json:"public"`
	UpdatedAt string `json:"updatedAt"`
}

// Draft 转换为编辑器草稿
func (n *Note) Draft() editor.Draft {
	return editor.Draft{Title: n.Title, Slug: n.Slug, Content: n.Content}
}

type updateBody struct {
	Title   string `json:"title"`
	Slug    string `json:"slug"`
	Content string `json:"content"`
}

// UpdateNote sends PATCH /api/notes/:id; it satisfies editor.Saver
// UpdateNote 发送 PATCH /api/notes/:id，实现 editor.Saver
func (c *Client) UpdateNote(ctx context.Context, noteID string, d editor.Draft) error {
	body, err := codec.Marshal(updateBody{Title: d.Title, Slug: d.Slug, Content: d.Content})
	if err != nil {
		return errors.Wrap(err, "encode note")
	}
	return c.do(ctx, http.MethodPatch, "/api/notes/"+url.PathEscape(noteID), body, nil)
}

// GetNote 获取笔记
func (c *Client) GetNote(ctx context.Context, noteID string) (*Note, error) {
	var n Note
	if err := c.do(ctx, http.MethodGet, "/api/notes/"+url.PathEscape(noteID), nil, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out interface{}) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "read response")
	}

	var env app.Res
	if err := codec.Unmarshal(raw, &env); err != nil {
		return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
	}
	if !env.Status || resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{StatusCode: resp.StatusCode, Code: env.Code}
		if msg, ok := env.Message.(string); ok {
			apiErr.Message = msg
		}
		if details, ok := env.Details.(string); ok {
			apiErr.Details = details
		}
		return apiErr
	}
	if out == nil || env.Data == nil {
		return nil
	}
	// Data 已被解码为通用结构，重新编码后映射到目标类型
	data, err := codec.Marshal(env.Data)
	if err != nil {
		return errors.Wrap(err, "re-encode data")
	}
	return errors.Wrap(codec.Unmarshal(data, out), "decode data")
}
