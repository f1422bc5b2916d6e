package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/fishpi/gofish/pkg/config"
	"github.com/fishpi/gofish/pkg/logger"
	"github.com/fishpi/gofish/pkg/metrics"
	"go.uber.org/zap"
)

// Client REST 客户端，负责 token 管理和 HTTP 收发
type Client struct {
	http      *http.Client
	baseURL   string
	userAgent string

	mu    sync.RWMutex
	token string
}

// NewClient 创建 REST 客户端
func NewClient(cfg config.APIConfig) *Client {
	return &Client{
		http: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
	}
}

// BaseURL 返回 API 基础地址
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Token 返回当前 token，未登录时为空
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetToken 更新 token，节点发现可能下发新的 apiKey
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// RequireToken 返回当前 token，未登录时报 ErrUnauthenticated
func (c *Client) RequireToken() (string, error) {
	token := c.Token()
	if token == "" {
		return "", ErrUnauthenticated
	}
	return token, nil
}

// WebSocketURL 将服务端下发的路径补全为完整 ws 地址
func (c *Client) WebSocketURL(path string) string {
	if strings.HasPrefix(path, "ws://") || strings.HasPrefix(path, "wss://") {
		return path
	}
	scheme := "ws"
	if strings.HasPrefix(c.baseURL, "https") {
		scheme = "wss"
	}
	host := strings.TrimPrefix(strings.TrimPrefix(c.baseURL, "https://"), "http://")
	return fmt.Sprintf("%s://%s/%s", scheme, host, strings.TrimLeft(path, "/"))
}

// Get 发起 GET 请求并解析 JSON 响应
func (c *Client) Get(ctx context.Context, path string, params url.Values, out any) error {
	body, err := c.do(ctx, http.MethodGet, path, params, nil)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// GetText 发起 GET 请求并返回原始文本（部分接口返回 HTML 页面）
func (c *Client) GetText(ctx context.Context, path string, params url.Values) (string, error) {
	body, err := c.do(ctx, http.MethodGet, path, params, nil)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// Post 发起 JSON POST 请求并解析响应
func (c *Client) Post(ctx context.Context, path string, payload any, out any) error {
	return c.send(ctx, http.MethodPost, path, payload, out)
}

// Delete 发起 JSON DELETE 请求并解析响应
func (c *Client) Delete(ctx context.Context, path string, payload any, out any) error {
	return c.send(ctx, http.MethodDelete, path, payload, out)
}

func (c *Client) send(ctx context.Context, method, path string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", path, err)
		}
		body = bytes.NewReader(data)
	}

	respBody, err := c.do(ctx, method, path, nil, body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, body io.Reader) ([]byte, error) {
	full := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(params) > 0 {
		full += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, full, body)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.APIRequestDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", path, err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, fmt.Errorf("%s: %w", path, ErrUnauthenticated)
	}
	if resp.StatusCode >= 400 {
		logger.Debug("api request failed",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
		)
		return nil, &Error{Endpoint: path, Code: resp.StatusCode, Msg: http.StatusText(resp.StatusCode)}
	}

	return data, nil
}

// Result 通用响应外壳
//
// 历史原因服务端存在两套成功标记：老接口用 result，节点类接口用 code，
// 两者都是 0 表示成功。
type Result struct {
	Code   *int            `json:"code"`
	Result *int            `json:"result"`
	Msg    string          `json:"msg"`
	Data   json.RawMessage `json:"data"`
}

// Ok 判断业务是否成功
func (r *Result) Ok() bool {
	if r.Code != nil {
		return *r.Code == 0
	}
	if r.Result != nil {
		return *r.Result == 0
	}
	return false
}

// Err 将失败响应转为领域错误
func (r *Result) Err(endpoint string) error {
	code := 0
	if r.Code != nil {
		code = *r.Code
	} else if r.Result != nil {
		code = *r.Result
	}
	return &Error{Endpoint: endpoint, Code: code, Msg: r.Msg}
}

// checkResult 解析通用响应外壳，失败时返回领域错误
func checkResult(endpoint string, r *Result) error {
	if r.Ok() {
		return nil
	}
	return r.Err(endpoint)
}
