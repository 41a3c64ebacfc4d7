// Package geo 酒店地址补全客户端（Nominatim 兼容接口）
// 所有失败都软化为“未命中”，绝不把错误传给导入流程
package geo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Client 受限速保护的地址查询客户端
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient 创建客户端；timeout 是单次请求的硬上限
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		// 公共地理编码服务普遍要求不超过 1 req/s
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

type searchResult struct {
	DisplayName string `json:"display_name"`
}

// Lookup 按酒店名与城市提示查询格式化地址
// 超时、网络错误、非 200、空结果一律返回 ("", false)
func (c *Client) Lookup(ctx context.Context, name, city string) (string, bool) {
	if c == nil || c.baseURL == "" || strings.TrimSpace(name) == "" {
		return "", false
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return "", false
	}

	q := name
	if city != "" {
		q += ", " + city
	}
	endpoint := c.baseURL + "/search?format=json&limit=1&q=" + url.QueryEscape(q)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", false
	}
	req.Header.Set("User-Agent", "mouhab2b-import/1.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", false
	}

	var results []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return "", false
	}
	if len(results) == 0 || results[0].DisplayName == "" {
		return "", false
	}
	return results[0].DisplayName, true
}
