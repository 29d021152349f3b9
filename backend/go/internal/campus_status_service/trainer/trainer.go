package trainer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"CampusEat/backend/go/internal/config"
	pkghttp "CampusEat/backend/go/pkg/http"
)

// Client 封装了对外部模型训练服务 (ml-server) 的访问。
// 训练请求是 fire-and-forget 的：失败由调用方记录日志，
// 不重试、不向用户暴露，下一周的触发自然补救。
type Client struct {
	http    *pkghttp.Client
	baseURL string
	apiKey  string
	timeout time.Duration
}

// NewClient 创建一个新的训练服务客户端。
// 出站调用经过熔断器：训练服务长时间不可用时快速失败，避免挂住调度循环。
func NewClient(cfg config.MLServerConfig, breakerCfg config.CircuitBreakerConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("未配置训练服务地址")
	}

	httpClient, err := pkghttp.NewClient(breakerCfg)
	if err != nil {
		return nil, fmt.Errorf("创建 HTTP 客户端失败: %w", err)
	}

	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(cfg.URL, "/"),
		apiKey:  cfg.APIKey,
		timeout: config.ParseDurationOr(cfg.Timeout, 30*time.Second),
	}, nil
}

// TrainAll 请求训练服务为所有大学重建预测模型。
// 响应体不消费，只检查状态码；训练结果由训练服务直接写入共享存储。
func (c *Client) TrainAll(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/train-all", nil)
	if err != nil {
		return fmt.Errorf("构造训练请求失败: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("训练请求发送失败: %w", err)
	}
	defer resp.Body.Close()
	// 丢弃响应体以复用连接。
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("训练服务返回异常状态码: %d", resp.StatusCode)
	}

	return nil
}
