// Package generator 封装外部 AI 菜单生成服务的同步 HTTP 调用。
//
// 调用发生在本地事务开始之前；任何失败都不会留下部分写入。
package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"nutri-assistant/backend/config"
	pkgerrors "nutri-assistant/backend/pkg/errors"
)

const (
	generatePath = "/api/v1/meal-plans/generate"
	replacePath  = "/api/v1/meal-plans/replace"

	// maxErrorBody 错误响应体最多读取的字节数
	maxErrorBody = 2048
)

// ErrGeneratorRejected 生成服务以 4xx 拒绝请求（请求本身有误，不重试）
var ErrGeneratorRejected = errors.New("生成服务拒绝请求")

// Client 外部生成服务接口
type Client interface {
	GenerateMonth(ctx context.Context, req *MonthRequest) (*MonthResponse, error)
	ReplaceMeal(ctx context.Context, req *ReplaceRequest) (*ReplaceResponse, error)
}

type httpClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient 创建 HTTP 生成服务客户端；连接超时与读取超时固定
func NewClient(cfg *config.GeneratorConfig, logger *zap.Logger) Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.ConnectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ResponseHeaderTimeout: cfg.ReadTimeout,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
	}
	return &httpClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   cfg.ConnectTimeout + cfg.ReadTimeout,
		},
		logger: logger,
	}
}

func (c *httpClient) GenerateMonth(ctx context.Context, req *MonthRequest) (*MonthResponse, error) {
	var resp MonthResponse
	if err := c.post(ctx, generatePath, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *httpClient) ReplaceMeal(ctx context.Context, req *ReplaceRequest) (*ReplaceResponse, error) {
	var resp ReplaceResponse
	if err := c.post(ctx, replacePath, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// post 发送 JSON 请求：网络错误、超时、5xx 与无法解析的响应都归为可重试的外部服务失败
func (c *httpClient) post(ctx context.Context, path string, in, out interface{}) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("序列化生成请求失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("创建生成请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("生成服务调用失败", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("%w: %v", pkgerrors.ErrExternalService, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("生成服务调用完成",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode >= http.StatusInternalServerError {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%w: status=%d body=%s", pkgerrors.ErrExternalService, resp.StatusCode, detail)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%w: status=%d body=%s", ErrGeneratorRejected, resp.StatusCode, detail)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: 解析生成响应失败: %v", pkgerrors.ErrExternalService, err)
	}
	return nil
}
