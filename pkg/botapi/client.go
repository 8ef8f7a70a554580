package botapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/TaraJura/trade-bot/internal/domain"
	"github.com/TaraJura/trade-bot/pkg/ratelimit"
)

// DefaultTimeout 单次请求超时
const DefaultTimeout = 10 * time.Second

// Client 交易机器人后端 /api/* 的客户端
//
// 不做重试：轮询的下一次 tick 就是重试。
type Client struct {
	client  *resty.Client
	limiter ratelimit.Limiter
}

// NewClient 创建客户端，host 形如 http://localhost:5000
func NewClient(host string, timeout time.Duration) *Client {
	host = strings.TrimRight(strings.TrimSpace(host), "/")
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	client := resty.New().
		SetBaseURL(host).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json")

	return &Client{client: client}
}

// SetLimiter 所有请求发出前先等限流额度；nil 表示不限制
func (c *Client) SetLimiter(l ratelimit.Limiter) {
	c.limiter = l
}

// BaseURL 返回后端地址
func (c *Client) BaseURL() string {
	return c.client.BaseURL
}

type requestOptions struct {
	body       any
	pathParams map[string]string
	// command 为 true 时非 2xx 也尝试解析 body（后端可能用 4xx 返回 success:false）
	command bool
}

func (c *Client) newRequest(ctx context.Context) *resty.Request {
	r := c.client.R()
	if ctx != nil {
		r.SetContext(ctx)
	}
	return r
}

func (c *Client) do(ctx context.Context, method, endpoint string, opt requestOptions, out any) error {
	if c.limiter != nil {
		waitCtx := ctx
		if waitCtx == nil {
			waitCtx = context.Background()
		}
		if err := c.limiter.Wait(waitCtx); err != nil {
			return errors.Wrapf(err, "%s %s: rate limit", method, endpoint)
		}
	}

	r := c.newRequest(ctx)
	if opt.body != nil {
		r.SetHeader("Content-Type", "application/json")
		r.SetBody(opt.body)
	}
	if len(opt.pathParams) > 0 {
		r.SetPathParams(opt.pathParams)
	}

	resp, err := r.Execute(method, endpoint)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, endpoint)
	}

	body := resp.Body()
	if !resp.IsSuccess() && !opt.command {
		return newHTTPError(method, endpoint, resp)
	}
	if len(body) == 0 {
		if !resp.IsSuccess() {
			return newHTTPError(method, endpoint, resp)
		}
		return errors.Errorf("%s %s: empty response body", method, endpoint)
	}
	if err := json.Unmarshal(body, out); err != nil {
		if !resp.IsSuccess() {
			return newHTTPError(method, endpoint, resp)
		}
		return errors.Wrapf(err, "%s %s: decode response", method, endpoint)
	}
	return nil
}

// Status GET /api/status
func (c *Client) Status(ctx context.Context) (*domain.BotStatus, error) {
	var out domain.BotStatus
	if err := c.do(ctx, http.MethodGet, "/api/status", requestOptions{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Symbols GET /api/symbols
func (c *Client) Symbols(ctx context.Context) ([]string, error) {
	var out domain.SymbolsResponse
	if err := c.do(ctx, http.MethodGet, "/api/symbols", requestOptions{}, &out); err != nil {
		return nil, err
	}
	return out.Symbols, nil
}

// Statistics GET /api/statistics
func (c *Client) Statistics(ctx context.Context) (*domain.Statistics, error) {
	var out domain.Statistics
	if err := c.do(ctx, http.MethodGet, "/api/statistics", requestOptions{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Positions GET /api/positions
func (c *Client) Positions(ctx context.Context) ([]domain.Position, error) {
	var out domain.PositionsResponse
	if err := c.do(ctx, http.MethodGet, "/api/positions", requestOptions{}, &out); err != nil {
		return nil, err
	}
	return out.Positions, nil
}

// Balances GET /api/balance
func (c *Client) Balances(ctx context.Context) ([]domain.AssetBalance, error) {
	var out domain.BalancesResponse
	if err := c.do(ctx, http.MethodGet, "/api/balance", requestOptions{}, &out); err != nil {
		return nil, err
	}
	return out.Balances, nil
}

// Config GET /api/config
func (c *Client) Config(ctx context.Context) (*domain.BotConfig, error) {
	var out domain.BotConfig
	if err := c.do(ctx, http.MethodGet, "/api/config", requestOptions{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Start POST /api/start
func (c *Client) Start(ctx context.Context, req domain.StartRequest) (*domain.CommandResult, error) {
	return c.command(ctx, http.MethodPost, "/api/start", requestOptions{body: req})
}

// Stop POST /api/stop
func (c *Client) Stop(ctx context.Context) (*domain.CommandResult, error) {
	return c.command(ctx, http.MethodPost, "/api/stop", requestOptions{})
}

// SaveConfig POST /api/config
func (c *Client) SaveConfig(ctx context.Context, req domain.ConfigRequest) (*domain.CommandResult, error) {
	return c.command(ctx, http.MethodPost, "/api/config", requestOptions{body: req})
}

// CreatePosition POST /api/positions
func (c *Client) CreatePosition(ctx context.Context, req domain.CreatePositionRequest) (*domain.CommandResult, error) {
	return c.command(ctx, http.MethodPost, "/api/positions", requestOptions{body: req})
}

// UpdatePosition PUT /api/positions/{symbol}
func (c *Client) UpdatePosition(ctx context.Context, symbol string, req domain.UpdatePositionRequest) (*domain.CommandResult, error) {
	return c.command(ctx, http.MethodPut, "/api/positions/{symbol}", requestOptions{
		body:       req,
		pathParams: map[string]string{"symbol": symbol},
	})
}

// ClosePosition DELETE /api/positions/{symbol}
func (c *Client) ClosePosition(ctx context.Context, symbol string) (*domain.CommandResult, error) {
	return c.command(ctx, http.MethodDelete, "/api/positions/{symbol}", requestOptions{
		pathParams: map[string]string{"symbol": symbol},
	})
}

func (c *Client) command(ctx context.Context, method, endpoint string, opt requestOptions) (*domain.CommandResult, error) {
	opt.command = true
	var out domain.CommandResult
	if err := c.do(ctx, method, endpoint, opt, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
