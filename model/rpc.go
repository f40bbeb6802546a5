package model

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/rushteam/revrank/core"
	"github.com/rushteam/revrank/logging"
	"github.com/rushteam/revrank/metrics"
)

// RPCClassifier 通过 HTTP 调用外部模型服务（GBDT、随机森林、TF Serving 等）。
//
// 请求格式（JSON）：
//
//	{"instances": [[14 个特征], ...]}
//
// 响应格式（JSON）：
//
//	{"predictions": [1, 0, ...]}
//
// 非整数的预测值按无效输出处理（映射为 -1）。
// 调用经过限流与熔断：熔断打开期间直接失败，由调用方决定重试或降级。
type RPCClassifier struct {
	name     string
	Endpoint string // 例如 "http://localhost:8080/v1/models/pairwise:predict"
	Timeout  time.Duration
	Client   *http.Client

	limiter *rate.Limiter
	cb      *gobreaker.CircuitBreaker[[]int]
}

// RPCOption 配置 RPCClassifier。
type RPCOption func(*RPCClassifier)

// WithRateLimit 限制每秒请求数，burst 为突发上限。
func WithRateLimit(rps float64, burst int) RPCOption {
	return func(m *RPCClassifier) {
		if rps > 0 {
			m.limiter = rate.NewLimiter(rate.Limit(rps), max(burst, 1))
		}
	}
}

// WithHTTPClient 替换默认 http.Client。
func WithHTTPClient(c *http.Client) RPCOption {
	return func(m *RPCClassifier) { m.Client = c }
}

func NewRPCClassifier(name, endpoint string, timeout time.Duration, opts ...RPCOption) *RPCClassifier {
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	m := &RPCClassifier{
		name:     name,
		Endpoint: endpoint,
		Timeout:  timeout,
		Client:   &http.Client{Timeout: timeout},
		limiter:  rate.NewLimiter(rate.Inf, 1),
	}
	for _, opt := range opts {
		opt(m)
	}

	metrics.ClassifierBreakerState.WithLabelValues(name).Set(0)
	m.cb = gobreaker.NewCircuitBreaker[[]int](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("classifier", name).Str("from", from.String()).Str("to", to.String()).
				Msg("classifier circuit breaker state changed")
			metrics.ClassifierBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
		},
	})
	return m
}

func (m *RPCClassifier) Name() string          { return m.name }
func (m *RPCClassifier) ConcurrencySafe() bool { return true }

func (m *RPCClassifier) Predict(ctx context.Context, rows [][]float64) ([]int, error) {
	if len(rows) == 0 {
		return []int{}, nil
	}
	if err := checkRows(rows); err != nil {
		return nil, err
	}
	if err := m.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}
	out, err := m.cb.Execute(func() ([]int, error) {
		return m.call(ctx, rows)
	})
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleModel, core.ErrorCodeUnavailable, "model: "+m.name, err)
	}
	return out, nil
}

func (m *RPCClassifier) call(ctx context.Context, rows [][]float64) ([]int, error) {
	body, err := json.Marshal(map[string]any{"instances": rows})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rpc call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if err != nil {
			return nil, fmt.Errorf("rpc error: status=%d, read body failed: %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("rpc error: status=%d, body=%s", resp.StatusCode, string(msg))
	}

	var result struct {
		Predictions []float64 `json:"predictions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(result.Predictions) != len(rows) {
		return nil, fmt.Errorf("response predictions count mismatch: expected %d, got %d", len(rows), len(result.Predictions))
	}

	out := make([]int, len(rows))
	for i, p := range result.Predictions {
		out[i] = outcomeOf(p)
	}
	return out, nil
}

func outcomeOf(p float64) int {
	if p != math.Trunc(p) || math.IsInf(p, 0) {
		return -1
	}
	return int(p)
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
