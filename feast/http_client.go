package feast

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/rushteam/revrank/core"
)

// HTTPClient 是 Feast feature server（`feast serve`）的 HTTP 客户端实现。
type HTTPClient struct {
	// Endpoint 服务端点，例如 "http://localhost:6566"
	Endpoint string

	// Project 项目名称，feature server 只服务单个项目，仅用于日志
	Project string

	token      string
	httpClient *http.Client
}

// NewHTTPClient 创建 Feast HTTP 客户端。
func NewHTTPClient(endpoint, project string, opts ...ClientOption) *HTTPClient {
	cfg := &ClientConfig{Timeout: 30 * time.Second}
	for _, opt := range opts {
		opt(cfg)
	}
	return &HTTPClient{
		Endpoint:   strings.TrimRight(endpoint, "/"),
		Project:    project,
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type onlineRequest struct {
	Features         []string            `json:"features"`
	Entities         map[string][]string `json:"entities"`
	FullFeatureNames bool                `json:"full_feature_names"`
}

// onlineResponse 是按列组织的结果：Results[i].Values[j] 为第 i 列在第 j 个实体行上的值。
type onlineResponse struct {
	Metadata struct {
		FeatureNames []string `json:"feature_names"`
	} `json:"metadata"`
	Results []struct {
		Values   []any    `json:"values"`
		Statuses []string `json:"statuses"`
	} `json:"results"`
}

// GetOnlineFeatures 获取在线特征（实现 Client 接口）
func (c *HTTPClient) GetOnlineFeatures(ctx context.Context, req *GetOnlineFeaturesRequest) (*GetOnlineFeaturesResponse, error) {
	if len(req.Features) == 0 {
		return nil, fmt.Errorf("feast: features are required")
	}
	if len(req.EntityRows) == 0 {
		return &GetOnlineFeaturesResponse{}, nil
	}

	// 实体行转为列
	entities := make(map[string][]string)
	for _, row := range req.EntityRows {
		for k, v := range row {
			entities[k] = append(entities[k], v)
		}
	}
	for k, col := range entities {
		if len(col) != len(req.EntityRows) {
			return nil, fmt.Errorf("feast: entity %q missing from some rows", k)
		}
	}

	body, err := json.Marshal(onlineRequest{Features: req.Features, Entities: entities})
	if err != nil {
		return nil, fmt.Errorf("feast: marshal request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint+"/get-online-features", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("feast: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleScorer, core.ErrorCodeUnavailable, "feast: get online features", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, core.NewDomainError(core.ModuleScorer, core.ErrorCodeUnavailable,
			fmt.Sprintf("feast: status=%d, body=%s", resp.StatusCode, msg))
	}

	var result onlineResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("feast: decode response: %w", err)
	}
	if len(result.Metadata.FeatureNames) != len(result.Results) {
		return nil, fmt.Errorf("feast: %d feature names for %d result columns", len(result.Metadata.FeatureNames), len(result.Results))
	}

	// 响应中的列名不带 feature view 前缀
	column := make(map[string]int, len(result.Metadata.FeatureNames))
	for i, name := range result.Metadata.FeatureNames {
		column[name] = i
	}

	out := make([]map[string]float64, len(req.EntityRows))
	for i := range out {
		out[i] = make(map[string]float64, len(req.Features))
	}
	for _, ref := range req.Features {
		_, name, found := strings.Cut(ref, ":")
		if !found {
			name = ref
		}
		idx, ok := column[name]
		if !ok {
			continue
		}
		col := result.Results[idx]
		if len(col.Values) != len(req.EntityRows) {
			return nil, fmt.Errorf("feast: response row count mismatch: expected %d, got %d", len(req.EntityRows), len(col.Values))
		}
		for row, v := range col.Values {
			if row < len(col.Statuses) && col.Statuses[row] != "PRESENT" {
				continue
			}
			if f, ok := jsonNumber(v); ok {
				out[row][ref] = f
			}
		}
	}
	return &GetOnlineFeaturesResponse{Rows: out}, nil
}

func jsonNumber(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case bool:
		if val {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// Close 关闭客户端（实现 Client 接口）
func (c *HTTPClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
