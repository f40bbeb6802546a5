package feast

import (
	"context"
	"fmt"
	"strconv"
	"time"

	feastsdk "github.com/feast-dev/feast/sdk/go"

	"github.com/rushteam/revrank/core"
)

// GrpcClient 是基于官方 Feast Go SDK 的 gRPC 客户端实现。
type GrpcClient struct {
	client  *feastsdk.GrpcClient
	timeout time.Duration

	Project  string
	Endpoint string
}

// NewGrpcClient 创建 Feast gRPC 客户端，port 为 0 时使用默认端口 6565。
func NewGrpcClient(host string, port int, project string, opts ...ClientOption) (*GrpcClient, error) {
	if port == 0 {
		port = 6565
	}
	cfg := &ClientConfig{Timeout: 30 * time.Second}
	for _, opt := range opts {
		opt(cfg)
	}

	var (
		client *feastsdk.GrpcClient
		err    error
	)
	if cfg.Token != "" {
		client, err = feastsdk.NewSecureGrpcClient(host, port, feastsdk.SecurityConfig{
			EnableTLS:  cfg.TLS,
			Credential: feastsdk.NewStaticCredential(cfg.Token),
		})
	} else {
		client, err = feastsdk.NewGrpcClient(host, port)
	}
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleScorer, core.ErrorCodeUnavailable, "feast: create grpc client", err)
	}

	return &GrpcClient{
		client:   client,
		timeout:  cfg.Timeout,
		Project:  project,
		Endpoint: fmt.Sprintf("%s:%d", host, port),
	}, nil
}

// GetOnlineFeatures 获取在线特征（实现 Client 接口）
func (c *GrpcClient) GetOnlineFeatures(ctx context.Context, req *GetOnlineFeaturesRequest) (*GetOnlineFeaturesResponse, error) {
	if len(req.Features) == 0 {
		return nil, fmt.Errorf("feast: features are required")
	}
	if len(req.EntityRows) == 0 {
		return &GetOnlineFeaturesResponse{}, nil
	}
	project := req.Project
	if project == "" {
		project = c.Project
	}
	if project == "" {
		return nil, fmt.Errorf("feast: project is required")
	}

	entities := make([]feastsdk.Row, len(req.EntityRows))
	for i, row := range req.EntityRows {
		r := make(feastsdk.Row, len(row))
		for k, v := range row {
			r[k] = feastsdk.StrVal(v)
		}
		entities[i] = r
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	sdkResp, err := c.client.GetOnlineFeatures(ctx, &feastsdk.OnlineFeaturesRequest{
		Features: req.Features,
		Entities: entities,
		Project:  project,
	})
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleScorer, core.ErrorCodeUnavailable, "feast: get online features", err)
	}

	rows := sdkResp.Rows()
	if len(rows) != len(req.EntityRows) {
		return nil, fmt.Errorf("feast: response row count mismatch: expected %d, got %d", len(req.EntityRows), len(rows))
	}
	out := make([]map[string]float64, len(rows))
	for i, row := range rows {
		values := make(map[string]float64, len(req.Features))
		for _, name := range req.Features {
			val, ok := row[name]
			if !ok || val == nil {
				continue
			}
			if f, ok := numeric(val); ok {
				values[name] = f
			}
		}
		out[i] = values
	}
	return &GetOnlineFeaturesResponse{Rows: out}, nil
}

// Close 关闭客户端连接（实现 Client 接口）
func (c *GrpcClient) Close() error {
	c.client = nil
	return nil
}

// sdkValue 是 SDK 值类型（protobuf oneof）上会用到的访问器。
type sdkValue interface {
	GetDoubleVal() float64
	GetFloatVal() float32
	GetInt64Val() int64
	GetInt32Val() int32
	GetBoolVal() bool
	GetStringVal() string
}

// numeric 把 SDK 值转换为 float64。oneof 中至多一个成员非零，按类型依次取值。
func numeric(val sdkValue) (float64, bool) {
	switch {
	case val.GetDoubleVal() != 0:
		return val.GetDoubleVal(), true
	case val.GetFloatVal() != 0:
		return float64(val.GetFloatVal()), true
	case val.GetInt64Val() != 0:
		return float64(val.GetInt64Val()), true
	case val.GetInt32Val() != 0:
		return float64(val.GetInt32Val()), true
	case val.GetBoolVal():
		return 1, true
	case val.GetStringVal() != "":
		f, err := strconv.ParseFloat(val.GetStringVal(), 64)
		return f, err == nil
	default:
		// 全部为零值：数值 0 与未设置无法区分，按 0 处理
		return 0, true
	}
}

var _ Client = (*GrpcClient)(nil)
