// Package feast 封装 Feast 在线特征存储，用于读取上游 NLP 任务预先物化的评论得分。
package feast

import (
	"context"
	"time"
)

// Client 按实体行批量读取在线特征。两种传输（gRPC、HTTP feature server）都实现它。
type Client interface {
	GetOnlineFeatures(ctx context.Context, req *GetOnlineFeaturesRequest) (*GetOnlineFeaturesResponse, error)
	Close() error
}

// GetOnlineFeaturesRequest 中 Features 形如 "review_nlp:noun_score"，
// EntityRows 的每一行是一组实体键值，例如 review_hash -> 文本摘要。
// Project 为空时使用客户端自己的项目。
type GetOnlineFeaturesRequest struct {
	Features   []string
	EntityRows []map[string]string
	Project    string
}

// GetOnlineFeaturesResponse 的 Rows 与请求的 EntityRows 按下标对应，
// 每行以去掉视图前缀的特征名为 key；缺失或非数值的特征不出现。
type GetOnlineFeaturesResponse struct {
	Rows []map[string]float64
}

// ClientConfig 是两种传输共用的连接参数。
type ClientConfig struct {
	Timeout time.Duration
	Token   string
	TLS     bool
}

type ClientOption func(*ClientConfig)

// WithTimeout 设置单次请求超时。
func WithTimeout(d time.Duration) ClientOption {
	return func(c *ClientConfig) { c.Timeout = d }
}

// WithToken 使用静态 token 认证；gRPC 下 tls 决定是否走 TLS。
func WithToken(token string, tls bool) ClientOption {
	return func(c *ClientConfig) {
		c.Token = token
		c.TLS = tls
	}
}
