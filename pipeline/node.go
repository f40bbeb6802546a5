package pipeline

import (
	"context"

	"github.com/rushteam/revrank/core"
)

// Kind 用于标记 Node 类型，方便观测/治理/编排（例如按阶段打点）。
type Kind string

const (
	KindFilter   Kind = "filter"   // 质量过滤阶段：剔除不可用评论
	KindFeature  Kind = "feature"  // 特征阶段：为每条评论计算特征向量
	KindRank     Kind = "rank"     // 排序阶段：组内两两比较并打分
	KindEvaluate Kind = "evaluate" // 评估阶段：与真实标签对比（仅评估模式）
)

// Node 是 Pipeline 的最小可扩展单元。
// 统一采用“输入 items -> 输出 items”的形态，方便 Filter 截断、Rank 重排等操作。
type Node interface {
	Name() string
	Kind() Kind

	Process(
		ctx context.Context,
		rctx *core.RunContext,
		items []*core.Item,
	) ([]*core.Item, error)
}

// NodeBuilder 根据配置构建 Node。
type NodeBuilder func(config map[string]any) (Node, error)
