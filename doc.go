// Package revrank 在商品组内对用户评论做质量过滤与排序（Review Ranking）。
//
// 设计要点：
// - Pipeline-first: 处理流程由 Node 串联（Filter → Feature → Rank → Evaluate）
// - Group-isolated: 组与组之间互不影响，单组超时或分类器故障只降级该组
// - Labels-first: 过滤类别、降级原因等以 labels 挂在评论上，便于解释与观测
package revrank

import "github.com/rushteam/revrank/pipeline"

// 轻量 facade：便于直接 import "revrank" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

const (
	KindFilter   = pipeline.KindFilter
	KindFeature  = pipeline.KindFeature
	KindRank     = pipeline.KindRank
	KindEvaluate = pipeline.KindEvaluate
)
