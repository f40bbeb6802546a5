package core

import "github.com/rushteam/revrank/pkg/utils"

// Item 是排序链路中的统一承载结构：一条评论及其在各阶段累积的状态。
//
// 生命周期：
//   - 由输入行创建（ID 为输入行号，稳定不变）
//   - 质量过滤阶段被判定为不可用时整体丢弃
//   - 特征抽取阶段写入 Features（只追加，不修改 Text）
//   - 锦标赛排序阶段写入 Win / Lose / Score
//
// Labels 用于解释与观测（过滤原因、降级原因、排序模型等）；Score 用于排序决策。
type Item struct {
	ID       int
	GroupKey string
	Text     string

	Features *FeatureVector

	Win   int
	Lose  int
	Score float64

	// Label 是评估模式下的真实标签（0/1），非评估模式为 nil。
	Label *int

	Labels map[string]utils.Label
}

func NewItem(id int, groupKey, text string) *Item {
	return &Item{
		ID:       id,
		GroupKey: groupKey,
		Text:     text,
		Labels:   make(map[string]utils.Label),
	}
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}

// Ranked 投影为对外持久化的 RankedResult，特征与胜负计数不再外传。
func (it *Item) Ranked() RankedResult {
	return RankedResult{
		ID:       it.ID,
		GroupKey: it.GroupKey,
		Text:     it.Text,
		Score:    it.Score,
	}
}

// RankedResult 是排序结果中唯一对外输出的部分。
type RankedResult struct {
	ID       int     `json:"id"`
	GroupKey string  `json:"group_key"`
	Text     string  `json:"text"`
	Score    float64 `json:"score"`
}

// Project 将 items 按当前顺序投影为 RankedResult 列表。
func Project(items []*Item) []RankedResult {
	out := make([]RankedResult, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		out = append(out, it.Ranked())
	}
	return out
}
