package utils

import (
	"slices"
	"strings"
)

// Label 挂在评论或运行上下文上，说明某个阶段做了什么（被过滤的类别、降级原因等）。
type Label struct {
	Value  string `json:"value"`
	Source string `json:"source"` // filter / rank / evaluate
}

// 常用 Label key。
const (
	LabelFiltered  = "filtered"   // 被质量过滤丢弃，Value 为命中的类别（逗号分隔）
	LabelDegraded  = "degraded"   // 所在分组排序降级，Value 为原因
	LabelRankModel = "rank_model" // 锦标赛使用的分类器
)

// MergeLabel 合并同名 Label：Value 以 '|'、Source 以 ',' 累积，已出现过的片段不再重复追加，
// 同一阶段重复执行时 Label 保持不变。
func MergeLabel(existing, incoming Label) Label {
	return Label{
		Value:  appendPart(existing.Value, incoming.Value, "|"),
		Source: appendPart(existing.Source, incoming.Source, ","),
	}
}

func appendPart(cur, part, sep string) string {
	switch {
	case part == "":
		return cur
	case cur == "":
		return part
	case slices.Contains(strings.Split(cur, sep), part):
		return cur
	default:
		return cur + sep + part
	}
}
