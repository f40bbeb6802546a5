// Package evaluate 在带真实标签的数据上衡量排序质量。
//
// 每组取正样本数 x，看排序结果的前 x 条中有几条是正样本：
// accuracy = hits / x。x 为 0 的组无法评估，单独报告且不计入均值。
package evaluate

import (
	"context"
	"fmt"
	"sort"

	"github.com/rushteam/revrank/core"
	"github.com/rushteam/revrank/logging"
	"github.com/rushteam/revrank/metrics"
	"github.com/rushteam/revrank/pipeline"
)

// ErrMissingLabel 表示评估模式下存在没有真实标签的评论。
var ErrMissingLabel = core.NewDomainError(core.ModuleEvaluate, core.ErrorCodeMissingLabel, "evaluate: item without label")

// GroupResult 是单组评估结果。
type GroupResult struct {
	GroupKey   string  `json:"group_key"`
	Size       int     `json:"size"`
	Positives  int     `json:"positives"`
	Hits       int     `json:"hits"`
	Accuracy   float64 `json:"accuracy"`
	Degenerate bool    `json:"degenerate"`
}

// Report 是整体评估报告。
//
// Mean 为非退化组 accuracy 的算术平均（不按组大小加权）；
// 没有任何非退化组时 Mean 为 0、Valid 为 false。
type Report struct {
	Groups []GroupResult `json:"groups"`
	Mean   float64       `json:"mean"`
	Valid  bool          `json:"valid"`
}

// DegenerateGroups 返回没有正样本的组。
func (r *Report) DegenerateGroups() []string {
	var out []string
	for _, g := range r.Groups {
		if g.Degenerate {
			out = append(out, g.GroupKey)
		}
	}
	return out
}

// Evaluate 计算每组的 top-x 准确率。组内顺序按排序规则（得分降序，ID 升序）重新确定，
// 与 items 的输入顺序无关。
func Evaluate(items []*core.Item) (*Report, error) {
	for _, it := range items {
		if it != nil && it.Label == nil {
			return nil, fmt.Errorf("item %d in group %q: %w", it.ID, it.GroupKey, ErrMissingLabel)
		}
	}

	report := &Report{}
	var sum float64
	var valid int
	for _, g := range core.GroupItems(items) {
		ranked := make([]*core.Item, len(g.Items))
		copy(ranked, g.Items)
		sort.SliceStable(ranked, func(i, j int) bool { return core.RankedBefore(ranked[i], ranked[j]) })

		res := GroupResult{GroupKey: g.Key, Size: len(ranked)}
		for _, it := range ranked {
			if *it.Label == 1 {
				res.Positives++
			}
		}
		if res.Positives == 0 {
			res.Degenerate = true
			report.Groups = append(report.Groups, res)
			continue
		}
		for _, it := range ranked[:res.Positives] {
			if *it.Label == 1 {
				res.Hits++
			}
		}
		res.Accuracy = float64(res.Hits) / float64(res.Positives)
		sum += res.Accuracy
		valid++
		report.Groups = append(report.Groups, res)
	}
	if valid > 0 {
		report.Mean = sum / float64(valid)
		report.Valid = true
	}
	return report, nil
}

// TopKNode 是评估 Node：评估模式下计算报告，items 原样透传。
type TopKNode struct{}

func (n *TopKNode) Name() string        { return "evaluate.topk" }
func (n *TopKNode) Kind() pipeline.Kind { return pipeline.KindEvaluate }

func (n *TopKNode) Process(
	_ context.Context,
	rctx *core.RunContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if rctx == nil || !rctx.EvalMode {
		return items, nil
	}
	report, err := Evaluate(items)
	if err != nil {
		return nil, err
	}
	rctx.SetReport(core.ReportEvaluate, report)
	Observe(report)
	return items, nil
}

// Observe 把评估结果写入指标与日志。
func Observe(r *Report) {
	for _, g := range r.Groups {
		if g.Degenerate {
			logging.Warn().Str("group", g.GroupKey).Int("size", g.Size).Msg("group has no positive labels, excluded from mean")
			continue
		}
		metrics.EvalAccuracy.WithLabelValues(g.GroupKey).Set(g.Accuracy)
		logging.Info().Str("group", g.GroupKey).Int("positives", g.Positives).Int("hits", g.Hits).
			Float64("accuracy", g.Accuracy).Msg("group evaluated")
	}
	metrics.EvalMeanAccuracy.Set(r.Mean)
	logging.Info().Float64("mean_accuracy", r.Mean).Bool("valid", r.Valid).
		Int("groups", len(r.Groups)).Strs("degenerate", r.DegenerateGroups()).Msg("rank evaluation done")
}
