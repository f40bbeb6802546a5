package rank

import (
	"context"

	"github.com/rushteam/revrank/core"
	"github.com/rushteam/revrank/pipeline"
)

// TopNNode 在排序之后按组截断，每组只保留前 N 条评论。
// 通常放在 rank.tournament 与 evaluate.topk 之后，只影响发布的结果。
//
//	pipeline := &pipeline.Pipeline{
//	    Nodes: []pipeline.Node{
//	        &rank.TournamentNode{...},
//	        &rank.TopNNode{N: 5},
//	    },
//	}
type TopNNode struct {
	// N <= 0 时不截断
	N int
}

func (n *TopNNode) Name() string        { return "rank.topn" }
func (n *TopNNode) Kind() pipeline.Kind { return pipeline.KindRank }

// Process 要求输入已按（组 key，得分）排好序，组内保持原有相对顺序。
func (n *TopNNode) Process(
	_ context.Context,
	_ *core.RunContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if n.N <= 0 {
		return items, nil
	}
	out := make([]*core.Item, 0, len(items))
	for _, g := range core.GroupItems(items) {
		keep := g.Items
		if len(keep) > n.N {
			keep = keep[:n.N]
		}
		out = append(out, keep...)
	}
	return out, nil
}
