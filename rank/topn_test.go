package rank

import (
	"context"
	"testing"

	"github.com/rushteam/revrank/core"
)

func TestTopNNode(t *testing.T) {
	items := []*core.Item{
		core.NewItem(0, "a", "a0"),
		core.NewItem(1, "a", "a1"),
		core.NewItem(2, "a", "a2"),
		core.NewItem(3, "b", "b0"),
	}
	tests := []struct {
		n    int
		want []int
	}{
		{0, []int{0, 1, 2, 3}},
		{1, []int{0, 3}},
		{2, []int{0, 1, 3}},
		{10, []int{0, 1, 2, 3}},
	}
	for _, tt := range tests {
		out, err := (&TopNNode{N: tt.n}).Process(context.Background(), nil, items)
		if err != nil {
			t.Fatal(err)
		}
		if len(out) != len(tt.want) {
			t.Errorf("N=%d: got %d items, want %d", tt.n, len(out), len(tt.want))
			continue
		}
		for i, it := range out {
			if it.ID != tt.want[i] {
				t.Errorf("N=%d: out[%d].ID = %d, want %d", tt.n, i, it.ID, tt.want[i])
			}
		}
	}
}
