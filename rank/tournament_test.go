package rank

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rushteam/revrank/core"
	"github.com/rushteam/revrank/model"
	"github.com/rushteam/revrank/pkg/utils"
)

// item 以 ReviewLen 存放组内下标，便于分类器按下标比较。
func item(id int, group string, idx float64) *core.Item {
	it := core.NewItem(id, group, "")
	var v core.FeatureVector
	v[core.FeatReviewLen] = idx
	it.Features = &v
	return it
}

// lowerIndexWins：anchor 下标小于 contender 下标时返回 1。
var lowerIndexWins = model.NewFuncClassifier("lower-index-wins", true, func(r []float64) int {
	if r[core.FeatReviewLen] < r[core.FeatureDim+core.FeatReviewLen] {
		return 1
	}
	return 0
})

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestTournamentThreeItems(t *testing.T) {
	n := &TournamentNode{Classifier: lowerIndexWins}
	items := []*core.Item{item(0, "g", 0), item(1, "g", 1), item(2, "g", 2)}

	out, report, err := n.Rank(context.Background(), items)
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	want := []struct {
		id    int
		score float64
	}{{0, 2.0 / 3}, {1, 1.0 / 3}, {2, 0}}
	for i, w := range want {
		if out[i].ID != w.id || !approx(out[i].Score, w.score) {
			t.Errorf("out[%d] = (id %d, score %v), want (id %d, score %v)", i, out[i].ID, out[i].Score, w.id, w.score)
		}
	}
	if report.Groups[0].Comparisons != 6 {
		t.Errorf("comparisons = %d, want n(n-1) = 6", report.Groups[0].Comparisons)
	}
	if items[0].Win != 2 || items[0].Lose != 0 || items[2].Lose != 2 {
		t.Errorf("tallies: %+v %+v", items[0], items[2])
	}
}

func TestTournamentDenominatorOpponents(t *testing.T) {
	n := &TournamentNode{Classifier: lowerIndexWins, Denominator: DenominatorOpponents}
	items := []*core.Item{item(0, "g", 0), item(1, "g", 1), item(2, "g", 2)}
	out, _, err := n.Rank(context.Background(), items)
	if err != nil {
		t.Fatal(err)
	}
	if !approx(out[0].Score, 1) || !approx(out[1].Score, 0.5) {
		t.Errorf("scores = %v, %v; want 1, 0.5", out[0].Score, out[1].Score)
	}
}

func TestParseDenominator(t *testing.T) {
	for in, want := range map[string]Denominator{"": DenominatorGroupSize, "n": DenominatorGroupSize, "n-1": DenominatorOpponents} {
		got, err := ParseDenominator(in)
		if err != nil || got != want {
			t.Errorf("ParseDenominator(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseDenominator("n+1"); !core.IsInvalidConfig(err) {
		t.Errorf("ParseDenominator(n+1) error = %v", err)
	}
}

func TestTournamentScoreBound(t *testing.T) {
	always := model.NewFuncClassifier("always-win", true, func([]float64) int { return 1 })
	for size := 1; size <= 6; size++ {
		items := make([]*core.Item, size)
		for i := range items {
			items[i] = item(i, "g", float64(i))
		}
		_, _, err := (&TournamentNode{Classifier: always}).Rank(context.Background(), items)
		if err != nil {
			t.Fatal(err)
		}
		bound := float64(size-1) / float64(size)
		for _, it := range items {
			if it.Score < 0 || it.Score > bound+1e-12 {
				t.Errorf("size %d: score %v outside [0, %v]", size, it.Score, bound)
			}
		}
	}
}

func TestTournamentUndefinedOutcomes(t *testing.T) {
	weird := model.NewFuncClassifier("weird", true, func(r []float64) int {
		if r[core.FeatReviewLen] == 0 {
			return 2
		}
		return 1
	})
	items := []*core.Item{item(0, "g", 0), item(1, "g", 1), item(2, "g", 2)}
	_, report, err := (&TournamentNode{Classifier: weird}).Rank(context.Background(), items)
	if err != nil {
		t.Fatal(err)
	}
	if items[0].Win != 0 || items[0].Lose != 0 || items[0].Score != 0 {
		t.Errorf("anchor with undefined outcomes got %+v", items[0])
	}
	if report.Groups[0].Undefined != 2 {
		t.Errorf("undefined = %d, want 2", report.Groups[0].Undefined)
	}
}

func TestTournamentGroupsAndOrder(t *testing.T) {
	items := []*core.Item{
		item(0, "b", 1), item(1, "a", 0), item(2, "b", 0), item(3, "a", 1), item(4, "c", 0),
	}
	out, report, err := (&TournamentNode{Classifier: lowerIndexWins, Workers: 2, AnchorWorkers: 2}).Rank(context.Background(), items)
	if err != nil {
		t.Fatal(err)
	}
	wantIDs := []int{1, 3, 2, 0, 4}
	for i, id := range wantIDs {
		if out[i].ID != id {
			t.Errorf("out[%d].ID = %d, want %d", i, out[i].ID, id)
		}
	}
	if len(report.Groups) != 3 || report.Groups[2].Key != "c" || report.Groups[2].Comparisons != 0 {
		t.Errorf("report groups = %+v", report.Groups)
	}
	if out[4].Score != 0 {
		t.Errorf("single-item group score = %v, want 0", out[4].Score)
	}
}

func TestTournamentGroupsAreIndependent(t *testing.T) {
	scoresOf := func(xIdx []float64) map[int]float64 {
		items := []*core.Item{item(10, "y", 2), item(11, "y", 0), item(12, "y", 1)}
		for i, idx := range xIdx {
			items = append(items, item(i, "x", idx))
		}
		if _, _, err := (&TournamentNode{Classifier: lowerIndexWins}).Rank(context.Background(), items); err != nil {
			t.Fatal(err)
		}
		got := make(map[int]float64)
		for _, it := range items {
			if it.GroupKey == "y" {
				got[it.ID] = it.Score
			}
		}
		return got
	}

	base := scoresOf([]float64{0, 1})
	for _, xIdx := range [][]float64{{5, 1}, {1, 0, 3}, {0}} {
		got := scoresOf(xIdx)
		for id, want := range base {
			if got[id] != want {
				t.Errorf("x=%v: group y item %d score = %v, want %v", xIdx, id, got[id], want)
			}
		}
	}
}

func TestTournamentTiesBreakByID(t *testing.T) {
	never := model.NewFuncClassifier("never", true, func([]float64) int { return 0 })
	items := []*core.Item{item(7, "g", 0), item(3, "g", 1), item(5, "g", 2)}
	out, _, err := (&TournamentNode{Classifier: never}).Rank(context.Background(), items)
	if err != nil {
		t.Fatal(err)
	}
	if out[0].ID != 3 || out[1].ID != 5 || out[2].ID != 7 {
		t.Errorf("tie order = [%d %d %d], want [3 5 7]", out[0].ID, out[1].ID, out[2].ID)
	}
}

type flaky struct {
	failures atomic.Int32
	calls    atomic.Int32
}

func (f *flaky) Name() string { return "flaky" }

func (f *flaky) Predict(ctx context.Context, rows [][]float64) ([]int, error) {
	f.calls.Add(1)
	if f.failures.Add(-1) >= 0 {
		return nil, errors.New("transient")
	}
	return lowerIndexWins.Predict(ctx, rows)
}

func TestTournamentRetry(t *testing.T) {
	c := &flaky{}
	c.failures.Store(1)
	items := []*core.Item{item(0, "g", 0), item(1, "g", 1)}
	n := &TournamentNode{Classifier: c, MaxRetries: 2, RetryBackoff: time.Millisecond}
	_, report, err := n.Rank(context.Background(), items)
	if err != nil {
		t.Fatal(err)
	}
	if report.Groups[0].Degraded {
		t.Error("group degraded despite successful retry")
	}
	if !approx(items[0].Score, 0.5) {
		t.Errorf("score = %v, want 0.5", items[0].Score)
	}
}

func TestTournamentDegradedGroup(t *testing.T) {
	c := &flaky{}
	c.failures.Store(1 << 20)
	items := []*core.Item{item(0, "bad", 0), item(1, "bad", 1)}
	n := &TournamentNode{Classifier: c, MaxRetries: 1}
	out, report, err := n.Rank(context.Background(), items)
	if err != nil {
		t.Fatalf("Rank() error = %v, degraded groups must not fail the run", err)
	}
	g := report.Groups[0]
	if !g.Degraded || g.Reason != ReasonClassifier {
		t.Errorf("group report = %+v, want degraded by classifier", g)
	}
	if len(out) != 2 || out[0].Score != 0 || out[0].Labels[utils.LabelDegraded].Value != ReasonClassifier {
		t.Errorf("degraded items = %+v", out[0])
	}
	if got := report.DegradedGroups(); len(got) != 1 || got[0] != "bad" {
		t.Errorf("DegradedGroups() = %v", got)
	}
}

type slow struct{}

func (slow) Name() string { return "slow" }

func (slow) Predict(ctx context.Context, rows [][]float64) ([]int, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestTournamentGroupTimeout(t *testing.T) {
	items := []*core.Item{item(0, "g", 0), item(1, "g", 1)}
	n := &TournamentNode{Classifier: slow{}, GroupTimeout: 10 * time.Millisecond}
	_, report, err := n.Rank(context.Background(), items)
	if err != nil {
		t.Fatal(err)
	}
	if g := report.Groups[0]; !g.Degraded || g.Reason != ReasonTimeout {
		t.Errorf("group report = %+v, want degraded by timeout", g)
	}
}

func TestTournamentCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	items := []*core.Item{item(0, "g", 0), item(1, "g", 1)}
	_, _, err := (&TournamentNode{Classifier: slow{}}).Rank(ctx, items)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Rank() error = %v, want context.Canceled", err)
	}
}

type unsafeCounter struct {
	inflight, peak atomic.Int32
}

func (u *unsafeCounter) Name() string { return "unsafe" }

func (u *unsafeCounter) Predict(ctx context.Context, rows [][]float64) ([]int, error) {
	cur := u.inflight.Add(1)
	defer u.inflight.Add(-1)
	for {
		p := u.peak.Load()
		if cur <= p || u.peak.CompareAndSwap(p, cur) {
			break
		}
	}
	time.Sleep(time.Millisecond)
	return lowerIndexWins.Predict(ctx, rows)
}

func TestTournamentSerializesUnsafeClassifier(t *testing.T) {
	c := &unsafeCounter{}
	var items []*core.Item
	for g, key := range []string{"a", "b", "c"} {
		for i := 0; i < 4; i++ {
			items = append(items, item(g*10+i, key, float64(i)))
		}
	}
	_, _, err := (&TournamentNode{Classifier: c}).Rank(context.Background(), items)
	if err != nil {
		t.Fatal(err)
	}
	if c.peak.Load() != 1 {
		t.Errorf("peak concurrent calls = %d, want 1", c.peak.Load())
	}
}

func TestTournamentRequiresFeatures(t *testing.T) {
	items := []*core.Item{core.NewItem(0, "g", "no features")}
	if _, _, err := (&TournamentNode{Classifier: lowerIndexWins}).Rank(context.Background(), items); err == nil {
		t.Error("expected error for item without features")
	}
}
