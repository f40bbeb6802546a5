package builders

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rushteam/revrank/config"
	"github.com/rushteam/revrank/core"
	"github.com/rushteam/revrank/feature"
	"github.com/rushteam/revrank/filter"
	"github.com/rushteam/revrank/rank"
	"github.com/rushteam/revrank/scorer"
)

const resources = "../../resources"

func TestBuildQualityNode(t *testing.T) {
	node, err := BuildQualityNode(map[string]any{
		"resources_dir": resources,
		"workers":       4,
		"extra": []any{
			map[string]any{"type": "rule", "name": "too_short", "expr": "size(words) < 2"},
			map[string]any{"type": "wordlist", "name": "spam", "words": []any{"whatsapp me"}},
		},
	})
	if err != nil {
		t.Fatalf("BuildQualityNode() error = %v", err)
	}
	qn := node.(*filter.QualityNode)
	if len(qn.Detectors) != 6 || qn.Workers != 4 {
		t.Errorf("detectors = %d, workers = %d", len(qn.Detectors), qn.Workers)
	}
	if qn.Detectors[4].Name() != "too_short" {
		t.Errorf("extra detector name = %s", qn.Detectors[4].Name())
	}
}

func TestBuildQualityNodeErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  map[string]any
	}{
		{"missing resources", map[string]any{"resources_dir": t.TempDir()}},
		{"unknown extra", map[string]any{"resources_dir": resources, "extra": []any{map[string]any{"type": "regex", "name": "x"}}}},
		{"unnamed extra", map[string]any{"resources_dir": resources, "extra": []any{map[string]any{"type": "rule", "expr": "true"}}}},
		{"bad rule", map[string]any{"resources_dir": resources, "extra": []any{map[string]any{"type": "rule", "name": "x", "expr": "size("}}}},
		{"name clash", map[string]any{"resources_dir": resources, "extra": []any{map[string]any{"type": "wordlist", "name": "swear", "words": []any{"heck"}}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := BuildQualityNode(tt.cfg); err == nil {
				t.Error("BuildQualityNode() error = nil")
			}
		})
	}
}

func TestBuildExtractNode(t *testing.T) {
	node, err := BuildExtractNode(map[string]any{"workers": 2})
	if err != nil {
		t.Fatalf("BuildExtractNode() error = %v", err)
	}
	en := node.(*feature.ExtractNode)
	if _, ok := en.Scorers.Noun.(*scorer.POSNouns); !ok {
		t.Errorf("noun scorer = %T, want *scorer.POSNouns", en.Scorers.Noun)
	}
	if err := en.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}

	lexicon := filepath.Join(t.TempDir(), "lexicon.json")
	if err := os.WriteFile(lexicon, []byte(`{"valence":{"superb":1},"subjective":["superb"]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	node, err = BuildExtractNode(map[string]any{"lexicon_path": lexicon})
	if err != nil {
		t.Fatalf("BuildExtractNode(lexicon) error = %v", err)
	}
	if got := node.(*feature.ExtractNode).Scorers.Polarity.Score("superb"); got != 1 {
		t.Errorf("polarity(superb) = %v, want 1", got)
	}

	for _, cfg := range []map[string]any{
		{"noun": map[string]any{"source": "spacy"}},
		{"noun": map[string]any{"source": "feast"}},
		{"lexicon_path": filepath.Join(t.TempDir(), "missing.json")},
	} {
		if _, err := BuildExtractNode(cfg); !core.IsInvalidConfig(err) {
			t.Errorf("BuildExtractNode(%v) error = %v, want INVALID_CONFIG", cfg, err)
		}
	}
}

func TestBuildTournamentNode(t *testing.T) {
	node, err := BuildTournamentNode(map[string]any{
		"model":         map[string]any{"kind": "linear", "path": resources + "/model.json"},
		"denominator":   "n-1",
		"group_timeout": "30s",
		"max_retries":   3,
	})
	if err != nil {
		t.Fatalf("BuildTournamentNode() error = %v", err)
	}
	tn := node.(*rank.TournamentNode)
	if tn.Denominator != rank.DenominatorOpponents || tn.MaxRetries != 3 || tn.GroupTimeout.Seconds() != 30 {
		t.Errorf("node = %+v", tn)
	}

	tests := []map[string]any{
		{"model": map[string]any{"path": resources + "/missing.json"}},
		{"model": map[string]any{"path": resources + "/model.json"}, "denominator": "half"},
		{"model": map[string]any{"kind": "rpc"}},
		{},
	}
	for _, cfg := range tests {
		if _, err := BuildTournamentNode(cfg); !core.IsInvalidConfig(err) {
			t.Errorf("BuildTournamentNode(%v) error = %v, want INVALID_CONFIG", cfg, err)
		}
	}
}

func TestDefaultPipeline(t *testing.T) {
	s := config.DefaultSettings()
	s.Filter.ResourcesDir = resources
	s.Model.Path = resources + "/model.json"
	s.Eval.Enabled = true

	cfg, err := s.PipelineConfig()
	if err != nil {
		t.Fatal(err)
	}
	p, err := config.Build(cfg)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	defer p.Close()

	want := []string{"filter.quality", "feature.review", "rank.tournament", "evaluate.topk"}
	if len(p.Nodes) != len(want) {
		t.Fatalf("nodes = %d, want %d", len(p.Nodes), len(want))
	}
	for i, n := range p.Nodes {
		if n.Name() != want[i] {
			t.Errorf("node %d = %s, want %s", i, n.Name(), want[i])
		}
	}
}

func TestBuildExtractNodeFeastHTTP(t *testing.T) {
	node, err := BuildExtractNode(map[string]any{
		"noun": map[string]any{"source": "feast", "endpoint": "http://localhost:6566", "feature": "review_nlp:noun_score"},
	})
	if err != nil {
		t.Fatalf("BuildExtractNode() error = %v", err)
	}
	en := node.(*feature.ExtractNode)
	fb, ok := en.Scorers.Noun.(*scorer.FeastBatch)
	if !ok {
		t.Fatalf("noun scorer = %T, want *scorer.FeastBatch", en.Scorers.Noun)
	}
	if fb.Feature != "review_nlp:noun_score" {
		t.Errorf("feature = %s", fb.Feature)
	}
	if err := en.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
