package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rushteam/revrank/core"
	"github.com/rushteam/revrank/pipeline"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	s, err := Load("", map[string]any{"input.path": "reviews.csv"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.Input.Path != "reviews.csv" {
		t.Errorf("Input.Path = %q", s.Input.Path)
	}
	if s.Model.Kind != "linear" || s.Rank.Denominator != "n" || s.Rank.GroupTimeout != 2*time.Minute {
		t.Errorf("unexpected defaults: %+v %+v", s.Model, s.Rank)
	}
	if got := strings.Join(s.Filter.DisallowedLanguages, ","); got != "hi,mr" {
		t.Errorf("DisallowedLanguages = %q, want hi,mr", got)
	}
}

func TestLoadLayering(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "revrank.yaml", `
input:
  path: from-file.csv
model:
  path: file-model.json
rank:
  denominator: n-1
  max_retries: 1
log:
  format: console
`)
	t.Setenv("REVRANK_RANK_MAX_RETRIES", "4")
	t.Setenv("REVRANK_RANK_GROUP_TIMEOUT", "30s")
	t.Setenv("REVRANK_FILTER_DISALLOWED_LANGUAGES", "hi, bn")
	t.Setenv("REVRANK_MODEL_PATH", "env-model.json")

	s, err := Load(path, map[string]any{"model.path": "flag-model.json", "eval.enabled": true})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	tests := []struct {
		name string
		got  any
		want any
	}{
		{"file", s.Input.Path, "from-file.csv"},
		{"file over default", s.Rank.Denominator, "n-1"},
		{"file keeps other defaults", s.Log.Level, "info"},
		{"env over file", s.Rank.MaxRetries, 4},
		{"env duration", s.Rank.GroupTimeout, 30 * time.Second},
		{"env list", strings.Join(s.Filter.DisallowedLanguages, ","), "hi,bn"},
		{"override over env", s.Model.Path, "flag-model.json"},
		{"override bool", s.Eval.Enabled, true},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]any
		field     string
	}{
		{"missing input", map[string]any{}, "input.path"},
		{"denominator", map[string]any{"input.path": "x", "rank.denominator": "n-2"}, "rank.denominator"},
		{"model kind", map[string]any{"input.path": "x", "model.kind": "svm"}, "model.kind"},
		{"rpc without endpoint", map[string]any{"input.path": "x", "model.kind": "rpc"}, "model.endpoint"},
		{"spell threshold", map[string]any{"input.path": "x", "filter.spell_threshold": 2.0}, "filter.spell_threshold"},
		{"log format", map[string]any{"input.path": "x", "log.format": "xml"}, "log.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load("", tt.overrides)
			if !core.IsInvalidConfig(err) {
				t.Fatalf("Load() error = %v, want INVALID_CONFIG", err)
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error %q does not name %s", err, tt.field)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	if !core.IsInvalidConfig(err) {
		t.Errorf("Load() error = %v, want INVALID_CONFIG", err)
	}
}

func TestCheckResources(t *testing.T) {
	input := writeFile(t, t.TempDir(), "reviews.csv", "group_key,text\n")
	s := DefaultSettings()
	s.Input.Path = input
	s.Filter.ResourcesDir = "../resources"
	s.Model.Path = "../resources/model.json"
	if err := s.CheckResources(); err != nil {
		t.Fatalf("CheckResources() error = %v", err)
	}

	s.Model.Path = "../resources/missing.json"
	err := s.CheckResources()
	if !core.IsInvalidConfig(err) || !strings.Contains(err.Error(), "missing.json") {
		t.Errorf("CheckResources() error = %v, want missing model", err)
	}

	s.Model.Kind = "rpc"
	if err := s.CheckResources(); err != nil {
		t.Errorf("rpc model needs no file, got %v", err)
	}

	s.Feature.NounSource = "feast"
	s.Feature.Feast.Host = ""
	if err := s.CheckResources(); !core.IsInvalidConfig(err) {
		t.Errorf("feast without host: error = %v, want INVALID_CONFIG", err)
	}
}

func TestPipelineConfigDefault(t *testing.T) {
	s := DefaultSettings()
	cfg, err := s.PipelineConfig()
	if err != nil {
		t.Fatal(err)
	}
	types := nodeTypes(cfg)
	if types != "filter.quality,feature.review,rank.tournament" {
		t.Errorf("nodes = %s", types)
	}

	s.Eval.Enabled = true
	cfg, _ = s.PipelineConfig()
	if types := nodeTypes(cfg); !strings.HasSuffix(types, ",evaluate.topk") {
		t.Errorf("eval nodes = %s", types)
	}
	rankCfg := cfg.Pipeline.Nodes[2].Config
	if rankCfg["denominator"] != "n" || rankCfg["max_retries"] != 2 {
		t.Errorf("rank config = %v", rankCfg)
	}

	s.Output.TopN = 3
	cfg, _ = s.PipelineConfig()
	last := cfg.Pipeline.Nodes[len(cfg.Pipeline.Nodes)-1]
	if last.Type != NodeTopN || last.Config["n"] != 3 {
		t.Errorf("last node = %+v, want rank.topn n=3", last)
	}
}

func TestPipelineConfigFileMerge(t *testing.T) {
	path := writeFile(t, t.TempDir(), "pipeline.yaml", `
pipeline:
  name: custom
  nodes:
    - type: filter.quality
      config:
        workers: 3
    - type: rank.tournament
      config:
        denominator: n-1
`)
	s := DefaultSettings()
	s.Pipeline = path
	cfg, err := s.PipelineConfig()
	if err != nil {
		t.Fatal(err)
	}
	if got := nodeTypes(cfg); got != "filter.quality,rank.tournament" {
		t.Fatalf("nodes = %s", got)
	}
	filterCfg := cfg.Pipeline.Nodes[0].Config
	if filterCfg["workers"] != 3 || filterCfg["resources_dir"] != "resources" {
		t.Errorf("filter config = %v", filterCfg)
	}
	if cfg.Pipeline.Nodes[1].Config["denominator"] != "n-1" {
		t.Errorf("rank config = %v", cfg.Pipeline.Nodes[1].Config)
	}

	s.Pipeline = filepath.Join(t.TempDir(), "missing.yaml")
	if _, err := s.PipelineConfig(); !core.IsInvalidConfig(err) {
		t.Errorf("missing pipeline: error = %v, want INVALID_CONFIG", err)
	}
}

func nodeTypes(cfg *pipeline.Config) string {
	types := make([]string, 0, len(cfg.Pipeline.Nodes))
	for _, nc := range cfg.Pipeline.Nodes {
		types = append(types, nc.Type)
	}
	return strings.Join(types, ",")
}

func TestEnvKey(t *testing.T) {
	tests := map[string]string{
		"REVRANK_RANK_GROUP_TIMEOUT":    "rank.group_timeout",
		"REVRANK_OUTPUT_REDIS_PASSWORD": "output.redis_password",
		"REVRANK_FEATURE_FEAST_HOST":    "feature.feast.host",
		"REVRANK_FEATURE_NOUN_SOURCE":   "feature.noun_source",
		"REVRANK_PIPELINE":              "pipeline",
	}
	for in, want := range tests {
		if got := envKey(in); got != want {
			t.Errorf("envKey(%q) = %q, want %q", in, got, want)
		}
	}
}
