package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rushteam/revrank/core"
)

type dropFirst struct{}

func (dropFirst) Name() string { return "test.drop_first" }
func (dropFirst) Kind() Kind   { return KindFilter }
func (dropFirst) Process(_ context.Context, _ *core.RunContext, items []*core.Item) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}
	return items[1:], nil
}

type failing struct{}

func (failing) Name() string { return "test.failing" }
func (failing) Kind() Kind   { return KindRank }
func (failing) Process(context.Context, *core.RunContext, []*core.Item) ([]*core.Item, error) {
	return nil, errors.New("boom")
}

func TestPipelineRun(t *testing.T) {
	items := []*core.Item{core.NewItem(0, "a", "x"), core.NewItem(1, "a", "y"), core.NewItem(2, "a", "z")}
	p := &Pipeline{Nodes: []Node{dropFirst{}, dropFirst{}}}

	out, err := p.Run(context.Background(), nil, items)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(out) != 1 || out[0].ID != 2 {
		t.Errorf("Run() = %v, want only item 2", out)
	}

	p.Nodes = append(p.Nodes, failing{})
	if _, err := p.Run(context.Background(), nil, items); err == nil {
		t.Error("Run() with failing node should return error")
	}
}

func TestConfigBuildPipeline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	yml := `
pipeline:
  name: demo
  nodes:
    - type: test.drop_first
      config:
        workers: 2
`
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Pipeline.Name != "demo" || len(cfg.Pipeline.Nodes) != 1 {
		t.Fatalf("unexpected config: %+v", cfg)
	}

	factory := NewNodeFactory()
	factory.Register("test.drop_first", func(map[string]any) (Node, error) { return dropFirst{}, nil })
	p, err := cfg.BuildPipeline(factory)
	if err != nil {
		t.Fatalf("BuildPipeline() error = %v", err)
	}
	if len(p.Nodes) != 1 {
		t.Errorf("len(nodes) = %d, want 1", len(p.Nodes))
	}

	cfg.AddNode("test.unknown", nil)
	if got := cfg.Types(); len(got) != 2 || got[1] != "test.unknown" {
		t.Errorf("Types() = %v", got)
	}
	if factory.Has("test.unknown") {
		t.Error("Has(test.unknown) = true")
	}
	if _, err := cfg.BuildPipeline(factory); err == nil {
		t.Error("BuildPipeline() with unknown node type should fail")
	}
}

func TestLoadConfigJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pipeline.json")
	body := `{"pipeline":{"name":"j","nodes":[{"type":"rank.topn","config":{"n":3}}]}}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Pipeline.Name != "j" || len(cfg.Pipeline.Nodes) != 1 || cfg.Pipeline.Nodes[0].Type != "rank.topn" {
		t.Errorf("unexpected config: %+v", cfg)
	}

	if _, err := LoadConfig(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("LoadConfig() on missing file should fail")
	}
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(bad); err == nil {
		t.Error("LoadConfig() on malformed json should fail")
	}
}

type closing struct {
	dropFirst
	closed *int
	err    error
}

func (c closing) Close() error {
	*c.closed++
	return c.err
}

func TestPipelineClose(t *testing.T) {
	var closed int
	p := &Pipeline{Nodes: []Node{
		closing{closed: &closed},
		dropFirst{},
		closing{closed: &closed, err: errors.New("close failed")},
	}}
	err := p.Close()
	if closed != 2 {
		t.Errorf("closed = %d, want 2", closed)
	}
	if err == nil {
		t.Error("Close() error = nil, want close failure")
	}
}
