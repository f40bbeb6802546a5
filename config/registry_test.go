package config

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rushteam/revrank/core"
	"github.com/rushteam/revrank/pipeline"
)

type passNode struct{ closed *bool }

func (passNode) Name() string        { return "test.pass" }
func (passNode) Kind() pipeline.Kind { return pipeline.KindFeature }

func (n passNode) Close() error {
	*n.closed = true
	return nil
}

func (passNode) Process(_ context.Context, _ *core.RunContext, items []*core.Item) ([]*core.Item, error) {
	return items, nil
}

func TestBuild(t *testing.T) {
	var closed bool
	Register("test.pass", func(map[string]any) (pipeline.Node, error) { return passNode{closed: &closed}, nil })
	Register("test.broken", func(map[string]any) (pipeline.Node, error) { return nil, errors.New("bad config") })

	cfg := &pipeline.Config{}
	cfg.AddNode("test.pass", nil)
	p, err := Build(cfg)
	if err != nil || len(p.Nodes) != 1 {
		t.Fatalf("Build() = %v, %v", p, err)
	}

	unknown := &pipeline.Config{}
	unknown.AddNode("test.nope", nil)
	_, err = Build(unknown)
	if !core.IsInvalidConfig(err) || !strings.Contains(err.Error(), "test.pass") {
		t.Errorf("unknown type: error = %v, want INVALID_CONFIG listing supported types", err)
	}

	broken := &pipeline.Config{}
	broken.AddNode("test.pass", nil)
	broken.AddNode("test.broken", nil)
	_, err = Build(broken)
	if !core.IsInvalidConfig(err) {
		t.Errorf("broken node: error = %v, want INVALID_CONFIG", err)
	}
	if !closed {
		t.Error("nodes built before the failure were not closed")
	}

	if _, err := Build(&pipeline.Config{}); !core.IsInvalidConfig(err) {
		t.Errorf("empty pipeline: error = %v, want INVALID_CONFIG", err)
	}
}
