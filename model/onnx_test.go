package model

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rushteam/revrank/core"
)

func TestLoadONNXMissingModel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forest.onnx")

	if _, err := LoadONNX(ONNXOptions{ModelPath: path}); !core.IsInvalidConfig(err) {
		t.Errorf("LoadONNX() error = %v, want INVALID_CONFIG", err)
	}
	if _, err := Open(Spec{Kind: KindONNX, Path: path}); !core.IsInvalidConfig(err) {
		t.Errorf("Open(onnx) error = %v, want INVALID_CONFIG", err)
	}
}

func TestONNXClassifierWithoutSession(t *testing.T) {
	m := &ONNXClassifier{path: "forest.onnx"}
	if m.Name() != KindONNX {
		t.Errorf("Name() = %q, want %q", m.Name(), KindONNX)
	}
	if IsConcurrencySafe(m) {
		t.Error("onnx classifier must be serialized by the caller")
	}

	got, err := m.Predict(context.Background(), nil)
	if err != nil || len(got) != 0 {
		t.Errorf("Predict(nil) = %v, %v; want empty", got, err)
	}
	if _, err := m.Predict(context.Background(), [][]float64{{1, 2, 3}}); err == nil {
		t.Error("expected error for short row")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := m.Predict(ctx, [][]float64{row(1, 2)}); err == nil {
		t.Error("expected error for cancelled context")
	}

	if err := m.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
