package main

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/rushteam/revrank/app"
	"github.com/rushteam/revrank/core"
	"github.com/rushteam/revrank/evaluate"
	"github.com/rushteam/revrank/filter"
)

func TestParseArgs(t *testing.T) {
	cfg, overrides, err := parseArgs([]string{
		"--config", "revrank.yaml", "--file_name", "in.csv", "--testing", "--spell_threshold", "0.05",
	}, io.Discard)
	if err != nil {
		t.Fatalf("parseArgs() error = %v", err)
	}
	if cfg != "revrank.yaml" {
		t.Errorf("config = %q", cfg)
	}
	want := map[string]any{"input.path": "in.csv", "eval.enabled": true, "filter.spell_threshold": 0.05}
	if len(overrides) != len(want) {
		t.Fatalf("overrides = %v, want %v", overrides, want)
	}
	for k, v := range want {
		if overrides[k] != v {
			t.Errorf("overrides[%s] = %v, want %v", k, overrides[k], v)
		}
	}
}

func TestParseArgsRejectsPositional(t *testing.T) {
	tests := [][]string{
		{"--testing", "False"},
		{"--file_name", "in.csv", "extra"},
	}
	for _, args := range tests {
		if _, _, err := parseArgs(args, io.Discard); !core.IsInvalidConfig(err) {
			t.Errorf("parseArgs(%q) error = %v, want INVALID_CONFIG", args, err)
		}
	}
	if _, overrides, err := parseArgs([]string{"--testing=false"}, io.Discard); err != nil || overrides["eval.enabled"] != false {
		t.Errorf("--testing=false: overrides = %v, err = %v", overrides, err)
	}
	if _, _, err := parseArgs([]string{"--no_such_flag"}, io.Discard); !core.IsInvalidConfig(err) {
		t.Errorf("unknown flag error = %v, want INVALID_CONFIG", err)
	}
}

func TestRunFailsBeforeProcessing(t *testing.T) {
	if code := run([]string{"--testing", "False"}, io.Discard); code != 1 {
		t.Errorf("run() = %d, want 1", code)
	}
	if code := run([]string{"--file_name", t.TempDir() + "/missing.csv"}, io.Discard); code != 1 {
		t.Errorf("run() with missing input = %d, want 1", code)
	}
}

func TestPrintResult(t *testing.T) {
	var buf bytes.Buffer
	printResult(&buf, &app.Result{
		Filter: &filter.Report{Discards: []filter.Discard{
			{ID: 3, GroupKey: "phone", Text: "damn amazon", Categories: []string{"swear", "competitor_brand"}},
		}},
		Evaluate: &evaluate.Report{
			Groups: []evaluate.GroupResult{
				{GroupKey: "phone", Positives: 2, Hits: 1, Accuracy: 0.5},
				{GroupKey: "tv", Degenerate: true},
			},
			Mean:  0.5,
			Valid: true,
		},
	})
	out := buf.String()
	for _, want := range []string{
		"phone\t#3\t[swear,competitor_brand]\tdamn amazon",
		"phone\taccuracy 0.5000 (1/2)",
		"tv\tno positive labels",
		"mean top-k accuracy: 0.5000 over 1 groups",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
