package scorer

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/rushteam/revrank/feast"
	"github.com/rushteam/revrank/pkg/textutil"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestLexicon(t *testing.T) {
	lex := NewLexicon(map[string]float64{"good": 0.5, "bad": -1, "wow": 3}, []string{"really"})

	tests := []struct {
		text         string
		polarity     float64
		subjectivity float64
	}{
		{"good phone", 0.5, 0.5},
		{"Good but BAD", -0.25, 2.0 / 3},
		{"really wow", 1, 1},
		{"", 0, 0},
		{"battery lasts", 0, 0},
	}
	for _, tt := range tests {
		if got := lex.PolarityOf(tt.text); !approx(got, tt.polarity) {
			t.Errorf("PolarityOf(%q) = %v, want %v", tt.text, got, tt.polarity)
		}
		if got := lex.SubjectivityOf(tt.text); !approx(got, tt.subjectivity) {
			t.Errorf("SubjectivityOf(%q) = %v, want %v", tt.text, got, tt.subjectivity)
		}
	}
}

func TestLoadLexicon(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lex.json")
	body := `{"valence":{"Great":0.8},"subjective":["feel"]}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	lex, err := LoadLexicon(path)
	if err != nil {
		t.Fatalf("LoadLexicon() error = %v", err)
	}
	if got := lex.PolarityOf("great"); !approx(got, 0.8) {
		t.Errorf("PolarityOf = %v, want 0.8", got)
	}
	if _, err := LoadLexicon(filepath.Join(t.TempDir(), "none.json")); err == nil {
		t.Error("expected error for missing lexicon")
	}
}

func TestKeyword(t *testing.T) {
	s := NewKeyword("service_relevance", []string{"delivery", "seller"})
	if got := s.Score("Fast delivery, rude seller"); !approx(got, 0.5) {
		t.Errorf("Score = %v, want 0.5", got)
	}
	if got := s.Score(""); got != 0 {
		t.Errorf("Score(empty) = %v, want 0", got)
	}
}

func TestVader(t *testing.T) {
	s := NewVader(map[string]float64{"Bakwas": -2.5, "lit": 2})
	if s.Name() != "slang_sentiment" {
		t.Errorf("Name() = %q", s.Name())
	}

	lit := s.Score("this phone is lit")
	if lit <= 0 || lit > 1 {
		t.Errorf("Score(lit) = %v, want in (0, 1]", lit)
	}
	if got := s.Score("this phone is not lit"); got >= lit {
		t.Errorf("negation should lower the score: %v >= %v", got, lit)
	}
	if got := s.Score("bakwas phone"); got >= 0 || got < -1 {
		t.Errorf("Score(bakwas) = %v, want in [-1, 0)", got)
	}
	if got := s.Score("😍"); got <= 0 {
		t.Errorf("Score(emoji) = %v, want positive", got)
	}
	if got := s.Score(""); got != 0 {
		t.Errorf("Score(empty) = %v, want 0", got)
	}
}

func TestPOSNouns(t *testing.T) {
	s := NewPOSNouns()
	texts := []string{"The battery and the camera of this phone", "it is very good", "", "!!!"}
	got, err := s.ScoreBatch(context.Background(), texts)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(texts) {
		t.Fatalf("len = %d, want %d", len(got), len(texts))
	}
	for i, v := range got {
		if v < 0 || v > 1 {
			t.Errorf("ScoreBatch()[%d] = %v, want in [0, 1]", i, v)
		}
	}
	if got[0] <= got[1] {
		t.Errorf("noun-heavy text %v should outscore %v", got[0], got[1])
	}
	if got[2] != 0 || got[3] != 0 {
		t.Errorf("texts without words = %v, %v; want 0", got[2], got[3])
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.ScoreBatch(ctx, texts); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestSetValidate(t *testing.T) {
	if err := DefaultSet().Validate(); err != nil {
		t.Errorf("DefaultSet().Validate() = %v", err)
	}
	s := DefaultSet()
	s.Noun = nil
	if err := s.Validate(); err == nil {
		t.Error("expected error for missing noun scorer")
	}
}

func TestPerItem(t *testing.T) {
	b := PerItem(NewFunc("len", func(t string) float64 { return float64(len(t)) }))
	got, err := b.ScoreBatch(context.Background(), []string{"ab", "abcd"})
	if err != nil || got[0] != 2 || got[1] != 4 {
		t.Errorf("ScoreBatch() = %v, %v", got, err)
	}
}

type fakeFeast struct {
	values map[string]float64
	err    error
	req    *feast.GetOnlineFeaturesRequest
}

func (f *fakeFeast) GetOnlineFeatures(_ context.Context, req *feast.GetOnlineFeaturesRequest) (*feast.GetOnlineFeaturesResponse, error) {
	f.req = req
	if f.err != nil {
		return nil, f.err
	}
	rows := make([]map[string]float64, len(req.EntityRows))
	for i, r := range req.EntityRows {
		rows[i] = map[string]float64{}
		if v, ok := f.values[r[EntityReviewHash]]; ok {
			rows[i][req.Features[0]] = v
		}
	}
	return &feast.GetOnlineFeaturesResponse{Rows: rows}, nil
}

func (f *fakeFeast) Close() error { return nil }

func TestFeastBatch(t *testing.T) {
	client := &fakeFeast{values: map[string]float64{textutil.Key("Great  Phone"): 0.9}}
	s := &FeastBatch{Client: client, Feature: "review_nlp:noun_score", Project: "reviews", Default: -1}

	got, err := s.ScoreBatch(context.Background(), []string{"great phone", "unknown"})
	if err != nil {
		t.Fatalf("ScoreBatch() error = %v", err)
	}
	if got[0] != 0.9 || got[1] != -1 {
		t.Errorf("ScoreBatch() = %v, want [0.9 -1]", got)
	}
	if client.req.Project != "reviews" || len(client.req.EntityRows) != 2 {
		t.Errorf("request = %+v", client.req)
	}

	client.err = errors.New("unavailable")
	if _, err := s.ScoreBatch(context.Background(), []string{"x"}); err == nil {
		t.Error("expected client error to propagate")
	}
}
