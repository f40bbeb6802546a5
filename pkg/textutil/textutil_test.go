package textutil

import "testing"

func TestWords(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Great  product!!", []string{"great", "product"}},
		{"ＦＵＬＬ width", []string{"full", "width"}},
		{"यह अच्छा है।", []string{"यह", "अच्छा", "है"}},
		{"", nil},
	}
	for _, tt := range tests {
		got := Words(tt.in)
		if len(got) != len(tt.want) {
			t.Errorf("Words(%q) = %q, want %q", tt.in, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("Words(%q)[%d] = %q, want %q", tt.in, i, got[i], tt.want[i])
			}
		}
	}
}

func TestKeyIsNormalized(t *testing.T) {
	if Key("Nice  Phone") != Key("nice phone") {
		t.Error("Key should ignore case and spacing")
	}
	if Key("nice phone") == Key("nice phones") {
		t.Error("Key should differ for different text")
	}
}

func TestLowerTokens(t *testing.T) {
	got := Distinct(LowerTokens("Good good GOOD bad"))
	if len(got) != 2 {
		t.Errorf("distinct lower tokens = %v, want 2 entries", got)
	}
}
