package search

import "testing"

func TestNormalizeScores_AllEqualMapsToOne(t *testing.T) {
	fused := []FusedResult{{ID: 1, Score: 0.5}, {ID: 2, Score: 0.5}}
	out := normalizeScores(fused)
	for _, v := range out {
		if v != 1.0 {
			t.Fatalf("expected 1.0 for equal scores, got %v", v)
		}
	}
}

func TestNormalizeScores_TopResultIsOne(t *testing.T) {
	fused := []FusedResult{{ID: 1, Score: 0.9}, {ID: 2, Score: 0.3}, {ID: 3, Score: 0.1}}
	out := normalizeScores(fused)
	if out[0] != 1.0 {
		t.Fatalf("expected top result score 1.0, got %v", out[0])
	}
	if out[len(out)-1] != 0.0 {
		t.Fatalf("expected bottom result score 0.0, got %v", out[len(out)-1])
	}
}

func TestNormalizeScores_Empty(t *testing.T) {
	out := normalizeScores(nil)
	if len(out) != 0 {
		t.Fatalf("expected empty output, got %v", out)
	}
}
