package numbering

import (
	"strconv"
	"strings"
	"testing"
	"time"
)

func TestGenerateAt_Layout(t *testing.T) {
	// 7 March 2026, sequence 42, default length:
	// DDMMYY = 070326, then 3 random digits, then 0042
	at := time.Date(2026, time.March, 7, 12, 0, 0, 0, time.UTC)
	got := generateAt(42, DefaultLength, at)

	if len(got) != DefaultLength {
		t.Fatalf("length = %d, want %d (%q)", len(got), DefaultLength, got)
	}
	if !strings.HasPrefix(got, "070326") {
		t.Errorf("date prefix = %s, want 070326", got[:6])
	}
	if got[9:] != "0042" {
		t.Errorf("sequence suffix = %s, want 0042", got[9:])
	}
	rnd, err := strconv.Atoi(got[6:9])
	if err != nil || rnd < 100 || rnd > 999 {
		t.Errorf("random component = %s, want three digits in [100,999]", got[6:9])
	}
}

func TestGenerateAt_CustomLength(t *testing.T) {
	at := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	got := generateAt(7, 16, at)

	if len(got) != 16 {
		t.Fatalf("length = %d, want 16", len(got))
	}
	if got[9:] != "0000007" {
		t.Errorf("sequence suffix = %s, want 0000007", got[9:])
	}
}

func TestGenerateAt_ShortLengthFallsBack(t *testing.T) {
	at := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	got := generateAt(1, 5, at)

	if len(got) != DefaultLength {
		t.Errorf("length = %d, want fallback to %d", len(got), DefaultLength)
	}
}

func TestGenerate_SequenceKeepsNumbersDistinct(t *testing.T) {
	seen := make(map[string]bool)
	for seq := int64(1); seq <= 50; seq++ {
		n := Generate(seq, DefaultLength)
		if seen[n] {
			t.Fatalf("duplicate number %s at seq %d", n, seq)
		}
		seen[n] = true
	}
}
