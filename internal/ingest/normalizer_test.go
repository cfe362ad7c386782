package ingest

import (
	"testing"

	"github.com/rawblock/forensics-engine/pkg/models"
)

func TestCleanDropsSelfLoops(t *testing.T) {
	raw := []models.RawRecord{
		{Source: "A", Target: "A", Amount: "100"},
		{Source: "A", Target: "B", Amount: "100"},
	}
	out := Clean(raw)
	if len(out) != 1 {
		t.Fatalf("expected 1 surviving row, got %d", len(out))
	}
	if out[0].Source != "A" || out[0].Target != "B" {
		t.Fatalf("unexpected survivor: %+v", out[0])
	}
}

func TestCleanDropsNonPositiveAmount(t *testing.T) {
	raw := []models.RawRecord{
		{Source: "A", Target: "B", Amount: "0"},
		{Source: "A", Target: "B", Amount: "0.00"},
		{Source: "A", Target: "B", Amount: "not-a-number"},
	}
	out := Clean(raw)
	if len(out) != 0 {
		t.Fatalf("expected all rows dropped, got %d", len(out))
	}
}

func TestCleanCoercesCurrencyPunctuation(t *testing.T) {
	raw := []models.RawRecord{
		{Source: " A ", Target: " B ", Amount: "$9,500.00"},
	}
	out := Clean(raw)
	if len(out) != 1 {
		t.Fatalf("expected 1 row, got %d", len(out))
	}
	if out[0].Amount != 9500 {
		t.Fatalf("expected amount 9500, got %v", out[0].Amount)
	}
	if out[0].Source != "A" || out[0].Target != "B" {
		t.Fatalf("expected trimmed identifiers, got %q %q", out[0].Source, out[0].Target)
	}
}

func TestCleanCoercesEuroAndSterlingSymbols(t *testing.T) {
	raw := []models.RawRecord{
		{Source: "A", Target: "B", Amount: "€1,200"},
		{Source: "C", Target: "D", Amount: "£500"},
	}
	out := Clean(raw)
	if len(out) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(out))
	}
	if out[0].Amount != 1200 {
		t.Fatalf("expected amount 1200, got %v", out[0].Amount)
	}
	if out[1].Amount != 500 {
		t.Fatalf("expected amount 500, got %v", out[1].Amount)
	}
}

func TestCleanNegativeAmountAbsoluteValue(t *testing.T) {
	raw := []models.RawRecord{
		{Source: "A", Target: "B", Amount: "-250.50"},
	}
	out := Clean(raw)
	if len(out) != 1 || out[0].Amount != 250.50 {
		t.Fatalf("expected absolute value 250.50, got %+v", out)
	}
}

func TestCleanBadTimestampDropsTimestampNotRow(t *testing.T) {
	raw := []models.RawRecord{
		{Source: "A", Target: "B", Amount: "100", Timestamp: "not-a-time"},
	}
	out := Clean(raw)
	if len(out) != 1 {
		t.Fatalf("expected row retained, got %d", len(out))
	}
	if out[0].Timestamp != nil {
		t.Fatalf("expected nil timestamp, got %v", out[0].Timestamp)
	}
}

func TestCleanGoodTimestampParses(t *testing.T) {
	raw := []models.RawRecord{
		{Source: "A", Target: "B", Amount: "100", Timestamp: "2024-01-15T10:00:00Z"},
	}
	out := Clean(raw)
	if len(out) != 1 || out[0].Timestamp == nil {
		t.Fatalf("expected parsed timestamp, got %+v", out)
	}
}

func TestCleanEmptyInputYieldsEmptyOutput(t *testing.T) {
	out := Clean(nil)
	if len(out) != 0 {
		t.Fatalf("expected empty output, got %d", len(out))
	}
}

func TestResolveColumnSynonyms(t *testing.T) {
	cases := map[string]string{
		"sender_id":   "source",
		"receiver_id": "target",
		"Amount":      "amount",
		"unknown_col": "unknown_col",
	}
	for in, want := range cases {
		if got := ResolveColumn(in); got != want {
			t.Errorf("ResolveColumn(%q) = %q, want %q", in, got, want)
		}
	}
}
