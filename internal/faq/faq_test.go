package faq

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFAQ(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "faq_data.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing FAQ file: %v", err)
	}
	return path
}

const validFAQ = `[
  {"topic": "Refunds", "keywords": ["refund", "money back"], "answers": {"en": "Refunds take 7 days.", "bn": "রিফান্ড ৭ দিন লাগে।"}},
  {"topic": "Delivery", "keywords": ["delivery"], "answers": {"en": "2-4 business days."}}
]`

func TestLoad(t *testing.T) {
	table, err := Load(writeFAQ(t, validFAQ))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(table.Records()) != 2 {
		t.Errorf("loaded %d records, want 2", len(table.Records()))
	}
}

func TestLoadToleratesBOM(t *testing.T) {
	if _, err := Load(writeFAQ(t, "\ufeff"+validFAQ)); err != nil {
		t.Fatalf("Load failed on BOM-prefixed file: %v", err)
	}
}

func TestLoadRejectsBadData(t *testing.T) {
	cases := map[string]string{
		"malformed JSON":   `[{"topic": "x"`,
		"empty table":      `[]`,
		"missing topic":    `[{"keywords": ["a"], "answers": {"en": "x"}}]`,
		"missing keywords": `[{"topic": "t", "answers": {"en": "x"}}]`,
		"missing answers":  `[{"topic": "t", "keywords": ["a"]}]`,
	}

	for name, content := range cases {
		if _, err := Load(writeFAQ(t, content)); err == nil {
			t.Errorf("%s: Load succeeded, want error", name)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatalf("Load succeeded on a missing file")
	}
}

func TestMatch(t *testing.T) {
	table, err := Load(writeFAQ(t, validFAQ))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if r := table.Match("can i get a refund"); r == nil || r.Topic != "Refunds" {
		t.Errorf("Match(refund) = %+v, want Refunds", r)
	}
	if r := table.Match("when is my delivery due"); r == nil || r.Topic != "Delivery" {
		t.Errorf("Match(delivery) = %+v, want Delivery", r)
	}
	if r := table.Match("how do i cook rice"); r != nil {
		t.Errorf("Match on unrelated text = %+v, want nil", r)
	}
}

func TestMatchTiesBreakByTableOrder(t *testing.T) {
	table := NewTable([]Record{
		{Topic: "A", Keywords: []string{"shared"}, Answers: map[string]string{"en": "a"}},
		{Topic: "B", Keywords: []string{"shared"}, Answers: map[string]string{"en": "b"}},
	})

	if r := table.Match("a shared keyword"); r == nil || r.Topic != "A" {
		t.Errorf("tie not broken by table order, got %+v", r)
	}
}

func TestMatchCaseFoldsKeywords(t *testing.T) {
	table := NewTable([]Record{
		{Topic: "Refunds", Keywords: []string{"REFUND"}, Answers: map[string]string{"en": "x"}},
	})

	// Input arrives already normalized (lowercase), so the keyword must
	// be folded before the containment check.
	if r := table.Match("i want a refund"); r == nil {
		t.Errorf("uppercase keyword did not match normalized text")
	}
}

func TestAnswerLocalization(t *testing.T) {
	r := Record{Answers: map[string]string{"en": "english", "bn": "bangla"}}

	if got := r.Answer("bn"); got != "bangla" {
		t.Errorf("Answer(bn) = %q", got)
	}
	if got := r.Answer("fr"); got != "english" {
		t.Errorf("Answer(fr) = %q, want the English fallback", got)
	}

	onlyBN := Record{Answers: map[string]string{"bn": "bangla"}}
	if got := onlyBN.Answer("fr"); got != "bangla" {
		t.Errorf("Answer(fr) with no English = %q, want any localization", got)
	}
}
