package faq

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Record is one FAQ entry. Answers is keyed by language code so new
// localizations can be added without changing the entity shape.
type Record struct {
	Topic    string            `json:"topic"`
	Keywords []string          `json:"keywords"`
	Answers  map[string]string `json:"answers"`
}

// Answer returns the record's answer in the given language, falling back
// to English and then to any available localization.
func (r *Record) Answer(lang string) string {
	if a, ok := r.Answers[lang]; ok && a != "" {
		return a
	}
	if a, ok := r.Answers["en"]; ok && a != "" {
		return a
	}
	for _, a := range r.Answers {
		if a != "" {
			return a
		}
	}
	return ""
}

// Table is the static FAQ knowledge base, loaded once at startup and
// read-only afterwards. Record order is significant: intent matching
// breaks ties by table order.
type Table struct {
	records []Record
}

// Load reads and validates the FAQ file. An unreadable file, malformed
// JSON, or an empty or incomplete table is an error; the process must
// not serve traffic without a usable knowledge base.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading FAQ file %s: %w", path, err)
	}

	// Tolerate a UTF-8 BOM, the data file is maintained by hand.
	data = []byte(strings.TrimPrefix(string(data), "\ufeff"))

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing FAQ file %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("FAQ file %s contains no records", path)
	}
	for i, r := range records {
		if r.Topic == "" || len(r.Keywords) == 0 || len(r.Answers) == 0 {
			return nil, fmt.Errorf("FAQ record %d is incomplete (topic, keywords and answers are required)", i)
		}
	}

	return &Table{records: records}, nil
}

// NewTable builds a table from in-memory records. Used by tests and by
// callers that assemble the knowledge base themselves.
func NewTable(records []Record) *Table {
	return &Table{records: records}
}

// Records returns the table contents in load order.
func (t *Table) Records() []Record {
	return t.records
}

// Match returns the first record, in table order, with any keyword
// contained in the normalized text. Keywords are case-folded before the
// containment check. Returns nil when no record qualifies.
func (t *Table) Match(normalized string) *Record {
	for i := range t.records {
		for _, kw := range t.records[i].Keywords {
			if kw == "" {
				continue
			}
			if strings.Contains(normalized, strings.ToLower(kw)) {
				return &t.records[i]
			}
		}
	}
	return nil
}
