package remedy

import (
	"sort"
	"strings"
)

// Record is one row of the remedy dataset.
type Record struct {
	Disease  string `json:"disease"`
	AgeGroup string `json:"age_group"`
	Remedies string `json:"remedies"`
	ImageURL string `json:"image_url"`
	Season   string `json:"season"`
}

// Images returns the trimmed, non-empty image references of the record.
func (r Record) Images() []string {
	var images []string
	for _, img := range strings.Split(r.ImageURL, ";") {
		if trimmed := strings.TrimSpace(img); trimmed != "" {
			images = append(images, trimmed)
		}
	}
	return images
}

// Remedy is a matched record prepared for display.
type Remedy struct {
	Record Record
	Steps  []Step
	Images []string
}

// NewRemedy splits the record's instructions into numbered steps.
func NewRemedy(rec Record) Remedy {
	return Remedy{
		Record: rec,
		Steps:  NumberSteps(SplitSteps(rec.Remedies)),
		Images: rec.Images(),
	}
}

// Query is a normalized disease and age lookup.
type Query struct {
	Disease string
	Age     int
}

// Result holds every remedy matching a query, in dataset order.
type Result struct {
	Query    Query
	Remedies []Remedy
}

// Found reports whether at least one record matched.
func (r Result) Found() bool {
	return len(r.Remedies) > 0
}

// Table is the read-only remedy dataset. It is built once and never mutated,
// so it is safe for concurrent use.
type Table struct {
	records []Record
}

// NewTable copies records into a new table.
func NewTable(records []Record) *Table {
	return &Table{records: append([]Record(nil), records...)}
}

// Len returns the number of records.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.records)
}

// Records returns a copy of all records.
func (t *Table) Records() []Record {
	if t == nil {
		return nil
	}
	return append([]Record(nil), t.records...)
}

// Diseases returns the distinct disease names, sorted case-insensitively.
func (t *Table) Diseases() []string {
	if t == nil {
		return nil
	}
	seen := make(map[string]bool)
	var names []string
	for _, rec := range t.records {
		name := strings.TrimSpace(rec.Disease)
		key := strings.ToLower(name)
		if name == "" || seen[key] {
			continue
		}
		seen[key] = true
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})
	return names
}

// NormalizeDisease trims and lowercases a disease name for comparison.
func NormalizeDisease(disease string) string {
	return strings.ToLower(strings.TrimSpace(disease))
}

// Lookup returns every record whose disease equals the query
// case-insensitively and whose age group contains age.
func (t *Table) Lookup(disease string, age int) Result {
	query := Query{Disease: NormalizeDisease(disease), Age: age}
	result := Result{Query: query}
	if t == nil {
		return result
	}

	for _, rec := range t.records {
		if NormalizeDisease(rec.Disease) != query.Disease {
			continue
		}
		if !Matches(rec.AgeGroup, age) {
			continue
		}
		result.Remedies = append(result.Remedies, NewRemedy(rec))
	}

	return result
}
