package scoring

import (
	"fmt"
	"strconv"
	"strings"
)

// Table is a batch of pre-coded rows as read from a spreadsheet. Header
// names the columns; each row holds the raw cell text.
type Table struct {
	Header []string
	Rows   [][]string
}

// Columns maps each domain to its column index in a Table.
type Columns map[Domain]int

// RowResult is the outcome for one batch row. Row counts data rows from 1.
// Exactly one of Result and Issues is set.
type RowResult struct {
	Row     int      `json:"row"`
	Domains ScoreMap `json:"domains,omitempty"`
	Result  *Result  `json:"result,omitempty"`
	Issues  []Issue  `json:"issues,omitempty"`
}

// OK reports whether the row was scored.
func (r RowResult) OK() bool {
	return r.Result != nil
}

// TableResult holds per-row outcomes in input order.
type TableResult struct {
	Columns Columns     `json:"-"`
	Rows    []RowResult `json:"rows"`
	Scored  int         `json:"scored"`
	Failed  int         `json:"failed"`
}

// TierCounts tallies scored rows per tier.
func (t *TableResult) TierCounts() map[Tier]int {
	counts := make(map[Tier]int, 3)
	for _, r := range t.Rows {
		if r.OK() {
			counts[r.Result.Tier]++
		}
	}
	return counts
}

// AggregateBatch aggregates every score map independently. The result has
// the same length and order as rows; a malformed row only fails itself.
func AggregateBatch(rows []ScoreMap) []RowResult {
	out := make([]RowResult, len(rows))
	for i, m := range rows {
		out[i] = aggregateRow(i+1, m)
	}
	return out
}

func aggregateRow(n int, m ScoreMap) RowResult {
	rr := RowResult{Row: n, Domains: m}
	res, err := Aggregate(m)
	if err != nil {
		issues := IssuesOf(err)
		if issues == nil {
			issues = []Issue{{Reason: err.Error()}}
		}
		rr.Issues = withRow(n, issues)
		return rr
	}
	rr.Result = &res
	return rr
}

func withRow(n int, issues []Issue) []Issue {
	out := make([]Issue, len(issues))
	for i, iss := range issues {
		iss.Row = n
		out[i] = iss
	}
	return out
}

// aliasColumn is the positional column name accepted when the domain
// names are absent from the header: dim1 is ADL, dim8 Cohabitation.
func aliasColumn(i int) string {
	return fmt.Sprintf("dim%d", i+1)
}

// ResolveColumns locates the eight domain columns in header. Names match
// case-insensitively. When no domain name is present at all, the
// positional aliases dim1..dim8 are tried instead. A missing column fails
// the whole table.
func ResolveColumns(header []string) (Columns, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		if _, seen := index[key]; !seen {
			index[key] = i
		}
	}

	cols := make(Columns, DomainCount)
	var missing []Issue
	for _, d := range Domains {
		if i, ok := index[strings.ToLower(string(d))]; ok {
			cols[d] = i
			continue
		}
		missing = append(missing, Issue{Domain: d, Column: string(d), Reason: "required column missing"})
	}
	if len(missing) == 0 {
		return cols, nil
	}

	if len(missing) == DomainCount {
		aliased := make(Columns, DomainCount)
		for i, d := range Domains {
			j, ok := index[aliasColumn(i)]
			if !ok {
				return nil, invalid(missing...)
			}
			aliased[d] = j
		}
		return aliased, nil
	}
	return nil, invalid(missing...)
}

// ScoreTable resolves the domain columns of t and aggregates every row.
// Only a header problem returns an error; row problems, including blank
// rows, are reported on the row so numbering matches the source sheet.
func ScoreTable(t Table) (*TableResult, error) {
	cols, err := ResolveColumns(t.Header)
	if err != nil {
		return nil, err
	}

	res := &TableResult{Columns: cols, Rows: make([]RowResult, len(t.Rows))}
	for i, row := range t.Rows {
		n := i + 1
		if IsBlankRow(row) {
			res.Rows[i] = RowResult{Row: n, Issues: []Issue{{Row: n, Reason: "empty row"}}}
			res.Failed++
			continue
		}
		m, issues := parseRow(n, t.Header, cols, row)
		if len(issues) > 0 {
			res.Rows[i] = RowResult{Row: n, Issues: issues}
		} else {
			res.Rows[i] = aggregateRow(n, m)
		}
		if res.Rows[i].OK() {
			res.Scored++
		} else {
			res.Failed++
		}
	}
	return res, nil
}

// IsBlankRow reports whether every cell of row is empty or whitespace.
func IsBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func parseRow(n int, header []string, cols Columns, row []string) (ScoreMap, []Issue) {
	m := make(ScoreMap, DomainCount)
	var issues []Issue
	for _, d := range Domains {
		idx := cols[d]
		column := header[idx]
		var cell string
		if idx < len(row) {
			cell = row[idx]
		}
		v, err := ParseCodedValue(cell)
		if err != nil {
			issues = append(issues, Issue{Domain: d, Row: n, Column: column, Reason: err.Error()})
			continue
		}
		m[d] = v
	}
	return m, issues
}

// ParseCodedValue parses a spreadsheet cell holding a coded value. A
// decimal comma is accepted.
func ParseCodedValue(cell string) (float64, error) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return 0, fmt.Errorf("empty value")
	}
	v, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil {
		return 0, fmt.Errorf("value %q is not a number", cell)
	}
	if !IsCoded(v) {
		return 0, fmt.Errorf("value %q is not one of 0, 0.5, 1", cell)
	}
	return v, nil
}
