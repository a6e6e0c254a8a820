// Package aggregate types uploaded sheets and merges records that share an
// identifier by summing their numeric columns.
package aggregate

type AggregatedRecord struct {
	Identifier string
	Sums       []float64
}

// Result is the aggregated output table: the identifier column followed by
// the numeric columns in their original order.
type Result struct {
	Name       string
	Identifier string
	Columns    []string
	Records    []AggregatedRecord
}

// Headers returns the output header row.
func (r *Result) Headers() []string {
	out := make([]string, 0, len(r.Columns)+1)
	out = append(out, r.Identifier)
	return append(out, r.Columns...)
}

// Totals sums every numeric column across the output records.
func (r *Result) Totals() []float64 {
	out := make([]float64, len(r.Columns))
	for _, rec := range r.Records {
		for i, v := range rec.Sums {
			out[i] += v
		}
	}
	return out
}

// Aggregate groups records by identifier, in first-appearance order, and sums
// each numeric column per group. Text columns are dropped.
func Aggregate(t *Table) *Result {
	numeric := t.Schema.Numeric()
	res := &Result{
		Name:       t.Name,
		Identifier: t.Schema.Identifier().Name,
		Columns:    make([]string, 0, len(numeric)),
		Records:    []AggregatedRecord{},
	}
	for _, c := range numeric {
		res.Columns = append(res.Columns, c.Name)
	}

	groups := map[string]int{}
	for _, rec := range t.Records {
		pos, ok := groups[rec.Identifier]
		if !ok {
			pos = len(res.Records)
			groups[rec.Identifier] = pos
			res.Records = append(res.Records, AggregatedRecord{Identifier: rec.Identifier, Sums: make([]float64, len(numeric))})
		}
		sums := res.Records[pos].Sums
		for i, v := range rec.Numbers {
			sums[i] += v
		}
	}
	return res
}
