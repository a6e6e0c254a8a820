package aggregate

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"partmap/internal"
	"partmap/internal/util"
)

func sheet(header []string, rows ...[]string) internal.Sheet {
	return internal.Sheet{Name: "t.xlsx", Source: internal.SourceXLSX, Header: header, Rows: rows}
}

func TestInferSchema(t *testing.T) {
	s := sheet(
		[]string{"品名", "qty", "note", "", "amount"},
		[]string{"P1", "5", "urgent", "", "1.5"},
		[]string{"P2", "", "", "", "nan"},
		[]string{"P3", "3", "7", "", "2"},
	)
	schema, err := InferSchema(s, util.ParseNumber)
	require.NoError(t, err)

	kinds := make([]ColumnKind, 0, len(schema.Columns))
	names := make([]string, 0, len(schema.Columns))
	for _, c := range schema.Columns {
		kinds = append(kinds, c.Kind)
		names = append(names, c.Name)
	}
	assert.Equal(t, []ColumnKind{KindIdentifier, KindNumeric, KindText, KindNumeric, KindNumeric}, kinds)
	assert.Equal(t, []string{"品名", "qty", "note", "Unnamed: 3", "amount"}, names)
	assert.Equal(t, "品名", schema.Identifier().Name)
	assert.Len(t, schema.Numeric(), 3)
}

func TestInferSchemaNoColumns(t *testing.T) {
	_, err := InferSchema(sheet(nil), util.ParseNumber)
	require.Error(t, err)
}

func TestAggregateFirstAppearanceOrder(t *testing.T) {
	tbl, err := NewTable(sheet(
		[]string{"id", "qty", "remark", "cost"},
		[]string{"B", "1", "x", "10"},
		[]string{"A", "2", "y", ""},
		[]string{"B", "3", "z", "5"},
		[]string{"", "", "", ""},
		[]string{"C", "4"},
	), util.ParseNumber)
	require.NoError(t, err)
	require.Len(t, tbl.Records, 4, "fully blank rows are skipped")

	res := Aggregate(tbl)
	assert.Equal(t, []string{"id", "qty", "cost"}, res.Headers())
	require.Len(t, res.Records, 3)
	assert.Equal(t, AggregatedRecord{Identifier: "B", Sums: []float64{4, 15}}, res.Records[0])
	assert.Equal(t, AggregatedRecord{Identifier: "A", Sums: []float64{2, 0}}, res.Records[1])
	assert.Equal(t, AggregatedRecord{Identifier: "C", Sums: []float64{4, 0}}, res.Records[2])
}

func TestAggregateNoNumericColumns(t *testing.T) {
	tbl, err := NewTable(sheet([]string{"id", "name"}, []string{"A", "x"}, []string{"A", "y"}), util.ParseNumber)
	require.NoError(t, err)
	res := Aggregate(tbl)
	assert.Equal(t, []string{"id"}, res.Headers())
	require.Len(t, res.Records, 1)
	assert.Empty(t, res.Records[0].Sums)
}

func TestAggregateSumConservation(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	ids := []string{"A", "B", "C", "D", "E"}

	rows := make([][]string, 0, 200)
	for i := 0; i < 200; i++ {
		rows = append(rows, []string{
			ids[rng.Intn(len(ids))],
			fmt.Sprint(rng.Intn(1000)),
			fmt.Sprint(rng.Intn(50) - 25),
		})
	}
	tbl, err := NewTable(sheet([]string{"id", "q1", "q2"}, rows...), util.ParseNumber)
	require.NoError(t, err)

	// Collapse identifiers the way resolution would, creating duplicates that
	// did not exist in the raw input.
	distinctRaw := map[string]struct{}{}
	for i := range tbl.Records {
		distinctRaw[tbl.Records[i].Identifier] = struct{}{}
		if tbl.Records[i].Identifier == "D" {
			tbl.Records[i].Identifier = "A"
		}
	}

	res := Aggregate(tbl)
	assert.Equal(t, inputTotals(tbl), res.Totals())
	assert.LessOrEqual(t, len(res.Records), len(distinctRaw))

	seen := map[string]struct{}{}
	for _, rec := range res.Records {
		_, dup := seen[rec.Identifier]
		assert.False(t, dup, "duplicate output identifier %s", rec.Identifier)
		seen[rec.Identifier] = struct{}{}
	}
}

func TestNewTableLooseNumbers(t *testing.T) {
	tbl, err := NewTable(sheet([]string{"id", "qty"}, []string{"A", "1 000"}, []string{"A", "2,5"}), util.ParseLooseNumber)
	require.NoError(t, err)
	res := Aggregate(tbl)
	require.Len(t, res.Records, 1)
	assert.InDelta(t, 1002.5, res.Records[0].Sums[0], 1e-9)
}

func inputTotals(tbl *Table) []float64 {
	out := make([]float64, len(tbl.Schema.Numeric()))
	for _, rec := range tbl.Records {
		for i, v := range rec.Numbers {
			out[i] += v
		}
	}
	return out
}
