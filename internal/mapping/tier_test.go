package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadRows(t *testing.T, rows ...[]string) *Table {
	t.Helper()
	width := 0
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}
	table, err := Load(append([][]string{header(width)}, rows...))
	require.NoError(t, err)
	return table
}

func TestBuildTierBlankGating(t *testing.T) {
	table := loadRows(t,
		mappingRow(map[Field]string{OldName: "A", NewName: "B"}),
		mappingRow(map[Field]string{OldName: "", NewName: "C", Remark: "no anchor"}),
		mappingRow(map[Field]string{OldName: "D", NewName: "nan", Remark: "no target"}),
		mappingRow(map[Field]string{OldName: "NaN", NewName: "E"}),
		mappingRow(map[Field]string{OldWaferName: "W", OldName: " ", NewName: "F"}),
	)

	idx := BuildTier(table, DefaultTiers[0])
	assert.Equal(t, 1, idx.Len())

	got, ok := idx.Lookup("A")
	require.True(t, ok)
	assert.Equal(t, "B", got)

	for _, key := range []string{"", "D", "nan", "NaN", "W"} {
		_, ok := idx.Lookup(key)
		assert.False(t, ok, "key %q must not be indexed", key)
	}
}

func TestBuildTierStripsLineBreaks(t *testing.T) {
	table := loadRows(t, mappingRow(map[Field]string{OldName: "AB\n12", NewName: "CD\r\n34"}))
	idx := BuildTier(table, DefaultTiers[0])

	got, ok := idx.Lookup("AB12")
	require.True(t, ok)
	assert.Equal(t, "CD34", got)
}

func TestBuildTierDuplicateKeyLastWins(t *testing.T) {
	table := loadRows(t,
		mappingRow(map[Field]string{OldName: "X", NewName: "Y"}),
		mappingRow(map[Field]string{OldName: "Q", NewName: "R"}),
		mappingRow(map[Field]string{OldName: "X", NewName: "Z"}),
		mappingRow(map[Field]string{OldName: "Q", NewName: "R"}),
	)
	idx := BuildTier(table, DefaultTiers[0])

	got, _ := idx.Lookup("X")
	assert.Equal(t, "Z", got)

	overwrites := idx.Overwrites()
	require.Len(t, overwrites, 1, "identical duplicates are not flagged")
	assert.Equal(t, Overwrite{Key: "X", Previous: "Y", Current: "Z", Row: 3}, overwrites[0])
}

func TestBuildTierMissingColumn(t *testing.T) {
	table := loadRows(t, mappingRow(map[Field]string{OldName: "A", NewName: "B"}))
	idx := BuildTier(table, DefaultTiers[4])
	assert.Equal(t, 0, idx.Len())
	assert.Equal(t, "substitute4", idx.Name())
}

func TestBuildTiersSubstitutesAnchorOnNewName(t *testing.T) {
	table := loadRows(t,
		mappingRow(map[Field]string{OldName: "P100", NewName: "P200", SubstName1: "P300", SubstName3: "P500"}),
		mappingRow(map[Field]string{NewName: "P600", SubstName2: "P700", SubstName4: "P800"}),
	)
	tiers := BuildTiers(table, DefaultTiers)
	require.Len(t, tiers, 5)

	want := []map[string]string{
		{"P100": "P200"},
		{"P300": "P200"},
		{"P700": "P600"},
		{"P500": "P200"},
		{"P800": "P600"},
	}
	for i, tier := range tiers {
		assert.Equal(t, len(want[i]), tier.Len(), tier.Name())
		for k, v := range want[i] {
			got, ok := tier.Lookup(k)
			assert.True(t, ok, "%s: %s", tier.Name(), k)
			assert.Equal(t, v, got)
		}
	}
}

func TestDefaultTiersOrder(t *testing.T) {
	assert.Equal(t, []TierSpec{
		{Name: "primary", Old: OldName, New: NewName},
		{Name: "substitute1", Old: SubstName1, New: NewName},
		{Name: "substitute2", Old: SubstName2, New: NewName},
		{Name: "substitute3", Old: SubstName3, New: NewName},
		{Name: "substitute4", Old: SubstName4, New: NewName},
	}, DefaultTiers)
}
