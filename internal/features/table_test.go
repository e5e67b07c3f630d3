package features

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validated = `City,Avg_Household_Size,Pct_Divorced,Pct_Single,Pct_Married
Adana,3.31,0.021,0.29,0.62
Ankara,2.98,0.034,0.31,0.58
Batman,,0.008,0.36,0.59
Bayburt,3.10,NaN,0.30,0.61
Adana,9.99,0.5,0.5,0.5
Bitlis,4.91,0.006,abc,0.60
Çorum,2.86,0.019,0.24,0.66
`

var schema = Schema{
	IDColumn: "City",
	Features: []string{"Avg_Household_Size", "Pct_Divorced", "Pct_Never_Married"},
	Aliases:  map[string][]string{"Pct_Never_Married": {"Pct_Single"}},
}

type labelMap map[string]int

func (m labelMap) Label(city string) (int, bool) {
	l, ok := m[city]
	return l, ok
}

func TestLoad(t *testing.T) {
	table, err := Load(strings.NewReader(validated), schema)
	require.NoError(t, err)

	assert.Equal(t, []string{"Adana", "Ankara", "Çorum"}, table.Cities())
	assert.Equal(t, [][]float64{
		{3.31, 0.021, 0.29},
		{2.98, 0.034, 0.31},
		{2.86, 0.019, 0.24},
	}, table.Matrix())
	assert.Equal(t, []string{"Adana"}, table.Duplicates)
	assert.Len(t, table.Rows, 6)

	require.Len(t, table.Missing, 3)
	assert.Equal(t, "Batman", table.Missing[0].City)
	assert.Equal(t, "Avg_Household_Size", table.Missing[0].Feature)
	assert.Equal(t, "Bayburt", table.Missing[1].City)
	assert.Equal(t, "NaN", table.Missing[1].Value)
	assert.Equal(t, "Pct_Never_Married", table.Missing[2].Feature)
	assert.Contains(t, table.Missing[2].Error(), "Bitlis")
}

func TestLoad_MissingColumn(t *testing.T) {
	_, err := Load(strings.NewReader("City,Avg_Household_Size\nAdana,3.1\n"), schema)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Pct_Divorced")

	_, err = Load(strings.NewReader(""), schema)
	require.ErrorIs(t, err, ErrNoHeader)
}

func TestWriteAssignments(t *testing.T) {
	table, err := Load(strings.NewReader(validated), schema)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteAssignments(&buf, table, labelMap{"Adana": 1, "Ankara": 0, "Çorum": 1}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, "City,Avg_Household_Size,Pct_Divorced,Pct_Single,Pct_Married,Cluster", lines[0])
	assert.Equal(t, "Adana,3.31,0.021,0.29,0.62,1", lines[1])
	assert.Equal(t, "Batman,,0.008,0.36,0.59,", lines[3])
	assert.Equal(t, "Çorum,2.86,0.019,0.24,0.66,1", lines[6])
}
