package analysis

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"provcluster/internal/cluster"
	"provcluster/internal/config"
	"provcluster/internal/features"
)

const pairs = `City,X,Y
A,0,0
B,0,1
C,10,10
D,10,11
E,,3
`

func load(t *testing.T, data string, cols ...string) *features.Table {
	t.Helper()
	table, err := features.Load(strings.NewReader(data), features.Schema{IDColumn: "City", Features: cols})
	require.NoError(t, err)
	return table
}

func pairOptions() cluster.Options {
	opts := cluster.DefaultOptions()
	opts.Clusters = 2
	opts.Restarts = 5
	opts.Representatives = 2
	return opts
}

func TestRun(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	res, err := Run(pairOptions(), load(t, pairs, "X", "Y"), zap.New(core))
	require.NoError(t, err)

	_, err = uuid.Parse(res.RunID)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Excluded())
	assert.Equal(t, 2, res.Clusters())
	assert.Equal(t, 1, logs.FilterMessage("row excluded from clustering").Len())

	assert.Equal(t, 4, res.Assignment.Len())
	a, _ := res.Assignment.Label("A")
	b, _ := res.Assignment.Label("B")
	c, _ := res.Assignment.Label("C")
	d, _ := res.Assignment.Label("D")
	assert.Equal(t, 0, a)
	assert.Equal(t, a, b)
	assert.Equal(t, c, d)
	assert.NotEqual(t, a, c)
	_, ok := res.Assignment.Label("E")
	assert.False(t, ok)
	assert.Equal(t, []string{"C", "D"}, res.Assignment.Members(1))

	require.Len(t, res.Summaries, 2)
	assert.InDeltaSlice(t, []float64{0, 0.5}, res.Summaries[0].Means, 1e-12)
	assert.InDeltaSlice(t, []float64{10, 10.5}, res.Summaries[1].Means, 1e-12)

	require.Len(t, res.Representatives, 2)
	var first []string
	for _, r := range res.Representatives[0] {
		first = append(first, r.City)
	}
	assert.ElementsMatch(t, []string{"A", "B"}, first)
	assert.LessOrEqual(t, res.Representatives[1][0].Distance, res.Representatives[1][1].Distance)
}

func TestRun_Errors(t *testing.T) {
	t.Run("invalid configuration", func(t *testing.T) {
		opts := pairOptions()
		opts.Clusters = 1
		_, err := Run(opts, load(t, pairs, "X", "Y"), nil)
		var cfgErr *cluster.InvalidConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, "clusters", cfgErr.Field)
	})

	t.Run("insufficient data", func(t *testing.T) {
		opts := pairOptions()
		opts.Clusters = 5
		_, err := Run(opts, load(t, pairs, "X", "Y"), nil)
		var dataErr *cluster.InsufficientDataError
		require.ErrorAs(t, err, &dataErr)
		assert.Equal(t, 4, dataErr.Records)
	})

	t.Run("constant column", func(t *testing.T) {
		flat := "City,X,Z\nA,0,1\nB,1,1\nC,5,1\nD,6,1\n"
		_, err := Run(pairOptions(), load(t, flat, "X", "Z"), nil)
		var inputErr *cluster.InvalidInputError
		require.ErrorAs(t, err, &inputErr)
		assert.Equal(t, "Z", inputErr.Feature)
		assert.True(t, strings.HasPrefix(err.Error(), "scale: "))
	})
}

func TestAnalyze(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "validated.csv")
	data := `City,Avg_Household_Size,Pct_Divorced,Pct_Single,Pct_Married
Adana,3.31,0.021,0.29,0.62
Ankara,2.98,0.034,0.31,0.58
Batman,5.01,0.008,0.36,0.59
Bayburt,3.10,0.012,0.30,0.61
Bitlis,4.91,0.006,0.37,0.60
Çorum,2.86,0.019,0.24,0.66
İzmir,2.83,0.041,0.30,0.57
Şırnak,5.45,0.005,0.39,0.57
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg := config.DefaultConfig()
	cfg.Paths.Input = path
	res, err := Analyze(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, 8, res.Assignment.Len())
	assert.Equal(t, 0, res.Excluded())
	for _, reps := range res.Representatives {
		assert.NotEmpty(t, reps)
	}

	again, err := Analyze(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, res.Model.Labels, again.Model.Labels)
	assert.NotEqual(t, res.RunID, again.RunID)

	cfg.Paths.Input = filepath.Join(dir, "absent.csv")
	_, err = Analyze(cfg, nil)
	require.ErrorIs(t, err, os.ErrNotExist)
}
