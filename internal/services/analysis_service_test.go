package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pushpulse/internal/analysis"
	"pushpulse/internal/dataset"
	"pushpulse/internal/shared/testutil"
)

const sampleCSV = `Day,Entity,Slot,Variant,Direct Opens (Android Push),Total Opens (Android Push),Sends (Android Push),Direct Opens (iOS Push),Total Opens (iOS Push),Sends (iOS Push)
Mon,A,1,VAR1,40,50,100,10,12,50
Mon,A,1,VAR2,30,45,100,8,9,50
Tue,B,2,VAR1,44,54,100,11,13,50
Tue,B,2,VAR2,32,42,100,9,10,50
`

func newTestService(t *testing.T) *AnalysisService {
	t.Helper()
	logger, _ := testutil.NewLogger(t)
	return NewAnalysisService(dataset.NewLoader(logger), analysis.NewAnalyzer(logger), logger, nil)
}

func loadSample(t *testing.T, svc *AnalysisService) {
	t.Helper()
	require.NoError(t, svc.LoadFromReader(context.Background(), strings.NewReader(sampleCSV), "report.csv"))
}

func TestAnalysisServiceNoDataset(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Info(ctx)
	assert.ErrorIs(t, err, ErrNoDataset)

	_, err = svc.Summaries(ctx, analysis.Filter{}, nil)
	assert.ErrorIs(t, err, ErrNoDataset)

	_, err = svc.Compare(ctx, analysis.Request{GroupBy: []analysis.GroupColumn{analysis.GroupDay}})
	assert.ErrorIs(t, err, ErrNoDataset)
}

func TestAnalysisServiceRejectsUnknownDimensions(t *testing.T) {
	svc := newTestService(t)
	loadSample(t, svc)
	ctx := context.Background()

	t.Run("unknown grouping column", func(t *testing.T) {
		_, err := svc.Compare(ctx, analysis.Request{
			GroupBy: []analysis.GroupColumn{"Weekday"},
		})
		require.ErrorIs(t, err, ErrUnknownGroupColumn)
		assert.Contains(t, err.Error(), "Weekday")
	})

	t.Run("unknown platform in comparison", func(t *testing.T) {
		_, err := svc.Compare(ctx, analysis.Request{
			GroupBy:   []analysis.GroupColumn{analysis.GroupDay},
			Platforms: []dataset.Platform{"Windows"},
		})
		require.ErrorIs(t, err, ErrUnknownPlatform)
		assert.Contains(t, err.Error(), "Windows")
	})

	t.Run("unknown platform in summaries", func(t *testing.T) {
		_, err := svc.Summaries(ctx, analysis.Filter{}, []dataset.Platform{"web"})
		assert.ErrorIs(t, err, ErrUnknownPlatform)
	})
}

func TestAnalysisServiceLoadAndInfo(t *testing.T) {
	svc := newTestService(t)
	loadSample(t, svc)

	info, err := svc.Info(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "report.csv", info.Source)
	assert.Equal(t, 4, info.Rows)
	assert.False(t, info.LoadedAt.IsZero())

	// Observed values keep first-seen order for stable filter defaults.
	assert.Equal(t, []string{"Mon", "Tue"}, info.Observed.Days)
	assert.Equal(t, []string{"A", "B"}, info.Observed.Entities)
	assert.Equal(t, []string{"1", "2"}, info.Observed.Slots)
}

func TestAnalysisServiceLoadFromFile(t *testing.T) {
	svc := newTestService(t)

	path := filepath.Join(t.TempDir(), "report.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))
	require.NoError(t, svc.LoadFromFile(context.Background(), path))

	info, err := svc.Info(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "report.csv", info.Source)
}

func TestAnalysisServiceLoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		svc := newTestService(t)
		err := svc.LoadFromFile(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))
		require.Error(t, err)
	})

	t.Run("empty upload", func(t *testing.T) {
		svc := newTestService(t)
		header := strings.SplitN(sampleCSV, "\n", 2)[0]
		err := svc.LoadFromReader(context.Background(), strings.NewReader(header+"\n"), "empty.csv")
		assert.ErrorIs(t, err, ErrEmptyUpload)
	})

	t.Run("missing column surfaces through wrapping", func(t *testing.T) {
		svc := newTestService(t)
		broken := strings.Replace(sampleCSV, "Variant,", "Arm,", 1)
		err := svc.LoadFromReader(context.Background(), strings.NewReader(broken), "broken.csv")

		var missing *dataset.MissingColumnError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, dataset.ColVariant, missing.Column)
	})
}

func TestAnalysisServiceSummaries(t *testing.T) {
	svc := newTestService(t)
	loadSample(t, svc)

	t.Run("defaults to all platforms", func(t *testing.T) {
		summaries, err := svc.Summaries(context.Background(), analysis.Filter{}, nil)
		require.NoError(t, err)
		require.Len(t, summaries, 2)
		assert.Equal(t, dataset.PlatformAndroid, summaries[0].Platform)
		assert.Equal(t, dataset.PlatformIOS, summaries[1].Platform)

		require.True(t, summaries[0].DirectOpenRate.Valid)
		assert.InDelta(t, 0.365, summaries[0].DirectOpenRate.Value, 1e-9)
	})

	t.Run("filter restricts rows", func(t *testing.T) {
		summaries, err := svc.Summaries(context.Background(),
			analysis.Filter{Days: []string{"Mon"}},
			[]dataset.Platform{dataset.PlatformAndroid})
		require.NoError(t, err)
		require.Len(t, summaries, 1)
		assert.Equal(t, 2, summaries[0].Records)
		assert.InDelta(t, 0.35, summaries[0].DirectOpenRate.Value, 1e-9)
	})
}

func TestAnalysisServiceCompare(t *testing.T) {
	svc := newTestService(t)
	loadSample(t, svc)

	report, err := svc.Compare(context.Background(), analysis.Request{
		GroupBy: []analysis.GroupColumn{analysis.GroupDay},
	})
	require.NoError(t, err)

	// Platforms default to Android and iOS; two groups, both variants
	// present everywhere: four rows.
	require.Len(t, report.Results, 4)
	assert.Equal(t, dataset.AllPlatforms, report.Platforms)
	assert.Equal(t, analysis.GroupKey{"Mon"}, report.Results[0].Key)
	assert.Equal(t, analysis.GroupKey{"Tue"}, report.Results[2].Key)
}

func TestAnalysisServiceReplaceDataset(t *testing.T) {
	svc := newTestService(t)
	loadSample(t, svc)

	replacement := `Day,Entity,Slot,Variant,Direct Opens (Android Push),Total Opens (Android Push),Sends (Android Push),Direct Opens (iOS Push),Total Opens (iOS Push),Sends (iOS Push)
Wed,C,3,VAR1,10,20,40,0,0,0
`
	require.NoError(t, svc.LoadFromReader(context.Background(), strings.NewReader(replacement), "new.csv"))

	info, err := svc.Info(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "new.csv", info.Source)
	assert.Equal(t, 1, info.Rows)
	assert.Equal(t, []string{"Wed"}, info.Observed.Days)
}
