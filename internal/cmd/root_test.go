package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/asaidimu/go-adhquery/core/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const validInputYAML = `
reportParams:
  - ["1234,5678"]
  - [3]
groupings:
  - [TrueView, Placement, Contain, TrV, Placement, Does not contain, GP]
  - [Display, Placement ID, Equals, 111]
optionalFilters:
  - [Advertiser Name, Contain, dddd]
groupingSetName: placements
`

const invalidInputYAML = `
groupings:
  - [Broken, Nope, Equals, 1]
`

// testEnv writes a config pointing the store into a temp dir and returns
// the config path and that dir.
func testEnv(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := "log:\n  level: error\nstore:\n  path: " + filepath.Join(dir, "sheets.db") + "\n"
	path := filepath.Join(dir, "adhquery.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))
	return path, dir
}

func run(t *testing.T, configPath string, args ...string) (string, string, error) {
	t.Helper()
	return runApp(t, &app{}, configPath, args...)
}

func runApp(t *testing.T, a *app, configPath string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRoot(a)
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--config", configPath}, args...))
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func writeInput(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestReportsAndTemplates(t *testing.T) {
	cfg, _ := testEnv(t)

	out, _, err := run(t, cfg, "reports")
	require.NoError(t, err)
	assert.Contains(t, out, catalog.ReportPathAnalysis)
	assert.Contains(t, out, string(catalog.QueryKindFrequencyDistribution))
	assert.Contains(t, out, "missing")

	out, _, err = run(t, cfg, "templates")
	require.NoError(t, err)
	assert.Equal(t, "optimal_frequency\noverlap_with_google_media\npath_analysis\n", out)
}

func TestImportAndBuild(t *testing.T) {
	cfg, dir := testEnv(t)
	file := writeInput(t, dir, "input.yaml", validInputYAML)

	out, _, err := run(t, cfg, "import", "campaign", "--report", catalog.ReportOptimalFrequency, "--file", file)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported sheet campaign")

	out, _, err = run(t, cfg, "build", "campaign")
	require.NoError(t, err)
	assert.Contains(t, out, "CASE WHEN placement LIKE '%TrV%' AND placement NOT LIKE '%GP%' THEN 'TrueView'")
	assert.Contains(t, out, "AND advertiser LIKE '%dddd%'")

	out, _, err = run(t, cfg, "build", "campaign", "--job")
	require.NoError(t, err)
	var job struct {
		QueryName    string `yaml:"queryName"`
		QueryVersion int    `yaml:"queryVersion"`
		ReportParams []struct {
			QueryParamName string `yaml:"queryParamName"`
			Value          any    `yaml:"value"`
		} `yaml:"reportParams"`
		QueryText string `yaml:"queryTxt"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &job))
	assert.Equal(t, catalog.ReportOptimalFrequency, job.QueryName)
	assert.Equal(t, 1, job.QueryVersion)
	require.Len(t, job.ReportParams, 2)
	assert.Equal(t, []any{1234, 5678}, job.ReportParams[0].Value)
	assert.Equal(t, 3, job.ReportParams[1].Value)
	assert.Contains(t, job.QueryText, "END as placements,")
	assert.Contains(t, job.QueryText, "GROUP BY 1 ,placements")

	out, _, err = run(t, cfg, "sheets")
	require.NoError(t, err)
	assert.Contains(t, out, "campaign")
	assert.Contains(t, out, catalog.ReportOptimalFrequency)

	_, _, err = run(t, cfg, "sheets", "--delete", "campaign")
	require.NoError(t, err)
	_, _, err = run(t, cfg, "build", "campaign")
	assert.ErrorContains(t, err, "not found")
}

func TestBuildInvalidInput(t *testing.T) {
	cfg, dir := testEnv(t)
	file := writeInput(t, dir, "bad.yaml", invalidInputYAML)

	_, _, err := run(t, cfg, "import", "bad", "--report", catalog.ReportPathAnalysis, "--file", file)
	require.NoError(t, err)

	_, stderr, err := run(t, cfg, "build", "bad")
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, stderr, "Grouping Errors:")
}

func TestImportErrors(t *testing.T) {
	cfg, dir := testEnv(t)
	file := writeInput(t, dir, "input.yaml", validInputYAML)

	_, _, err := run(t, cfg, "import", "s", "--report", "Nope", "--file", file)
	assert.ErrorContains(t, err, "unsupported report type")

	_, _, err = run(t, cfg, "import", "s", "--report", catalog.ReportPathAnalysis, "--file", filepath.Join(dir, "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read input file")

	_, _, err = run(t, cfg, "import", "s", "--report", catalog.ReportPathAnalysis)
	assert.Error(t, err, "--file is required")
}

func TestBuildReportOverride(t *testing.T) {
	cfg, dir := testEnv(t)
	file := writeInput(t, dir, "input.yaml", validInputYAML)
	_, _, err := run(t, cfg, "import", "s", "--report", catalog.ReportPathAnalysis, "--file", file)
	require.NoError(t, err)

	out, _, err := run(t, cfg, "build", "s", "--report", catalog.ReportOverlapAnalysis)
	require.NoError(t, err)
	assert.Contains(t, out, "AND advertiser LIKE '%dddd%'")

	_, _, err = run(t, cfg, "build", "s", "--report", catalog.ReportReachAnalysis)
	assert.ErrorContains(t, err, "no query template registered")
}

func TestStoreClosedOnEveryExit(t *testing.T) {
	cfg, dir := testEnv(t)
	file := writeInput(t, dir, "bad.yaml", invalidInputYAML)
	_, _, err := run(t, cfg, "import", "bad", "--report", catalog.ReportPathAnalysis, "--file", file)
	require.NoError(t, err)

	tests := []struct {
		name string
		args []string
		fail bool
	}{
		{"success", []string{"sheets"}, false},
		{"invalid input", []string{"build", "bad"}, true},
		{"missing sheet", []string{"build", "nope"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &app{}
			_, _, err := runApp(t, a, cfg, tt.args...)
			assert.Equal(t, tt.fail, err != nil, err)
			require.NotNil(t, a.db)
			assert.ErrorContains(t, a.db.PingContext(context.Background()), "database is closed")
		})
	}

	t.Run("failed setup", func(t *testing.T) {
		bad := filepath.Join(dir, "bad-store.yaml")
		store := filepath.Join(dir, "missing", "sheets.db")
		require.NoError(t, os.WriteFile(bad, []byte("store:\n  path: "+store+"\n"), 0o644))

		a := &app{}
		_, _, err := runApp(t, a, bad, "sheets")
		require.Error(t, err)
		require.NotNil(t, a.db)
		assert.ErrorContains(t, a.db.PingContext(context.Background()), "database is closed")
	})
}
