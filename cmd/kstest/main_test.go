package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kstest/internal/errors"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("LOG_LEVEL", "ERROR")

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCriticalValuesTable(t *testing.T) {
	out, err := execute(t, "critical-values", "0.95", "100", "20")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "n1\tn2\tconfidence\tcritical_value", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "100\t16\t0.95\t"), lines[1])
	assert.True(t, strings.HasPrefix(lines[5], "100\t20\t0.95\t"), lines[5])
}

func TestCriticalValuesRejectsBadArguments(t *testing.T) {
	for _, args := range [][]string{
		{"critical-values", "1.5", "100", "20"},
		{"critical-values", "0.95", "0", "20"},
		{"critical-values", "0.95", "100", "x"},
	} {
		_, err := execute(t, args...)
		require.Error(t, err, "%v", args)
		assert.Equal(t, 2, errors.ExitCode(err), "%v", args)
	}
}

func TestNormalIsReproducibleWithSeed(t *testing.T) {
	first, err := execute(t, "normal", "50", "3", "2", "--seed", "9")
	require.NoError(t, err)
	second, err := execute(t, "normal", "50", "3", "2", "--seed", "9")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, strings.Split(strings.TrimSpace(first), "\n"), 50)

	_, err = execute(t, "normal", "50", "3", "0")
	assert.Equal(t, 2, errors.ExitCode(err))
}

func TestNormalThenTest(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.xlsx")
	c := filepath.Join(dir, "c.csv")

	_, err := execute(t, "normal", "500", "0", "1", "--seed", "1", "--out", a)
	require.NoError(t, err)
	_, err = execute(t, "normal", "500", "0", "1", "--seed", "1", "--out", b)
	require.NoError(t, err)
	_, err = execute(t, "normal", "500", "5", "1", "--seed", "2", "--out", c)
	require.NoError(t, err)

	out, err := execute(t, "test", a, b, "--summary")
	require.NoError(t, err)
	assert.Contains(t, out, "Samples are from the same distributions.")
	assert.Contains(t, out, "test statistic = 0\n")
	assert.Contains(t, out, "reject probability = ")
	assert.Contains(t, out, a+": n=500")

	out, err = execute(t, "test", a, c, "--strategy", "critical", "--confidence", "0.99")
	require.NoError(t, err)
	assert.Contains(t, out, "Samples are from different distributions.")
	assert.Contains(t, out, "confidence = 0.99")
	assert.NotContains(t, out, "reject probability")
}

func TestTestIntegerFiles(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	require.NoError(t, os.WriteFile(a, []byte("value\n1\n2\n3\n4\n"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("5\n6\n7\n8\n"), 0o644))

	out, err := execute(t, "test", a, b, "--type", "i64")
	require.NoError(t, err)
	assert.Contains(t, out, "test statistic = 1\n")

	_, err = execute(t, "test", a, b, "--type", "u8")
	assert.Equal(t, 2, errors.ExitCode(err))

	_, err = execute(t, "test", a, filepath.Join(dir, "missing.txt"))
	assert.Equal(t, errors.CodeIOError, errors.GetCode(err))
	assert.Equal(t, 1, errors.ExitCode(err))
}

func TestBatchCommand(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "runs.yaml")
	require.NoError(t, os.WriteFile(manifest, []byte(`
pairs:
  - name: shifted
    first: {normal: {count: 400, mean: 0, variance: 1, seed: 4}}
    second: {normal: {count: 400, mean: 2, variance: 1, seed: 4}}
`), 0o644))
	results := filepath.Join(dir, "results.json")
	metricsFile := filepath.Join(dir, "kstest.prom")

	_, err := execute(t, "batch", manifest, "--out", results, "--metrics-file", metricsFile)
	require.NoError(t, err)

	data, err := os.ReadFile(results)
	require.NoError(t, err)
	var decoded struct {
		Success  bool `json:"success"`
		Rejected int  `json:"rejected"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, decoded.Success)
	assert.Equal(t, 1, decoded.Rejected)

	prom, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "kstest_tests_total")
}
