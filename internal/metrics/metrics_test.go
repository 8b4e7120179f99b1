package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveTest(t *testing.T) {
	r := NewRecorder()

	r.ObserveTest("both", true, false, true, 100, 200, time.Millisecond)
	r.ObserveTest("both", false, true, false, 10, 10, time.Millisecond)
	r.ObserveTest("critical", false, false, false, 10, 10, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.TestsTotal.WithLabelValues("both", DecisionRejected)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.TestsTotal.WithLabelValues("both", DecisionRetained)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.TestsTotal.WithLabelValues("critical", DecisionRetained)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.ConvergenceWarningsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.DisagreementsTotal))
}

func TestObserveError(t *testing.T) {
	r := NewRecorder()
	r.ObserveError("validation")
	r.ObserveError("validation")

	assert.Equal(t, 2.0, testutil.ToFloat64(r.ErrorsTotal.WithLabelValues("validation")))
}

func TestNilRecorderIsNoop(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.ObserveTest("both", true, true, true, 1, 1, time.Second)
		r.ObserveError("internal")
	})
	assert.Nil(t, r.Registry())
	assert.NoError(t, r.WriteTextfile(filepath.Join(t.TempDir(), "unused.prom")))
}

func TestWriteTextfile(t *testing.T) {
	r := NewRecorder()
	r.ObserveTest("probability", true, false, false, 50, 60, 2*time.Millisecond)

	path := filepath.Join(t.TempDir(), "kstest.prom")
	require.NoError(t, r.WriteTextfile(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), `kstest_tests_total{decision="rejected",strategy="probability"} 1`)
	assert.Contains(t, string(content), "kstest_test_duration_seconds_bucket")
}
