package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.Conversion("int", "")
	r.Conversion("int", "is_not_a_valid_integer")
	r.Conversion("int", "is_not_a_valid_integer")
	r.Binding("client", true)
	r.Serialization("json", false, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.conversions.WithLabelValues("int", OutcomeOK)))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.conversions.WithLabelValues("int", "is_not_a_valid_integer")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.bindings.WithLabelValues("client", OutcomeError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.serializations.WithLabelValues("json", OutcomeOK)))

	n, err := testutil.GatherAndCount(reg, "mold_serialize_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRecorder_Nil(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.Conversion("int", "")
		r.Binding("client", false)
		r.Serialization("xml", true, time.Second)
	})
}
