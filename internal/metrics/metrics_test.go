package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExports_Observe(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewExports(reg)
	require.NoError(t, err)

	m.Observe("archive", 3, nil)
	m.Observe("archive", 5, nil)
	m.Observe("download", 0, errors.New("boom"))

	assert.Equal(t, float64(2), testutil.ToFloat64(m.total.WithLabelValues("archive", StatusSuccess)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.total.WithLabelValues("download", StatusError)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.rows))
}

func TestExports_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewExports(reg)
	require.NoError(t, err)

	_, err = NewExports(reg)
	assert.Error(t, err)
}

func TestExports_NilIsNoop(t *testing.T) {
	var m *Exports
	assert.NotPanics(t, func() { m.Observe("archive", 1, nil) })
}
