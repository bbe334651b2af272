package fieldselector

import (
	"net/url"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMetrics(t *testing.T) *Metrics {
	t.Helper()
	return NewMetrics(prometheus.NewRegistry())
}

func TestNewMetrics_AllFieldsInitialized(t *testing.T) {
	t.Parallel()

	m := newTestMetrics(t)

	require.NotNil(t, m)
	assert.NotNil(t, m.selectionsTotal, "selectionsTotal should be initialized")
	assert.NotNil(t, m.fallbacksTotal, "fallbacksTotal should be initialized")
	assert.NotNil(t, m.discardedTokensTotal, "discardedTokensTotal should be initialized")
}

func TestMetrics_SelectionSource(t *testing.T) {
	t.Parallel()

	m := newTestMetrics(t)
	s := newTestSelector(t, WithMetrics(m))

	s.Select(Request{Query: url.Values{"fields": {"id"}}})
	s.Select(Request{Query: url.Values{"fields": {"id"}}})
	s.Select(Request{})

	assert.Equal(t, float64(2), testutil.ToFloat64(m.selectionsTotal.WithLabelValues(SourceQuery)))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.selectionsTotal.WithLabelValues(SourceHeader)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.selectionsTotal.WithLabelValues(SourceDefault)))
}

func TestMetrics_DiscardsAndFallback(t *testing.T) {
	t.Parallel()

	m := newTestMetrics(t)
	s := newTestSelector(t, WithMetrics(m))

	s.Resolve("bogus,@nope")

	assert.Equal(t, float64(1), testutil.ToFloat64(m.discardedTokensTotal.WithLabelValues(DiscardUnknownField)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.discardedTokensTotal.WithLabelValues(DiscardUnknownGroup)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.fallbacksTotal))

	// A partially valid selection discards without falling back.
	s.Resolve("id,bogus")
	assert.Equal(t, float64(2), testutil.ToFloat64(m.discardedTokensTotal.WithLabelValues(DiscardUnknownField)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.fallbacksTotal))
}

func TestMetrics_SeriesPreinitialized(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	NewMetrics(reg)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["fieldselector_selections_total"])
	assert.True(t, names["fieldselector_fallbacks_total"])
	assert.True(t, names["fieldselector_discarded_tokens_total"])
}

func TestMetrics_NilIsSafe(t *testing.T) {
	t.Parallel()

	// A selector without metrics exercises every recording path through the
	// nil receiver no-ops.
	s := newTestSelector(t)

	s.Select(Request{})
	s.Select(Request{Query: url.Values{"fields": {"id"}}})
	s.Resolve("bogus,@nope")

	var m *Metrics
	m.recordSelection(SourceQuery)
	m.recordFallback()
	m.recordDiscard(DiscardUnknownField)
}
