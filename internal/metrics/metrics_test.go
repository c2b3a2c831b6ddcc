package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestFillsTotal(t *testing.T) {
	before := testutil.ToFloat64(FillsTotal.WithLabelValues("geico", OutcomeSuccess))
	FillsTotal.WithLabelValues("geico", OutcomeSuccess).Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(FillsTotal.WithLabelValues("geico", OutcomeSuccess)))
}

func TestTemplateFallbacks(t *testing.T) {
	before := testutil.ToFloat64(TemplateFallbacks)
	TemplateFallbacks.Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(TemplateFallbacks))
}
