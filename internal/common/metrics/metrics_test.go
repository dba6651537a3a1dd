package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCountersIncrement(t *testing.T) {
	before := testutil.ToFloat64(ApplicationDecisions.WithLabelValues("Approved"))
	ApplicationDecisions.WithLabelValues("Approved").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(ApplicationDecisions.WithLabelValues("Approved")))

	ReadinessScore.Set(72)
	assert.Equal(t, float64(72), testutil.ToFloat64(ReadinessScore))

	AlertsPublished.WithLabelValues("applicant_approved", "sns", ResultFailure).Inc()
	assert.GreaterOrEqual(t, testutil.ToFloat64(AlertsPublished.WithLabelValues("applicant_approved", "sns", ResultFailure)), float64(1))
}
