package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCollectorsCount(t *testing.T) {
	before := testutil.ToFloat64(TokenRefreshes.WithLabelValues(OutcomeSuccess))
	TokenRefreshes.WithLabelValues(OutcomeSuccess).Inc()
	assert.InDelta(t, before+1, testutil.ToFloat64(TokenRefreshes.WithLabelValues(OutcomeSuccess)), 0.001)

	Authenticated.Set(1)
	assert.InDelta(t, 1, testutil.ToFloat64(Authenticated), 0.001)
}
