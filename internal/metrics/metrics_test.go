package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
)

func value(c prometheus.Counter) float64 {
	var m dto.Metric
	_ = c.Write(&m)
	return m.GetCounter().GetValue()
}

func TestObserveOutcomes(t *testing.T) {
	ok := UpstreamRequests.WithLabelValues(SourceGrades, OutcomeOK)
	missing := UpstreamRequests.WithLabelValues(SourceGrades, OutcomeNotFound)
	failed := UpstreamRequests.WithLabelValues(SourceGrades, OutcomeError)
	beforeOK, beforeMissing, beforeFailed := value(ok), value(missing), value(failed)

	Observe(SourceGrades, nil, true)
	Observe(SourceGrades, nil, false)
	Observe(SourceGrades, errors.New("boom"), true)

	assert.Equal(t, beforeOK+1, value(ok))
	assert.Equal(t, beforeMissing+1, value(missing))
	assert.Equal(t, beforeFailed+1, value(failed))
}
