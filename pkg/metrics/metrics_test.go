package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordPrediction(t *testing.T) {
	tests := []struct {
		name       string
		outcome    string
		label      string
		labelDelta float64
	}{
		{"success counts label", OutcomeSuccess, "Computer Networks", 1},
		{"cached counts label", OutcomeCached, "Computer Networks", 1},
		{"failure skips label", OutcomeFailure, "Computer Networks", 0},
		{"invalid without label", OutcomeInvalid, "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(PredictionsTotal.WithLabelValues(tt.outcome))
			labelBefore := testutil.ToFloat64(PredictedLabelTotal.WithLabelValues("Computer Networks"))

			RecordPrediction(tt.outcome, tt.label, time.Millisecond)

			assert.Equal(t, before+1, testutil.ToFloat64(PredictionsTotal.WithLabelValues(tt.outcome)))
			assert.Equal(t, labelBefore+tt.labelDelta, testutil.ToFloat64(PredictedLabelTotal.WithLabelValues("Computer Networks")))
		})
	}
}

func TestRecordInvalidInput(t *testing.T) {
	before := testutil.ToFloat64(PredictionsTotal.WithLabelValues(OutcomeInvalid))
	RecordInvalidInput()
	assert.Equal(t, before+1, testutil.ToFloat64(PredictionsTotal.WithLabelValues(OutcomeInvalid)))
}

func TestRecordArtifactsLoaded(t *testing.T) {
	at := time.Unix(1700000000, 0)
	RecordArtifactsLoaded(at)
	assert.Equal(t, float64(1700000000), testutil.ToFloat64(ArtifactsLoadedTimestamp))
}

func TestRecordHTTPRequest(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/", "200"))
	RecordHTTPRequest("GET", "/", 200, 2*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/", "200")))
}
