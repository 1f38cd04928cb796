package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegisterSwapMetrics_Idempotent(t *testing.T) {
	RegisterSwapMetrics()
	RegisterSwapMetrics()

	if err := prometheus.Register(HotSwapTotal); err == nil {
		t.Fatal("expected AlreadyRegisteredError after RegisterSwapMetrics")
	}
}

func TestSoftFailureCounter(t *testing.T) {
	before := testutil.ToFloat64(EngineSoftFailuresTotal.WithLabelValues("create_index"))
	EngineSoftFailuresTotal.WithLabelValues("create_index").Inc()
	after := testutil.ToFloat64(EngineSoftFailuresTotal.WithLabelValues("create_index"))
	if after-before != 1 {
		t.Errorf("delta = %f, want 1", after-before)
	}
}
