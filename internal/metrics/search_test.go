package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegisterSearchMetrics_Idempotent(t *testing.T) {
	RegisterSearchMetrics()
	RegisterSearchMetrics()
}

func TestSearchMetrics_Record(t *testing.T) {
	before := testutil.ToFloat64(SearchQueriesTotal.WithLabelValues("posts", "trgm", "ok"))
	SearchQueriesTotal.WithLabelValues("posts", "trgm", "ok").Inc()
	after := testutil.ToFloat64(SearchQueriesTotal.WithLabelValues("posts", "trgm", "ok"))
	if after != before+1 {
		t.Errorf("expected counter to grow by 1, got %f -> %f", before, after)
	}

	SearchDuration.WithLabelValues("users", "pattern").Observe(0.01)
	if testutil.CollectAndCount(SearchDuration) == 0 {
		t.Error("expected search_duration_seconds to have observations")
	}
}
