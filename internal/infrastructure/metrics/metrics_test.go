package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Counters(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.Transition("PENDING", "UNDER_REVIEW")
	m.Transition("PENDING", "UNDER_REVIEW")
	m.SideEffectFailed("notification")
	m.Repayment(true)

	if got := testutil.ToFloat64(m.transitions.WithLabelValues("PENDING", "UNDER_REVIEW")); got != 2 {
		t.Fatalf("transitions = %v", got)
	}
	if got := testutil.ToFloat64(m.sideEffects.WithLabelValues("notification")); got != 1 {
		t.Fatalf("side effects = %v", got)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "loanflow_loan_repayments_total") {
		t.Fatalf("exposition missing repayment counter:\n%s", rec.Body.String())
	}
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.Transition("a", "b")
	m.TransitionRejected("x")
	m.Review("OFFICER", "APPROVED")
	m.Submission("ok")
	m.Repayment(false)
	m.SideEffectFailed("audit")
	if m.Handler() == nil {
		t.Fatalf("nil handler")
	}
}
