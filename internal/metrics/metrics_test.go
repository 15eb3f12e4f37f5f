package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRoute(t *testing.T) {
	tests := map[string]string{
		"/rentals/65a1f0c2e4/handover":  "/rentals/:id/handover",
		"/listings":                     "/listings",
		"/business-listings/42/reviews": "/business-listings/:id/reviews",
	}
	for in, want := range tests {
		if got := Route(in); got != want {
			t.Errorf("Route(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCounters(t *testing.T) {
	Register()
	Register()

	ObserveAPI("GET", "/rentals/abc123", 200, 10*time.Millisecond)
	if got := testutil.ToFloat64(apiRequests.WithLabelValues("GET", "/rentals/:id", "200")); got < 1 {
		t.Errorf("api counter = %v", got)
	}

	before := testutil.ToFloat64(rentalTransitions.WithLabelValues("handover", "error"))
	IncRentalTransition("handover", errors.New("x"))
	if got := testutil.ToFloat64(rentalTransitions.WithLabelValues("handover", "error")); got != before+1 {
		t.Errorf("transition counter = %v, want %v", got, before+1)
	}
}
