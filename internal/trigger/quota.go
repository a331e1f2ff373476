package trigger

import (
	"time"

	"pingrelay/internal/plan"
)

// MonthWindowStart returns the first instant of now's calendar month
// in now's location. The billing window for quota counting runs from
// here to the next month boundary; entries are counted with
// created_at >= the returned time.
func MonthWindowStart(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
}

// QuotaExceeded reports whether an owner with count successful sends
// in the current window is over the plan ceiling. The compare is >=:
// the ceiling counts as used up once that many sends exist, so the
// next attempt is blocked.
//
// Counting is read-then-compare with no isolation. Two concurrent
// requests at the boundary can both pass and overshoot the ceiling by
// one; accepted looseness, see DESIGN.md.
func QuotaExceeded(count int64, p plan.Plan) bool {
	return count >= int64(p.Triggers)
}
