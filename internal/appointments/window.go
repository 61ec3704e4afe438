package appointments

import (
	"fmt"
	"time"
)

// Join window around the scheduled time. Patients and professionals can
// enter the call a little early and until an hour after the start.
const (
	JoinWindowBefore = 15 * time.Minute
	JoinWindowAfter  = 60 * time.Minute
)

// CanJoinCall reports whether the call can be entered at now: the
// appointment must be paid, still scheduled, and now must fall within
// [scheduled-15m, scheduled+60m].
func CanJoinCall(appt *Appointment, now time.Time) bool {
	if appt.Status != StatusScheduled || appt.PaymentStatus != PaymentPaid {
		return false
	}
	opens := appt.ScheduledAt.Add(-JoinWindowBefore)
	closes := appt.ScheduledAt.Add(JoinWindowAfter)
	return !now.Before(opens) && !now.After(closes)
}

// TimeStatus renders a human label for where the appointment sits
// relative to now. The "in progress" bucket uses exactly the join
// window, so the label and join eligibility never disagree.
func TimeStatus(appt *Appointment, now time.Time) string {
	switch appt.Status {
	case StatusCompleted:
		return "completed"
	case StatusCancelled:
		return "cancelled"
	}

	opens := appt.ScheduledAt.Add(-JoinWindowBefore)
	closes := appt.ScheduledAt.Add(JoinWindowAfter)
	if !now.Before(opens) && !now.After(closes) {
		return "in progress"
	}
	if now.After(closes) {
		return "completed"
	}

	until := appt.ScheduledAt.Sub(now)
	switch {
	case until >= 24*time.Hour:
		return plural(int(until.Hours())/24, "day")
	case until >= time.Hour:
		return plural(int(until.Hours()), "hour")
	default:
		minutes := int(until.Minutes())
		if minutes < 1 {
			minutes = 1
		}
		return plural(minutes, "minute")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("in 1 %s", unit)
	}
	return fmt.Sprintf("in %d %ss", n, unit)
}
