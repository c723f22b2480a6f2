package domain

import "time"

// Availability is the lifecycle state of a quiz window.
type Availability string

const (
	AvailabilityUpcoming Availability = "upcoming"
	AvailabilityActive   Availability = "active"
	AvailabilityEnded    Availability = "ended"
)

// Gate maps an instant onto the quiz window [start, end):
//
//	now < start          -> upcoming
//	start <= now < end   -> active
//	now >= end           -> ended
//
// Pure; callers recompute it on every read since time advances externally.
func Gate(now, start, end time.Time) Availability {
	if now.Before(start) {
		return AvailabilityUpcoming
	}
	if now.Before(end) {
		return AvailabilityActive
	}
	return AvailabilityEnded
}
