package booking

import (
	"sort"
	"time"

	"groombot/internal/model"
)

// Buckets is the display classification of an appointment list.
type Buckets struct {
	// Upcoming holds non-cancelled appointments starting at or after the
	// reference instant, in the order received.
	Upcoming []model.Appointment
	// PastOrCancelled holds everything else, de-duplicated by ID and sorted
	// most recent first.
	PastOrCancelled []model.Appointment
}

// Partition splits appointments into upcoming and past-or-cancelled buckets
// relative to now. Every input ID lands in exactly one bucket; an
// appointment that is both past and cancelled appears once. Timestamps that
// fail to parse are treated as past so nothing is silently dropped.
func Partition(appts []model.Appointment, now time.Time) Buckets {
	var b Buckets
	seen := make(map[int64]struct{}, len(appts))

	for _, a := range appts {
		if _, dup := seen[a.ID]; dup {
			continue
		}
		seen[a.ID] = struct{}{}

		if !a.IsCancelled() {
			if start, err := a.StartsAt(now.Location()); err == nil && !start.Before(now) {
				b.Upcoming = append(b.Upcoming, a)
				continue
			}
		}
		b.PastOrCancelled = append(b.PastOrCancelled, a)
	}

	sort.SliceStable(b.PastOrCancelled, func(i, j int) bool {
		return startOrZero(b.PastOrCancelled[i], now) > startOrZero(b.PastOrCancelled[j], now)
	})
	return b
}

func startOrZero(a model.Appointment, now time.Time) int64 {
	start, err := a.StartsAt(now.Location())
	if err != nil {
		return 0
	}
	return start.Unix()
}
