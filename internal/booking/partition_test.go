package booking

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"groombot/internal/model"
)

func testAppointments() []model.Appointment {
	return []model.Appointment{
		{ID: 1, Date: "2024-06-20", Time: "09:00:00", Status: model.StatusScheduled},
		{ID: 2, Date: "2024-06-01", Time: "10:00:00", Status: model.StatusScheduled},
		{ID: 3, Date: "2024-06-25", Time: "11:00", Status: model.StatusUpcoming},
		{ID: 4, Date: "2024-05-10", Time: "09:30:00", Status: model.StatusCancelled},
		{ID: 5, Date: "2024-07-01", Time: "15:00:00", Status: model.StatusCancelled},
		{ID: 6, Date: "2024-06-10", Time: "16:00:00", Status: model.StatusScheduled},
	}
}

func ids(appts []model.Appointment) []int64 {
	out := make([]int64, 0, len(appts))
	for _, a := range appts {
		out = append(out, a.ID)
	}
	return out
}

func TestPartition(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	b := Partition(testAppointments(), now)

	// Upcoming keeps server order.
	assert.Equal(t, []int64{1, 3}, ids(b.Upcoming))
	// Past or cancelled is sorted most recent first.
	assert.Equal(t, []int64{5, 6, 2, 4}, ids(b.PastOrCancelled))
}

func TestPartitionDisjointUnion(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	appts := testAppointments()
	b := Partition(appts, now)

	seen := make(map[int64]int)
	for _, a := range b.Upcoming {
		seen[a.ID]++
	}
	for _, a := range b.PastOrCancelled {
		seen[a.ID]++
	}
	require.Len(t, seen, len(appts))
	for id, count := range seen {
		assert.Equal(t, 1, count, "appointment %d must land in exactly one bucket", id)
	}
}

func TestPartitionOrderIndependent(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	base := Partition(testAppointments(), now)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 10; i++ {
		shuffled := testAppointments()
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		b := Partition(shuffled, now)
		assert.ElementsMatch(t, ids(base.Upcoming), ids(b.Upcoming))
		// The past bucket's order is fixed by the sort rule.
		assert.Equal(t, ids(base.PastOrCancelled), ids(b.PastOrCancelled))
	}
}

func TestPartitionDeduplicatesByID(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	appts := []model.Appointment{
		{ID: 9, Date: "2024-06-01", Time: "10:00:00", Status: model.StatusScheduled},
		{ID: 9, Date: "2024-06-01", Time: "10:00:00", Status: model.StatusCancelled},
	}
	b := Partition(appts, now)
	assert.Empty(t, b.Upcoming)
	assert.Len(t, b.PastOrCancelled, 1)
}

func TestPartitionEmpty(t *testing.T) {
	b := Partition(nil, time.Now())
	assert.Empty(t, b.Upcoming)
	assert.Empty(t, b.PastOrCancelled)
}

func TestPartitionBoundaryIsUpcoming(t *testing.T) {
	now := time.Date(2024, 6, 20, 9, 0, 0, 0, time.UTC)
	appts := []model.Appointment{
		{ID: 1, Date: "2024-06-20", Time: "09:00:00", Status: model.StatusScheduled},
	}
	b := Partition(appts, now)
	require.Len(t, b.Upcoming, 1)
	assert.Empty(t, b.PastOrCancelled)
}

func TestPartitionUnparsableTimestampGoesPast(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	appts := []model.Appointment{
		{ID: 1, Date: "not-a-date", Time: "09:00:00", Status: model.StatusScheduled},
	}
	b := Partition(appts, now)
	assert.Empty(t, b.Upcoming)
	assert.Len(t, b.PastOrCancelled, 1)
}
