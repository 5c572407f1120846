package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectionCompleteFlow(t *testing.T) {
	s := NewSelection()
	assert.False(t, s.IsComplete())

	s.SetService("3", "Bagno")
	assert.False(t, s.IsComplete())

	s.SetDate("2024-06-10")
	s.SetTime("09:00:00")
	s.SetDog("7")
	assert.True(t, s.IsComplete())

	req, err := s.Build(true)
	require.NoError(t, err)
	assert.Equal(t, Request{DogID: 7, ServiceID: 3, Date: "2024-06-10", Time: "09:00:00"}, req)
}

func TestSetDateClearsTime(t *testing.T) {
	s := NewSelection()
	s.SetDate("2024-06-10")
	s.SetTime("09:00:00")
	assert.Equal(t, "09:00:00", s.Time())

	s.SetDate("2024-06-11")
	assert.Equal(t, "", s.Time())
	assert.Equal(t, "2024-06-11", s.Date())
}

func TestSetTimeWithoutDateIsNoop(t *testing.T) {
	s := NewSelection()
	s.SetTime("09:00:00")
	assert.Equal(t, "", s.Time())
}

func TestBuildMissingFields(t *testing.T) {
	s := NewSelection()
	s.SetService("1", "Taglio")
	s.SetDog("2")

	_, err := s.Build(true)
	require.Error(t, err)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"date", "time slot"}, verr.MissingFields)
	assert.False(t, verr.NoDogs)
}

func TestBuildNoDogs(t *testing.T) {
	s := NewSelection()
	s.SetService("1", "Taglio")
	s.SetDate("2024-06-10")
	s.SetTime("09:00:00")

	_, err := s.Build(false)
	require.Error(t, err)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.NoDogs)
	assert.Equal(t, "add a dog before booking", verr.Error())
}

func TestBuildBadIdentifier(t *testing.T) {
	s := NewSelection()
	s.SetService("abc", "Bagno")
	s.SetDate("2024-06-10")
	s.SetTime("09:00:00")
	s.SetDog("7")

	_, err := s.Build(true)
	assert.Error(t, err)
}

func TestResetKeepsServiceAndDog(t *testing.T) {
	s := NewSelection()
	s.SetService("3", "Bagno")
	s.SetDate("2024-06-10")
	s.SetTime("09:00:00")
	s.SetDog("7")

	s.Reset()
	assert.Equal(t, "3", s.ServiceID())
	assert.Equal(t, "7", s.DogID())
	assert.Equal(t, "", s.Date())
	assert.Equal(t, "", s.Time())
	assert.False(t, s.IsComplete())
}

func TestObserversFireSynchronously(t *testing.T) {
	s := NewSelection()

	var changes []Change
	s.Subscribe(func(c Change, sel *Selection) {
		changes = append(changes, c)
		// The mutation is visible to the observer before the setter returns.
		if c == ChangeDate {
			assert.Equal(t, "2024-06-10", sel.Date())
			assert.Equal(t, "", sel.Time())
		}
	})

	s.SetService("3", "Bagno")
	s.SetDate("2024-06-10")
	s.SetTime("09:00:00")
	s.SetDog("7")
	s.Reset()

	assert.Equal(t, []Change{ChangeService, ChangeDate, ChangeTime, ChangeDog, ChangeReset}, changes)
}

func TestSetTimeNoopDoesNotNotify(t *testing.T) {
	s := NewSelection()
	fired := 0
	s.Subscribe(func(Change, *Selection) { fired++ })

	s.SetTime("09:00:00") // no date yet
	assert.Equal(t, 0, fired)
}
