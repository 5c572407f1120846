package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppointmentStartsAt(t *testing.T) {
	tests := []struct {
		name string
		date string
		time string
		want string
		ok   bool
	}{
		{"WithSeconds", "2024-06-10", "09:00:00", "2024-06-10T09:00:00", true},
		{"WithoutSeconds", "2024-06-10", "09:00", "2024-06-10T09:00:00", true},
		{"BadDate", "junk", "09:00", "", false},
		{"Empty", "", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Appointment{Date: tt.date, Time: tt.time}
			start, err := a.StartsAt(time.UTC)
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, start.Format("2006-01-02T15:04:05"))
		})
	}
}

func TestAppointmentNamesPreferFlatFields(t *testing.T) {
	price := 25.0
	a := Appointment{
		RawSvcName: "Bagno",
		RawDogName: "Rex",
		Service:    &NamedRef{Name: "Altro", Price: &price},
		Dog:        &NamedRef{Name: "Fido"},
	}
	assert.Equal(t, "Bagno", a.ServiceName())
	assert.Equal(t, "Rex", a.DogName())

	nested := Appointment{
		Service: &NamedRef{Name: "Tosatura", Price: &price},
		Dog:     &NamedRef{Name: "Fido"},
	}
	assert.Equal(t, "Tosatura", nested.ServiceName())
	assert.Equal(t, "Fido", nested.DogName())
	p, ok := nested.ServicePrice()
	require.True(t, ok)
	assert.Equal(t, 25.0, p)
}

func TestIsCancelled(t *testing.T) {
	assert.True(t, Appointment{Status: StatusCancelled}.IsCancelled())
	assert.False(t, Appointment{Status: StatusScheduled}.IsCancelled())
	assert.False(t, Appointment{Status: StatusUpcoming}.IsCancelled())
}

func TestDogLabel(t *testing.T) {
	assert.Equal(t, "Rex (Barboncino)", Dog{Name: "Rex", Breed: "Barboncino"}.Label())
	assert.Equal(t, "Rex (razza non specificata)", Dog{Name: "Rex"}.Label())
}

func TestValidateDogInput(t *testing.T) {
	age := 5
	assert.NoError(t, ValidateDogInput("Rex", &age))
	assert.NoError(t, ValidateDogInput("Rex", nil))
	assert.Error(t, ValidateDogInput("", &age))
	assert.Error(t, ValidateDogInput("   ", nil))

	tooOld := 31
	assert.Error(t, ValidateDogInput("Rex", &tooOld))
	negative := -1
	assert.Error(t, ValidateDogInput("Rex", &negative))
	boundary := 30
	assert.NoError(t, ValidateDogInput("Rex", &boundary))
}

func TestTimeSlotShortLabel(t *testing.T) {
	assert.Equal(t, "09:00", TimeSlot{TimeSlot: "09:00:00"}.ShortLabel())
	assert.Equal(t, "14:30", TimeSlot{TimeSlot: "14:30"}.ShortLabel())
}
