package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"groombot/internal/booking"
	"groombot/internal/model"
)

func TestWriteWorkbook(t *testing.T) {
	price := 25.0
	buckets := booking.Buckets{
		Upcoming: []model.Appointment{
			{ID: 1, Date: "2024-06-20", Time: "09:00", Status: model.StatusScheduled,
				RawSvcName: "Bagno", RawDogName: "Rex", RawSvcPrice: &price},
		},
		PastOrCancelled: []model.Appointment{
			{ID: 2, Date: "2024-05-01", Time: "10:00", Status: model.StatusCancelled,
				RawSvcName: "Taglio", RawDogName: "Fido"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, buckets))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{"Prossimi", "Passati e annullati"}, f.GetSheetList())

	name, err := f.GetCellValue("Prossimi", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Bagno", name)

	price2, err := f.GetCellValue("Prossimi", "G2")
	require.NoError(t, err)
	assert.Equal(t, "25.00", price2)

	status, err := f.GetCellValue("Passati e annullati", "F2")
	require.NoError(t, err)
	assert.Equal(t, "cancelled", status)
}

func TestWriteWorkbookEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, booking.Buckets{}))
	assert.NotZero(t, buf.Len())
}

func TestFilename(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "appuntamenti_2024-06.xlsx", Filename(now))
}
