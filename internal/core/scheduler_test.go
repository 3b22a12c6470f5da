package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(DateLayout, s)
	require.NoError(t, err)
	return d
}

func TestAdvanceRunDate(t *testing.T) {
	tests := []struct {
		name string
		from string
		freq Frequency
		want string
	}{
		{"monthly mid-month", "2024-03-15", Monthly, "2024-04-15"},
		{"monthly clamps to leap february", "2024-01-31", Monthly, "2024-02-29"},
		{"monthly clamps to short february", "2025-01-31", Monthly, "2025-02-28"},
		{"monthly clamps 31st to 30-day month", "2024-03-31", Monthly, "2024-04-30"},
		{"quarterly", "2024-01-15", Quarterly, "2024-04-15"},
		{"quarterly across year boundary", "2024-11-30", Quarterly, "2025-02-28"},
		{"yearly", "2024-06-01", Yearly, "2025-06-01"},
		{"yearly from leap day clamps", "2024-02-29", Yearly, "2025-02-28"},
		{"unknown frequency defaults to monthly", "2024-05-10", Frequency("Weekly"), "2024-06-10"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AdvanceRunDate(mustDate(t, tt.from), tt.freq)
			assert.Equal(t, tt.want, got.Format(DateLayout))
		})
	}
}

func TestAdvanceRunDateRepeatedMonthly(t *testing.T) {
	// Once clamped through February the day-of-month is not recovered;
	// the profile runs on the 29th thereafter.
	d := mustDate(t, "2024-01-31")
	d = AdvanceRunDate(d, Monthly)
	assert.Equal(t, "2024-02-29", d.Format(DateLayout))
	d = AdvanceRunDate(d, Monthly)
	// Clamped dates do not recover the original day-of-month.
	assert.Equal(t, "2024-03-29", d.Format(DateLayout))
}
