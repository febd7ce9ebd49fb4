package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(s string) time.Time {
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestInterval_Overlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b Interval
		want bool
	}{
		{
			name: "identical",
			a:    Interval{date("2024-06-01"), date("2024-06-03")},
			b:    Interval{date("2024-06-01"), date("2024-06-03")},
			want: true,
		},
		{
			name: "adjacent does not overlap",
			a:    Interval{date("2024-06-01"), date("2024-06-03")},
			b:    Interval{date("2024-06-03"), date("2024-06-05")},
			want: false,
		},
		{
			name: "adjacent reversed",
			a:    Interval{date("2024-06-03"), date("2024-06-05")},
			b:    Interval{date("2024-06-01"), date("2024-06-03")},
			want: false,
		},
		{
			name: "one night shared",
			a:    Interval{date("2024-06-01"), date("2024-06-04")},
			b:    Interval{date("2024-06-03"), date("2024-06-05")},
			want: true,
		},
		{
			name: "contained",
			a:    Interval{date("2024-06-01"), date("2024-06-10")},
			b:    Interval{date("2024-06-04"), date("2024-06-05")},
			want: true,
		},
		{
			name: "disjoint",
			a:    Interval{date("2024-06-01"), date("2024-06-02")},
			b:    Interval{date("2024-07-01"), date("2024-07-02")},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Overlaps(tt.b))
			assert.Equal(t, tt.want, tt.b.Overlaps(tt.a))
		})
	}
}

func TestInterval_Nights(t *testing.T) {
	assert.Equal(t, 1, Interval{date("2024-06-01"), date("2024-06-02")}.Nights())
	assert.Equal(t, 2, Interval{date("2024-06-01"), date("2024-06-03")}.Nights())
	assert.Equal(t, 0, Interval{date("2024-06-03"), date("2024-06-01")}.Nights())
	assert.False(t, Interval{date("2024-06-01"), date("2024-06-01")}.IsValid())
}

func TestBookingStatus_Transitions(t *testing.T) {
	assert.True(t, StatusPending.CanTransitionTo(StatusConfirmed))
	assert.True(t, StatusPending.CanTransitionTo(StatusCancelled))
	assert.True(t, StatusConfirmed.CanTransitionTo(StatusCheckedIn))
	assert.True(t, StatusConfirmed.CanTransitionTo(StatusCancelled))
	assert.True(t, StatusCheckedIn.CanTransitionTo(StatusCompleted))

	assert.False(t, StatusCheckedIn.CanTransitionTo(StatusCancelled))
	assert.False(t, StatusPending.CanTransitionTo(StatusCheckedIn))
	assert.False(t, StatusCompleted.CanTransitionTo(StatusCancelled))
	assert.False(t, StatusCancelled.CanTransitionTo(StatusPending))

	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.False(t, StatusConfirmed.IsTerminal())
}

func TestBookingStatus_IsActive(t *testing.T) {
	assert.True(t, StatusPending.IsActive())
	assert.True(t, StatusConfirmed.IsActive())
	assert.False(t, StatusCheckedIn.IsActive())
	assert.False(t, StatusCompleted.IsActive())
	assert.False(t, StatusCancelled.IsActive())
}

func TestParseBookingStatus(t *testing.T) {
	s, ok := ParseBookingStatus("checked_in")
	assert.True(t, ok)
	assert.Equal(t, StatusCheckedIn, s)

	_, ok = ParseBookingStatus("no_show")
	assert.False(t, ok)
}

func TestParseCancellationPolicy(t *testing.T) {
	p, ok := ParseCancellationPolicy(" strict ")
	assert.True(t, ok)
	assert.Equal(t, PolicyStrict, p)

	_, ok = ParseCancellationPolicy("lenient")
	assert.False(t, ok)
}

func TestDateOf_UsesLocation(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Skip("tzdata not available")
	}

	// 2024-05-31 20:00 UTC = 2024-06-01 05:00 в Токио
	now := time.Date(2024, 5, 31, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, date("2024-06-01"), DateOf(now, tokyo))
	assert.Equal(t, date("2024-05-31"), DateOf(now, time.UTC))
}
