package cancellation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-RoomInventory/internal/domain"
)

var checkInDate = time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

// checkInAt 2024-06-10 15:00 UTC
var checkInAt = time.Date(2024, 6, 10, domain.CheckInHour, 0, 0, 0, time.UTC)

func TestEvaluate_RefundPercent(t *testing.T) {
	tests := []struct {
		name    string
		policy  domain.CancellationPolicy
		before  time.Duration
		percent int
	}{
		{"flexible exactly 24h", domain.PolicyFlexible, 24 * time.Hour, 100},
		{"flexible 23h59m", domain.PolicyFlexible, 23*time.Hour + 59*time.Minute, 0},
		{"flexible a week out", domain.PolicyFlexible, 7 * 24 * time.Hour, 100},

		{"moderate exactly 120h", domain.PolicyModerate, 120 * time.Hour, 100},
		{"moderate 119h", domain.PolicyModerate, 119 * time.Hour, 50},
		{"moderate exactly 24h", domain.PolicyModerate, 24 * time.Hour, 50},
		{"moderate 23h", domain.PolicyModerate, 23 * time.Hour, 0},

		{"strict exactly 168h", domain.PolicyStrict, 168 * time.Hour, 100},
		{"strict 167h", domain.PolicyStrict, 167 * time.Hour, 50},
		{"strict exactly 72h", domain.PolicyStrict, 72 * time.Hour, 50},
		{"strict 71h59m", domain.PolicyStrict, 71*time.Hour + 59*time.Minute, 0},

		{"after check-in", domain.PolicyFlexible, -2 * time.Hour, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Evaluate(Input{
				Policy:     tt.policy,
				CheckIn:    checkInDate,
				TotalPrice: 200,
				Now:        checkInAt.Add(-tt.before),
			})
			require.NoError(t, err)
			assert.Equal(t, tt.percent, q.RefundPercent)
			assert.InDelta(t, 200*float64(tt.percent)/100, q.RefundAmount, 0.001)
		})
	}
}

func TestEvaluate_IsDeterministic(t *testing.T) {
	in := Input{
		Policy:     domain.PolicyModerate,
		CheckIn:    checkInDate,
		TotalPrice: 333.33,
		Now:        checkInAt.Add(-48 * time.Hour),
	}

	first, err := Evaluate(in)
	require.NoError(t, err)
	second, err := Evaluate(in)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestEvaluate_Deadline(t *testing.T) {
	q, err := Evaluate(Input{
		Policy:     domain.PolicyStrict,
		CheckIn:    checkInDate,
		TotalPrice: 100,
		Now:        checkInAt.Add(-10 * 24 * time.Hour),
	})
	require.NoError(t, err)

	assert.Equal(t, checkInAt, q.CheckInAt)
	assert.Equal(t, checkInAt.Add(-168*time.Hour), q.Deadline)
}

func TestEvaluate_TimelineDropsPastDeadline(t *testing.T) {
	now := checkInAt.Add(-200 * time.Hour)
	q, err := Evaluate(Input{Policy: domain.PolicyFlexible, CheckIn: checkInDate, TotalPrice: 10, Now: now})
	require.NoError(t, err)

	require.Len(t, q.Timeline, 3)
	assert.Equal(t, Milestone{Label: LabelToday, At: now}, q.Timeline[0])
	assert.Equal(t, LabelDeadline, q.Timeline[1].Label)
	assert.Equal(t, Milestone{Label: LabelCheckIn, At: checkInAt}, q.Timeline[2])

	late := checkInAt.Add(-2 * time.Hour)
	q, err = Evaluate(Input{Policy: domain.PolicyFlexible, CheckIn: checkInDate, TotalPrice: 10, Now: late})
	require.NoError(t, err)

	require.Len(t, q.Timeline, 2)
	assert.Equal(t, LabelToday, q.Timeline[0].Label)
	assert.Equal(t, LabelCheckIn, q.Timeline[1].Label)
}

func TestEvaluate_TimelineFollowsNow(t *testing.T) {
	in := Input{Policy: domain.PolicyModerate, CheckIn: checkInDate, TotalPrice: 10, Now: checkInAt.Add(-300 * time.Hour)}
	first, err := Evaluate(in)
	require.NoError(t, err)

	in.Now = in.Now.Add(time.Hour)
	second, err := Evaluate(in)
	require.NoError(t, err)

	assert.Equal(t, in.Now, second.Timeline[0].At)
	assert.NotEqual(t, first.Timeline[0].At, second.Timeline[0].At)
}

func TestEvaluate_HotelLocation(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	// заезд 15:00 по UTC+3 = 12:00 UTC; ровно за 24 часа до этого
	now := time.Date(2024, 6, 9, 12, 0, 0, 0, time.UTC)

	q, err := Evaluate(Input{Policy: domain.PolicyFlexible, CheckIn: checkInDate, TotalPrice: 100, Now: now, Location: loc})
	require.NoError(t, err)
	assert.Equal(t, 100, q.RefundPercent)

	q, err = Evaluate(Input{Policy: domain.PolicyFlexible, CheckIn: checkInDate, TotalPrice: 100, Now: now.Add(time.Minute), Location: loc})
	require.NoError(t, err)
	assert.Equal(t, 0, q.RefundPercent)
}

func TestEvaluate_Errors(t *testing.T) {
	_, err := Evaluate(Input{Policy: "LENIENT", CheckIn: checkInDate, Now: checkInAt})
	assert.ErrorIs(t, err, ErrUnknownPolicy)

	_, err = Evaluate(Input{Policy: domain.PolicyStrict, CheckIn: checkInDate, Now: checkInAt, TotalPrice: -1})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = Evaluate(Input{Policy: domain.PolicyStrict, Now: checkInAt})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRefundAmount_RoundsHalfUp(t *testing.T) {
	assert.Equal(t, 0.01, RefundAmount(0.01, 50))     // 0.005 -> 0.01
	assert.Equal(t, 50.01, RefundAmount(100.01, 50))  // 50.005 -> 50.01
	assert.Equal(t, 166.67, RefundAmount(333.33, 50)) // 166.665 -> 166.67
	assert.Equal(t, 0.0, RefundAmount(99.99, 0))
	assert.Equal(t, 99.99, RefundAmount(99.99, 100))
}

func TestFreeCancellationHoursAndDescribe(t *testing.T) {
	h, err := FreeCancellationHours(domain.PolicyModerate)
	require.NoError(t, err)
	assert.Equal(t, 120, h)

	_, err = FreeCancellationHours("NONE")
	assert.ErrorIs(t, err, ErrUnknownPolicy)

	assert.Contains(t, Describe(domain.PolicyFlexible), "24 hours")
	assert.Contains(t, Describe(domain.PolicyStrict), "72 hours")
}
