package cancellation

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-RoomInventory/internal/domain"
)

// rule параметры тарифа отмены
type rule struct {
	freeHours     int // до этого порога возвращается 100%
	partialHours  int // до этого порога возвращается partialRefund, 0 - нет частичного возврата
	partialRefund int
}

var rules = map[domain.CancellationPolicy]rule{
	domain.PolicyFlexible: {freeHours: 24},
	domain.PolicyModerate: {freeHours: 120, partialHours: 24, partialRefund: 50},
	domain.PolicyStrict:   {freeHours: 168, partialHours: 72, partialRefund: 50},
}

// Milestone labels
const (
	LabelToday    = "today"
	LabelDeadline = "free cancellation deadline"
	LabelCheckIn  = "check-in"
)

// Input входные данные расчёта возврата
type Input struct {
	Policy     domain.CancellationPolicy
	CheckIn    time.Time // дата заезда
	TotalPrice float64
	Now        time.Time
	Location   *time.Location // зона отеля, nil - UTC
}

// Milestone точка на шкале отмены для отображения
type Milestone struct {
	Label string
	At    time.Time
}

// Quote результат расчёта
type Quote struct {
	Policy            domain.CancellationPolicy
	CheckInAt         time.Time
	HoursUntilCheckIn float64
	RefundPercent     int
	RefundAmount      float64
	Deadline          time.Time // последний момент бесплатной отмены
	Timeline          []Milestone
}

// Evaluate считает процент и сумму возврата
// Чистая функция: одинаковые входные данные дают одинаковый результат
func Evaluate(in Input) (*Quote, error) {
	r, ok := rules[in.Policy]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, in.Policy)
	}
	if in.TotalPrice < 0 {
		return nil, fmt.Errorf("%w: total price must not be negative", ErrInvalidInput)
	}
	if in.CheckIn.IsZero() || in.Now.IsZero() {
		return nil, fmt.Errorf("%w: check-in and now are required", ErrInvalidInput)
	}

	checkInAt := domain.AtLocalHour(in.CheckIn, domain.CheckInHour, in.Location)
	until := checkInAt.Sub(in.Now)

	percent := refundPercent(r, until)
	deadline := checkInAt.Add(-time.Duration(r.freeHours) * time.Hour)

	return &Quote{
		Policy:            in.Policy,
		CheckInAt:         checkInAt,
		HoursUntilCheckIn: until.Hours(),
		RefundPercent:     percent,
		RefundAmount:      RefundAmount(in.TotalPrice, percent),
		Deadline:          deadline,
		Timeline:          timeline(in.Now, deadline, checkInAt),
	}, nil
}

// FreeCancellationHours возвращает порог бесплатной отмены тарифа
func FreeCancellationHours(policy domain.CancellationPolicy) (int, error) {
	r, ok := rules[policy]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownPolicy, policy)
	}
	return r.freeHours, nil
}

// Describe возвращает человекочитаемое описание тарифа
func Describe(policy domain.CancellationPolicy) string {
	r, ok := rules[policy]
	if !ok {
		return "unknown cancellation policy"
	}
	if r.partialHours == 0 {
		return fmt.Sprintf("Full refund up to %d hours before check-in, no refund after", r.freeHours)
	}
	return fmt.Sprintf("Full refund up to %d hours before check-in, %d%% refund up to %d hours before check-in, no refund after",
		r.freeHours, r.partialRefund, r.partialHours)
}

// RefundAmount считает totalPrice * percent / 100 с округлением до копеек half-up
func RefundAmount(totalPrice float64, percent int) float64 {
	return decimal.NewFromFloat(totalPrice).
		Mul(decimal.NewFromInt(int64(percent))).
		Div(decimal.NewFromInt(100)).
		Round(2).
		InexactFloat64()
}

// refundPercent границы включительные в пользу большего возврата
func refundPercent(r rule, until time.Duration) int {
	if until >= time.Duration(r.freeHours)*time.Hour {
		return 100
	}
	if r.partialHours > 0 && until >= time.Duration(r.partialHours)*time.Hour {
		return r.partialRefund
	}
	return 0
}

func timeline(now, deadline, checkInAt time.Time) []Milestone {
	milestones := make([]Milestone, 0, 3)
	milestones = append(milestones, Milestone{Label: LabelToday, At: now})
	if deadline.After(now) {
		milestones = append(milestones, Milestone{Label: LabelDeadline, At: deadline})
	}
	milestones = append(milestones, Milestone{Label: LabelCheckIn, At: checkInAt})
	return milestones
}
