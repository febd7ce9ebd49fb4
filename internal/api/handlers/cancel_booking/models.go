package cancel_booking

import (
	"time"

	"github.com/m04kA/SMC-RoomInventory/internal/domain"
	cancelBooking "github.com/m04kA/SMC-RoomInventory/internal/usecase/cancel_booking"
)

// CancelBookingRequest HTTP request model
type CancelBookingRequest struct {
	CancellationReason *string `json:"cancellationReason,omitempty"`
}

// MilestoneResponse точка шкалы отмены
type MilestoneResponse struct {
	Label string `json:"label"`
	At    string `json:"at"`
}

// CancelBookingResponse HTTP response model
type CancelBookingResponse struct {
	BookingID          int64               `json:"bookingId"`
	Status             string              `json:"status"`
	CancellationPolicy string              `json:"cancellationPolicy"`
	RefundPercent      int                 `json:"refundPercent"`
	RefundAmount       float64             `json:"refundAmount"`
	Deadline           string              `json:"freeCancellationDeadline"`
	Timeline           []MilestoneResponse `json:"timeline"`
	CancelledAt        string              `json:"cancelledAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CancelBookingRequest) ToUseCaseRequest(bookingID int64, actor domain.Actor) *cancelBooking.Request {
	reason := ""
	if r.CancellationReason != nil {
		reason = *r.CancellationReason
	}

	return &cancelBooking.Request{
		BookingID: bookingID,
		Actor:     actor,
		Reason:    reason,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *cancelBooking.Response) *CancelBookingResponse {
	timeline := make([]MilestoneResponse, 0, len(resp.Timeline))
	for _, m := range resp.Timeline {
		timeline = append(timeline, MilestoneResponse{Label: m.Label, At: m.At.Format(time.RFC3339)})
	}

	return &CancelBookingResponse{
		BookingID:          resp.BookingID,
		Status:             resp.Status,
		CancellationPolicy: resp.CancellationPolicy,
		RefundPercent:      resp.RefundPercent,
		RefundAmount:       resp.RefundAmount,
		Deadline:           resp.Deadline.Format(time.RFC3339),
		Timeline:           timeline,
		CancelledAt:        resp.CancelledAt.Format(time.RFC3339),
	}
}
