package models

import (
	"errors"
	"time"

	"github.com/m04kA/SMC-RoomInventory/internal/domain"
	"github.com/m04kA/SMC-RoomInventory/internal/service/cancellation"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid booking status")
)

// Request модели

// UpdateStatusRequest запрос на смену статуса бронирования
type UpdateStatusRequest struct {
	Actor  domain.Actor `json:"-"`
	Status string       `json:"status"`
}

// GetUserBookingsRequest запрос истории бронирований пользователя
type GetUserBookingsRequest struct {
	Actor  domain.Actor
	UserID int64
	Status *string // фильтр по статусу, опционально
}

// Response модели

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID                 int64   `json:"id"`
	RoomID             int64   `json:"roomId"`
	HotelID            int64   `json:"hotelId"`
	UserID             int64   `json:"userId"`
	CheckIn            string  `json:"checkIn"`  // "2024-06-01"
	CheckOut           string  `json:"checkOut"` // "2024-06-03"
	Nights             int     `json:"nights"`
	GuestCount         int     `json:"guestCount"`
	Units              int     `json:"units"`
	Status             string  `json:"status"`
	TotalPrice         float64 `json:"totalPrice"`
	CancellationPolicy string  `json:"cancellationPolicy,omitempty"`

	CancellationReason *string  `json:"cancellationReason,omitempty"`
	CancelledAt        *string  `json:"cancelledAt,omitempty"` // ISO 8601 format
	RefundPercent      *int     `json:"refundPercent,omitempty"`
	RefundAmount       *float64 `json:"refundAmount,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// MilestoneResponse точка шкалы отмены
type MilestoneResponse struct {
	Label string    `json:"label"`
	At    time.Time `json:"at"`
}

// QuoteResponse предварительный расчёт возврата при отмене
type QuoteResponse struct {
	BookingID         int64               `json:"bookingId"`
	Policy            string              `json:"policy"`
	PolicyDescription string              `json:"policyDescription"`
	CheckInAt         time.Time           `json:"checkInAt"`
	HoursUntilCheckIn float64             `json:"hoursUntilCheckIn"`
	RefundPercent     int                 `json:"refundPercent"`
	RefundAmount      float64             `json:"refundAmount"`
	Deadline          time.Time           `json:"freeCancellationDeadline"`
	Timeline          []MilestoneResponse `json:"timeline"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	resp := &BookingResponse{
		ID:                 b.ID,
		RoomID:             b.RoomID,
		HotelID:            b.HotelID,
		UserID:             b.UserID,
		CheckIn:            b.CheckIn.Format(domain.DateFormat),
		CheckOut:           b.CheckOut.Format(domain.DateFormat),
		Nights:             b.Nights(),
		GuestCount:         b.GuestCount,
		Units:              b.Units,
		Status:             string(b.Status),
		TotalPrice:         b.TotalPrice,
		CancellationPolicy: string(b.Policy),
		CancellationReason: b.CancellationReason,
		RefundPercent:      b.RefundPercent,
		RefundAmount:       b.RefundAmount,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}

	// Конвертируем CancelledAt в строку ISO 8601
	if b.CancelledAt != nil {
		cancelledStr := b.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &cancelledStr
	}

	return resp
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	if bookings == nil {
		return &BookingListResponse{
			Bookings: []BookingResponse{},
		}
	}

	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, len(bookings)),
	}

	for i, booking := range bookings {
		if bookingResp := FromDomainBooking(booking); bookingResp != nil {
			resp.Bookings[i] = *bookingResp
		}
	}

	return resp
}

// FromQuote конвертирует расчёт возврата в DTO
func FromQuote(bookingID int64, q *cancellation.Quote) *QuoteResponse {
	timeline := make([]MilestoneResponse, 0, len(q.Timeline))
	for _, m := range q.Timeline {
		timeline = append(timeline, MilestoneResponse{Label: m.Label, At: m.At})
	}

	return &QuoteResponse{
		BookingID:         bookingID,
		Policy:            string(q.Policy),
		PolicyDescription: cancellation.Describe(q.Policy),
		CheckInAt:         q.CheckInAt,
		HoursUntilCheckIn: q.HoursUntilCheckIn,
		RefundPercent:     q.RefundPercent,
		RefundAmount:      q.RefundAmount,
		Deadline:          q.Deadline,
		Timeline:          timeline,
	}
}

// ToDomainBookingStatus конвертирует строку в domain.BookingStatus с валидацией
func ToDomainBookingStatus(status string) (domain.BookingStatus, error) {
	s, ok := domain.ParseBookingStatus(status)
	if !ok {
		return "", ErrInvalidStatus
	}
	return s, nil
}
