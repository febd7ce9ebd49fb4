package reserve_room

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-RoomInventory/internal/domain"
	reserveRoom "github.com/m04kA/SMC-RoomInventory/internal/usecase/reserve_room"
)

// ReserveRoomRequest HTTP request model
type ReserveRoomRequest struct {
	RoomID     int64  `json:"roomId"`
	CheckIn    string `json:"checkIn"`  // "2024-06-01"
	CheckOut   string `json:"checkOut"` // "2024-06-03"
	GuestCount int    `json:"guestCount"`
	Units      int    `json:"units,omitempty"`
}

// BookingResponse HTTP response model
type BookingResponse struct {
	ID                 int64   `json:"id"`
	RoomID             int64   `json:"roomId"`
	HotelID            int64   `json:"hotelId"`
	UserID             int64   `json:"userId"`
	CheckIn            string  `json:"checkIn"`
	CheckOut           string  `json:"checkOut"`
	GuestCount         int     `json:"guestCount"`
	Units              int     `json:"units"`
	Status             string  `json:"status"`
	TotalPrice         float64 `json:"totalPrice"`
	CancellationPolicy string  `json:"cancellationPolicy"`
	RemainingUnits     int     `json:"remainingUnits"`
	CreatedAt          string  `json:"createdAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *ReserveRoomRequest) ToUseCaseRequest(userID int64) (*reserveRoom.Request, error) {
	checkIn, err := time.Parse(domain.DateFormat, r.CheckIn)
	if err != nil {
		return nil, fmt.Errorf("checkIn: %w", err)
	}

	checkOut, err := time.Parse(domain.DateFormat, r.CheckOut)
	if err != nil {
		return nil, fmt.Errorf("checkOut: %w", err)
	}

	return &reserveRoom.Request{
		UserID:     userID,
		RoomID:     r.RoomID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		GuestCount: r.GuestCount,
		Units:      r.Units,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *reserveRoom.Response) *BookingResponse {
	return &BookingResponse{
		ID:                 resp.ID,
		RoomID:             resp.RoomID,
		HotelID:            resp.HotelID,
		UserID:             resp.UserID,
		CheckIn:            resp.CheckIn.Format(domain.DateFormat),
		CheckOut:           resp.CheckOut.Format(domain.DateFormat),
		GuestCount:         resp.GuestCount,
		Units:              resp.Units,
		Status:             resp.Status,
		TotalPrice:         resp.TotalPrice,
		CancellationPolicy: resp.CancellationPolicy,
		RemainingUnits:     resp.RemainingUnits,
		CreatedAt:          resp.CreatedAt.Format(time.RFC3339),
	}
}
