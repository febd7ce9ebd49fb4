package get_availability

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-RoomInventory/internal/domain"
	refreshAvailability "github.com/m04kA/SMC-RoomInventory/internal/usecase/refresh_availability"
)

// AvailabilityResponse HTTP response model
type AvailabilityResponse struct {
	RoomID         int64  `json:"roomId"`
	HotelID        int64  `json:"hotelId"`
	CheckIn        string `json:"checkIn"`
	CheckOut       string `json:"checkOut"`
	TotalUnits     int    `json:"totalUnits"`
	RemainingUnits int    `json:"remainingUnits"`
	Sequence       int64  `json:"sequence"`
	Active         bool   `json:"active"`
}

// ToUseCaseRequest собирает запрос из пути и query параметров; даты необязательны
func ToUseCaseRequest(roomID int64, checkInStr, checkOutStr string) (*refreshAvailability.Request, error) {
	req := &refreshAvailability.Request{RoomID: roomID}

	if checkInStr != "" {
		checkIn, err := time.Parse(domain.DateFormat, checkInStr)
		if err != nil {
			return nil, fmt.Errorf("checkIn: %w", err)
		}
		req.CheckIn = checkIn
	}

	if checkOutStr != "" {
		checkOut, err := time.Parse(domain.DateFormat, checkOutStr)
		if err != nil {
			return nil, fmt.Errorf("checkOut: %w", err)
		}
		req.CheckOut = checkOut
	}

	return req, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *refreshAvailability.Response) *AvailabilityResponse {
	return &AvailabilityResponse{
		RoomID:         resp.RoomID,
		HotelID:        resp.HotelID,
		CheckIn:        resp.CheckIn.Format(domain.DateFormat),
		CheckOut:       resp.CheckOut.Format(domain.DateFormat),
		TotalUnits:     resp.TotalUnits,
		RemainingUnits: resp.RemainingUnits,
		Sequence:       resp.Sequence,
		Active:         resp.Active,
	}
}
