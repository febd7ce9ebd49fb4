package cancel_booking

import (
	"time"

	"github.com/m04kA/SMC-RoomInventory/internal/domain"
	"github.com/m04kA/SMC-RoomInventory/internal/service/cancellation"
)

// Request входные данные для отмены бронирования
type Request struct {
	BookingID int64
	Actor     domain.Actor
	Reason    string
}

// Response результат отмены
type Response struct {
	BookingID          int64
	RoomID             int64
	Status             string
	CancellationPolicy string
	RefundPercent      int
	RefundAmount       float64
	Deadline           time.Time
	Timeline           []cancellation.Milestone
	CancelledAt        time.Time
	RemainingUnits     int
}
