package get_room_bookings

import (
	"context"

	"github.com/m04kA/SMC-RoomInventory/internal/domain"
	"github.com/m04kA/SMC-RoomInventory/internal/service/bookings/models"
)

type BookingService interface {
	GetRoomBookings(ctx context.Context, roomID int64, actor domain.Actor) (*models.BookingListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
