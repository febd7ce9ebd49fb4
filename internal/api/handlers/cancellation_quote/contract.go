package cancellation_quote

import (
	"context"

	"github.com/m04kA/SMC-RoomInventory/internal/domain"
	"github.com/m04kA/SMC-RoomInventory/internal/service/bookings/models"
)

type BookingService interface {
	Quote(ctx context.Context, id int64, actor domain.Actor) (*models.QuoteResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
