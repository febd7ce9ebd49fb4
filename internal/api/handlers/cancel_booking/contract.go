package cancel_booking

import (
	"context"

	cancelBooking "github.com/m04kA/SMC-RoomInventory/internal/usecase/cancel_booking"
)

type CancelBookingUseCase interface {
	Execute(ctx context.Context, req *cancelBooking.Request) (*cancelBooking.Response, error)
}

type RateLimiter interface {
	Allow(action, identity string) error
}

type WorkerPool interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
