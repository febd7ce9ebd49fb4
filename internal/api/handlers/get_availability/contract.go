package get_availability

import (
	"context"

	refreshAvailability "github.com/m04kA/SMC-RoomInventory/internal/usecase/refresh_availability"
)

type AvailabilityUseCase interface {
	Execute(ctx context.Context, req *refreshAvailability.Request, deliver refreshAvailability.DeliverFunc) (*refreshAvailability.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
