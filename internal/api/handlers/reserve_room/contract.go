package reserve_room

import (
	"context"

	reserveRoom "github.com/m04kA/SMC-RoomInventory/internal/usecase/reserve_room"
)

type ReserveRoomUseCase interface {
	Execute(ctx context.Context, req *reserveRoom.Request) (*reserveRoom.Response, error)
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
