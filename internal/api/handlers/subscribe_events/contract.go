package subscribe_events

import (
	"context"

	"github.com/m04kA/SMC-RoomInventory/internal/domain"
	"github.com/m04kA/SMC-RoomInventory/internal/service/broadcast"
	refreshAvailability "github.com/m04kA/SMC-RoomInventory/internal/usecase/refresh_availability"
)

type Broadcaster interface {
	Subscribe(topic string) (*broadcast.Subscription, error)
	Unsubscribe(sub *broadcast.Subscription)
	Deliver(sub *broadcast.Subscription, ev domain.Event) bool
}

type AvailabilityUseCase interface {
	Execute(ctx context.Context, req *refreshAvailability.Request, deliver refreshAvailability.DeliverFunc) (*refreshAvailability.Response, error)
}

type RateLimiter interface {
	Allow(action, identity string) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
