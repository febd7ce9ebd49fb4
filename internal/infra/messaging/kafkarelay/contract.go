package kafkarelay

import (
	"context"

	"github.com/segmentio/kafka-go"

	"github.com/m04kA/SMC-RoomInventory/internal/service/broadcast"
)

// MessageWriter запись сообщений в брокер; *kafka.Writer удовлетворяет интерфейсу
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Source источник событий инвентаря
type Source interface {
	Subscribe(topic string) (*broadcast.Subscription, error)
	Unsubscribe(sub *broadcast.Subscription)
}

type Metrics interface {
	IncRelayMessage(result string)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
