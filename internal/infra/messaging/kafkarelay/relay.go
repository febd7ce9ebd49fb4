package kafkarelay

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/m04kA/SMC-RoomInventory/internal/domain"
	"github.com/m04kA/SMC-RoomInventory/internal/service/broadcast"
)

const (
	DefaultWriteTimeout     = 5 * time.Second
	DefaultResubscribeDelay = 500 * time.Millisecond

	headerEventType    = "event-type"
	headerEventVersion = "event-version"
)

// Config параметры продюсера
type Config struct {
	Brokers      []string
	Topic        string
	BatchTimeout time.Duration
	BatchSize    int
}

// NewWriter создаёт kafka.Writer; балансировка по ключу держит события одной комнаты в одной партиции
func NewWriter(cfg Config) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           cfg.BatchTimeout,
		BatchSize:              cfg.BatchSize,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
}

// Relay пересылает все события брокера в Kafka
// Доставка best-effort: ошибка записи логируется, событие не повторяется
type Relay struct {
	source           Source
	writer           MessageWriter
	writeTimeout     time.Duration
	resubscribeDelay time.Duration
	metrics          Metrics
	logger           Logger
}

func NewRelay(source Source, writer MessageWriter, writeTimeout time.Duration, metrics Metrics, logger Logger) *Relay {
	if writeTimeout <= 0 {
		writeTimeout = DefaultWriteTimeout
	}
	return &Relay{
		source:           source,
		writer:           writer,
		writeTimeout:     writeTimeout,
		resubscribeDelay: DefaultResubscribeDelay,
		metrics:          metrics,
		logger:           logger,
	}
}

// Run блокируется до отмены ctx или остановки брокера событий
// После отключения за переполнение подписка создаётся заново
func (r *Relay) Run(ctx context.Context) error {
	for {
		sub, err := r.source.Subscribe(broadcast.TopicAll)
		if err != nil {
			if errors.Is(err, broadcast.ErrClosed) {
				return nil
			}
			return err
		}
		r.logger.Info("Relay: subscribed, subscription=%s", sub.ID)

		r.consume(ctx, sub)

		if ctx.Err() != nil {
			return nil
		}
		reason := sub.Err()
		if reason == nil || errors.Is(reason, broadcast.ErrClosed) {
			return nil
		}

		r.logger.Warn("Relay: subscription=%s lost: %v, resubscribing", sub.ID, reason)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(r.resubscribeDelay):
		}
	}
}

// Close закрывает продюсер
func (r *Relay) Close() error {
	return r.writer.Close()
}

func (r *Relay) consume(ctx context.Context, sub *broadcast.Subscription) {
	defer r.source.Unsubscribe(sub)

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub.C():
			if !ok {
				return
			}
			r.write(ctx, ev)
		}
	}
}

func (r *Relay) write(ctx context.Context, ev domain.Event) {
	msg, err := ToMessage(ev)
	if err != nil {
		r.logger.Error("Relay: encode event failed: room_id=%d, seq=%d, error=%v", ev.RoomID, ev.Sequence, err)
		r.incMessage("encode_error")
		return
	}

	wctx, cancel := context.WithTimeout(ctx, r.writeTimeout)
	defer cancel()

	if err := r.writer.WriteMessages(wctx, msg); err != nil {
		r.logger.Error("Relay: write failed: room_id=%d, seq=%d, error=%v", ev.RoomID, ev.Sequence, err)
		r.incMessage("error")
		return
	}
	r.incMessage("ok")
}

func (r *Relay) incMessage(result string) {
	if r.metrics != nil {
		r.metrics.IncRelayMessage(result)
	}
}

// ToMessage сериализует событие; ключ - ID комнаты
func ToMessage(ev domain.Event) (kafka.Message, error) {
	value, err := json.Marshal(ev)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(strconv.FormatInt(ev.RoomID, 10)),
		Value: value,
		Time:  ev.OccurredAt,
		Headers: []kafka.Header{
			{Key: headerEventType, Value: []byte(ev.Type)},
			{Key: headerEventVersion, Value: []byte(strconv.Itoa(ev.Version))},
		},
	}, nil
}
