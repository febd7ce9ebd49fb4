package subscribe_events

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/m04kA/SMC-RoomInventory/internal/domain"
)

// eventResync сообщает клиенту, что поток оборван и нужен новый REFRESH
const eventResync = "RESYNC"

// stream пишет события в формате text/event-stream
type stream struct {
	w  http.ResponseWriter
	rc *http.ResponseController
}

func newStream(w http.ResponseWriter) *stream {
	rc := http.NewResponseController(w)
	// долгоживущее соединение: снимаем WriteTimeout сервера
	_ = rc.SetWriteDeadline(time.Time{})

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	return &stream{w: w, rc: rc}
}

func (s *stream) event(ev domain.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "id: %d\nevent: %s\ndata: %s\n\n", ev.Sequence, ev.Type, data); err != nil {
		return err
	}
	return s.rc.Flush()
}

func (s *stream) resync(reason string) error {
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %q\n\n", eventResync, reason); err != nil {
		return err
	}
	return s.rc.Flush()
}

func (s *stream) ping() error {
	if _, err := fmt.Fprint(s.w, ": ping\n\n"); err != nil {
		return err
	}
	return s.rc.Flush()
}

func (s *stream) flush() error {
	return s.rc.Flush()
}
