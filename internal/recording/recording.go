// Package recording сохраняет входящие сообщения сервера в бинарный файл (.tcrec)
// и читает их обратно для офлайн-разбора партии.
package recording

import (
	"sync"
	"time"

	"github.com/Fragoler/simple-tactics-client/pkg/api"
)

// Message - одно сообщение сервера и момент его получения от начала записи.
type Message struct {
	Offset time.Duration
	api.ServerMessage
}

// Recording - запись сессии целиком.
type Recording struct {
	GameToken string
	StartedAt time.Time
	Messages  []Message
}

// Recorder копит сообщения в памяти. Безопасен для вызова из транспорта.
type Recorder struct {
	mu    sync.Mutex
	rec   Recording
	clock func() time.Time
}

func NewRecorder(gameToken string) *Recorder {
	return newRecorder(gameToken, time.Now)
}

func newRecorder(gameToken string, clock func() time.Time) *Recorder {
	return &Recorder{
		rec:   Recording{GameToken: gameToken, StartedAt: clock()},
		clock: clock,
	}
}

func (r *Recorder) Record(msg api.ServerMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()

	payload := append([]byte(nil), msg.Payload...)
	r.rec.Messages = append(r.rec.Messages, Message{
		Offset:        r.clock().Sub(r.rec.StartedAt),
		ServerMessage: api.ServerMessage{Type: msg.Type, Payload: payload},
	})
}

func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rec.Messages)
}

// Snapshot - копия текущей записи
func (r *Recorder) Snapshot() *Recording {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := r.rec
	cp.Messages = append([]Message(nil), r.rec.Messages...)
	return &cp
}
