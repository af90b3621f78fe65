package event

import (
	"sync"

	"github.com/Fragoler/simple-tactics-client/pkg/logger"
	"github.com/sirupsen/logrus"
)

const defaultBuffer = 256

// Bus занимается только рассылкой событий подписчикам.
// Публикация не блокируется: если канал подписчика полон, событие для него теряется (и пишется warning).
type Bus struct {
	mu sync.RWMutex
	// Мапа: имя подписчика -> Личный канал
	subscribers map[string]chan Event
	dropped     map[string]int
}

func NewBus() *Bus {
	return &Bus{
		subscribers: make(map[string]chan Event),
		dropped:     make(map[string]int),
	}
}

// Subscribe создает личный канал для подписчика (рендерер, бот, лог).
// Повторная подписка с тем же именем закрывает старый канал.
func (b *Bus) Subscribe(name string, buffer int) <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	if old, ok := b.subscribers[name]; ok {
		close(old)
	}
	if buffer <= 0 {
		buffer = defaultBuffer
	}

	ch := make(chan Event, buffer)
	b.subscribers[name] = ch
	return ch
}

// Unsubscribe удаляет подписчика
func (b *Bus) Unsubscribe(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subscribers[name]; ok {
		close(ch)
		delete(b.subscribers, name)
		delete(b.dropped, name)
	}
}

// Publish отправляет событие всем подписчикам
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	var full []string
	for name, ch := range b.subscribers {
		select {
		case ch <- e:
		default:
			full = append(full, name)
		}
	}
	b.mu.RUnlock()

	if len(full) == 0 {
		return
	}

	b.mu.Lock()
	for _, name := range full {
		b.dropped[name]++
	}
	b.mu.Unlock()

	for _, name := range full {
		logger.Log.WithFields(logrus.Fields{
			"component":  "event_bus",
			"subscriber": name,
		}).Warnf("Канал подписчика переполнен, событие %T потеряно", e)
	}
}

// Dropped - сколько событий потерял подписчик.
func (b *Bus) Dropped(name string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.dropped[name]
}

// SubscriberCount возвращает количество активных подписчиков.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Close закрывает все каналы. Публиковать после Close нельзя.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for name, ch := range b.subscribers {
		close(ch)
		delete(b.subscribers, name)
	}
}

// Recorder копит события в памяти. Удобен для тестов и отладочного вывода.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events возвращает копию накопленных событий.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

// Tee рассылает событие нескольким издателям по порядку.
type Tee []Publisher

func (t Tee) Publish(e Event) {
	for _, p := range t {
		if p != nil {
			p.Publish(e)
		}
	}
}
