// Package client собирает хранилища клиента в одну сессию с единственным циклом событий.
//
// Все хранилища (мир, каталог, расписание, очередь эффектов) принадлежат циклу Run.
// Снаружи с ними работают только через Deliver (сообщения сервера) и Do (команды ввода).
package client

import (
	"context"
	"encoding/json"

	"github.com/Fragoler/simple-tactics-client/internal/effects"
	"github.com/Fragoler/simple-tactics-client/internal/event"
	"github.com/Fragoler/simple-tactics-client/internal/schedule"
	"github.com/Fragoler/simple-tactics-client/internal/world"
	"github.com/Fragoler/simple-tactics-client/pkg/api"
	"github.com/Fragoler/simple-tactics-client/pkg/logger"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var ErrSessionStopped = errors.New("session is not running")

// Sender - исходящий канал к серверу (реализует transport.Client).
type Sender interface {
	Send(ctx context.Context, cmd api.ClientCommand) error
}

type request struct {
	fn   func(*Session)
	done chan struct{}
}

// Session - явный контекстный объект клиента.
type Session struct {
	cfg Config

	World    *world.Store
	Catalog  *schedule.Catalog
	Schedule *schedule.Store
	Effects  *effects.Player
	Bus      *event.Bus

	sender   Sender
	handlers map[string]HandlerFunc

	inbound  chan api.ServerMessage
	requests chan request
	stopped  chan struct{}

	pub event.Publisher
	log *logrus.Entry
}

// NewSession создает все хранилища и связывает их.
// sender может быть nil (офлайн), animator nil - анимации мгновенные.
func NewSession(cfg Config, sender Sender, animator effects.Animator) *Session {
	bus := event.NewBus()

	s := &Session{
		cfg:      cfg,
		Bus:      bus,
		sender:   sender,
		handlers: defaultHandlers(),
		inbound:  make(chan api.ServerMessage, max(cfg.InboundBuffer, 1)),
		requests: make(chan request, max(cfg.CommandBuffer, 1)),
		stopped:  make(chan struct{}),
		pub:      bus,
		log:      logger.Component("session"),
	}

	s.World = world.NewStore(bus, cfg.MaxLogs)
	s.Catalog = schedule.NewCatalog(bus)
	s.Schedule = schedule.NewStore(s.World, s.Catalog, bus)
	s.Effects = effects.NewPlayer(s.World, animator, bus)
	return s
}

func (s *Session) Config() Config { return s.cfg }

// Deliver передает сообщение сервера в цикл. Блокируется, если очередь полна.
func (s *Session) Deliver(ctx context.Context, msg api.ServerMessage) error {
	select {
	case s.inbound <- msg:
		return nil
	case <-s.stopped:
		return ErrSessionStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Do выполняет fn в цикле сессии и ждет завершения.
func (s *Session) Do(ctx context.Context, fn func(*Session)) error {
	req := request{fn: fn, done: make(chan struct{})}

	select {
	case s.requests <- req:
	case <-s.stopped:
		return ErrSessionStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-req.done:
		return nil
	case <-s.stopped:
		return ErrSessionStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run - цикл сессии. Каждая итерация:
//  1. запускает следующий эффект, если проигрыватель свободен;
//  2. ждет одно из: сообщение сервера, команду ввода, конец анимации.
//
// Возврат к началу цикла между эффектами и есть тот самый "один тик" между ними.
func (s *Session) Run(ctx context.Context) error {
	s.log.Info("Цикл сессии запущен")
	defer func() {
		close(s.stopped)
		s.Bus.Close()
		s.log.Info("Цикл сессии остановлен")
	}()

	for {
		s.Effects.PlayNext(ctx)

		select {
		case <-ctx.Done():
			return ctx.Err()

		case msg := <-s.inbound:
			s.HandleMessage(msg)

		case req := <-s.requests:
			req.fn(s)
			close(req.done)

		case res := <-s.Effects.Done():
			s.Effects.Complete(res)
		}
	}
}

// HandleMessage разбирает одно сообщение сервера. Ошибки логируются, цикл продолжается.
func (s *Session) HandleMessage(msg api.ServerMessage) {
	log := s.log.WithField("type", msg.Type)

	handler, ok := s.handlers[msg.Type]
	if !ok {
		log.Warn("Неизвестный тип сообщения")
		return
	}
	if err := handler(s, msg.Payload); err != nil {
		log.WithError(err).Error("Сообщение сервера не обработано")
	}
}

// --- Команды серверу ---

func (s *Session) send(ctx context.Context, action string, payload any) error {
	if s.sender == nil {
		return errors.New("no transport")
	}

	cmd := api.ClientCommand{
		Action:      action,
		GameToken:   s.cfg.GameToken,
		PlayerToken: s.cfg.PlayerToken,
	}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return errors.Wrapf(err, "marshal %s", action)
		}
		cmd.Payload = raw
	}
	if err := cmd.Validate(); err != nil {
		return err
	}

	if err := s.sender.Send(ctx, cmd); err != nil {
		return errors.Wrapf(err, "send %s", action)
	}
	s.log.WithField("action", action).Debug("Команда отправлена")
	return nil
}

// JoinGame - вход в партию; затем запрашиваем свой ID и состояние.
func (s *Session) JoinGame(ctx context.Context) error {
	if err := s.send(ctx, api.CmdJoinGame, nil); err != nil {
		return err
	}
	if err := s.send(ctx, api.CmdRequestPlayerID, nil); err != nil {
		return err
	}
	return s.send(ctx, api.CmdRequestGameState, nil)
}

func (s *Session) RequestGameState(ctx context.Context) error {
	return s.send(ctx, api.CmdRequestGameState, nil)
}

func (s *Session) RequestPlayerID(ctx context.Context) error {
	return s.send(ctx, api.CmdRequestPlayerID, nil)
}
