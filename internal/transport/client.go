// Package transport - websocket-соединение с игровым сервером.
// Сообщения сервера передаются в Deliver, команды клиента уходят через Send.
// При обрыве соединение поднимается заново по расписанию задержек.
package transport

import (
	"context"
	"sync"
	"time"

	"github.com/Fragoler/simple-tactics-client/pkg/api"
	"github.com/Fragoler/simple-tactics-client/pkg/logger"
	"github.com/Fragoler/simple-tactics-client/pkg/utils"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Настройки WebSocket
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1 << 20 // снапшоты карты бывают большими
	sendBuffer     = 256
	handshakeBuf   = 32
)

type handshakeKey struct{}

// withHandshake помечает ctx OnConnect: команды с ним уходят раньше очереди.
func withHandshake(ctx context.Context) context.Context {
	return context.WithValue(ctx, handshakeKey{}, true)
}

func isHandshake(ctx context.Context) bool {
	v, _ := ctx.Value(handshakeKey{}).(bool)
	return v
}

// Status - состояние соединения
type Status string

const (
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
	StatusReconnecting Status = "reconnecting"
	StatusDisconnected Status = "disconnected"
)

// DeliverFunc получает каждое сообщение сервера (обычно Session.Deliver).
type DeliverFunc func(ctx context.Context, msg api.ServerMessage) error

// Config - параметры соединения
type Config struct {
	URL             string
	ReconnectDelays []time.Duration
}

// Client - посредник между Websocket и сессией
type Client struct {
	cfg     Config
	dialer  *websocket.Dialer
	deliver DeliverFunc

	send      chan api.ClientCommand
	handshake chan api.ClientCommand

	mu        sync.RWMutex
	pending   *api.ClientCommand // команда, чья запись оборвалась; уходит первой после handshake
	status    Status
	onStatus  func(Status)
	onConnect func(ctx context.Context) error

	log *logrus.Entry
}

func New(cfg Config, deliver DeliverFunc) *Client {
	return &Client{
		cfg:     cfg,
		dialer:  websocket.DefaultDialer,
		deliver: deliver,
		send:      make(chan api.ClientCommand, sendBuffer),
		handshake: make(chan api.ClientCommand, handshakeBuf),
		status:    StatusDisconnected,
		log: logger.Log.WithFields(logrus.Fields{
			"component": "transport",
			"conn_id":   utils.GenerateID(),
		}),
	}
}

// OnStatus задает обработчик смены статуса. Вызывается из горутины Run.
func (c *Client) OnStatus(fn func(Status)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onStatus = fn
}

// OnConnect задает действие после каждого (пере)подключения, например вход в партию.
func (c *Client) OnConnect(fn func(ctx context.Context) error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onConnect = fn
}

func (c *Client) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

func (c *Client) setStatus(s Status) {
	c.mu.Lock()
	if c.status == s {
		c.mu.Unlock()
		return
	}
	c.status = s
	fn := c.onStatus
	c.mu.Unlock()

	c.log.WithField("status", s).Info("Статус соединения")
	if fn != nil {
		fn(s)
	}
}

// Send ставит команду в очередь отправки. Команды переживают переподключение.
// Команды из OnConnect уходят раньше накопленной очереди.
func (c *Client) Send(ctx context.Context, cmd api.ClientCommand) error {
	queue := c.send
	if isHandshake(ctx) {
		queue = c.handshake
	}
	select {
	case queue <- cmd:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// nextDelay - задержка перед попыткой attempt (0 - первая повторная).
// После конца списка используется последняя задержка.
func (c *Client) nextDelay(attempt int) time.Duration {
	delays := c.cfg.ReconnectDelays
	if len(delays) == 0 {
		return time.Second
	}
	if attempt >= len(delays) {
		return delays[len(delays)-1]
	}
	return delays[attempt]
}

// Run держит соединение, пока не отменен ctx.
func (c *Client) Run(ctx context.Context) error {
	defer c.setStatus(StatusDisconnected)

	attempt := 0
	first := true
	for {
		if first {
			c.setStatus(StatusConnecting)
		} else {
			c.setStatus(StatusReconnecting)
		}

		conn, _, err := c.dialer.DialContext(ctx, c.cfg.URL, nil)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			delay := c.nextDelay(attempt)
			c.log.WithError(err).WithFields(logrus.Fields{
				"attempt": attempt + 1,
				"delay":   delay,
			}).Warn("Не удалось подключиться")
			attempt++
			first = false

			select {
			case <-time.After(delay):
				continue
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		attempt = 0
		c.setStatus(StatusConnected)

		err = c.serve(ctx, conn)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.WithError(err).Warn("Соединение потеряно")
		first = false
	}
}

// serve обслуживает одно соединение: readPump, writePump и OnConnect в одной errgroup.
// Очередь команд не пишется, пока OnConnect не закончит.
func (c *Client) serve(ctx context.Context, conn *websocket.Conn) error {
	c.dropStaleHandshake()

	g, gctx := errgroup.WithContext(ctx)
	ready := make(chan struct{})

	g.Go(func() error { return c.readPump(gctx, conn) })
	g.Go(func() error { return c.writePump(gctx, conn, ready) })

	// Закрытие соединения разблокирует ReadJSON
	g.Go(func() error {
		<-gctx.Done()
		if err := conn.Close(); err != nil {
			c.log.WithError(err).Debug("failed to close websocket connection")
		}
		return nil
	})

	c.mu.RLock()
	onConnect := c.onConnect
	c.mu.RUnlock()
	if onConnect != nil {
		g.Go(func() error {
			defer close(ready)
			return errors.Wrap(onConnect(withHandshake(gctx)), "on connect")
		})
	} else {
		close(ready)
	}

	return g.Wait()
}

// dropStaleHandshake выбрасывает handshake прошлого соединения: OnConnect пошлет его заново.
func (c *Client) dropStaleHandshake() {
	for {
		select {
		case cmd := <-c.handshake:
			c.log.WithField("action", cmd.Action).Debug("Устаревшая handshake-команда отброшена")
		default:
			return
		}
	}
}

func (c *Client) takePending() *api.ClientCommand {
	c.mu.Lock()
	defer c.mu.Unlock()
	cmd := c.pending
	c.pending = nil
	return cmd
}

func (c *Client) setPending(cmd api.ClientCommand) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = &cmd
}

// readPump читает сообщения сервера
func (c *Client) readPump(ctx context.Context, conn *websocket.Conn) error {
	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.log.WithError(err).Warn("failed to set read deadline")
	}
	conn.SetPongHandler(func(string) error {
		if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			c.log.WithError(err).Warn("failed to set pong read deadline")
		}
		return nil
	})

	for {
		var msg api.ServerMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) && ctx.Err() == nil {
				c.log.WithError(err).Error("WS Error")
			}
			return errors.Wrap(err, "read")
		}
		// Любое сообщение продлевает дедлайн так же, как pong
		if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			c.log.WithError(err).Warn("failed to set read deadline")
		}

		if err := c.deliver(ctx, msg); err != nil {
			return errors.Wrap(err, "deliver")
		}
	}
}

func (c *Client) writeCmd(conn *websocket.Conn, cmd api.ClientCommand) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.log.WithError(err).Warn("failed to set write deadline")
	}
	if err := conn.WriteJSON(cmd); err != nil {
		return errors.Wrap(err, "write")
	}
	c.log.WithField("action", cmd.Action).Debug("Команда отправлена")
	return nil
}

func (c *Client) writePing(conn *websocket.Conn) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.log.WithError(err).Warn("failed to set ping write deadline")
	}
	return errors.Wrap(conn.WriteMessage(websocket.PingMessage, nil), "ping")
}

func (c *Client) writeClose(conn *websocket.Conn) {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err == nil {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		if err := conn.WriteMessage(websocket.CloseMessage, msg); err != nil {
			c.log.WithError(err).Debug("write close message failed")
		}
	}
}

// writePump отправляет команды серверу + Ping.
// Порядок: handshake из OnConnect, затем оборванная команда, затем очередь.
// Неотправленная handshake-команда не сохраняется: OnConnect повторит её.
func (c *Client) writePump(ctx context.Context, conn *websocket.Conn, ready <-chan struct{}) error {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	// Пока OnConnect работает, пишем только handshake
	for waiting := true; waiting; {
		select {
		case <-ctx.Done():
			c.writeClose(conn)
			return nil
		case cmd := <-c.handshake:
			if err := c.writeCmd(conn, cmd); err != nil {
				return err
			}
		case <-ready:
			waiting = false
		case <-ticker.C:
			if err := c.writePing(conn); err != nil {
				return err
			}
		}
	}
	for drained := false; !drained; {
		select {
		case cmd := <-c.handshake:
			if err := c.writeCmd(conn, cmd); err != nil {
				return err
			}
		default:
			drained = true
		}
	}

	if cmd := c.takePending(); cmd != nil {
		if err := c.writeCmd(conn, *cmd); err != nil {
			c.setPending(*cmd)
			return err
		}
	}

	for {
		select {
		case <-ctx.Done():
			c.writeClose(conn)
			return nil

		case cmd := <-c.handshake:
			if err := c.writeCmd(conn, cmd); err != nil {
				return err
			}

		case cmd := <-c.send:
			if err := c.writeCmd(conn, cmd); err != nil {
				// Команда не ушла: отправим её первой после переподключения
				c.setPending(cmd)
				return err
			}

		case <-ticker.C:
			if err := c.writePing(conn); err != nil {
				return err
			}
		}
	}
}
