package client

import "time"

// Config хранит параметры запуска клиента
type Config struct {
	ServerURL   string
	GameToken   string
	PlayerToken string

	// Задержки между попытками переподключения; после последней - снова последняя.
	ReconnectDelays []time.Duration

	InboundBuffer int // Очередь сообщений сервера
	CommandBuffer int // Очередь команд ввода

	// AnimationSpeed делит длительность эффектов (2 - вдвое быстрее).
	AnimationSpeed float64

	MaxLogs int

	// Bot - играть своими юнитами автоматически.
	Bot bool

	// RecordDir - куда сохранить запись сообщений сервера. Пусто - не записывать.
	RecordDir string
}

// NewConfig создает конфиг по умолчанию
func NewConfig() Config {
	return Config{
		ServerURL:       "ws://localhost:5000/gamehub",
		ReconnectDelays: []time.Duration{0, 0, 0, time.Second, 3 * time.Second, 5 * time.Second},
		InboundBuffer:   64,
		CommandBuffer:   64,
		AnimationSpeed:  1,
		MaxLogs:         50,
	}
}
