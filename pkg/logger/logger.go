package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Log является глобальным экземпляром логгера для всего клиента.
var Log *logrus.Logger = logrus.New()

// Init инициализирует глобальный логгер.
// Эта функция должна быть вызвана один раз при старте приложения в main.go
// (и в TestMain пакетов, которые пишут в лог).
func Init() {
	InitWithOutput(os.Stdout)
}

// InitWithOutput делает то же, что Init, но пишет в w.
// Используется утилитами, которым stdout нужен под полезный вывод.
func InitWithOutput(w io.Writer) {
	Log = logrus.New()

	// Уровень из LOG_LEVEL, по умолчанию "info". Для отладки - "debug".
	logLevel, ok := os.LookupEnv("LOG_LEVEL")
	if !ok {
		logLevel = "info"
	}
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	Log.SetLevel(level)

	// "json" - для сбора логов, иначе текст для разработки.
	logFormat := strings.ToLower(os.Getenv("LOG_FORMAT"))
	if logFormat == "json" {
		Log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		Log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
	}

	Log.SetOutput(w)
}

// Component возвращает логгер с полем component.
func Component(name string) *logrus.Entry {
	return Log.WithField("component", name)
}
