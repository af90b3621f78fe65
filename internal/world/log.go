package world

import (
	"fmt"
	"time"

	"github.com/Fragoler/simple-tactics-client/internal/domain"
	"github.com/Fragoler/simple-tactics-client/internal/event"
	"github.com/sirupsen/logrus"
)

// Типы записей игрового журнала
const (
	LogInfo    = "info"
	LogSuccess = "success"
	LogWarning = "warning"
	LogError   = "error"
)

// LogEntry - запись игрового журнала (то, что видит игрок).
type LogEntry struct {
	Message   string
	Type      string
	Timestamp time.Time
}

// AddLog добавляет запись в начало журнала и обрезает его до maxLogs.
// Запись дублируется в logrus.
func (s *Store) AddLog(message, logType string) {
	s.logs = append([]LogEntry{{Message: message, Type: logType, Timestamp: time.Now()}}, s.logs...)
	if len(s.logs) > s.maxLogs {
		s.logs = s.logs[:s.maxLogs]
	}

	s.log.WithFields(logrus.Fields{
		"component": "game_log",
		"log_type":  logType,
	}).Debug(message)

	s.pub.Publish(event.LogAdded{Message: message, Type: logType})
}

// Logs - журнал, новые записи первыми.
func (s *Store) Logs() []LogEntry {
	return append([]LogEntry(nil), s.logs...)
}

func fmtSelected(id domain.UnitID) string {
	return fmt.Sprintf("Выбран юнит #%d", id)
}
