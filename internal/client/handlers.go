package client

import (
	"encoding/json"

	"github.com/Fragoler/simple-tactics-client/internal/domain"
	"github.com/Fragoler/simple-tactics-client/internal/event"
	"github.com/Fragoler/simple-tactics-client/internal/world"
	"github.com/Fragoler/simple-tactics-client/pkg/api"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// HandlerFunc - обработчик одного типа серверного сообщения. Выполняется в цикле сессии.
type HandlerFunc func(s *Session, payload json.RawMessage) error

// TypedHandlerFunc - "чистый" обработчик, который работает с готовой структурой T
type TypedHandlerFunc[T any] func(s *Session, payload T) error

// WithPayload берет "чистый" обработчик и превращает его в стандартный HandlerFunc.
// Она берет на себя Unmarshal и Validate.
func WithPayload[T any](handler TypedHandlerFunc[T]) HandlerFunc {
	return func(s *Session, raw json.RawMessage) error {
		var payload T

		if err := json.Unmarshal(raw, &payload); err != nil {
			return errors.Wrap(err, "invalid payload format")
		}

		if v, ok := any(payload).(api.Validator); ok {
			if err := v.Validate(); err != nil {
				return errors.Wrap(err, "validation failed")
			}
		}

		return handler(s, payload)
	}
}

func defaultHandlers() map[string]HandlerFunc {
	return map[string]HandlerFunc{
		api.MsgActions:   WithPayload(handleActions),
		api.MsgGameState: WithPayload(handleGameState),
		api.MsgPlayerID:  WithPayload(handlePlayerID),
		api.MsgEffects:   WithPayload(handleEffects),
		api.MsgError:     WithPayload(handleServerError),
	}
}

// handleActions регистрирует каталог. Битые записи отбрасываются по одной.
func handleActions(s *Session, dtos []api.ActionDefinitionDTO) error {
	defs := make([]domain.ActionDefinition, 0, len(dtos))
	for _, dto := range dtos {
		if err := dto.Validate(); err != nil {
			s.log.WithError(err).Error("Определение действия отброшено")
			continue
		}
		def, err := ToActionDefinition(dto)
		if err != nil {
			s.log.WithError(err).Error("Определение действия отброшено")
			continue
		}
		defs = append(defs, def)
	}

	s.Catalog.RegisterActions(defs)
	return nil
}

func handleGameState(s *Session, dto api.GameStateDTO) error {
	res := s.World.Update(ToSnapshot(dto))

	if res.PlanningStarted {
		n := s.Schedule.Reset()
		s.World.AddLog("Новая фаза планирования", world.LogInfo)
		s.log.WithField("reset", n).Info("Началась фаза планирования")
	}

	s.recheckSchedules()
	return nil
}

func handlePlayerID(s *Session, dto api.PlayerDTO) error {
	s.World.SetMyPlayerID(domain.PlayerID(dto.PlayerID))
	return nil
}

func handleEffects(s *Session, dtos []api.EffectDTO) error {
	n := s.Effects.AddEffects(dtos)
	s.log.WithFields(logrus.Fields{
		"received": len(dtos),
		"queued":   n,
	}).Debug("Получены эффекты")
	return nil
}

func handleServerError(s *Session, msg string) error {
	s.log.WithField("server_message", msg).Error("Ошибка от сервера")
	s.World.AddLog(msg, world.LogError)
	s.pub.Publish(event.ServerError{Message: msg})
	return nil
}
