package schedule

import (
	"github.com/Fragoler/simple-tactics-client/internal/domain"
	"github.com/Fragoler/simple-tactics-client/internal/event"
	"github.com/Fragoler/simple-tactics-client/pkg/logger"
	"github.com/sirupsen/logrus"
)

// Catalog - справочник действий, присланный сервером.
// Определения неизменяемы: повторная регистрация с тем же ID заменяет запись целиком.
type Catalog struct {
	defs  map[domain.ActionID]*domain.ActionDefinition
	order []domain.ActionID

	pub event.Publisher
	log *logrus.Entry
}

func NewCatalog(pub event.Publisher) *Catalog {
	return &Catalog{
		defs: make(map[domain.ActionID]*domain.ActionDefinition),
		pub:  event.OrDiscard(pub),
		log:  logger.Component("catalog"),
	}
}

// RegisterActions добавляет (или заменяет) определения действий.
func (c *Catalog) RegisterActions(defs []domain.ActionDefinition) {
	for i := range defs {
		def := defs[i]
		def.HighlightLayers = append([]domain.HighlightLayer(nil), def.HighlightLayers...)
		if _, exists := c.defs[def.ID]; !exists {
			c.order = append(c.order, def.ID)
		}
		c.defs[def.ID] = &def
	}

	c.log.WithFields(logrus.Fields{
		"registered": len(defs),
		"total":      len(c.defs),
	}).Info("Зарегистрированы действия")

	c.pub.Publish(event.CatalogLoaded{Count: len(c.defs)})
}

func (c *Catalog) ActionByID(id domain.ActionID) (*domain.ActionDefinition, bool) {
	def, ok := c.defs[id]
	return def, ok
}

// ActionsByIDs возвращает определения в порядке ids, пропуская неизвестные.
func (c *Catalog) ActionsByIDs(ids []domain.ActionID) []*domain.ActionDefinition {
	result := make([]*domain.ActionDefinition, 0, len(ids))
	for _, id := range ids {
		if def, ok := c.defs[id]; ok {
			result = append(result, def)
		}
	}
	return result
}

// ActionsForUnit - действия, доступные юниту.
func (c *Catalog) ActionsForUnit(u *domain.Unit) []*domain.ActionDefinition {
	if u == nil || len(u.ActionIDs) == 0 {
		return nil
	}
	return c.ActionsByIDs(u.ActionIDs)
}

// All - все определения в порядке регистрации.
func (c *Catalog) All() []*domain.ActionDefinition {
	return c.ActionsByIDs(c.order)
}

func (c *Catalog) Len() int {
	return len(c.defs)
}
