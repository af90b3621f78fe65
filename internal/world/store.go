// Package world хранит зеркало серверного состояния: юниты, игроки, карта.
// Мутирует его только проигрыватель эффектов и снапшоты сервера.
package world

import (
	"sort"

	"github.com/Fragoler/simple-tactics-client/internal/domain"
	"github.com/Fragoler/simple-tactics-client/internal/event"
	"github.com/Fragoler/simple-tactics-client/pkg/logger"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var ErrUnitNotFound = errors.New("unit not found")

const DefaultMaxLogs = 50

// Snapshot - частичное обновление состояния от сервера.
// nil-срез или nil-карта означают "поле не пришло"; пустой срез - "пришло пустым".
type Snapshot struct {
	Units   []domain.Unit
	Players []domain.Player
	Map     *domain.MapState
}

// UpdateResult - что изменилось после применения снапшота.
type UpdateResult struct {
	// PlanningStarted - флаг готовности локального игрока сменился с true на false.
	PlanningStarted bool
	// SelectionLost - выделенный юнит пропал из нового состава.
	SelectionLost bool
}

// Store не потокобезопасен: им владеет цикл сессии.
type Store struct {
	units map[domain.UnitID]*domain.Unit
	order []domain.UnitID // порядок, в котором сервер прислал юнитов

	players []domain.Player
	mapData *domain.MapState

	myPlayerID  domain.PlayerID
	hasPlayerID bool

	selected *domain.UnitID

	logs    []LogEntry
	maxLogs int

	pub event.Publisher
	log *logrus.Entry
}

func NewStore(pub event.Publisher, maxLogs int) *Store {
	if maxLogs <= 0 {
		maxLogs = DefaultMaxLogs
	}
	return &Store{
		units:   make(map[domain.UnitID]*domain.Unit),
		maxLogs: maxLogs,
		pub:     event.OrDiscard(pub),
		log:     logger.Component("world"),
	}
}

// Update применяет снапшот сервера.
func (s *Store) Update(snap Snapshot) UpdateResult {
	var res UpdateResult

	wasReady, hadMe := s.myReady()

	if snap.Players != nil {
		s.players = append([]domain.Player(nil), snap.Players...)
	}
	if snap.Map != nil {
		m := *snap.Map
		s.mapData = &m
	}
	if snap.Units != nil {
		s.units = make(map[domain.UnitID]*domain.Unit, len(snap.Units))
		s.order = s.order[:0]
		for i := range snap.Units {
			u := snap.Units[i]
			u.ActionIDs = append([]domain.ActionID(nil), u.ActionIDs...)
			if _, dup := s.units[u.ID]; !dup {
				s.order = append(s.order, u.ID)
			}
			s.units[u.ID] = &u
		}

		if s.selected != nil {
			if _, ok := s.units[*s.selected]; !ok {
				s.selected = nil
				res.SelectionLost = true
				s.pub.Publish(event.SelectionChanged{})
			}
		}
	}

	if isReady, haveMe := s.myReady(); hadMe && haveMe && wasReady && !isReady {
		res.PlanningStarted = true
	}

	s.log.WithFields(logrus.Fields{
		"units":    len(s.units),
		"players":  len(s.players),
		"has_map":  s.mapData != nil,
		"planning": res.PlanningStarted,
	}).Debug("Состояние обновлено")

	s.pub.Publish(event.StateUpdated{Units: len(s.units), Players: len(s.players), HasMap: s.mapData != nil})
	if res.PlanningStarted {
		s.pub.Publish(event.PlanningPhaseStarted{})
	}
	s.AddLog("Состояние обновлено", LogSuccess)

	return res
}

func (s *Store) myReady() (ready bool, found bool) {
	if !s.hasPlayerID {
		return false, false
	}
	for _, p := range s.players {
		if p.ID == s.myPlayerID {
			return p.IsReady, true
		}
	}
	return false, false
}

// --- Игроки ---

func (s *Store) SetMyPlayerID(id domain.PlayerID) {
	s.myPlayerID = id
	s.hasPlayerID = true
	s.log.WithField("player_id", id).Info("Получен ID игрока")
}

func (s *Store) MyPlayerID() (domain.PlayerID, bool) {
	return s.myPlayerID, s.hasPlayerID
}

// IsMine - юнит принадлежит локальному игроку. Пока ID игрока неизвестен, чужие все.
func (s *Store) IsMine(u *domain.Unit) bool {
	return u != nil && s.hasPlayerID && u.PlayerID == s.myPlayerID
}

func (s *Store) Players() []domain.Player {
	return append([]domain.Player(nil), s.players...)
}

// Me возвращает локального игрока, если он есть в списке.
func (s *Store) Me() (domain.Player, bool) {
	if !s.hasPlayerID {
		return domain.Player{}, false
	}
	for _, p := range s.players {
		if p.ID == s.myPlayerID {
			return p, true
		}
	}
	return domain.Player{}, false
}

// --- Карта ---

// Map возвращает карту или nil, если сервер её ещё не прислал.
func (s *Store) Map() *domain.MapState {
	return s.mapData
}

// --- Юниты ---

func (s *Store) Unit(id domain.UnitID) (*domain.Unit, bool) {
	u, ok := s.units[id]
	return u, ok
}

// UnitAt - юнит в клетке. Если их несколько, берется первый в порядке сервера.
func (s *Store) UnitAt(pos domain.Position) (*domain.Unit, bool) {
	for _, id := range s.order {
		if u := s.units[id]; u != nil && u.Coords == pos {
			return u, true
		}
	}
	return nil, false
}

// Units возвращает юнитов в порядке сервера.
func (s *Store) Units() []*domain.Unit {
	result := make([]*domain.Unit, 0, len(s.order))
	for _, id := range s.order {
		if u, ok := s.units[id]; ok {
			result = append(result, u)
		}
	}
	return result
}

// OwnedUnits - юниты локального игрока, отсортированные по ID.
func (s *Store) OwnedUnits() []*domain.Unit {
	var result []*domain.Unit
	for _, u := range s.units {
		if s.IsMine(u) {
			result = append(result, u)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// MoveUnit - мутация эффекта Move.
func (s *Store) MoveUnit(id domain.UnitID, to domain.Position) error {
	u, ok := s.units[id]
	if !ok {
		return errors.Wrapf(ErrUnitNotFound, "move unit %d", id)
	}
	from := u.Coords
	u.Coords = to
	s.pub.Publish(event.UnitMoved{UnitID: id, From: from, To: to})
	return nil
}

// SetHealth - мутация эффекта Damage: сервер присылает итоговое здоровье.
func (s *Store) SetHealth(id domain.UnitID, health int) error {
	u, ok := s.units[id]
	if !ok {
		return errors.Wrapf(ErrUnitNotFound, "set health of unit %d", id)
	}
	old := u.CurHealth
	u.CurHealth = health
	s.pub.Publish(event.UnitHealthChanged{UnitID: id, Old: old, New: health})
	return nil
}

// HealUnit - мутация эффекта Heal: curHealth = min(curHealth + amount, maxHealth).
func (s *Store) HealUnit(id domain.UnitID, amount int) (int, error) {
	u, ok := s.units[id]
	if !ok {
		return 0, errors.Wrapf(ErrUnitNotFound, "heal unit %d", id)
	}
	old := u.CurHealth
	u.CurHealth = min(u.CurHealth+amount, u.MaxHealth)
	s.pub.Publish(event.UnitHealthChanged{UnitID: id, Old: old, New: u.CurHealth})
	return u.CurHealth, nil
}

// RemoveUnit - мутация эффекта Death.
func (s *Store) RemoveUnit(id domain.UnitID) error {
	if _, ok := s.units[id]; !ok {
		return errors.Wrapf(ErrUnitNotFound, "remove unit %d", id)
	}
	delete(s.units, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.pub.Publish(event.UnitRemoved{UnitID: id})

	if s.selected != nil && *s.selected == id {
		s.selected = nil
		s.pub.Publish(event.SelectionChanged{})
	}
	return nil
}

// --- Выделение ---

// SelectUnit переключает выделение: повторный клик по выделенному юниту снимает его.
// Возвращает true, если юнит теперь выделен.
func (s *Store) SelectUnit(id domain.UnitID) (bool, error) {
	if _, ok := s.units[id]; !ok {
		return false, errors.Wrapf(ErrUnitNotFound, "select unit %d", id)
	}
	if s.selected != nil && *s.selected == id {
		s.Deselect()
		return false, nil
	}

	sel := id
	s.selected = &sel
	s.pub.Publish(event.SelectionChanged{UnitID: &sel})
	s.AddLog(fmtSelected(id), LogInfo)
	return true, nil
}

func (s *Store) Deselect() {
	if s.selected == nil {
		return
	}
	s.selected = nil
	s.pub.Publish(event.SelectionChanged{})
}

// SelectedUnit - выделенный юнит, если он есть и ещё жив.
func (s *Store) SelectedUnit() (*domain.Unit, bool) {
	if s.selected == nil {
		return nil, false
	}
	return s.Unit(*s.selected)
}

// Reset очищает всё, кроме настроек журнала.
func (s *Store) Reset() {
	s.units = make(map[domain.UnitID]*domain.Unit)
	s.order = nil
	s.players = nil
	s.mapData = nil
	s.selected = nil
	s.hasPlayerID = false
	s.myPlayerID = 0
	s.logs = nil
	s.log.Info("Мир сброшен")
}
