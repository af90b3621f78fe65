package client

import (
	"github.com/Fragoler/simple-tactics-client/internal/domain"
	"github.com/Fragoler/simple-tactics-client/internal/geometry"
	"github.com/Fragoler/simple-tactics-client/internal/world"
	"github.com/Fragoler/simple-tactics-client/pkg/api"
	"github.com/pkg/errors"
)

// ToActionDefinition переводит DTO каталога в доменную запись.
// Если у фильтра не указан паттерн, берется паттерн первого слоя, привязанного к исполнителю.
func ToActionDefinition(dto api.ActionDefinitionDTO) (domain.ActionDefinition, error) {
	def := domain.ActionDefinition{
		ID:   domain.ActionID(dto.ID),
		Name: dto.Name,
		Icon: dto.Icon,
	}

	def.TargetType = domain.ParseTargetType(dto.TargetType)
	if def.TargetType == domain.TargetUnknown {
		return def, errors.Errorf("action %q: unknown target type %q", dto.ID, dto.TargetType)
	}

	for i, l := range dto.HighlightLayers {
		layer := domain.HighlightLayer{
			Pattern:    domain.ParsePattern(l.Pattern),
			Range:      l.Range,
			RelativeTo: domain.ParseRelativeTo(l.RelativeTo),
			Type:       domain.ParseHighlightType(l.Type),
			Visibility: domain.ParseVisibility(l.Visibility),
		}
		switch {
		case layer.Pattern == domain.PatternUnknown:
			return def, errors.Wrapf(geometry.ErrUnknownPattern, "action %q, layer %d: %q", dto.ID, i, l.Pattern)
		case layer.RelativeTo == domain.RelativeUnknown:
			return def, errors.Errorf("action %q, layer %d: unknown relativeTo %q", dto.ID, i, l.RelativeTo)
		case layer.Visibility == domain.VisibilityUnknown:
			return def, errors.Errorf("action %q, layer %d: unknown visibility %q", dto.ID, i, l.Visibility)
		}
		def.HighlightLayers = append(def.HighlightLayers, layer)
	}

	f := dto.TargetFilter
	filter := domain.TargetFilter{
		RequireEnemy:      deref(f.RequireEnemy),
		RequireAlly:       deref(f.RequireAlly),
		RequiredFreeSpace: deref(f.RequiredFreeSpace),
		MaxTargets:        deref(f.MaxTargets),
		Range:             deref(f.Range),
	}

	switch {
	case f.Pattern != "":
		filter.Pattern = domain.ParsePattern(f.Pattern)
		if filter.Pattern == domain.PatternUnknown {
			return def, errors.Wrapf(geometry.ErrUnknownPattern, "action %q: filter pattern %q", dto.ID, f.Pattern)
		}
	case def.TargetType == domain.TargetNone:
		filter.Pattern = domain.PatternNone
	default:
		filter.Pattern = domain.PatternNone
		for _, l := range def.HighlightLayers {
			if l.RelativeTo == domain.RelativeExecutor {
				filter.Pattern = l.Pattern
				if f.Range == nil {
					filter.Range = l.Range
				}
				break
			}
		}
	}

	if filter.Pattern.NeedsRange() && !(filter.Range > 0) {
		return def, errors.Wrapf(geometry.ErrRangeRequired, "action %q: filter %s", dto.ID, filter.Pattern)
	}

	def.TargetFilter = filter
	return def, nil
}

// ToSnapshot переводит снапшот сервера в обновление мира.
func ToSnapshot(dto api.GameStateDTO) world.Snapshot {
	var snap world.Snapshot

	if dto.Players != nil {
		snap.Players = make([]domain.Player, 0, len(dto.Players))
		for _, p := range dto.Players {
			snap.Players = append(snap.Players, ToPlayer(p))
		}
	}

	if dto.Units != nil {
		snap.Units = make([]domain.Unit, 0, len(dto.Units))
		for _, u := range dto.Units {
			snap.Units = append(snap.Units, ToUnit(u))
		}
	}

	if dto.Map != nil {
		snap.Map = &domain.MapState{
			Name:    dto.Map.Name,
			Width:   dto.Map.Width,
			Height:  dto.Map.Height,
			Terrain: dto.Map.Terrain,
		}
	}
	return snap
}

func ToPlayer(p api.PlayerDTO) domain.Player {
	return domain.Player{ID: domain.PlayerID(p.PlayerID), Name: p.PlayerName, IsReady: p.IsReady}
}

func ToUnit(u api.UnitDTO) domain.Unit {
	unit := domain.Unit{
		ID:        domain.UnitID(u.UnitID),
		PlayerID:  domain.PlayerID(deref(u.PlayerID)),
		Coords:    domain.Position{X: u.Coords.X, Y: u.Coords.Y},
		Sprite:    domain.UnitSprite(u.Sprite),
		CurHealth: u.CurHealth,
		MaxHealth: u.MaxHealth,
	}
	for _, id := range u.ActionIDs {
		unit.ActionIDs = append(unit.ActionIDs, domain.ActionID(id))
	}
	return unit
}

// ToScheduledDTO - подтвержденное действие в формате SubmitActions.
func ToScheduledDTO(sa domain.ScheduledAction) api.ScheduledActionDTO {
	dto := api.ScheduledActionDTO{
		UnitID:    int(sa.UnitID),
		ActionID:  string(sa.ActionID),
		State:     sa.State.String(),
		Confirmed: sa.Confirmed(),
	}
	if sa.Target != nil {
		dto.Target = &api.TargetDTO{Cell: &api.PositionDTO{X: sa.Target.Cell.X, Y: sa.Target.Cell.Y}}
		for _, id := range sa.Target.UnitIDs {
			dto.Target.UnitIDs = append(dto.Target.UnitIDs, int(id))
		}
	}
	return dto
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
