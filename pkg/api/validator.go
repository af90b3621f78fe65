package api

import "github.com/pkg/errors"

// Validator - интерфейс, который могут реализовать DTO
type Validator interface {
	Validate() error
}

func (p ActionDefinitionDTO) Validate() error {
	if p.ID == "" {
		return errors.New("action id is required")
	}
	if p.TargetType == "" {
		return errors.Errorf("action %q: targetType is required", p.ID)
	}
	if r := p.TargetFilter.Range; r != nil && *r < 0 {
		return errors.Errorf("action %q: negative range", p.ID)
	}
	if m := p.TargetFilter.MaxTargets; m != nil && *m < 0 {
		return errors.Errorf("action %q: negative maxTargets", p.ID)
	}
	for i, l := range p.HighlightLayers {
		if l.Pattern == "" || l.RelativeTo == "" || l.Visibility == "" {
			return errors.Errorf("action %q: layer %d is incomplete", p.ID, i)
		}
	}
	return nil
}

func (p UnitDTO) Validate() error {
	if p.UnitID <= 0 {
		return errors.New("unitId must be positive")
	}
	if p.MaxHealth < 0 || p.CurHealth < 0 {
		return errors.Errorf("unit %d: negative health", p.UnitID)
	}
	return nil
}

func (p MapDTO) Validate() error {
	if p.Width <= 0 || p.Height <= 0 {
		return errors.Errorf("map %q: bad size %dx%d", p.Name, p.Width, p.Height)
	}
	if len(p.Terrain) > p.Height {
		return errors.Errorf("map %q: %d terrain rows for height %d", p.Name, len(p.Terrain), p.Height)
	}
	for y, row := range p.Terrain {
		if len(row) > p.Width {
			return errors.Errorf("map %q: row %d is wider than %d", p.Name, y, p.Width)
		}
	}
	return nil
}

func (p GameStateDTO) Validate() error {
	if p.Map != nil {
		if err := p.Map.Validate(); err != nil {
			return err
		}
	}
	seen := make(map[int]struct{}, len(p.Units))
	for _, u := range p.Units {
		if err := u.Validate(); err != nil {
			return err
		}
		if _, dup := seen[u.UnitID]; dup {
			return errors.Errorf("duplicate unit %d", u.UnitID)
		}
		seen[u.UnitID] = struct{}{}
	}
	return nil
}

func (p PlayerDTO) Validate() error {
	if p.PlayerID <= 0 {
		return errors.New("playerId must be positive")
	}
	return nil
}

func (p SubmitActionsPayload) Validate() error {
	seen := make(map[int]struct{}, len(p.Actions))
	for _, a := range p.Actions {
		if a.UnitID <= 0 || a.ActionID == "" {
			return errors.New("unitId and actionId are required")
		}
		if !a.Confirmed {
			return errors.Errorf("unit %d: only confirmed actions can be submitted", a.UnitID)
		}
		if _, dup := seen[a.UnitID]; dup {
			return errors.Errorf("unit %d submitted twice", a.UnitID)
		}
		seen[a.UnitID] = struct{}{}
	}
	return nil
}

func (c ClientCommand) Validate() error {
	switch c.Action {
	case CmdJoinGame, CmdRequestGameState, CmdRequestPlayerID, CmdSubmitActions:
	default:
		return errors.Errorf("unknown command %q", c.Action)
	}
	if c.GameToken == "" || c.PlayerToken == "" {
		return errors.New("game and player tokens are required")
	}
	return nil
}
