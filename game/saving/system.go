package saving

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/kasuganosora/rpgcore/server/game/core"
)

// ErrSlotNotFound is returned when a slot has never been saved or was
// deleted.
var ErrSlotNotFound = errors.New("saving: slot not found")

// State is the content of a slot: per actor, per component, the captured
// component state.
type State map[core.ActorID]map[string]json.RawMessage

// Store persists slots.
type Store interface {
	Load(ctx context.Context, slot string) (State, error)
	Save(ctx context.Context, slot string, state State) error
	Delete(ctx context.Context, slot string) error
}

// Target is a set of saveable actors that can be frozen while they are
// captured or restored.
type Target interface {
	Exec(fn func() error) error
	Saveables() map[core.ActorID]map[string]core.Saveable
}

// Components are restored in this order; experience first so that the
// level, and with it max health, is right before health is set.
var restoreOrder = map[string]int{"experience": 0, "fighter": 1, "health": 2, "mover": 3}

// System saves and restores a Target through a Store.
type System struct {
	store  Store
	logger *zap.Logger
}

func NewSystem(store Store, logger *zap.Logger) *System {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &System{store: store, logger: logger}
}

// Save captures every actor of t into slot. Actors already in the slot but
// absent from t are kept. It returns the number of actors captured.
func (s *System) Save(ctx context.Context, slot string, t Target) (int, error) {
	state, err := s.store.Load(ctx, slot)
	if errors.Is(err, ErrSlotNotFound) {
		state = State{}
	} else if err != nil {
		return 0, fmt.Errorf("saving: read %q: %w", slot, err)
	}

	captured := 0
	err = t.Exec(func() error {
		for id, components := range t.Saveables() {
			entry := make(map[string]json.RawMessage, len(components))
			for name, c := range components {
				raw, err := c.CaptureState()
				if err != nil {
					return fmt.Errorf("saving: capture %s/%s: %w", id, name, err)
				}
				entry[name] = raw
			}
			state[id] = entry
			captured++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if err := s.store.Save(ctx, slot, state); err != nil {
		return 0, fmt.Errorf("saving: write %q: %w", slot, err)
	}
	s.logger.Info("game saved", zap.String("slot", slot), zap.Int("actors", captured))
	return captured, nil
}

// Load restores every actor of t that has an entry in slot. It returns the
// number of actors restored. Component failures do not stop the others;
// they are returned joined.
func (s *System) Load(ctx context.Context, slot string, t Target) (int, error) {
	state, err := s.store.Load(ctx, slot)
	if err != nil {
		return 0, fmt.Errorf("saving: read %q: %w", slot, err)
	}

	restored := 0
	var errs []error
	_ = t.Exec(func() error {
		for id, components := range t.Saveables() {
			saved, ok := state[id]
			if !ok {
				continue
			}
			for _, name := range ordered(components) {
				raw, ok := saved[name]
				if !ok {
					continue
				}
				if err := components[name].RestoreState(raw); err != nil {
					errs = append(errs, fmt.Errorf("saving: restore %s/%s: %w", id, name, err))
				}
			}
			restored++
		}
		return nil
	})
	s.logger.Info("game loaded", zap.String("slot", slot), zap.Int("actors", restored), zap.Int("errors", len(errs)))
	return restored, errors.Join(errs...)
}

// Delete removes slot.
func (s *System) Delete(ctx context.Context, slot string) error {
	if err := s.store.Delete(ctx, slot); err != nil {
		return fmt.Errorf("saving: delete %q: %w", slot, err)
	}
	s.logger.Info("save deleted", zap.String("slot", slot))
	return nil
}

func ordered(components map[string]core.Saveable) []string {
	names := make([]string, 0, len(components))
	for name := range components {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		ri, iok := restoreOrder[names[i]]
		rj, jok := restoreOrder[names[j]]
		switch {
		case iok && jok:
			return ri < rj
		case iok != jok:
			return iok
		}
		return names[i] < names[j]
	})
	return names
}
