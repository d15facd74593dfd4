package saving

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/kasuganosora/rpgcore/server/cache"
	"github.com/kasuganosora/rpgcore/server/game/core"
)

// savedAtField marks a slot as present even when it holds no actors.
const savedAtField = "_saved_at"

// CacheStore keeps each slot in the hash "save:<slot>", one field per actor.
type CacheStore struct {
	c cache.Cache
}

func NewCacheStore(c cache.Cache) *CacheStore { return &CacheStore{c: c} }

func slotKey(slot string) string { return "save:" + slot }

func (s *CacheStore) Load(ctx context.Context, slot string) (State, error) {
	fields, err := s.c.HGetAll(ctx, slotKey(slot))
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, ErrSlotNotFound
	}
	state := State{}
	for field, raw := range fields {
		if field == savedAtField {
			continue
		}
		var components map[string]json.RawMessage
		if err := json.Unmarshal([]byte(raw), &components); err != nil {
			return nil, err
		}
		state[core.ActorID(field)] = components
	}
	return state, nil
}

// Save replaces the slot.
func (s *CacheStore) Save(ctx context.Context, slot string, state State) error {
	key := slotKey(slot)
	if err := s.c.Del(ctx, key); err != nil {
		return err
	}
	for id, components := range state {
		data, err := json.Marshal(components)
		if err != nil {
			return err
		}
		if err := s.c.HSet(ctx, key, string(id), string(data)); err != nil {
			return err
		}
	}
	return s.c.HSet(ctx, key, savedAtField, strconv.FormatInt(time.Now().Unix(), 10))
}

func (s *CacheStore) Delete(ctx context.Context, slot string) error {
	key := slotKey(slot)
	ok, err := s.c.Exists(ctx, key)
	if err != nil {
		return err
	}
	if !ok {
		return ErrSlotNotFound
	}
	return s.c.Del(ctx, key)
}
