package combat

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kasuganosora/rpgcore/server/resource"
)

// Visual is a weapon model attached to a hand.
type Visual struct {
	ID     string `json:"id"`
	Prefab string `json:"prefab"`
	Hand   string `json:"hand"`
}

// Hands holds the visuals attached to an actor's two hand slots.
type Hands struct {
	right  *Visual
	left   *Visual
	logger *zap.Logger
}

// NewHands returns empty hands.
func NewHands(logger *zap.Logger) *Hands {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hands{logger: logger}
}

// Attach puts a new visual of prefab into hand and returns it.
func (h *Hands) Attach(hand, prefab string) *Visual {
	v := &Visual{ID: uuid.NewString(), Prefab: prefab, Hand: hand}
	if hand == resource.HandLeft {
		h.left = v
	} else {
		h.right = v
	}
	return v
}

// Clear destroys every attached visual.
func (h *Hands) Clear() {
	for _, v := range h.Visuals() {
		h.logger.Debug("weapon visual destroyed", zap.String("visual_id", v.ID), zap.String("prefab", v.Prefab))
	}
	h.right, h.left = nil, nil
}

// Visuals lists attached visuals, right hand first.
func (h *Hands) Visuals() []*Visual {
	var out []*Visual
	if h.right != nil {
		out = append(out, h.right)
	}
	if h.left != nil {
		out = append(out, h.left)
	}
	return out
}
