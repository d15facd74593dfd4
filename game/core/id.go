package core

import "github.com/google/uuid"

// ActorID identifies an actor for its whole lifetime. Cross-actor references
// store the ID and resolve it through the world so that a destroyed actor is
// observed as missing instead of dangling.
type ActorID string

// NewActorID returns a random ID.
func NewActorID() ActorID {
	return ActorID(uuid.NewString())
}

func (id ActorID) String() string { return string(id) }
