package core

import "encoding/json"

// Saveable is implemented by every component that contributes to a save
// snapshot. The state format is owned by the component.
type Saveable interface {
	CaptureState() (json.RawMessage, error)
	RestoreState(state json.RawMessage) error
}
