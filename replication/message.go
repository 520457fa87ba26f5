// Package replication carries brush events between peers over websockets.
// Clients talk to a relay Hub; the hub forwards every message to the other
// peers and keeps a folded snapshot of each brush for late joiners.
package replication

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrInvalidMessage = errors.New("replication: invalid message")
	ErrClosed         = errors.New("replication: connection closed")
	ErrBackpressure   = errors.New("replication: send buffer full")
)

type MessageType string

const (
	TypeHello     MessageType = "hello"
	TypeSpawn     MessageType = "brush-spawned"
	TypeRemove    MessageType = "brush-removed"
	TypeFill      MessageType = "fill-changed"
	TypeStroke    MessageType = "stroke-changed"
	TypeFillImage MessageType = "fill-image-changed"
	TypeShape     MessageType = "shape-changed"
	TypeMove      MessageType = "brush-moved"
)

func (t MessageType) valid() bool {
	switch t {
	case TypeHello, TypeSpawn, TypeRemove, TypeFill, TypeStroke, TypeFillImage, TypeShape, TypeMove:
		return true
	}
	return false
}

// SpawnState is the full description of a brush sent when it appears.
type SpawnState struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Angle     float64 `json:"angle"`
	Angular   float64 `json:"angular,omitempty"`
	Shape     string  `json:"shape"`
	Fill      string  `json:"fill"`
	Stroke    string  `json:"stroke"`
	FillImage string  `json:"fill_image,omitempty"`
}

// MotionState is a body snapshot of an owned brush.
type MotionState struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Angle   float64 `json:"angle"`
	VX      float64 `json:"vx"`
	VY      float64 `json:"vy"`
	Angular float64 `json:"angular"`
}

// Message is one replicated update. Mutation messages carry only the
// changed value.
type Message struct {
	Type    MessageType  `json:"type"`
	Site    string       `json:"site,omitempty"`
	Seq     uint64       `json:"seq,omitempty"`
	BrushID string       `json:"brush,omitempty"`
	Value   string       `json:"value,omitempty"`
	Spawn   *SpawnState  `json:"spawn,omitempty"`
	Motion  *MotionState `json:"motion,omitempty"`
}

func (m Message) Validate() error {
	if !m.Type.valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidMessage, m.Type)
	}
	if m.Type == TypeHello {
		return nil
	}
	if m.BrushID == "" {
		return fmt.Errorf("%w: %s without brush id", ErrInvalidMessage, m.Type)
	}
	switch m.Type {
	case TypeSpawn:
		if m.Spawn == nil {
			return fmt.Errorf("%w: spawn without state", ErrInvalidMessage)
		}
	case TypeMove:
		if m.Motion == nil {
			return fmt.Errorf("%w: move without motion", ErrInvalidMessage)
		}
	case TypeFill, TypeStroke, TypeFillImage, TypeShape:
		if m.Value == "" {
			return fmt.Errorf("%w: %s without value", ErrInvalidMessage, m.Type)
		}
	}
	return nil
}

func Encode(m Message) ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(m)
}

func Decode(data []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if err := m.Validate(); err != nil {
		return Message{}, err
	}
	return m, nil
}
