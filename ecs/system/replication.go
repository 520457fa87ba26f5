package system

import (
	"errors"

	"github.com/milk9111/brushtoy/common"
	"github.com/milk9111/brushtoy/ecs"
	"github.com/milk9111/brushtoy/ecs/component"
	"github.com/milk9111/brushtoy/replication"
	"go.uber.org/zap"
)

// Sender publishes replicated messages without blocking.
type Sender interface {
	Send(msg replication.Message) error
}

// ReplicationSystem drains the world event queue and publishes every
// replicated event. Every MoveEvery ticks it also publishes the motion of
// each owned brush.
type ReplicationSystem struct {
	sender    Sender
	moveEvery uint64
	log       *zap.Logger
}

func NewReplicationSystem(sender Sender, moveEvery int, log *zap.Logger) *ReplicationSystem {
	if log == nil {
		log = zap.NewNop()
	}
	return &ReplicationSystem{sender: sender, moveEvery: uint64(max(moveEvery, 0)), log: log}
}

func (s *ReplicationSystem) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}
	for _, ev := range w.Events().Drain() {
		if !ev.Type.Replicated() {
			continue
		}
		data, ok := ev.Data.(ecs.BrushEvent)
		if !ok {
			continue
		}
		msg := replication.Message{
			Type:    replication.MessageType(ev.Type),
			BrushID: data.BrushID,
			Value:   data.Value,
		}
		if ev.Type == ecs.EventBrushSpawned {
			state, ok := SpawnStateOf(w, data.Entity)
			if !ok {
				// removed in the same tick; the removal follows
				continue
			}
			msg.Spawn = &state
		}
		s.send(msg)
	}

	if s.moveEvery == 0 || w.Clock().Tick()%s.moveEvery != 0 {
		return
	}
	for _, e := range w.Query(component.BrushComponent, component.TransformComponent) {
		br, _ := ecs.Get(w, e, component.BrushComponent)
		if !br.Owned {
			continue
		}
		tr, _ := ecs.Get(w, e, component.TransformComponent)
		m, _ := ecs.Get(w, e, component.MotionComponent)
		s.send(replication.Message{
			Type:    replication.TypeMove,
			BrushID: br.ID,
			Motion: &replication.MotionState{
				X: tr.X, Y: tr.Y, Angle: tr.Rotation,
				VX: m.VX, VY: m.VY, Angular: m.Angular,
			},
		})
	}
}

func (s *ReplicationSystem) send(msg replication.Message) {
	if s.sender == nil {
		return
	}
	if err := s.sender.Send(msg); err != nil {
		if errors.Is(err, replication.ErrBackpressure) {
			s.log.Debug("replication backpressure", zap.String("type", string(msg.Type)))
			return
		}
		s.log.Warn("replicate", zap.String("type", string(msg.Type)), zap.String("brush", msg.BrushID), zap.Error(err))
	}
}

// SpawnStateOf describes a live brush for a spawn message.
func SpawnStateOf(w *ecs.World, e ecs.Entity) (replication.SpawnState, bool) {
	tr, ok := ecs.Get(w, e, component.TransformComponent)
	if !ok {
		return replication.SpawnState{}, false
	}
	mat, _ := ecs.Get(w, e, component.MaterialComponent)
	geom, _ := ecs.Get(w, e, component.GeometryComponent)
	m, _ := ecs.Get(w, e, component.MotionComponent)
	state := replication.SpawnState{
		X:         tr.X,
		Y:         tr.Y,
		Angle:     tr.Rotation,
		Angular:   m.Angular,
		Fill:      common.HexColor(mat.Fill),
		Stroke:    common.HexColor(mat.Stroke),
		FillImage: mat.FillImageRef,
	}
	if req, ok := ecs.Get(w, e, component.FillImageRequestComponent); ok {
		state.FillImage = req.Ref
	}
	if geom.Shape != nil {
		state.Shape = geom.Shape.Kind().String()
	}
	return state, true
}
