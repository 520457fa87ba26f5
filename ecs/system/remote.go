package system

import (
	"fmt"

	"github.com/milk9111/brushtoy/common"
	"github.com/milk9111/brushtoy/ecs"
	"github.com/milk9111/brushtoy/ecs/entity"
	"github.com/milk9111/brushtoy/physics"
	"github.com/milk9111/brushtoy/replication"
	"github.com/milk9111/brushtoy/shape"
	"go.uber.org/zap"
)

const maxRemotePerTick = 256

// RemoteSystem applies messages relayed from other sites. Remote brushes are
// not owned, so applying a mutation never emits an event back out. Messages
// aimed at a locally owned brush are ignored.
type RemoteSystem struct {
	inbound <-chan replication.Message
	log     *zap.Logger
}

func NewRemoteSystem(inbound <-chan replication.Message, log *zap.Logger) *RemoteSystem {
	if log == nil {
		log = zap.NewNop()
	}
	return &RemoteSystem{inbound: inbound, log: log}
}

func (s *RemoteSystem) Update(w *ecs.World) {
	if s == nil || w == nil || s.inbound == nil {
		return
	}
	for i := 0; i < maxRemotePerTick; i++ {
		select {
		case msg, ok := <-s.inbound:
			if !ok {
				s.inbound = nil
				return
			}
			if err := ApplyRemote(w, msg); err != nil {
				s.log.Debug("apply remote message",
					zap.String("type", string(msg.Type)),
					zap.String("brush", msg.BrushID),
					zap.Error(err))
			}
		default:
			return
		}
	}
}

// ApplyRemote applies one relayed message to the world.
func ApplyRemote(w *ecs.World, msg replication.Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	if msg.Type == replication.TypeSpawn {
		return spawnRemote(w, msg)
	}
	b, ok := entity.FindBrush(w, msg.BrushID)
	if !ok {
		return fmt.Errorf("unknown brush %s", msg.BrushID)
	}
	if b.Owned() {
		return fmt.Errorf("brush %s is owned locally", msg.BrushID)
	}

	switch msg.Type {
	case replication.TypeRemove:
		b.Remove()
		return nil
	case replication.TypeFill:
		c, err := common.ParseColor(msg.Value)
		if err != nil {
			return err
		}
		return b.SetFill(c)
	case replication.TypeStroke:
		c, err := common.ParseColor(msg.Value)
		if err != nil {
			return err
		}
		return b.SetStroke(c)
	case replication.TypeFillImage:
		return b.SetFillImage(msg.Value)
	case replication.TypeShape:
		kind, err := shape.ParseKind(msg.Value)
		if err != nil {
			return err
		}
		return b.SetShape(kind)
	case replication.TypeMove:
		m := msg.Motion
		return b.SetMotion(physics.Vec{X: m.X, Y: m.Y}, m.Angle, physics.Vec{X: m.VX, Y: m.VY}, m.Angular)
	}
	return fmt.Errorf("unhandled message type %s", msg.Type)
}

func spawnRemote(w *ecs.World, msg replication.Message) error {
	if _, exists := entity.FindBrush(w, msg.BrushID); exists {
		return nil
	}
	st := msg.Spawn
	opts := entity.DefaultBrushOptions()
	opts.ID = msg.BrushID
	opts.X, opts.Y, opts.Angle = st.X, st.Y, st.Angle
	opts.AngularVelocity = st.Angular
	opts.FillImage = st.FillImage

	if st.Shape != "" {
		kind, err := shape.ParseKind(st.Shape)
		if err != nil {
			return err
		}
		opts.Shape = kind
	}
	if st.Fill != "" {
		c, err := common.ParseColor(st.Fill)
		if err != nil {
			return err
		}
		opts.Fill = c
	}
	if st.Stroke != "" {
		c, err := common.ParseColor(st.Stroke)
		if err != nil {
			return err
		}
		opts.Stroke = c
	}
	_, err := entity.SpawnBrush(w, opts)
	return err
}
