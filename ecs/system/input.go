package system

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/brushtoy/ecs"
	"github.com/milk9111/brushtoy/ecs/component"
	"github.com/milk9111/brushtoy/shape"
)

const (
	stickDeadzone = 0.2
	stickSpeed    = 8.0
)

// InputSystem samples keyboard, mouse and the first gamepad into every Input
// component. A gamepad steers a virtual cursor with its left stick.
type InputSystem struct {
	padX, padY float64
	padActive  bool
}

func NewInputSystem() *InputSystem {
	return &InputSystem{}
}

func (i *InputSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	mx, my := ebiten.CursorPosition()
	in := component.Input{
		CursorX:     float64(mx),
		CursorY:     float64(my),
		Press:       inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft),
		Held:        ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft),
		Release:     inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft),
		CycleFill:   inpututil.IsKeyJustPressed(ebiten.KeyF),
		CycleStroke: inpututil.IsKeyJustPressed(ebiten.KeyS),
		FillImage:   inpututil.IsKeyJustPressed(ebiten.KeyI),
		Delete:      inpututil.IsKeyJustPressed(ebiten.KeyDelete) || inpututil.IsKeyJustPressed(ebiten.KeyBackspace),
		Export:      inpututil.IsKeyJustPressed(ebiten.KeyP),
		ToggleDebug: inpututil.IsKeyJustPressed(ebiten.KeyF1),
	}
	switch {
	case inpututil.IsKeyJustPressed(ebiten.Key1):
		in.Shape = shape.KindCircle
	case inpututil.IsKeyJustPressed(ebiten.Key2):
		in.Shape = shape.KindBox
	case inpututil.IsKeyJustPressed(ebiten.Key3):
		in.Shape = shape.KindSquare
	}

	if gamepads := ebiten.GamepadIDs(); len(gamepads) > 0 {
		id := gamepads[0]
		lx := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickHorizontal)
		ly := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickVertical)
		if math.Hypot(lx, ly) > stickDeadzone {
			if !i.padActive {
				i.padX, i.padY = in.CursorX, in.CursorY
				i.padActive = true
			}
			i.padX += lx * stickSpeed
			i.padY += ly * stickSpeed
		}
		if i.padActive {
			in.CursorX, in.CursorY = i.padX, i.padY
		}

		in.Press = in.Press || inpututil.IsStandardGamepadButtonJustPressed(id, ebiten.StandardGamepadButtonRightBottom)
		in.Held = in.Held || ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonRightBottom)
		in.Release = in.Release || inpututil.IsStandardGamepadButtonJustReleased(id, ebiten.StandardGamepadButtonRightBottom)
		in.CycleFill = in.CycleFill || inpututil.IsStandardGamepadButtonJustPressed(id, ebiten.StandardGamepadButtonRightLeft)
		in.CycleStroke = in.CycleStroke || inpututil.IsStandardGamepadButtonJustPressed(id, ebiten.StandardGamepadButtonRightTop)
		in.Delete = in.Delete || inpututil.IsStandardGamepadButtonJustPressed(id, ebiten.StandardGamepadButtonRightRight)
		if inpututil.IsStandardGamepadButtonJustPressed(id, ebiten.StandardGamepadButtonFrontBottomLeft) {
			in.Shape = nextKind(w)
		}
	}

	for _, e := range w.Query(component.InputComponent) {
		_ = ecs.Add(w, e, component.InputComponent, in)
	}
}

// nextKind cycles through the shape kinds for controllers without number keys.
func nextKind(w *ecs.World) shape.Kind {
	kinds := shape.Kinds()
	cur := shape.Kind(0)
	if b, ok := selectedBrush(w); ok {
		cur = b.Kind()
	}
	for idx, k := range kinds {
		if k == cur {
			return kinds[(idx+1)%len(kinds)]
		}
	}
	return kinds[0]
}
