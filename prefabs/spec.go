package prefabs

import (
	"fmt"
	"image/color"

	"github.com/milk9111/brushtoy/common"
	"gopkg.in/yaml.v3"
)

const (
	BrushFile     = "brush.yaml"
	ParticlesFile = "particles.yaml"
	WorldFile     = "world.yaml"
)

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// BrushSpec holds the defaults applied to locally spawned brushes.
type BrushSpec struct {
	Shape           string          `yaml:"shape"`
	Fill            YAMLColor       `yaml:"fill"`
	Stroke          YAMLColor       `yaml:"stroke"`
	Mass            float64         `yaml:"mass"`
	AngularVelocity float64         `yaml:"angular_velocity"`
	GraceDelay      float64         `yaml:"grace_delay"`
	Deformation     DeformationSpec `yaml:"deformation"`
}

type DeformationSpec struct {
	K   float64 `yaml:"k"`
	Max float64 `yaml:"max"`
}

func LoadBrushSpec() (*BrushSpec, error) {
	spec, err := LoadSpec[BrushSpec](BrushFile)
	if err != nil {
		return nil, err
	}
	return &spec, nil
}

// ParticlesSpec tunes contact particles.
type ParticlesSpec struct {
	MaxParticles int       `yaml:"max_particles"`
	Speed        float64   `yaml:"speed"`
	Radius       float64   `yaml:"radius"`
	Mass         float64   `yaml:"mass"`
	Spread       string    `yaml:"spread"`
	Lifetime     int       `yaml:"lifetime"`
	Color        YAMLColor `yaml:"color"`
	DrawRadius   float32   `yaml:"draw_radius"`
}

func LoadParticlesSpec() (*ParticlesSpec, error) {
	spec, err := LoadSpec[ParticlesSpec](ParticlesFile)
	if err != nil {
		return nil, err
	}
	if _, err := spec.SpreadMode(); err != nil {
		return nil, fmt.Errorf("prefabs: %s: %w", ParticlesFile, err)
	}
	return &spec, nil
}

// WorldSpec describes the board and the simulation loop.
type WorldSpec struct {
	Width       int       `yaml:"width"`
	Height      int       `yaml:"height"`
	TPS         int       `yaml:"tps"`
	Gravity     VecSpec   `yaml:"gravity"`
	Iterations  int       `yaml:"iterations"`
	Damping     float64   `yaml:"damping"`
	Background  YAMLColor `yaml:"background"`
	PlaneColor  YAMLColor `yaml:"plane_color"`
	StrokeWidth float32   `yaml:"stroke_width"`
	BlurRadius  float64   `yaml:"blur_radius"`
	MoveEvery   int       `yaml:"move_every"`
}

type VecSpec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

func LoadWorldSpec() (*WorldSpec, error) {
	spec, err := LoadSpec[WorldSpec](WorldFile)
	if err != nil {
		return nil, err
	}
	return &spec, nil
}

// YAMLColor accepts #rgb, #rrggbb, #rrggbbaa or a CSS color name.
type YAMLColor struct {
	color.NRGBA
	Set bool
}

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}
	parsed, err := common.ParseColor(value.Value)
	if err != nil {
		return err
	}
	c.NRGBA = parsed
	c.Set = true
	return nil
}

// Or returns the parsed color, or def when the field was absent.
func (c YAMLColor) Or(def color.NRGBA) color.NRGBA {
	if !c.Set {
		return def
	}
	return c.NRGBA
}
