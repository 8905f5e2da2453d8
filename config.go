package gekko

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/colornames"
	"gopkg.in/yaml.v3"

	"github.com/gekko3d/pointcloud/pointcloud/render"
	"github.com/gekko3d/pointcloud/pointcloud/sensor"
)

var ErrInvalidConfig = errors.New("invalid config")

// ViewerConfig is the YAML description of a point-cloud scene.
type ViewerConfig struct {
	Window     WindowConfig     `yaml:"window"`
	Debug      bool             `yaml:"debug"`
	PointCloud PointCloudConfig `yaml:"point_cloud"`
	Sensors    []SensorConfig   `yaml:"sensors"`
	Targets    []TargetConfig   `yaml:"targets"`
	Camera     CameraConfig     `yaml:"camera"`
}

type WindowConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
}

type PointCloudConfig struct {
	PointSize  float32    `yaml:"point_size"`
	PointColor ColorValue `yaml:"point_color"`
	ClearColor ColorValue `yaml:"clear_color"`
}

type SensorConfig struct {
	Name      string     `yaml:"name"`
	Position  mgl32.Vec3 `yaml:"position"`
	Direction mgl32.Vec3 `yaml:"direction"`
	Depth     float32    `yaml:"depth"`
	Height    float32    `yaml:"height"`
	Radius    float32    `yaml:"radius"`
	PointGap  float32    `yaml:"point_gap"`
}

func (c SensorConfig) Sensor() sensor.Sensor {
	dir := c.Direction
	if dir.Len() > 0 {
		dir = dir.Normalize()
	}
	return sensor.Sensor{
		Position:  c.Position,
		Direction: dir,
		Depth:     c.Depth,
		Height:    c.Height,
		Radius:    c.Radius,
		PointGap:  c.PointGap,
	}
}

type TargetShape string

const (
	ShapeBox   TargetShape = "box"
	ShapePlane TargetShape = "plane"
)

type TargetConfig struct {
	Name      string      `yaml:"name"`
	Shape     TargetShape `yaml:"shape"`
	Center    mgl32.Vec3  `yaml:"center"`
	Size      mgl32.Vec3  `yaml:"size"`
	RotationY float32     `yaml:"rotation_y"` // degrees
	Enabled   *bool       `yaml:"enabled"`
	Lifetime  float32     `yaml:"lifetime"` // seconds, 0 keeps the target forever
}

// IsEnabled treats a missing flag as enabled.
func (c TargetConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

type CameraConfig struct {
	Position mgl32.Vec3 `yaml:"position"`
	LookAt   mgl32.Vec3 `yaml:"look_at"`
	Fov      float32    `yaml:"fov"`
	Speed    float32    `yaml:"speed"`
}

// ColorValue accepts a colornames name ("orange") or hex "#rrggbb[aa]".
type ColorValue struct {
	color.RGBA
	set bool
}

func (c ColorValue) IsSet() bool { return c.set }

func (c ColorValue) Render() render.Color { return render.ColorFromRGBA(c.RGBA) }

func (c *ColorValue) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	rgba, err := ParseColor(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	c.RGBA = rgba
	c.set = true
	return nil
}

func (c ColorValue) MarshalYAML() (any, error) {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A), nil
}

func ParseColor(s string) (color.RGBA, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if strings.HasPrefix(s, "#") {
		hex := s[1:]
		if len(hex) != 6 && len(hex) != 8 {
			return color.RGBA{}, fmt.Errorf("color %q: want #rrggbb or #rrggbbaa", s)
		}
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("color %q: %w", s, err)
		}
		if len(hex) == 6 {
			v = v<<8 | 0xff
		}
		return color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
	}
	if named, ok := colornames.Map[s]; ok {
		return named, nil
	}
	return color.RGBA{}, fmt.Errorf("unknown color name %q", s)
}

func defaultConfig() ViewerConfig {
	return ViewerConfig{
		Window: WindowConfig{Width: 1280, Height: 720, Title: "Point Cloud"},
		PointCloud: PointCloudConfig{
			PointSize:  0.05,
			PointColor: ColorValue{RGBA: colornames.Orange, set: true},
			ClearColor: ColorValue{RGBA: colornames.Black, set: true},
		},
		Camera: CameraConfig{
			Position: mgl32.Vec3{0, 5, 15},
			Fov:      60,
			Speed:    5,
		},
	}
}

// ParseConfig decodes YAML over the defaults and validates the result.
func ParseConfig(data []byte) (ViewerConfig, error) {
	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return ViewerConfig{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return ViewerConfig{}, err
	}
	return cfg, nil
}

func LoadConfig(path string) (ViewerConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ViewerConfig{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return ViewerConfig{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c ViewerConfig) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("%w: window size %dx%d", ErrInvalidConfig, c.Window.Width, c.Window.Height)
	}
	if c.PointCloud.PointSize <= 0 {
		return fmt.Errorf("%w: point_size %v must be positive", ErrInvalidConfig, c.PointCloud.PointSize)
	}
	for i, s := range c.Sensors {
		if err := s.Sensor().Validate(); err != nil {
			return fmt.Errorf("%w: sensors[%d]: %w", ErrInvalidConfig, i, err)
		}
	}
	for i, t := range c.Targets {
		switch t.Shape {
		case ShapeBox, ShapePlane:
		default:
			return fmt.Errorf("%w: targets[%d]: unknown shape %q", ErrInvalidConfig, i, t.Shape)
		}
		if t.Size.X() <= 0 || t.Size.Z() <= 0 || (t.Shape == ShapeBox && t.Size.Y() <= 0) {
			return fmt.Errorf("%w: targets[%d]: size %v", ErrInvalidConfig, i, t.Size)
		}
		if t.Lifetime < 0 {
			return fmt.Errorf("%w: targets[%d]: negative lifetime", ErrInvalidConfig, i)
		}
	}
	return nil
}

// Controller builds the point-cloud controller resource from the config.
func (c ViewerConfig) Controller() *PointCloudController {
	return &PointCloudController{
		PointSize:  c.PointCloud.PointSize,
		PointColor: c.PointCloud.PointColor.Render(),
	}
}

// SpawnScene adds the configured camera, sensors and targets as entities.
func (c ViewerConfig) SpawnScene(cmd *Commands, assets *AssetServer) {
	cam := NewCamera(c.Camera.Position, c.Camera.LookAt)
	if c.Camera.Fov > 0 {
		cam.Fov = c.Camera.Fov
	}
	cmd.AddEntity(cam, FlyingCameraComponent{Speed: c.Camera.Speed})

	for _, s := range c.Sensors {
		cmd.AddEntity(
			SensorComponent{Name: s.Name, Sensor: s.Sensor(), Enabled: true},
			NewTransform(s.Position),
		)
	}

	for _, t := range c.Targets {
		var mesh AssetId
		switch t.Shape {
		case ShapeBox:
			mesh = assets.CreateBoxMesh(mgl32.Vec3{1, 1, 1})
		case ShapePlane:
			mesh = assets.CreatePlaneMesh(1, 1)
		}
		tr := NewTransform(t.Center)
		tr.Rotation = mgl32.QuatRotate(mgl32.DegToRad(t.RotationY), mgl32.Vec3{0, 1, 0})
		tr.Scale = t.Size
		if t.Shape == ShapePlane {
			tr.Scale[1] = 1
		}
		components := []any{
			RaycastTargetComponent{Name: t.Name, Mesh: mesh, Enabled: t.IsEnabled()},
			tr,
		}
		if t.Lifetime > 0 {
			components = append(components, LifetimeComponent{TimeLeft: t.Lifetime})
		}
		cmd.AddEntity(components...)
	}
}

// SceneModule loads a ViewerConfig into the app: the point-cloud controller
// resource plus camera, sensor and target entities. Install it before the
// point-cloud module so the controller is shared.
type SceneModule struct {
	Config ViewerConfig
}

func (m SceneModule) Install(app *App, cmd *Commands) {
	AssetServerModule{}.Install(app, cmd)
	assets, _ := Resource[AssetServer](app)

	cmd.AddResources(m.Config.Controller())
	m.Config.SpawnScene(cmd, assets)
	app.Logger().Infof("scene: %d sensors, %d targets", len(m.Config.Sensors), len(m.Config.Targets))
}
