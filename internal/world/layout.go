// Package world loads scene layouts and generates the city around them.
package world

import (
	"embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/kidandcat/heartquest/internal/interaction"
)

//go:embed layouts/*.yaml
var layoutFS embed.FS

// Point is a YAML-friendly [x, y, z] triple.
type Point [3]float64

func (p Point) Vec() interaction.Vec3 { return interaction.Vec3{X: p[0], Y: p[1], Z: p[2]} }

type Shop struct {
	Label    string `yaml:"label"`
	Position Point  `yaml:"position"`
	Size     Point  `yaml:"size"`
	Color    string `yaml:"color"`
}

// Box is the shop footprint, standing on the ground.
func (s Shop) Box() interaction.Box {
	c := s.Position.Vec()
	c.Y += s.Size[1] / 2
	return interaction.Box{Center: c, Size: s.Size.Vec()}
}

type City struct {
	Name   string `yaml:"name"`
	Player struct {
		Start    Point   `yaml:"start"`
		Yaw      float64 `yaml:"yaw"`
		Speed    float64 `yaml:"speed"`
		Radius   float64 `yaml:"radius"`
		AimRange float64 `yaml:"aim_range"`
		FOV      float64 `yaml:"fov"`
	} `yaml:"player"`
	Bounds struct {
		Min Point `yaml:"min"`
		Max Point `yaml:"max"`
	} `yaml:"bounds"`
	Palace struct {
		Position  Point   `yaml:"position"`
		Size      Point   `yaml:"size"`
		Clearance float64 `yaml:"clearance"`
	} `yaml:"palace"`
	Avenue struct {
		HalfWidth float64 `yaml:"half_width"`
		ZMin      float64 `yaml:"z_min"`
		ZMax      float64 `yaml:"z_max"`
	} `yaml:"avenue"`
	ShopClearance    float64 `yaml:"shop_clearance"`
	RoadClearance    float64 `yaml:"road_clearance"`
	BuildingAttempts int     `yaml:"building_attempts"`
	Shops            []Shop  `yaml:"shops"`
}

// MoverConfig derives the first-person body settings.
func (c *City) MoverConfig() interaction.MoverConfig {
	return interaction.MoverConfig{
		Speed:        c.Player.Speed,
		PlayerRadius: c.Player.Radius,
		Bounds:       interaction.Bounds{Min: c.Bounds.Min.Vec(), Max: c.Bounds.Max.Vec()},
	}
}

// PalaceBox is the palace footprint standing on the ground.
func (c *City) PalaceBox() interaction.Box {
	p := c.Palace.Position.Vec()
	p.Y += c.Palace.Size[1] / 2
	return interaction.Box{Center: p, Size: c.Palace.Size.Vec()}
}

// Slot returns the shop hosting memory i. Memories beyond the authored
// slots wrap around.
func (c *City) Slot(i int) Shop {
	return c.Shops[i%len(c.Shops)]
}

type Odyssey struct {
	Name   string `yaml:"name"`
	Camera struct {
		Start          Point   `yaml:"start"`
		Focus          Point   `yaml:"focus"`
		Reach          float64 `yaml:"reach"`
		Damping        float64 `yaml:"damping"`
		FOV            float64 `yaml:"fov"`
		RevealPosition Point   `yaml:"reveal_position"`
	} `yaml:"camera"`
	Crystal struct {
		SpawnRadius float64 `yaml:"spawn_radius"`
		Radius      float64 `yaml:"radius"`
	} `yaml:"crystal"`
	Stars struct {
		Count  int     `yaml:"count"`
		Radius float64 `yaml:"radius"`
	} `yaml:"stars"`
	GuideOffset  Point `yaml:"guide_offset"`
	RingPosition Point `yaml:"ring_position"`
}

func load(name string, v any) error {
	data, err := layoutFS.ReadFile("layouts/" + name)
	if err != nil {
		return fmt.Errorf("read layout %s: %w", name, err)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse layout %s: %w", name, err)
	}
	return nil
}

func LoadCity() (*City, error) {
	var c City
	if err := load("city.yaml", &c); err != nil {
		return nil, err
	}
	if len(c.Shops) == 0 {
		return nil, fmt.Errorf("city layout %q has no shops", c.Name)
	}
	return &c, nil
}

func LoadOdyssey() (*Odyssey, error) {
	var o Odyssey
	if err := load("odyssey.yaml", &o); err != nil {
		return nil, err
	}
	return &o, nil
}
