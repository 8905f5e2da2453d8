// Package sensor casts fan-shaped ray grids against a triangle scene and
// returns the hit points that feed the point-cloud renderer.
package sensor

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

var ErrInvalidSensor = errors.New("invalid sensor")

// Sensor describes a fan of rays. Rows are spread over Height (world units,
// along +Y) and columns over Radius (degrees, around +Y); both are sampled
// every PointGap.
type Sensor struct {
	Position  mgl32.Vec3
	Direction mgl32.Vec3
	Depth     float32
	Height    float32
	Radius    float32
	PointGap  float32
}

func (s Sensor) Validate() error {
	switch {
	case s.PointGap <= 0:
		return fmt.Errorf("%w: point gap %v must be positive", ErrInvalidSensor, s.PointGap)
	case s.Depth <= 0:
		return fmt.Errorf("%w: depth %v must be positive", ErrInvalidSensor, s.Depth)
	case s.Height < 0 || s.Radius < 0:
		return fmt.Errorf("%w: negative extent (height %v, radius %v)", ErrInvalidSensor, s.Height, s.Radius)
	case s.Direction.Len() == 0:
		return fmt.Errorf("%w: zero direction", ErrInvalidSensor)
	}
	return nil
}

// Rows and Columns are the grid dimensions GenerateRays produces.
func (s Sensor) Rows() int {
	return steps(s.Height, s.PointGap, func(i int) bool {
		return s.rowAt(i) > -s.Height/2
	})
}

func (s Sensor) Columns() int {
	return steps(s.Radius, s.PointGap, func(i int) bool {
		return s.columnAt(i) < s.Radius/2
	})
}

// rowAt is the height offset of row i, walking down from +Height/2.
func (s Sensor) rowAt(i int) float32 { return s.Height/2 - float32(i)*s.PointGap }

// columnAt is the angle in degrees of column i, walking up from -Radius/2.
func (s Sensor) columnAt(i int) float32 { return -s.Radius/2 + float32(i)*s.PointGap }

// steps counts the indices i >= 0 for which inside(i) holds. The quotient
// extent/gap is only a first guess: float32 rounding can put it one step off
// the strict bound, so it is corrected against inside itself.
func steps(extent, gap float32, inside func(i int) bool) int {
	if extent <= 0 || gap <= 0 {
		return 0
	}
	n := int(math.Ceil(float64(extent / gap)))
	for n > 0 && !inside(n-1) {
		n--
	}
	for inside(n) {
		n++
	}
	return n
}

type Ray struct {
	Origin    mgl32.Vec3
	Direction mgl32.Vec3
	TMin      float32
	TMax      float32
}

func (r Ray) At(t float32) mgl32.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// GenerateRays expands each sensor into its ray grid, sensor by sensor, rows
// top to bottom and columns from -Radius/2 upwards. A column's angle turns the
// target clockwise about +Y seen from above, so the first column of a sensor
// looking down +Z points towards +X.
func GenerateRays(sensors ...Sensor) ([]Ray, error) {
	total := 0
	for i, s := range sensors {
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("sensor %d: %w", i, err)
		}
		total += s.Rows() * s.Columns()
	}

	rays := make([]Ray, 0, total)
	for _, s := range sensors {
		forward := s.Direction.Mul(s.Depth)
		rows, cols := s.Rows(), s.Columns()
		for r := 0; r < rows; r++ {
			target := forward.Add(mgl32.Vec3{0, s.rowAt(r), 0})
			for c := 0; c < cols; c++ {
				// row-vector rotation, the transpose of Rotate3DY
				rot := mgl32.Rotate3DY(mgl32.DegToRad(s.columnAt(c))).Transpose()
				rays = append(rays, Ray{
					Origin:    s.Position,
					Direction: rot.Mul3x1(target).Normalize(),
					TMin:      0,
					TMax:      s.Depth,
				})
			}
		}
	}
	return rays, nil
}
