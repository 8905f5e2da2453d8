package sensor

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSensor_Validate(t *testing.T) {
	good := Sensor{Direction: mgl32.Vec3{0, 0, 1}, Depth: 10, Height: 2, Radius: 90, PointGap: 1}
	require.NoError(t, good.Validate())

	cases := map[string]func(s *Sensor){
		"zero gap":       func(s *Sensor) { s.PointGap = 0 },
		"negative depth": func(s *Sensor) { s.Depth = -1 },
		"zero direction": func(s *Sensor) { s.Direction = mgl32.Vec3{} },
		"negative width": func(s *Sensor) { s.Radius = -5 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			s := good
			mutate(&s)
			err := s.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidSensor))
		})
	}
}

func TestGenerateRays_Grid(t *testing.T) {
	s := Sensor{
		Position:  mgl32.Vec3{1, 2, 3},
		Direction: mgl32.Vec3{0, 0, 1},
		Depth:     10,
		Height:    2,
		Radius:    4,
		PointGap:  1,
	}
	rays, err := GenerateRays(s)
	require.NoError(t, err)

	// rows 1, 0; columns -2, -1, 0, 1
	assert.Equal(t, 2, s.Rows())
	assert.Equal(t, 4, s.Columns())
	require.Len(t, rays, 8)

	for _, r := range rays {
		assert.Equal(t, s.Position, r.Origin)
		assert.Equal(t, float32(0), r.TMin)
		assert.Equal(t, float32(10), r.TMax)
		assert.InDelta(t, 1.0, r.Direction.Len(), 1e-5)
	}

	// top row, centre column: straight ahead, tilted up by 1 over 10
	centre := rays[2]
	want := mgl32.Vec3{0, 1, 10}.Normalize()
	assert.InDelta(t, want.X(), centre.Direction.X(), 1e-5)
	assert.InDelta(t, want.Y(), centre.Direction.Y(), 1e-5)
	assert.InDelta(t, want.Z(), centre.Direction.Z(), 1e-5)

	// second row is level
	assert.InDelta(t, 0, rays[6].Direction.Y(), 1e-5)
}

func TestGenerateRays_RotatesAboutY(t *testing.T) {
	s := Sensor{Direction: mgl32.Vec3{0, 0, 1}, Depth: 5, Height: 1, Radius: 180, PointGap: 90}
	rays, err := GenerateRays(s)
	require.NoError(t, err)
	require.Len(t, rays, 2)

	// single row at +0.5; columns at -90 and 0 degrees, -90 turning towards +X
	side := mgl32.Vec3{5, 0.5, 0}.Normalize()
	ahead := mgl32.Vec3{0, 0.5, 5}.Normalize()
	for k := 0; k < 3; k++ {
		assert.InDelta(t, side[k], rays[0].Direction[k], 1e-5)
		assert.InDelta(t, ahead[k], rays[1].Direction[k], 1e-5)
	}
}

func TestSensor_GridStaysInsideBounds(t *testing.T) {
	tests := []struct {
		height, radius, gap float32
		rows, columns       int
	}{
		{height: 4.9, radius: 4.9, gap: 0.35, rows: 14, columns: 14},
		{height: 1.19, radius: 1.19, gap: 0.17, rows: 7, columns: 7},
		{height: 2, radius: 4, gap: 1, rows: 2, columns: 4},
		{height: 1, radius: 2.5, gap: 1, rows: 1, columns: 3},
	}
	for _, tt := range tests {
		s := Sensor{Direction: mgl32.Vec3{0, 0, 1}, Depth: 1, Height: tt.height, Radius: tt.radius, PointGap: tt.gap}
		assert.Equal(t, tt.rows, s.Rows(), "rows for height %v gap %v", tt.height, tt.gap)
		assert.Equal(t, tt.columns, s.Columns(), "columns for radius %v gap %v", tt.radius, tt.gap)
	}

	for k := 1; k <= 200; k++ {
		for _, gap := range []float32{0.01, 0.05, 0.17, 0.35, 0.7, 1.3} {
			extent := gap * float32(k)
			s := Sensor{Direction: mgl32.Vec3{0, 0, 1}, Depth: 1, Height: extent, Radius: extent, PointGap: gap}

			rows, cols := s.Rows(), s.Columns()
			require.Greater(t, rows, 0)
			require.Greater(t, cols, 0)
			assert.Greater(t, s.rowAt(rows-1), -extent/2, "last row of %v/%v", extent, gap)
			assert.LessOrEqual(t, s.rowAt(rows), -extent/2, "missing row of %v/%v", extent, gap)
			assert.Less(t, s.columnAt(cols-1), extent/2, "last column of %v/%v", extent, gap)
			assert.GreaterOrEqual(t, s.columnAt(cols), extent/2, "missing column of %v/%v", extent, gap)
		}
	}
}

func TestGenerateRays_NonExactMultiple(t *testing.T) {
	s := Sensor{Direction: mgl32.Vec3{0, 0, 1}, Depth: 10, Height: 4.9, Radius: 4.9, PointGap: 0.35}
	rays, err := GenerateRays(s)
	require.NoError(t, err)
	require.Len(t, rays, 14*14)

	// every row offset at the sensor depth stays strictly above -Height/2
	for _, r := range rays {
		horizontal := mgl32.Vec2{r.Direction.X(), r.Direction.Z()}.Len()
		offset := 10 * r.Direction.Y() / horizontal
		assert.Greater(t, offset, float32(-2.45+1e-3))
	}
}

func TestGenerateRays_MultipleSensorsAndErrors(t *testing.T) {
	a := Sensor{Direction: mgl32.Vec3{1, 0, 0}, Depth: 5, Height: 1, Radius: 1, PointGap: 1}
	b := a
	b.Position = mgl32.Vec3{9, 9, 9}

	rays, err := GenerateRays(a, b)
	require.NoError(t, err)
	require.Len(t, rays, 2)
	assert.Equal(t, mgl32.Vec3{}, rays[0].Origin)
	assert.Equal(t, b.Position, rays[1].Origin)

	b.PointGap = 0
	_, err = GenerateRays(a, b)
	assert.ErrorIs(t, err, ErrInvalidSensor)

	rays, err = GenerateRays()
	require.NoError(t, err)
	assert.Empty(t, rays)
}
