package gekko

import (
	"github.com/go-gl/mathgl/mgl32"
)

// CreateQuadMesh is the unit billboard drawn once per point: a square of side
// 1 in the XY plane, centred on the origin.
func (server AssetServer) CreateQuadMesh() AssetId {
	positions := []mgl32.Vec3{
		{-0.5, -0.5, 0},
		{0.5, -0.5, 0},
		{0.5, 0.5, 0},
		{-0.5, 0.5, 0},
	}
	indices := []uint16{0, 1, 2, 0, 2, 3}
	id, _ := server.LoadMesh("quad", positions, indices)
	return id
}

// CreatePlaneMesh is a horizontal rectangle in the XZ plane facing +Y.
func (server AssetServer) CreatePlaneMesh(sizeX, sizeZ float32) AssetId {
	hx, hz := sizeX/2, sizeZ/2
	positions := []mgl32.Vec3{
		{-hx, 0, -hz},
		{hx, 0, -hz},
		{hx, 0, hz},
		{-hx, 0, hz},
	}
	indices := []uint16{0, 2, 1, 0, 3, 2}
	id, _ := server.LoadMesh("plane", positions, indices)
	return id
}

// CreateBoxMesh is an axis-aligned box centred on the origin, 24 vertices so
// every face is independent.
func (server AssetServer) CreateBoxMesh(size mgl32.Vec3) AssetId {
	h := size.Mul(0.5)

	// each face: normal axis, sign, and the two in-plane axes
	faces := []struct {
		axis, u, v int
		sign       float32
	}{
		{0, 1, 2, 1}, {0, 1, 2, -1},
		{1, 2, 0, 1}, {1, 2, 0, -1},
		{2, 0, 1, 1}, {2, 0, 1, -1},
	}
	corners := [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}

	positions := make([]mgl32.Vec3, 0, 24)
	indices := make([]uint16, 0, 36)
	for _, f := range faces {
		base := uint16(len(positions))
		for _, c := range corners {
			var p mgl32.Vec3
			p[f.axis] = f.sign * h[f.axis]
			p[f.u] = c[0] * h[f.u]
			p[f.v] = c[1] * h[f.v]
			positions = append(positions, p)
		}
		if f.sign > 0 {
			indices = append(indices, base, base+1, base+2, base, base+2, base+3)
		} else {
			indices = append(indices, base, base+2, base+1, base, base+3, base+2)
		}
	}

	id, _ := server.LoadMesh("box", positions, indices)
	return id
}
