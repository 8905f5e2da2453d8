package gekko

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

type AssetId string

type AssetServer struct {
	meshes  map[AssetId]MeshAsset
	shaders map[AssetId]ShaderAsset
}

type AssetServerModule struct{}

// MeshAsset is an indexed triangle list in local space.
type MeshAsset struct {
	Name      string
	version   uint
	Positions []mgl32.Vec3
	Indices   []uint16
}

func (m MeshAsset) IndexCount() uint32 { return uint32(len(m.Indices)) }

// Bounds returns the local-space extents; both are zero for an empty mesh.
func (m MeshAsset) Bounds() (mgl32.Vec3, mgl32.Vec3) {
	if len(m.Positions) == 0 {
		return mgl32.Vec3{}, mgl32.Vec3{}
	}
	lo, hi := m.Positions[0], m.Positions[0]
	for _, p := range m.Positions[1:] {
		for k := 0; k < 3; k++ {
			lo[k] = min(lo[k], p[k])
			hi[k] = max(hi[k], p[k])
		}
	}
	return lo, hi
}

type ShaderAsset struct {
	Name    string
	version uint
	Source  string
}

func (server AssetServer) LoadMesh(name string, positions []mgl32.Vec3, indices []uint16) (AssetId, error) {
	if len(indices)%3 != 0 {
		return "", fmt.Errorf("mesh %q: index count %d is not a multiple of 3", name, len(indices))
	}
	for _, idx := range indices {
		if int(idx) >= len(positions) {
			return "", fmt.Errorf("mesh %q: index %d out of range for %d vertices", name, idx, len(positions))
		}
	}

	id := makeAssetId()
	server.meshes[id] = MeshAsset{
		Name:      name,
		Positions: positions,
		Indices:   indices,
	}
	return id, nil
}

func (server AssetServer) Mesh(id AssetId) (MeshAsset, bool) {
	mesh, ok := server.meshes[id]
	return mesh, ok
}

func (server AssetServer) LoadShader(name string, source string) AssetId {
	id := makeAssetId()
	server.shaders[id] = ShaderAsset{Name: name, Source: source}
	return id
}

func (server AssetServer) Shader(id AssetId) (ShaderAsset, bool) {
	shader, ok := server.shaders[id]
	return shader, ok
}

func (AssetServerModule) Install(app *App, cmd *Commands) {
	if _, ok := Resource[AssetServer](app); ok {
		return
	}
	app.addResources(NewAssetServer())
}

func NewAssetServer() *AssetServer {
	return &AssetServer{
		meshes:  make(map[AssetId]MeshAsset),
		shaders: make(map[AssetId]ShaderAsset),
	}
}

func makeAssetId() AssetId {
	return AssetId(uuid.NewString())
}
