package sensor

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/sync/errgroup"
)

// BatchSize is the number of rays handed to one worker.
const BatchSize = 256

const epsilon = 1e-7

type object struct {
	vertices []mgl32.Vec3 // local space
	indices  []uint16
	enabled  bool

	world    []mgl32.Vec3
	min, max mgl32.Vec3
}

func (o *object) setTransform(m mgl32.Mat4) {
	if cap(o.world) < len(o.vertices) {
		o.world = make([]mgl32.Vec3, len(o.vertices))
	}
	o.world = o.world[:len(o.vertices)]
	inf := float32(math.Inf(1))
	o.min = mgl32.Vec3{inf, inf, inf}
	o.max = mgl32.Vec3{-inf, -inf, -inf}
	for i, v := range o.vertices {
		w := m.Mul4x1(v.Vec4(1)).Vec3()
		o.world[i] = w
		for k := 0; k < 3; k++ {
			o.min[k] = min(o.min[k], w[k])
			o.max[k] = max(o.max[k], w[k])
		}
	}
}

func (o *object) triangleCount() int {
	if len(o.indices) == 0 {
		return len(o.world) / 3
	}
	return len(o.indices) / 3
}

func (o *object) triangle(i int) (mgl32.Vec3, mgl32.Vec3, mgl32.Vec3) {
	if len(o.indices) == 0 {
		return o.world[3*i], o.world[3*i+1], o.world[3*i+2]
	}
	return o.world[o.indices[3*i]], o.world[o.indices[3*i+1]], o.world[o.indices[3*i+2]]
}

// Scene is the set of meshes sensors collide with. Mutations and queries may
// come from different goroutines; queries hold a read lock for their duration.
type Scene struct {
	mu      sync.RWMutex
	objects []*object
}

func NewScene() *Scene {
	return &Scene{}
}

// AddObject copies the mesh into the scene and returns its index. Meshes with
// no indices are read as consecutive vertex triples.
func (s *Scene) AddObject(vertices []mgl32.Vec3, indices []uint16, transform mgl32.Mat4, enabled bool) (int, error) {
	for _, idx := range indices {
		if int(idx) >= len(vertices) {
			return -1, fmt.Errorf("index %d out of range for %d vertices", idx, len(vertices))
		}
	}
	if len(indices)%3 != 0 {
		return -1, fmt.Errorf("index count %d is not a multiple of 3", len(indices))
	}

	o := &object{
		vertices: append([]mgl32.Vec3(nil), vertices...),
		indices:  append([]uint16(nil), indices...),
		enabled:  enabled,
	}
	o.setTransform(transform)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects = append(s.objects, o)
	return len(s.objects) - 1, nil
}

// SetEnabled toggles objects. Out-of-range indices are ignored.
func (s *Scene) SetEnabled(indices []int, enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, i := range indices {
		if i >= 0 && i < len(s.objects) {
			s.objects[i].enabled = enabled
		}
	}
}

// SetTransforms moves objects; indices and matrices are paired positionally.
func (s *Scene) SetTransforms(indices []int, matrices []mgl32.Mat4) error {
	if len(indices) != len(matrices) {
		return fmt.Errorf("got %d indices and %d matrices", len(indices), len(matrices))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for n, i := range indices {
		if i < 0 || i >= len(s.objects) {
			return fmt.Errorf("object %d out of range", i)
		}
		s.objects[i].setTransform(matrices[n])
	}
	return nil
}

func (s *Scene) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}

// Reset drops every object.
func (s *Scene) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects = nil
}

// Fire traces every ray and returns the closest hit points in ray order.
// Rays that miss contribute nothing.
func (s *Scene) Fire(ctx context.Context, rays []Ray) ([]mgl32.Vec3, error) {
	hits := make([]mgl32.Vec3, len(rays))
	ok := make([]bool, len(rays))

	err := s.trace(ctx, rays, func(i int, p mgl32.Vec3) {
		hits[i] = p
		ok[i] = true
	})
	if err != nil {
		return nil, err
	}

	out := hits[:0]
	for i := range rays {
		if ok[i] {
			out = append(out, hits[i])
		}
	}
	return out, nil
}

func (s *Scene) HitCount(ctx context.Context, rays []Ray) (int, error) {
	ok := make([]bool, len(rays))
	if err := s.trace(ctx, rays, func(i int, _ mgl32.Vec3) { ok[i] = true }); err != nil {
		return 0, err
	}
	n := 0
	for _, hit := range ok {
		if hit {
			n++
		}
	}
	return n, nil
}

func (s *Scene) CheckSingleRayHit(origin, direction mgl32.Vec3, depth float32) bool {
	_, ok := s.SingleRayHit(origin, direction, depth)
	return ok
}

// SingleRayHit returns the closest hit along direction within depth.
func (s *Scene) SingleRayHit(origin, direction mgl32.Vec3, depth float32) (mgl32.Vec3, bool) {
	if direction.Len() == 0 {
		return mgl32.Vec3{}, false
	}
	r := Ray{Origin: origin, Direction: direction.Normalize(), TMax: depth}

	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.closest(r)
	if !ok {
		return mgl32.Vec3{}, false
	}
	return r.At(t), true
}

// trace calls hit for each ray with a hit. Each index is written by exactly
// one worker, so hit needs no locking when it writes to per-ray slots.
func (s *Scene) trace(ctx context.Context, rays []Ray, hit func(i int, p mgl32.Vec3)) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.objects) == 0 || len(rays) == 0 {
		return ctx.Err()
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for start := 0; start < len(rays); start += BatchSize {
		end := min(start+BatchSize, len(rays))
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for i := start; i < end; i++ {
				if t, ok := s.closest(rays[i]); ok {
					hit(i, rays[i].At(t))
				}
			}
			return nil
		})
	}
	return g.Wait()
}

// closest expects the read lock to be held.
func (s *Scene) closest(r Ray) (float32, bool) {
	best := r.TMax
	found := false
	for _, o := range s.objects {
		if !o.enabled || !rayHitsBox(r, o.min, o.max, best) {
			continue
		}
		for i, n := 0, o.triangleCount(); i < n; i++ {
			a, b, c := o.triangle(i)
			if t, ok := intersectTriangle(r, a, b, c); ok && t > r.TMin && t <= best {
				best = t
				found = true
			}
		}
	}
	return best, found
}

// rayHitsBox is the slab test against [lo, hi] limited to tmax.
func rayHitsBox(r Ray, lo, hi mgl32.Vec3, tmax float32) bool {
	tmin := r.TMin
	for k := 0; k < 3; k++ {
		if r.Direction[k] == 0 {
			if r.Origin[k] < lo[k] || r.Origin[k] > hi[k] {
				return false
			}
			continue
		}
		inv := 1 / r.Direction[k]
		t0 := (lo[k] - r.Origin[k]) * inv
		t1 := (hi[k] - r.Origin[k]) * inv
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		tmin = max(tmin, t0)
		tmax = min(tmax, t1)
		if tmin > tmax {
			return false
		}
	}
	return true
}

// intersectTriangle is Möller–Trumbore; both faces count as hits.
func intersectTriangle(r Ray, a, b, c mgl32.Vec3) (float32, bool) {
	e1 := b.Sub(a)
	e2 := c.Sub(a)
	p := r.Direction.Cross(e2)
	det := e1.Dot(p)
	if det > -epsilon && det < epsilon {
		return 0, false
	}
	inv := 1 / det
	tv := r.Origin.Sub(a)
	u := tv.Dot(p) * inv
	if u < 0 || u > 1 {
		return 0, false
	}
	q := tv.Cross(e1)
	v := r.Direction.Dot(q) * inv
	if v < 0 || u+v > 1 {
		return 0, false
	}
	return e2.Dot(q) * inv, true
}
