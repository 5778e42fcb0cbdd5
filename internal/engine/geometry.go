package engine

import "math"

type Vec3 struct{ X, Y, Z float64 }

// Ray is a half-line from Origin along Dir.
type Ray struct {
	Origin Vec3
	Dir    Vec3
}

// Pointer is a pointer position in view cells (column, row), fractional allowed.
type Pointer struct {
	Col float64
	Row float64
}

// Camera turns pointer positions into world rays.
type Camera interface {
	Ray(p Pointer) Ray
}

// IntersectHorizontal intersects r with the plane y = planeY. It reports false
// when the ray is parallel to the plane or points away from it.
func IntersectHorizontal(r Ray, planeY float64) (Vec3, bool) {
	if math.Abs(r.Dir.Y) < 1e-12 {
		return Vec3{}, false
	}
	t := (planeY - r.Origin.Y) / r.Dir.Y
	if t < 0 {
		return Vec3{}, false
	}
	return Vec3{
		X: r.Origin.X + r.Dir.X*t,
		Y: planeY,
		Z: r.Origin.Z + r.Dir.Z*t,
	}, true
}

// Snap rounds v to the nearest multiple of step.
func Snap(v, step float64) float64 {
	if step <= 0 {
		return v
	}
	return math.Round(v/step) * step
}

// OrthoCamera looks straight down at the floor plane. The view's top-left cell
// shows world point (OriginX, OriginZ); each column spans CellX world units and
// each row CellZ.
type OrthoCamera struct {
	OriginX float64
	OriginZ float64
	CellX   float64
	CellZ   float64
	Height  float64
}

// NewOrthoCamera returns a camera with half-unit columns and unit rows, which
// roughly squares terminal cells.
func NewOrthoCamera() OrthoCamera {
	return OrthoCamera{CellX: 0.5, CellZ: 1, Height: 100}
}

func (c OrthoCamera) Ray(p Pointer) Ray {
	return Ray{
		Origin: Vec3{X: c.OriginX + p.Col*c.CellX, Y: c.Height, Z: c.OriginZ + p.Row*c.CellZ},
		Dir:    Vec3{Y: -1},
	}
}

// Project maps a world point to the view cell containing it.
func (c OrthoCamera) Project(x, z float64) (col, row int) {
	col = int(math.Round((x - c.OriginX) / c.CellX))
	row = int(math.Round((z - c.OriginZ) / c.CellZ))
	return col, row
}

// Pan shifts the view by whole cells.
func (c OrthoCamera) Pan(dCol, dRow int) OrthoCamera {
	c.OriginX += float64(dCol) * c.CellX
	c.OriginZ += float64(dRow) * c.CellZ
	return c
}
