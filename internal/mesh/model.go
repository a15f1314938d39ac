// Package mesh holds the in-memory triangle model handed to the format
// converters, plus loaders for the source formats the CLI can read.
package mesh

import "math"

// Vec3 is a point or direction in model space.
type Vec3 struct {
	X, Y, Z float32
}

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

// Cross returns the cross product of v and o.
func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		X: v.Y*o.Z - v.Z*o.Y,
		Y: v.Z*o.X - v.X*o.Z,
		Z: v.X*o.Y - v.Y*o.X,
	}
}

// Length returns the Euclidean length of v.
func (v Vec3) Length() float32 {
	return float32(math.Sqrt(float64(v.X*v.X + v.Y*v.Y + v.Z*v.Z)))
}

// Normalized returns v scaled to unit length. The zero vector stays zero.
func (v Vec3) Normalized() Vec3 {
	length := v.Length()
	if length == 0 {
		return Vec3{}
	}
	return Vec3{X: v.X / length, Y: v.Y / length, Z: v.Z / length}
}

// Triangle is a single face with its outward normal.
type Triangle struct {
	Normal Vec3
	V1     Vec3
	V2     Vec3
	V3     Vec3
}

// ComputedNormal derives the facet normal from the winding order of the
// vertices. Used when the source format carries no normals.
func (t Triangle) ComputedNormal() Vec3 {
	return t.V2.Sub(t.V1).Cross(t.V3.Sub(t.V1)).Normalized()
}

// Model is an in-memory triangle mesh.
type Model struct {
	Name      string
	Triangles []Triangle
}

// TriangleCount returns the number of faces.
func (m *Model) TriangleCount() int {
	return len(m.Triangles)
}

// IsEmpty reports whether the model has no faces.
func (m *Model) IsEmpty() bool {
	return m == nil || len(m.Triangles) == 0
}

// Bounds returns the axis-aligned bounding box of the model. An empty model
// yields two zero vectors.
func (m *Model) Bounds() (minV, maxV Vec3) {
	if m.IsEmpty() {
		return Vec3{}, Vec3{}
	}

	first := m.Triangles[0].V1
	minV, maxV = first, first
	for _, tri := range m.Triangles {
		for _, v := range [3]Vec3{tri.V1, tri.V2, tri.V3} {
			minV.X = minf(minV.X, v.X)
			minV.Y = minf(minV.Y, v.Y)
			minV.Z = minf(minV.Z, v.Z)
			maxV.X = maxf(maxV.X, v.X)
			maxV.Y = maxf(maxV.Y, v.Y)
			maxV.Z = maxf(maxV.Z, v.Z)
		}
	}
	return minV, maxV
}

func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
