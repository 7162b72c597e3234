package odom

import (
	"math"

	"gonum.org/v1/gonum/spatial/kdtree"
)

// treePoint is a cloud point lifted into the kd-tree, carrying its position
// in the source cloud so neighbour hits map back to array indices.
type treePoint struct {
	x, y, z float64
	idx     int
}

func (p treePoint) coord(d kdtree.Dim) float64 {
	switch d {
	case 0:
		return p.x
	case 1:
		return p.y
	default:
		return p.z
	}
}

// Compare returns the signed distance of p from the plane through q
// perpendicular to dimension d.
func (p treePoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(treePoint)
	return p.coord(d) - q.coord(d)
}

// Dims returns the number of spatial dimensions. The channel scalar is not
// part of the metric.
func (p treePoint) Dims() int { return 3 }

// Distance returns the squared Euclidean distance between p and c.
func (p treePoint) Distance(c kdtree.Comparable) float64 {
	q := c.(treePoint)
	dx := p.x - q.x
	dy := p.y - q.y
	dz := p.z - q.z
	return dx*dx + dy*dy + dz*dz
}

type treePoints []treePoint

func (p treePoints) Index(i int) kdtree.Comparable { return p[i] }
func (p treePoints) Len() int                      { return len(p) }
func (p treePoints) Pivot(d kdtree.Dim) int        { return treePlane{Dim: d, treePoints: p}.Pivot() }
func (p treePoints) Slice(start, end int) kdtree.Interface {
	return p[start:end]
}

// treePlane wraps treePoints for sorting along one dimension during tree
// construction, following the kdtree package's Interface pattern.
type treePlane struct {
	kdtree.Dim
	treePoints
}

func (p treePlane) Less(i, j int) bool {
	return p.treePoints[i].coord(p.Dim) < p.treePoints[j].coord(p.Dim)
}
func (p treePlane) Pivot() int { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }
func (p treePlane) Slice(start, end int) kdtree.SortSlicer {
	p.treePoints = p.treePoints[start:end]
	return p
}
func (p treePlane) Swap(i, j int) {
	p.treePoints[i], p.treePoints[j] = p.treePoints[j], p.treePoints[i]
}

// NeighborIndex is a static nearest-neighbour index over one sweep's cloud.
// Queries use 3D coordinates only. The index holds its own copy of the
// coordinates, so mutating the source cloud afterwards does not affect it.
type NeighborIndex struct {
	tree *kdtree.Tree
	size int
}

// NewNeighborIndex builds an index over c. Non-finite points must already
// have been removed; they would poison the tree's median partitioning.
func NewNeighborIndex(c Cloud) *NeighborIndex {
	pts := make(treePoints, len(c))
	for i, p := range c {
		pts[i] = treePoint{x: p.X, y: p.Y, z: p.Z, idx: i}
	}
	ni := &NeighborIndex{size: len(pts)}
	if len(pts) > 0 {
		ni.tree = kdtree.New(pts, false)
	}
	return ni
}

// Nearest returns the cloud index of the point closest to (x, y, z) and the
// squared distance to it. An empty index returns (-1, +Inf).
func (ni *NeighborIndex) Nearest(x, y, z float64) (idx int, sqDist float64) {
	if ni == nil || ni.tree == nil {
		return -1, math.Inf(1)
	}
	got, dist := ni.tree.Nearest(treePoint{x: x, y: y, z: z, idx: -1})
	if got == nil {
		return -1, math.Inf(1)
	}
	return got.(treePoint).idx, dist
}

// Len returns the number of indexed points.
func (ni *NeighborIndex) Len() int {
	if ni == nil {
		return 0
	}
	return ni.size
}
