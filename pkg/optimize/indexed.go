package optimize

import (
	"math"

	"pcbcam/pkg/geometry"

	"github.com/asim/quadtree"
)

// Indexed keeps the unvisited entries in a quadtree and grows a search
// box around the current position until it provably holds the nearest
// one. It returns the same order as Exhaustive and pays off on large
// drill files.
type Indexed struct{}

func (Indexed) Order(entries, exits []geometry.Point, start geometry.Point) Result {
	n := len(entries)
	index := newSiteIndex(entries)
	result := Result{Order: make([]int, 0, n)}

	current := start
	for len(result.Order) < n {
		nearest, nearestDist := index.nearest(current)
		index.remove(nearest)
		result.Order = append(result.Order, nearest)
		result.Distance += nearestDist
		current = exits[nearest]
	}
	return result
}

// bucket holds every site sharing one exact position, lowest index first.
type bucket struct {
	indices []int
}

type siteIndex struct {
	tree       *quadtree.QuadTree
	center     geometry.Point
	halfWidth  float64
	halfHeight float64
	firstHalf  float64

	points  []geometry.Point
	alive   []bool
	nodes   map[[2]float64]*quadtree.Point
	inTree  []bool
	inNodes int
	// overflow holds sites the tree refused; they are scanned every step.
	overflow []int
}

func newSiteIndex(points []geometry.Point) *siteIndex {
	var min, max geometry.Point
	for i, p := range points {
		if i == 0 {
			min, max = p, p
			continue
		}
		min.X = math.Min(min.X, p.X)
		min.Y = math.Min(min.Y, p.Y)
		max.X = math.Max(max.X, p.X)
		max.Y = math.Max(max.Y, p.Y)
	}

	midX := (max.X + min.X) / 2
	midY := (max.Y + min.Y) / 2
	// Add a small margin to avoid dropping points at the edges
	halfWidth := max.X - midX + 10
	halfHeight := max.Y - midY + 10

	aabb := quadtree.NewAABB(
		quadtree.NewPoint(midX, midY, nil),
		quadtree.NewPoint(halfWidth, halfHeight, nil))

	s := &siteIndex{
		tree:       quadtree.New(aabb, 0, nil),
		center:     geometry.Point{X: midX, Y: midY},
		halfWidth:  halfWidth,
		halfHeight: halfHeight,
		points:     points,
		alive:      make([]bool, len(points)),
		nodes:      map[[2]float64]*quadtree.Point{},
		inTree:     make([]bool, len(points)),
	}
	s.firstHalf = math.Max(halfWidth, halfHeight) / math.Sqrt(float64(len(points)+1))

	for i, p := range points {
		s.alive[i] = true
		key := [2]float64{p.X, p.Y}
		if node, ok := s.nodes[key]; ok {
			b := node.Data().(*bucket)
			b.indices = append(b.indices, i)
			s.inTree[i] = true
			continue
		}
		node := quadtree.NewPoint(p.X, p.Y, &bucket{indices: []int{i}})
		if !s.tree.Insert(node) {
			s.overflow = append(s.overflow, i)
			continue
		}
		s.nodes[key] = node
		s.inTree[i] = true
		s.inNodes++
	}

	// A split can strand a point on a child boundary where Search never
	// reaches it again. Those buckets are scanned from overflow instead.
	for key, node := range s.nodes {
		if s.reachable(node) {
			continue
		}
		for _, i := range node.Data().(*bucket).indices {
			s.inTree[i] = false
			s.overflow = append(s.overflow, i)
		}
		delete(s.nodes, key)
		s.inNodes--
	}
	return s
}

func (s *siteIndex) reachable(node *quadtree.Point) bool {
	x, y := node.Coordinates()
	box := quadtree.NewAABB(
		quadtree.NewPoint(x, y, nil),
		quadtree.NewPoint(0, 0, nil))
	for _, p := range s.tree.Search(box) {
		if p == node {
			return true
		}
	}
	return false
}

// nearest returns the closest live site to c, preferring the lowest index
// among equals.
func (s *siteIndex) nearest(c geometry.Point) (int, float64) {
	best, bestDist := -1, 0.0
	consider := func(i int) {
		d := c.Distance(s.points[i])
		if best == -1 || d < bestDist || (d == bestDist && i < best) {
			best, bestDist = i, d
		}
	}

	for _, i := range s.overflow {
		consider(i)
	}
	if s.inNodes == 0 {
		if best == -1 {
			return s.scan(c)
		}
		return best, bestDist
	}

	half := s.firstHalf
	for {
		if math.IsInf(half, 1) || math.IsNaN(half) || math.IsNaN(c.X) || math.IsNaN(c.Y) {
			return s.scan(c)
		}

		treeBest, treeDist := -1, 0.0
		box := quadtree.NewAABB(
			quadtree.NewPoint(c.X, c.Y, nil),
			quadtree.NewPoint(half, half, nil))
		for _, node := range s.tree.Search(box) {
			for _, i := range node.Data().(*bucket).indices {
				d := c.Distance(s.points[i])
				if treeBest == -1 || d < treeDist || (d == treeDist && i < treeBest) {
					treeBest, treeDist = i, d
				}
			}
		}

		// Every site closer than half lies strictly inside the box. The
		// margin keeps rounding of the box edges out of the comparison.
		if (treeBest != -1 && treeDist < half*(1-1e-9)) || s.covers(c, half) {
			if treeBest != -1 {
				consider(treeBest)
			}
			if best == -1 {
				return s.scan(c)
			}
			return best, bestDist
		}
		half *= 2
	}
}

// covers reports whether a box of the given half size around c strictly
// contains the whole tree boundary.
func (s *siteIndex) covers(c geometry.Point, half float64) bool {
	return half > math.Abs(c.X-s.center.X)+s.halfWidth &&
		half > math.Abs(c.Y-s.center.Y)+s.halfHeight
}

// scan is the linear fallback used when the box search cannot settle.
func (s *siteIndex) scan(c geometry.Point) (int, float64) {
	best, bestDist := -1, 0.0
	for i, p := range s.points {
		if !s.alive[i] {
			continue
		}
		d := c.Distance(p)
		if best == -1 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best, bestDist
}

func (s *siteIndex) remove(i int) {
	s.alive[i] = false
	if !s.inTree[i] {
		for j, k := range s.overflow {
			if k == i {
				s.overflow = append(s.overflow[:j], s.overflow[j+1:]...)
				break
			}
		}
		return
	}

	key := [2]float64{s.points[i].X, s.points[i].Y}
	node := s.nodes[key]
	b := node.Data().(*bucket)
	for j, k := range b.indices {
		if k == i {
			b.indices = append(b.indices[:j], b.indices[j+1:]...)
			break
		}
	}
	if len(b.indices) == 0 {
		s.tree.Remove(node)
		delete(s.nodes, key)
		s.inNodes--
	}
}
