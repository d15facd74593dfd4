package ai

import (
	"container/heap"

	"github.com/kasuganosora/rpgcore/server/game/core"
	"github.com/kasuganosora/rpgcore/server/game/movement"
	"github.com/kasuganosora/rpgcore/server/resource"
)

// Point is a grid cell coordinate on the X/Z plane.
type Point struct {
	X, Z int
}

// Step costs for orthogonal and diagonal moves, scaled so that the
// ratio approximates sqrt(2).
const (
	straightCost = 10
	diagonalCost = 14
)

var neighbours = []Point{
	{0, 1}, {0, -1}, {1, 0}, {-1, 0},
	{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
}

// AStar finds the shortest 8-connected path from `from` to `to` on the given
// passability map. Diagonal steps may not cut a blocked corner. The result
// excludes the start and includes the end.
// When `to` cannot be reached the path leads to the reachable cell closest
// to it and reached is false. A nil result means the start cell itself is
// not walkable.
func AStar(pm *resource.PassabilityMap, from, to Point) (path []Point, reached bool) {
	if pm == nil || !pm.CanPass(from.X, from.Z) {
		return nil, false
	}
	if from == to {
		return []Point{}, true
	}

	closed := make(map[Point]bool)
	gScore := map[Point]int{from: 0}
	parent := make(map[Point]Point)

	open := &pointQueue{}
	heap.Push(open, &pqItem{pt: from, f: octile(from, to)})

	best, bestH := from, octile(from, to)

	for open.Len() > 0 {
		cur := heap.Pop(open).(*pqItem).pt
		if closed[cur] {
			continue
		}
		closed[cur] = true

		if h := octile(cur, to); h < bestH {
			best, bestH = cur, h
		}
		if cur == to {
			return reconstruct(parent, from, cur), true
		}

		for _, d := range neighbours {
			np := Point{cur.X + d.X, cur.Z + d.Z}
			if closed[np] || !pm.CanPass(np.X, np.Z) {
				continue
			}
			cost := straightCost
			if d.X != 0 && d.Z != 0 {
				if !pm.CanPass(cur.X+d.X, cur.Z) || !pm.CanPass(cur.X, cur.Z+d.Z) {
					continue
				}
				cost = diagonalCost
			}
			ng := gScore[cur] + cost
			if prev, ok := gScore[np]; !ok || ng < prev {
				gScore[np] = ng
				parent[np] = cur
				heap.Push(open, &pqItem{pt: np, g: ng, f: ng + octile(np, to)})
			}
		}
	}
	return reconstruct(parent, from, best), false
}

func reconstruct(parent map[Point]Point, from, end Point) []Point {
	path := []Point{}
	for p := end; p != from; p = parent[p] {
		path = append(path, p)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// octile is the 8-connected distance between a and b in step-cost units.
func octile(a, b Point) int {
	dx, dz := a.X-b.X, a.Z-b.Z
	if dx < 0 {
		dx = -dx
	}
	if dz < 0 {
		dz = -dz
	}
	return straightCost*max(dx, dz) + (diagonalCost-straightCost)*min(dx, dz)
}

type pqItem struct {
	pt   Point
	g, f int
}

type pointQueue []*pqItem

func (q pointQueue) Len() int { return len(q) }

func (q pointQueue) Less(i, j int) bool {
	if q[i].f != q[j].f {
		return q[i].f < q[j].f
	}
	return q[i].g > q[j].g
}

func (q pointQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *pointQueue) Push(x any) { *q = append(*q, x.(*pqItem)) }

func (q *pointQueue) Pop() any {
	old := *q
	n := len(old)
	it := old[n-1]
	*q = old[:n-1]
	return it
}

// GridPathfinder routes over a passability grid. It implements
// movement.Pathfinder.
type GridPathfinder struct {
	pm *resource.PassabilityMap
}

// NewGridPathfinder creates a pathfinder over pm.
func NewGridPathfinder(pm *resource.PassabilityMap) *GridPathfinder {
	return &GridPathfinder{pm: pm}
}

var _ movement.Pathfinder = (*GridPathfinder)(nil)

// FindPath returns corners from `from` toward `to`, with interior corners at
// cell centres where the route turns. A complete path ends exactly at `to`.
func (g *GridPathfinder) FindPath(from, to core.Vec3) (*movement.Path, bool) {
	fx, fz := resource.CellOf(from)
	tx, tz := resource.CellOf(to)
	cells, reached := AStar(g.pm, Point{fx, fz}, Point{tx, tz})
	if cells == nil && !reached {
		return nil, false
	}

	corners := []core.Vec3{from}
	for i, c := range cells {
		last := i == len(cells)-1
		if !last && !turnsAt(cells, i, Point{fx, fz}) {
			continue
		}
		if last && reached {
			break
		}
		p := resource.CellCenter(c.X, c.Z)
		p.Y = from.Y
		corners = append(corners, p)
	}
	if reached {
		corners = append(corners, to)
	}
	if len(corners) == 1 {
		corners = append(corners, from)
	}
	return &movement.Path{Corners: corners, Complete: reached}, true
}

// turnsAt reports whether the route changes direction at cells[i].
func turnsAt(cells []Point, i int, start Point) bool {
	prev := start
	if i > 0 {
		prev = cells[i-1]
	}
	next := cells[i+1]
	cur := cells[i]
	return Point{cur.X - prev.X, cur.Z - prev.Z} != Point{next.X - cur.X, next.Z - cur.Z}
}
