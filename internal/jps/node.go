package jps

import "github.com/gamenio/arenacore/internal/geom"

// node is one entry in the search frontier/closed set.
type node struct {
	pos        geom.Point
	parent     *node
	cameFrom   geom.Direction
	hasParent  bool
	g, h, f    int32
	touchedGen uint32 // iteration stamp; avoids clearing the whole grid between searches
}

// openList is the two-tier frontier described in spec §4.2: a LIFO
// fast stack for nodes whose f is <= the current node's f (preserving
// straight-line preference via last-in-first-out popping), and an
// unsorted slice scanned for its minimum otherwise.
type openList struct {
	fastStack []*node
	rest      []*node
}

func (ol *openList) push(n *node, currentF int32) {
	if n.f <= currentF {
		ol.fastStack = append(ol.fastStack, n)
		return
	}
	ol.rest = append(ol.rest, n)
}

func (ol *openList) empty() bool {
	return len(ol.fastStack) == 0 && len(ol.rest) == 0
}

// pop returns the next node to expand: fast stack (LIFO) first, else
// the minimum-f entry from rest.
func (ol *openList) pop() *node {
	if n := len(ol.fastStack); n > 0 {
		top := ol.fastStack[n-1]
		ol.fastStack = ol.fastStack[:n-1]
		return top
	}
	if len(ol.rest) == 0 {
		return nil
	}
	bestIdx := 0
	for i := 1; i < len(ol.rest); i++ {
		if ol.rest[i].f < ol.rest[bestIdx].f {
			bestIdx = i
		}
	}
	best := ol.rest[bestIdx]
	ol.rest[bestIdx] = ol.rest[len(ol.rest)-1]
	ol.rest = ol.rest[:len(ol.rest)-1]
	return best
}
