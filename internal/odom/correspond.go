package odom

const (
	// nearestNeighborGate rejects correspondences whose closest previous-sweep
	// point lies at a squared distance of 25 m² or more.
	nearestNeighborGate = 25.0
	// ringWindow bounds the second-pass linear scan to candidates within 2.5
	// scan rings of the closest neighbour. It is the only reason the linear
	// scan terminates in bounded time.
	ringWindow = 2.5
)

// searchEdge finds the edge-line correspondence for a sharp query point: the
// nearest point A in the previous less-sharp cloud and the nearest point B on
// a different scan ring, scanning linearly outward from A's array position.
// Returns (-1, -1) when the nearest-neighbour gate rejects the query.
func (o *Odometry) searchEdge(sel Point) (closest, second int) {
	closest, second = -1, -1

	idx, sqDist := o.cornerIndex.Nearest(sel.X, sel.Y, sel.Z)
	if idx < 0 || sqDist >= nearestNeighborGate {
		return closest, second
	}
	closest = idx
	closestRing := o.lastCorner[idx].Ring()

	minSqDist2 := nearestNeighborGate
	for j := idx + 1; j < len(o.lastCorner); j++ {
		ring := o.lastCorner[j].Ring()
		if float64(ring) > float64(closestRing)+ringWindow {
			break
		}
		if ring <= closestRing {
			continue
		}
		if d := SquaredDiff(o.lastCorner[j], sel); d < minSqDist2 {
			minSqDist2 = d
			second = j
		}
	}
	for j := idx - 1; j >= 0; j-- {
		ring := o.lastCorner[j].Ring()
		if float64(ring) < float64(closestRing)-ringWindow {
			break
		}
		if ring >= closestRing {
			continue
		}
		if d := SquaredDiff(o.lastCorner[j], sel); d < minSqDist2 {
			minSqDist2 = d
			second = j
		}
	}

	return closest, second
}

// searchPlane finds the plane correspondence for a flat query point: the
// nearest point A in the previous less-flat cloud, a second point B on the
// same or a lower scan ring, and a third point C on a higher ring, each the
// nearest on its side within the ring window. Returns (-1, -1, -1) when the
// nearest-neighbour gate rejects the query.
func (o *Odometry) searchPlane(sel Point) (closest, second, third int) {
	closest, second, third = -1, -1, -1

	idx, sqDist := o.surfaceIndex.Nearest(sel.X, sel.Y, sel.Z)
	if idx < 0 || sqDist >= nearestNeighborGate {
		return closest, second, third
	}
	closest = idx
	closestRing := o.lastSurface[idx].Ring()

	minSqDist2 := nearestNeighborGate
	minSqDist3 := nearestNeighborGate
	for j := idx + 1; j < len(o.lastSurface); j++ {
		ring := o.lastSurface[j].Ring()
		if float64(ring) > float64(closestRing)+ringWindow {
			break
		}
		d := SquaredDiff(o.lastSurface[j], sel)
		if ring <= closestRing {
			if d < minSqDist2 {
				minSqDist2 = d
				second = j
			}
		} else {
			if d < minSqDist3 {
				minSqDist3 = d
				third = j
			}
		}
	}
	for j := idx - 1; j >= 0; j-- {
		ring := o.lastSurface[j].Ring()
		if float64(ring) < float64(closestRing)-ringWindow {
			break
		}
		d := SquaredDiff(o.lastSurface[j], sel)
		if ring >= closestRing {
			if d < minSqDist2 {
				minSqDist2 = d
				second = j
			}
		} else {
			if d < minSqDist3 {
				minSqDist3 = d
				third = j
			}
		}
	}

	return closest, second, third
}
