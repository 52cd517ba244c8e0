package world

type Vec2i struct {
	X int
	Y int
}

func (v Vec2i) ToArray() [2]int { return [2]int{v.X, v.Y} }

func Manhattan(a, b Vec2i) int {
	return absInt(a.X-b.X) + absInt(a.Y-b.Y)
}

// distSq is the squared Euclidean distance; used for closest-job selection
// where only the ordering matters.
func distSq(a, b Vec2i) int {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return dx*dx + dy*dy
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
