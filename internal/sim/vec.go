package sim

import "math"

// Vec3 is a world-space vector. Y is the vertical axis.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Pose is a world-space position plus a yaw orientation in degrees.
type Pose struct {
	X   float64 `json:"x"`
	Y   float64 `json:"y"`
	Z   float64 `json:"z"`
	Yaw float64 `json:"yaw"`
}

// headingDeg converts a horizontal direction vector into a yaw angle in
// degrees. Yaw 0 faces +Z and grows clockwise toward +X.
func headingDeg(dx, dz float64) float64 {
	return normalizeDeg(math.Atan2(dx, dz) * 180 / math.Pi)
}

// normalizeDeg maps an angle into [0, 360).
func normalizeDeg(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

// angleDiffDeg returns the signed shortest rotation from current to target,
// in the range (-180, 180].
func angleDiffDeg(current, target float64) float64 {
	diff := math.Mod(target-current, 360)
	if diff > 180 {
		diff -= 360
	} else if diff <= -180 {
		diff += 360
	}
	return diff
}

// rotateTowardDeg turns current toward target by at most maxDelta degrees,
// taking the shorter way around the circle.
func rotateTowardDeg(current, target, maxDelta float64) float64 {
	if maxDelta <= 0 {
		return normalizeDeg(current)
	}
	diff := angleDiffDeg(current, target)
	if math.Abs(diff) <= maxDelta {
		return normalizeDeg(target)
	}
	if diff > 0 {
		return normalizeDeg(current + maxDelta)
	}
	return normalizeDeg(current - maxDelta)
}
