package codec

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ============================================================
// Orientation
// ============================================================

// IdentityQuat is [w x y z] for no rotation.
var IdentityQuat = [4]float64{1, 0, 0, 0}

func toQuat(q [4]float64) mgl64.Quat {
	return mgl64.Quat{W: q[0], V: mgl64.Vec3{q[1], q[2], q[3]}}
}

func fromQuat(q mgl64.Quat) [4]float64 {
	return [4]float64{q.W, q.V[0], q.V[1], q.V[2]}
}

// SanitizeQuat returns a unit quaternion. Non-finite input or components
// too small to normalize fall back to identity.
func SanitizeQuat(q [4]float64) [4]float64 {
	for _, v := range q {
		if !finite(v) {
			return IdentityQuat
		}
	}
	// scale by the largest component so Len cannot overflow
	var peak float64
	for _, v := range q {
		peak = math.Max(peak, math.Abs(v))
	}
	if peak < 1e-12 {
		return IdentityQuat
	}
	mq := toQuat(q).Scale(1 / peak)
	return fromQuat(mq.Scale(1 / mq.Len()))
}

// SanitizePos replaces non-finite components with 0.
func SanitizePos(p [3]float64) [3]float64 {
	for i, v := range p {
		if !finite(v) {
			p[i] = 0
		}
	}
	return p
}

// QuatToEuler converts [w x y z] to roll, pitch, yaw in radians
// (rotation about X, then Y, then Z axes; q = Rz * Ry * Rx).
func QuatToEuler(q [4]float64) [3]float64 {
	w, x, y, z := q[0], q[1], q[2], q[3]

	roll := math.Atan2(2*(w*x+y*z), 1-2*(x*x+y*y))

	s := 2 * (w*y - x*z)
	sinp := math.Sqrt(math.Max(0, 1+s))
	cosp := math.Sqrt(math.Max(0, 1-s))
	pitch := 2*math.Atan2(sinp, cosp) - math.Pi/2

	yaw := math.Atan2(2*(w*z+x*y), 1-2*(y*y+z*z))

	return [3]float64{roll, pitch, yaw}
}

// EulerToQuat is the inverse of QuatToEuler. Non-finite angles are treated as 0.
func EulerToQuat(e [3]float64) [4]float64 {
	e = SanitizePos(e)
	qx := mgl64.QuatRotate(e[0], mgl64.Vec3{1, 0, 0})
	qy := mgl64.QuatRotate(e[1], mgl64.Vec3{0, 1, 0})
	qz := mgl64.QuatRotate(e[2], mgl64.Vec3{0, 0, 1})
	return SanitizeQuat(fromQuat(qz.Mul(qy).Mul(qx)))
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
