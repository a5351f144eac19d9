package sim

import "math"

// inputDeadzone filters stick drift; intents at or below this magnitude
// leave the actor stationary.
const inputDeadzone = 0.1

// LocomotionConfig tunes per-tick movement integration.
type LocomotionConfig struct {
	MoveSpeed     float64 // world units per second
	RotationSpeed float64 // degrees per second
}

// stepLocomotion converts the actor's movement intent into horizontal
// velocity and a clamped yaw turn, then integrates the position. The
// vertical velocity component is preserved untouched; gravity belongs to
// the physics layer that owns it.
func stepLocomotion(p *playerState, cfg LocomotionConfig, dt float64) {
	dx := p.intentX
	dz := p.intentZ
	length := math.Hypot(dx, dz)
	if length <= inputDeadzone {
		p.Velocity.X = 0
		p.Velocity.Z = 0
		p.Pose.Y += p.Velocity.Y * dt
		return
	}

	dx /= length
	dz /= length
	p.Velocity.X = dx * cfg.MoveSpeed
	p.Velocity.Z = dz * cfg.MoveSpeed
	p.Pose.Yaw = rotateTowardDeg(p.Pose.Yaw, headingDeg(dx, dz), cfg.RotationSpeed*dt)

	p.Pose.X += p.Velocity.X * dt
	p.Pose.Y += p.Velocity.Y * dt
	p.Pose.Z += p.Velocity.Z * dt
}
