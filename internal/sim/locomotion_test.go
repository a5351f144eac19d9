package sim

import (
	"math"
	"testing"
)

func testLocomotionConfig() LocomotionConfig {
	return LocomotionConfig{MoveSpeed: 5, RotationSpeed: 90}
}

func TestStepLocomotionDeadzoneStopsHorizontalMotion(t *testing.T) {
	p := &playerState{}
	p.intentX = 0.06
	p.intentZ = 0.08
	p.Velocity = Vec3{X: 3, Y: -2, Z: 4}

	stepLocomotion(p, testLocomotionConfig(), 0.1)

	if p.Velocity.X != 0 || p.Velocity.Z != 0 {
		t.Fatalf("expected horizontal velocity zeroed, got %+v", p.Velocity)
	}
	if p.Velocity.Y != -2 {
		t.Fatalf("expected vertical velocity preserved, got %v", p.Velocity.Y)
	}
	if p.Pose.X != 0 || p.Pose.Z != 0 {
		t.Fatalf("expected no horizontal displacement, got %+v", p.Pose)
	}
	if math.Abs(p.Pose.Y-(-0.2)) > 1e-9 {
		t.Fatalf("expected vertical integration to continue, got %v", p.Pose.Y)
	}
}

func TestStepLocomotionNormalizesIntent(t *testing.T) {
	p := &playerState{}
	p.intentX = 3
	p.intentZ = 4
	p.Pose.Yaw = headingDeg(0.6, 0.8)

	stepLocomotion(p, testLocomotionConfig(), 0.1)

	if math.Abs(p.Velocity.X-3) > 1e-9 || math.Abs(p.Velocity.Z-4) > 1e-9 {
		t.Fatalf("expected velocity (3, 4), got %+v", p.Velocity)
	}
	speed := math.Hypot(p.Velocity.X, p.Velocity.Z)
	if math.Abs(speed-5) > 1e-9 {
		t.Fatalf("expected speed 5, got %v", speed)
	}
	if math.Abs(p.Pose.X-0.3) > 1e-9 || math.Abs(p.Pose.Z-0.4) > 1e-9 {
		t.Fatalf("unexpected displacement: %+v", p.Pose)
	}
}

func TestStepLocomotionClampsYawTurn(t *testing.T) {
	p := &playerState{}
	p.intentX = 1
	p.intentZ = 0

	cfg := testLocomotionConfig()
	stepLocomotion(p, cfg, 0.1)

	// Target heading is 90 degrees; one tick may cover at most 9.
	if math.Abs(p.Pose.Yaw-9) > 1e-9 {
		t.Fatalf("expected yaw clamped to 9, got %v", p.Pose.Yaw)
	}

	for i := 0; i < 20; i++ {
		stepLocomotion(p, cfg, 0.1)
	}
	if math.Abs(p.Pose.Yaw-90) > 1e-9 {
		t.Fatalf("expected yaw to settle at 90, got %v", p.Pose.Yaw)
	}
}

func TestStepLocomotionYawStaysNormalized(t *testing.T) {
	p := &playerState{}
	p.Pose.Yaw = 350
	p.intentX = 1
	p.intentZ = 1

	cfg := testLocomotionConfig()
	for i := 0; i < 40; i++ {
		stepLocomotion(p, cfg, 0.1)
		if p.Pose.Yaw < 0 || p.Pose.Yaw >= 360 {
			t.Fatalf("yaw left [0, 360): %v", p.Pose.Yaw)
		}
	}
	if math.Abs(p.Pose.Yaw-45) > 1e-9 {
		t.Fatalf("expected yaw to reach 45, got %v", p.Pose.Yaw)
	}
}
