package sim

import (
	"propbox/server/internal/telemetry"
	"propbox/server/logging"
)

// Deps carries shared infrastructure dependencies required by the world.
type Deps struct {
	Logger    telemetry.Logger
	Metrics   telemetry.Metrics
	Clock     logging.Clock
	Publisher logging.Publisher
}

func (d Deps) normalized() Deps {
	if d.Logger == nil {
		d.Logger = telemetry.LoggerFunc(nil)
	}
	if d.Clock == nil {
		d.Clock = logging.SystemClock{}
	}
	if d.Publisher == nil {
		d.Publisher = logging.NopPublisher()
	}
	return d
}
