package engine

import "github.com/AccelByte/extend-idle-progression/pkg/domain"

// Metrics receives engine events. Implementations must not call back into the
// engine.
type Metrics interface {
	Click(gain, multiplier float64)
	Purchase(upgrade string, cost float64)
	Unlock(kind domain.UnlockKind)
	Notification(priority domain.Priority, accepted bool)
}

// NopMetrics discards every event.
type NopMetrics struct{}

func (NopMetrics) Click(float64, float64)             {}
func (NopMetrics) Purchase(string, float64)           {}
func (NopMetrics) Unlock(domain.UnlockKind)           {}
func (NopMetrics) Notification(domain.Priority, bool) {}
