// Package metrics exposes engine and session activity as Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/AccelByte/extend-idle-progression/pkg/domain"
)

// Recorder implements engine.Metrics and the session hooks on top of a
// Prometheus registry.
type Recorder struct {
	clicks          prometheus.Counter
	clickGain       prometheus.Counter
	comboMultiplier prometheus.Histogram
	purchases       *prometheus.CounterVec
	moneySpent      prometheus.Counter
	unlocks         *prometheus.CounterVec
	notifications   *prometheus.CounterVec
	sessionsActive  prometheus.Gauge
	saves           *prometheus.CounterVec
	publishes       *prometheus.CounterVec
}

// NewRecorder registers every metric on reg. Passing prometheus.DefaultRegisterer
// exposes them through promhttp.Handler.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)

	return &Recorder{
		clicks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      MetricNameClicks,
			Help:      HelpTextClicks,
		}),
		clickGain: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      MetricNameClickGain,
			Help:      HelpTextClickGain,
		}),
		comboMultiplier: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      MetricNameComboMultiplier,
			Help:      HelpTextComboMultiplier,
			Buckets:   ComboBuckets,
		}),
		purchases: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      MetricNamePurchases,
				Help:      HelpTextPurchases,
			},
			[]string{LabelUpgrade},
		),
		moneySpent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      MetricNameMoneySpent,
			Help:      HelpTextMoneySpent,
		}),
		unlocks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      MetricNameUnlocks,
				Help:      HelpTextUnlocks,
			},
			[]string{LabelKind},
		),
		notifications: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      MetricNameNotifications,
				Help:      HelpTextNotifications,
			},
			[]string{LabelPriority, LabelResult},
		),
		sessionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      MetricNameSessionsActive,
			Help:      HelpTextSessionsActive,
		}),
		saves: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      MetricNameSaves,
				Help:      HelpTextSaves,
			},
			[]string{LabelResult},
		),
		publishes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      MetricNamePublishes,
				Help:      HelpTextPublishes,
			},
			[]string{LabelKind, LabelResult},
		),
	}
}

func (r *Recorder) Click(gain, multiplier float64) {
	r.clicks.Inc()
	if gain > 0 {
		r.clickGain.Add(gain)
	}
	r.comboMultiplier.Observe(multiplier)
}

func (r *Recorder) Purchase(upgrade string, cost float64) {
	r.purchases.WithLabelValues(upgrade).Inc()
	if cost > 0 {
		r.moneySpent.Add(cost)
	}
}

func (r *Recorder) Unlock(kind domain.UnlockKind) {
	r.unlocks.WithLabelValues(string(kind)).Inc()
}

func (r *Recorder) Notification(priority domain.Priority, accepted bool) {
	result := ResultDropped
	if accepted {
		result = ResultAccepted
	}
	r.notifications.WithLabelValues(string(priority), result).Inc()
}

// SessionOpened and SessionClosed track the in-memory session count.
func (r *Recorder) SessionOpened() { r.sessionsActive.Inc() }
func (r *Recorder) SessionClosed() { r.sessionsActive.Dec() }

func (r *Recorder) Save(err error) {
	r.saves.WithLabelValues(resultOf(err)).Inc()
}

func (r *Recorder) Publish(kind domain.UnlockKind, err error) {
	r.publishes.WithLabelValues(string(kind), resultOf(err)).Inc()
}

func resultOf(err error) string {
	if err != nil {
		return ResultFailure
	}
	return ResultSuccess
}
