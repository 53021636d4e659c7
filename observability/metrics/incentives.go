package metrics

import (
	"math/big"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type IncentiveMetrics struct {
	rewardsPaid    *prometheus.CounterVec
	penaltiesTaken *prometheus.CounterVec
	bonusesPaid    *prometheus.CounterVec
	skipped        *prometheus.CounterVec
	reserve        *prometheus.GaugeVec
}

var (
	incentivesOnce     sync.Once
	incentivesRegistry *IncentiveMetrics

	unitScale = new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
)

// Incentives returns the lazily registered incentive metrics.
func Incentives() *IncentiveMetrics {
	incentivesOnce.Do(func() {
		incentivesRegistry = &IncentiveMetrics{
			rewardsPaid: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "basket",
				Subsystem: "incentives",
				Name:      "rewards_paid_units_total",
				Help:      "Deposit rewards paid out, in whole token units, by asset.",
			}, []string{"asset"}),
			penaltiesTaken: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "basket",
				Subsystem: "incentives",
				Name:      "penalties_units_total",
				Help:      "Withdrawal penalties assessed, in whole token units, by asset.",
			}, []string{"asset"}),
			bonusesPaid: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "basket",
				Subsystem: "incentives",
				Name:      "bonuses_paid_units_total",
				Help:      "Deposit bonuses paid out, in whole token units, by asset.",
			}, []string{"asset"}),
			skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "basket",
				Subsystem: "incentives",
				Name:      "skipped_total",
				Help:      "Payout requests that resolved to zero, by module and reason.",
			}, []string{"module", "reason"}),
			reserve: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Namespace: "basket",
				Subsystem: "incentives",
				Name:      "reserve_units",
				Help:      "Reserve balance observed after the latest payout, by module.",
			}, []string{"module"}),
		}
		prometheus.MustRegister(
			incentivesRegistry.rewardsPaid,
			incentivesRegistry.penaltiesTaken,
			incentivesRegistry.bonusesPaid,
			incentivesRegistry.skipped,
			incentivesRegistry.reserve,
		)
	})
	return incentivesRegistry
}

// toUnits converts an 18-decimal fixed-point amount into a float for export.
func toUnits(amount *big.Int) float64 {
	if amount == nil || amount.Sign() <= 0 {
		return 0
	}
	f := new(big.Float).SetInt(amount)
	out, _ := f.Quo(f, unitScale).Float64()
	return out
}

func label(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return "unknown"
	}
	return value
}

func (m *IncentiveMetrics) ObserveReward(asset string, amount *big.Int) {
	if m == nil {
		return
	}
	m.rewardsPaid.WithLabelValues(label(asset)).Add(toUnits(amount))
}

func (m *IncentiveMetrics) ObservePenalty(asset string, amount *big.Int) {
	if m == nil {
		return
	}
	m.penaltiesTaken.WithLabelValues(label(asset)).Add(toUnits(amount))
}

func (m *IncentiveMetrics) ObserveBonus(asset string, amount *big.Int) {
	if m == nil {
		return
	}
	m.bonusesPaid.WithLabelValues(label(asset)).Add(toUnits(amount))
}

func (m *IncentiveMetrics) ObserveSkipped(module, reason string) {
	if m == nil {
		return
	}
	m.skipped.WithLabelValues(label(module), label(reason)).Inc()
}

func (m *IncentiveMetrics) SetReserve(module string, balance *big.Int) {
	if m == nil {
		return
	}
	m.reserve.WithLabelValues(label(module)).Set(toUnits(balance))
}
