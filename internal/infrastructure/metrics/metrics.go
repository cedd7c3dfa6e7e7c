package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RelayDeliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "anonrelay",
			Name:      "relay_deliveries_total",
			Help:      "Relayed messages by the delivery tier that succeeded (verbatim, rebuilt, placeholder, failed).",
		},
		[]string{"tier"},
	)
	GuardVerdicts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "anonrelay",
			Name:      "guard_verdicts_total",
			Help:      "Ingress guard decisions.",
		},
		[]string{"verdict"},
	)
	RevealOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "anonrelay",
			Name:      "reveal_outcomes_total",
			Help:      "Reveal requests and purchase confirmations by outcome.",
		},
		[]string{"outcome"},
	)
	ReactionMirrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "anonrelay",
			Name:      "reaction_mirrors_total",
			Help:      "Reaction events by outcome (mirrored, ignored_self, unmatched, no_target, failed).",
		},
		[]string{"outcome"},
	)
	FeedMode = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "anonrelay",
			Name:      "feed_mode",
			Help:      "1 for the realtime feed mode currently active.",
		},
		[]string{"mode"},
	)
	FeedBroadcasts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "anonrelay",
			Name:      "feed_broadcasts_total",
			Help:      "Events pushed to dashboard viewers.",
		},
		[]string{"event"},
	)
)

func init() {
	prometheus.MustRegister(RelayDeliveries)
	prometheus.MustRegister(GuardVerdicts)
	prometheus.MustRegister(RevealOutcomes)
	prometheus.MustRegister(ReactionMirrors)
	prometheus.MustRegister(FeedMode)
	prometheus.MustRegister(FeedBroadcasts)
}

// SetFeedMode flips the feed_mode gauge so exactly one mode reads 1.
func SetFeedMode(mode string) {
	for _, m := range []string{"idle", "push", "poll"} {
		v := 0.0
		if m == mode {
			v = 1
		}
		FeedMode.WithLabelValues(m).Set(v)
	}
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
