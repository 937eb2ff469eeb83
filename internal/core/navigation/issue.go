package navigation

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/lyvo/session-gateway/internal/core/policy"
	"github.com/lyvo/session-gateway/internal/core/ports"
	"github.com/lyvo/session-gateway/internal/pkg/metrics"
)

// issue hands target to the host router. A navigator error is logged and
// otherwise ignored: the decision stands and the next check repeats it.
func issue(ctx context.Context, nav ports.Navigator, log zerolog.Logger, t policy.Trigger, deviceID, from, target string) {
	metrics.RedirectsTotal.WithLabelValues(t.String(), target).Inc()
	log.Debug().
		Str("device_id", deviceID).
		Str("trigger", t.String()).
		Str("path", from).
		Str("target", target).
		Msg("redirect")

	if nav == nil {
		return
	}
	if err := nav.Navigate(ctx, target, ports.NavigateReplace); err != nil {
		log.Warn().Err(err).Str("device_id", deviceID).Str("target", target).Msg("navigator rejected redirect")
	}
}
