// Package api exposes the ops surface over HTTP: health and metrics
// exposition, a live engine snapshot, and the running configuration.
package api

import (
	"net/http"

	"github.com/tsachs/pacer/internal/config"
)

// ConfigHandler serves the validated configuration the engine runs with.
type ConfigHandler struct {
	cfg *config.Config
}

// NewConfigHandler creates a new config handler.
func NewConfigHandler(cfg *config.Config) *ConfigHandler {
	return &ConfigHandler{cfg: cfg}
}

// HandleConfig handles GET /config requests.
func (h *ConfigHandler) HandleConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"logLevel":          h.cfg.LogLevel,
		"addr":              h.cfg.Addr,
		"hardCPSLimit":      h.cfg.HardCPSLimit,
		"targetCPSRange":    []float64{h.cfg.TargetCPSLo, h.cfg.TargetCPSHi},
		"sensMultiplier":    h.cfg.SensMultiplier,
		"triggerButtons":    h.cfg.TriggerButtons,
		"engageFraction":    h.cfg.EngageFraction,
		"disengageFraction": h.cfg.DisengageFraction,
		"engageDwellMS":     h.cfg.EngageDwellMS,
		"disengageDwellMS":  h.cfg.DisengageDwellMS,
		"rampUpMS":          h.cfg.RampUpMS,
		"rampDownMS":        h.cfg.RampDownMS,
		"lookbackMS":        h.cfg.LookbackMS,
		"activityHorizonMS": h.cfg.ActivityHorizonMS,
		"burstThresholdMS":  h.cfg.BurstThresholdMS,
		"holdRangeMS":       []int{h.cfg.HoldMinMS, h.cfg.HoldMaxMS},
		"tickIntervalMS":    h.cfg.TickIntervalMS,
		"queueSize":         h.cfg.QueueSize,
		"multiplierEpsilon": h.cfg.MultiplierEpsilon,
	})
}
