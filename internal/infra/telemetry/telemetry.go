package telemetry

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/JorgeDuranS/AppSegura/internal/infra/config"
)

// Attach publishes a service info gauge so scrapes can tell which deployment
// they are talking to. Re-registration reuses the existing collector, same as
// the HTTP metrics middleware, so tests can attach more than once. Disabled
// telemetry is a no-op; the /metrics endpoint then only carries the request
// metrics and default process collectors.
func Attach(cfg *config.AppConfig, reg prometheus.Registerer) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if !cfg.Telemetry.Enabled {
		return nil
	}

	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	info := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "appsegura",
		Name:      "service_info",
		Help:      "Constant gauge labeled with the running service identity.",
	}, []string{"service", "environment"})

	if err := reg.Register(info); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := already.ExistingCollector.(*prometheus.GaugeVec); ok {
				info = existing
			} else {
				return fmt.Errorf("existing service info collector has unexpected type %T", already.ExistingCollector)
			}
		} else {
			return fmt.Errorf("register service info collector: %w", err)
		}
	}

	info.WithLabelValues(cfg.App.Name, cfg.App.Env).Set(1)
	return nil
}
