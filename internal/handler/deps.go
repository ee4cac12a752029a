package handler

import (
	"golang.org/x/time/rate"

	"studyroom/internal/app/admission"
	"studyroom/internal/app/signaling"
	"studyroom/internal/configs"
	"studyroom/internal/pkg/auth/jwt"
	"studyroom/internal/pkg/limiter"
)

// AppDeps bundles everything the HTTP handlers need.
type AppDeps struct {
	Registry *signaling.Registry
	Gate     *admission.Gate
	Ledger   *jwt.Ledger
	Config   *configs.AppConfig

	// AdmissionLimiter and ConnectLimiter keep separate per-IP buckets so that fetching a
	// token does not eat into the budget for opening the websocket with it.
	AdmissionLimiter *limiter.IPRateLimiter
	ConnectLimiter   *limiter.IPRateLimiter
}

// NewAppDeps wires the per-IP limiters from cfg.
func NewAppDeps(cfg *configs.AppConfig, registry *signaling.Registry, gate *admission.Gate, ledger *jwt.Ledger) *AppDeps {
	return &AppDeps{
		Registry:         registry,
		Gate:             gate,
		Ledger:           ledger,
		Config:           cfg,
		AdmissionLimiter: limiter.NewIPRateLimiter(rate.Limit(cfg.ConnectRate), cfg.ConnectBurst),
		ConnectLimiter:   limiter.NewIPRateLimiter(rate.Limit(cfg.ConnectRate), cfg.ConnectBurst),
	}
}

// messageLimiter returns a fresh inbound-event limiter for one websocket connection.
func (d *AppDeps) messageLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Limit(d.Config.MessageRate), d.Config.MessageBurst)
}

// Close stops the background sweepers owned by the dependencies.
func (d *AppDeps) Close() {
	d.AdmissionLimiter.Stop()
	d.ConnectLimiter.Stop()
	d.Ledger.Stop()
}
