package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

const healthCheckTimeout = 3 * time.Second

type Pinger interface {
	Ping(ctx context.Context) error
}

type BrokerStatus interface {
	Healthy() bool
}

// HealthHandler reports dependency state. Nil dependencies are "not configured".
type HealthHandler struct {
	Sheet            Pinger
	DB               Pinger
	RabbitMQ         BrokerStatus
	TwilioConfigured bool
	OpenAIConfigured bool
	Version          string
	StartTime        time.Time
}

type HealthResponse struct {
	Status       string            `json:"status"`
	Version      string            `json:"version"`
	Uptime       string            `json:"uptime"`
	Dependencies map[string]string `json:"dependencies"`
}

func NewHealthHandler(sheet, db Pinger, rabbitMQ BrokerStatus, twilioConfigured, openAIConfigured bool) *HealthHandler {
	return &HealthHandler{
		Sheet:            sheet,
		DB:               db,
		RabbitMQ:         rabbitMQ,
		TwilioConfigured: twilioConfigured,
		OpenAIConfigured: openAIConfigured,
		Version:          "1.0.0",
		StartTime:        time.Now(),
	}
}

func (h *HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	deps := map[string]string{
		"sheet":    pingStatus(ctx, h.Sheet),
		"database": pingStatus(ctx, h.DB),
		"twilio":   configuredStatus(h.TwilioConfigured),
		"openai":   configuredStatus(h.OpenAIConfigured),
	}

	if h.RabbitMQ != nil {
		if h.RabbitMQ.Healthy() {
			deps["rabbitmq"] = "healthy"
		} else {
			deps["rabbitmq"] = "unhealthy: connection closed"
		}
	} else {
		deps["rabbitmq"] = "not configured"
	}

	status := "healthy"
	for _, v := range deps {
		if v != "healthy" && v != "configured" && v != "not configured" {
			status = "degraded"
			break
		}
	}

	response := HealthResponse{
		Status:       status,
		Version:      h.Version,
		Uptime:       time.Since(h.StartTime).Round(time.Second).String(),
		Dependencies: deps,
	}

	code := http.StatusOK
	if status == "degraded" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, response)
}

func pingStatus(ctx context.Context, p Pinger) string {
	if p == nil {
		return "not configured"
	}
	if err := p.Ping(ctx); err != nil {
		return fmt.Sprintf("unhealthy: %v", err)
	}
	return "healthy"
}

func configuredStatus(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}
