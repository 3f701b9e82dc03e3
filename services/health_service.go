package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/camden-git/labelloopbackend/database"
	"github.com/camden-git/labelloopbackend/logging"
	"github.com/camden-git/labelloopbackend/storage"
)

const (
	HealthOK       = "ok"
	HealthError    = "error"
	HealthDegraded = "degraded"
)

// ComponentHealth is the state of one dependency
type ComponentHealth struct {
	Status    string   `json:"status"`
	Message   string   `json:"message,omitempty"`
	LatencyMs *float64 `json:"latency_ms,omitempty"`
}

// Health is the aggregated state of the service
type Health struct {
	Status     string                     `json:"status"`
	Components map[string]ComponentHealth `json:"components"`
}

// HealthService probes the database and object storage
type HealthService struct {
	db    *gorm.DB
	store storage.ObjectStore
	debug bool
}

// NewHealthService creates a new HealthService. With debug set, raw error text is echoed in messages.
func NewHealthService(db *gorm.DB, store storage.ObjectStore, debug bool) *HealthService {
	return &HealthService{db: db, store: store, debug: debug}
}

// Check never fails; a broken dependency turns the overall status into degraded
func (s *HealthService) Check(ctx context.Context) Health {
	components := map[string]ComponentHealth{
		"api": {Status: HealthOK},
		"db":  s.checkDB(ctx),
		"s3":  s.checkStorage(),
	}

	status := HealthOK
	for _, c := range components {
		if c.Status == HealthError {
			status = HealthDegraded
			break
		}
	}
	return Health{Status: status, Components: components}
}

func (s *HealthService) checkDB(ctx context.Context) ComponentHealth {
	if s.db == nil {
		return ComponentHealth{Status: HealthError, Message: "database is not configured"}
	}

	latency, err := database.Ping(ctx, s.db)
	if err != nil {
		logging.Named("health").Warnw("database check failed", "error", err)
		if s.debug {
			return ComponentHealth{Status: HealthError, Message: err.Error()}
		}
		return ComponentHealth{Status: HealthError}
	}
	ms := float64(latency.Microseconds()) / 1000.0
	return ComponentHealth{Status: HealthOK, LatencyMs: &ms}
}

func (s *HealthService) checkStorage() ComponentHealth {
	if s.store == nil || !s.store.IsConfigured() {
		return ComponentHealth{Status: HealthError, Message: "S3 configuration is incomplete"}
	}

	ok, message, latency := s.store.TestConnection()
	if !ok {
		return ComponentHealth{Status: HealthError, Message: message}
	}
	return ComponentHealth{Status: HealthOK, LatencyMs: &latency}
}
