package domain

import (
	"context"
)

// HealthAssessor runs the complete assessment pipeline for one patient.
type HealthAssessor interface {
	Assess(ctx context.Context, input *PatientInput) (*Assessment, error)
	Validate(input *PatientInput) error
}

// ResultCache memoises assessments by their canonical input.
type ResultCache interface {
	Get(ctx context.Context, input *PatientInput) (*Assessment, bool)
	Set(ctx context.Context, input *PatientInput, assessment *Assessment) error
	Ping(ctx context.Context) error
	Close() error
}

// ConfigManager defines the interface for configuration management
type ConfigManager interface {
	GetConfig() *Config
	GetServerConfig() *ServerConfig
	GetCacheConfig() *CacheConfig
	Reload() error
	Validate() error
	IsProduction() bool
	IsDevelopment() bool
}
