package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/andrescamacho/idlecolony-go/internal/domain/ledger"
)

const (
	// Namespace for all metrics
	namespace = "idlecolony"
	// Subsystem for simulation metrics
	subsystem = "engine"
)

var (
	// Registry is the global Prometheus registry for all metrics
	Registry *prometheus.Registry

	// globalLedgerCollector is the singleton ledger metrics collector
	// Set by SetGlobalLedgerCollector() when metrics are enabled
	globalLedgerCollector LedgerMetricsRecorder
)

// LedgerMetricsRecorder defines the interface for recording journal metrics
type LedgerMetricsRecorder interface {
	RecordTransaction(tx *ledger.Transaction)
}

// InitRegistry initializes the Prometheus registry
// Should be called once at application startup if metrics are enabled
func InitRegistry() {
	Registry = prometheus.NewRegistry()
}

// GetRegistry returns the global Prometheus registry
// Returns nil if metrics are not initialized
func GetRegistry() *prometheus.Registry {
	return Registry
}

// IsEnabled returns true if metrics collection is enabled
func IsEnabled() bool {
	return Registry != nil
}

// SetGlobalLedgerCollector sets the global ledger metrics collector
func SetGlobalLedgerCollector(collector LedgerMetricsRecorder) {
	globalLedgerCollector = collector
}

// RecordTransaction records a persisted transaction globally
func RecordTransaction(tx *ledger.Transaction) {
	if globalLedgerCollector != nil && tx != nil {
		globalLedgerCollector.RecordTransaction(tx)
	}
}

// register adds collectors to the global registry; a nil registry means
// metrics are disabled
func register(collectors ...prometheus.Collector) error {
	if Registry == nil {
		return nil
	}
	for _, c := range collectors {
		if err := Registry.Register(c); err != nil {
			return err
		}
	}
	return nil
}
