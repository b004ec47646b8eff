package metrics

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/andrescamacho/idlecolony-go/internal/application/game"
	"github.com/andrescamacho/idlecolony-go/internal/domain/events"
)

// StatusSource provides the colony view polled for gauges
type StatusSource interface {
	Status() game.Status
}

// ColonyMetricsCollector turns engine events into counters and polls the
// colony status for gauges
type ColonyMetricsCollector struct {
	// Dependencies
	source StatusSource

	// Event metrics
	eventsTotal       *prometheus.CounterVec
	depositedTotal    *prometheus.CounterVec
	workersGenerated  *prometheus.CounterVec
	buildingsFinished *prometheus.CounterVec

	// Status metrics
	resourceBalance *prometheus.GaugeVec
	workers         *prometheus.GaugeVec
	nodeAvailable   *prometheus.GaugeVec
	activitySpeed   *prometheus.GaugeVec
	skillLevel      *prometheus.GaugeVec
	simulatedTime   prometheus.Gauge

	// Lifecycle
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
}

// NewColonyMetricsCollector creates a new colony metrics collector
func NewColonyMetricsCollector(source StatusSource) *ColonyMetricsCollector {
	gauge := func(name, help string, labels ...string) *prometheus.GaugeVec {
		return prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      name,
			Help:      help,
		}, labels)
	}
	counter := func(name, help string, labels ...string) *prometheus.CounterVec {
		return prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      name,
			Help:      help,
		}, labels)
	}

	return &ColonyMetricsCollector{
		source: source,

		eventsTotal:       counter("events_total", "Published engine events by name", "event"),
		depositedTotal:    counter("deposited_total", "Resources deposited by workers", "resource", "target"),
		workersGenerated:  counter("workers_generated_total", "Workers produced by generator buildings", "worker_type"),
		buildingsFinished: counter("buildings_completed_total", "Completed constructions by building type", "building_type"),

		resourceBalance: gauge("resource_balance", "Current ledger balance by resource", "resource"),
		workers:         gauge("workers", "Workers by type and assignment", "worker_type", "assignment"),
		nodeAvailable:   gauge("node_available", "Harvestable units left in each node", "node"),
		activitySpeed:   gauge("activity_speed_multiplier", "Aggregated speed multiplier per activity", "activity"),
		skillLevel:      gauge("skill_level", "Current level of each trained skill", "skill"),
		simulatedTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "simulated_seconds",
			Help:      "Simulated time elapsed since the colony was founded",
		}),
	}
}

// Register registers all colony metrics with the Prometheus registry
func (c *ColonyMetricsCollector) Register() error {
	return register(
		c.eventsTotal,
		c.depositedTotal,
		c.workersGenerated,
		c.buildingsFinished,
		c.resourceBalance,
		c.workers,
		c.nodeAvailable,
		c.activitySpeed,
		c.skillLevel,
		c.simulatedTime,
	)
}

// Subscribe counts every event published on bus
func (c *ColonyMetricsCollector) Subscribe(bus *events.Bus) {
	bus.SubscribeAll(c.HandleEvent)
}

// HandleEvent records one engine event
func (c *ColonyMetricsCollector) HandleEvent(evt events.Event) {
	c.eventsTotal.WithLabelValues(string(evt.Name)).Inc()

	switch payload := evt.Payload.(type) {
	case events.WorkerDepositedPayload:
		for resource, amount := range payload.Payload {
			c.depositedTotal.WithLabelValues(resource, payload.TargetID).Add(amount)
		}
	case events.WorkerGeneratedPayload:
		c.workersGenerated.WithLabelValues(payload.WorkerType).Inc()
	case events.ConstructionCompletedPayload:
		c.buildingsFinished.WithLabelValues(payload.TypeID).Inc()
	}
}

// Start begins the status polling goroutine
func (c *ColonyMetricsCollector) Start(ctx context.Context, interval time.Duration) {
	c.ctx, c.cancelFunc = context.WithCancel(ctx)

	c.wg.Add(1)
	go c.collectStatus(interval)
}

// Stop gracefully stops the metrics collection
func (c *ColonyMetricsCollector) Stop() {
	if c.cancelFunc != nil {
		c.cancelFunc()
	}
	c.wg.Wait()
}

func (c *ColonyMetricsCollector) collectStatus(interval time.Duration) {
	defer c.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.UpdateStatus()
	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.UpdateStatus()
		}
	}
}

// UpdateStatus reads the colony status and refreshes every gauge
func (c *ColonyMetricsCollector) UpdateStatus() {
	if c.source == nil {
		return
	}
	status := c.source.Status()

	c.resourceBalance.Reset()
	for resource, amount := range status.Resources {
		c.resourceBalance.WithLabelValues(resource).Set(amount)
	}

	c.workers.Reset()
	for _, t := range status.WorkerTypes {
		c.workers.WithLabelValues(t.Type, "assigned").Set(float64(t.Assigned))
		c.workers.WithLabelValues(t.Type, "free").Set(float64(t.Free))
	}

	for _, n := range status.Nodes {
		c.nodeAvailable.WithLabelValues(n.ID).Set(n.Available)
	}
	for _, a := range status.Activities {
		c.activitySpeed.WithLabelValues(a.ID).Set(a.SpeedMultiplier)
	}

	c.skillLevel.Reset()
	for _, s := range status.Skills {
		c.skillLevel.WithLabelValues(s.Skill).Set(float64(s.Level))
	}

	c.simulatedTime.Set(status.Elapsed.Seconds())
}
