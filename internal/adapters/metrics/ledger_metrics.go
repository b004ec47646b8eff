package metrics

import (
	"context"
	"log"
	"math"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/andrescamacho/idlecolony-go/internal/application/common"
	ledgerQueries "github.com/andrescamacho/idlecolony-go/internal/application/ledger/queries"
	"github.com/andrescamacho/idlecolony-go/internal/domain/ledger"
)

// LedgerMetricsCollector handles journal metrics (transactions, resource flow)
type LedgerMetricsCollector struct {
	// Dependencies
	mediator common.Mediator

	// Transaction metrics
	transactionsTotal *prometheus.CounterVec
	transactionAmount *prometheus.HistogramVec

	// Flow metrics
	inflow  *prometheus.GaugeVec
	outflow *prometheus.GaugeVec
	netFlow *prometheus.GaugeVec

	// Lifecycle
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
}

// NewLedgerMetricsCollector creates a new ledger metrics collector
func NewLedgerMetricsCollector(mediator common.Mediator) *LedgerMetricsCollector {
	return &LedgerMetricsCollector{
		mediator: mediator,

		transactionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "transactions_total",
				Help:      "Total number of persisted transactions by type and category",
			},
			[]string{"type", "category"},
		),

		transactionAmount: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "transaction_amount",
				Help:      "Transaction amount distribution",
				Buckets:   []float64{1, 2, 5, 10, 25, 50, 100, 500},
			},
			[]string{"type", "category"},
		),

		inflow: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "resource_inflow",
				Help:      "Total persisted inflow by resource",
			},
			[]string{"resource"},
		),

		outflow: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "resource_outflow",
				Help:      "Total persisted outflow by resource",
			},
			[]string{"resource"},
		),

		netFlow: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "resource_net_flow",
				Help:      "Net persisted flow (inflow - outflow) by resource",
			},
			[]string{"resource"},
		),
	}
}

// Register registers all ledger metrics with the Prometheus registry
func (c *LedgerMetricsCollector) Register() error {
	return register(c.transactionsTotal, c.transactionAmount, c.inflow, c.outflow, c.netFlow)
}

// Start begins the flow polling goroutine
func (c *LedgerMetricsCollector) Start(ctx context.Context, interval time.Duration) {
	c.ctx, c.cancelFunc = context.WithCancel(ctx)

	c.wg.Add(1)
	go c.pollResourceFlow(interval)
}

// Stop gracefully stops the ledger metrics collector
func (c *LedgerMetricsCollector) Stop() {
	if c.cancelFunc != nil {
		c.cancelFunc()
	}
	c.wg.Wait()
}

func (c *LedgerMetricsCollector) pollResourceFlow(interval time.Duration) {
	defer c.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.updateResourceFlow()
	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.updateResourceFlow()
		}
	}
}

func (c *LedgerMetricsCollector) updateResourceFlow() {
	if c.mediator == nil {
		return
	}

	response, err := c.mediator.Send(c.ctx, &ledgerQueries.GetResourceFlowQuery{})
	if err != nil {
		log.Printf("Failed to fetch resource flow: %v", err)
		return
	}

	flow, ok := response.(*ledgerQueries.GetResourceFlowResponse)
	if !ok {
		log.Printf("Unexpected response type for resource flow query: %T", response)
		return
	}

	for _, r := range flow.Resources {
		c.inflow.WithLabelValues(r.Resource).Set(r.Inflow)
		c.outflow.WithLabelValues(r.Resource).Set(r.Outflow)
		c.netFlow.WithLabelValues(r.Resource).Set(r.NetFlow)
	}
}

// RecordTransaction records a persisted transaction
func (c *LedgerMetricsCollector) RecordTransaction(tx *ledger.Transaction) {
	txType := tx.TransactionType().String()
	category := tx.Category().String()

	c.transactionsTotal.WithLabelValues(txType, category).Inc()
	c.transactionAmount.WithLabelValues(txType, category).Observe(math.Abs(tx.Amount()))
}
