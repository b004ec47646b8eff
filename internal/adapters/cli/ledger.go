package cli

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/idlecolony-go/internal/adapters/persistence"
	"github.com/andrescamacho/idlecolony-go/internal/application/ledger/queries"
)

const separator = "─────────────────────────────────────────────────────────────────────────────"

// NewJournalCommand creates the journal command
func NewJournalCommand() *cobra.Command {
	var (
		startDate string
		endDate   string
		resource  string
		category  string
		txType    string
		related   string
		limit     int
		offset    int
		orderBy   string
	)

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "List resource transactions",
		Long: `List the recorded resource transactions of the current slot.

Every balance change is journaled with its balance before and after.
Results are ordered by timestamp descending (newest first) by default.

Categories:
  PRODUCTION    - Harvest deposits and manual harvests
  CONSUMPTION   - Activity inputs, training costs and boosts
  INVESTMENT    - Construction and upgrade costs
  POPULATION    - Workers generated or trained
  ADJUSTMENT    - Direct balance corrections

Examples:
  idlecolony journal --limit 20
  idlecolony journal --resource wood --category PRODUCTION
  idlecolony journal --type CONSTRUCTION_COST --start-date 2026-01-01`,
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := parseDateRange(startDate, endDate)
			if err != nil {
				return err
			}
			query := &queries.GetTransactionsQuery{
				StartDate:       start,
				EndDate:         end,
				Resource:        optional(resource),
				Category:        optional(category),
				TransactionType: optional(txType),
				RelatedEntityID: optional(related),
				Limit:           limit,
				Offset:          offset,
				OrderBy:         orderBy,
			}
			return withColony(false, func(ctx context.Context, app *App) error {
				resp, err := app.Send(ctx, query)
				if err != nil {
					return fmt.Errorf("failed to query transactions: %w", err)
				}
				displayTransactionList(resp.(*queries.GetTransactionsResponse))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&startDate, "start-date", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&endDate, "end-date", "", "End date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&resource, "resource", "", "Filter by resource")
	cmd.Flags().StringVar(&category, "category", "", "Filter by category")
	cmd.Flags().StringVar(&txType, "type", "", "Filter by transaction type")
	cmd.Flags().StringVar(&related, "related", "", "Filter by related node, activity or building")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of transactions to return")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of transactions to skip")
	cmd.Flags().StringVar(&orderBy, "order-by", "timestamp DESC", "Sort order")

	return cmd
}

// NewFlowCommand creates the resource flow report command
func NewFlowCommand() *cobra.Command {
	var (
		startDate string
		endDate   string
		resource  string
	)

	cmd := &cobra.Command{
		Use:   "flow",
		Short: "Summarize resource inflow and outflow",
		Long: `Summarize journaled transactions per resource and category.

Example:
  idlecolony flow --start-date 2026-01-15 --end-date 2026-01-22`,
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := parseDateRange(startDate, endDate)
			if err != nil {
				return err
			}
			return withColony(false, func(ctx context.Context, app *App) error {
				resp, err := app.Send(ctx, &queries.GetResourceFlowQuery{StartDate: start, EndDate: end, Resource: optional(resource)})
				if err != nil {
					return fmt.Errorf("failed to generate flow report: %w", err)
				}
				displayResourceFlow(resp.(*queries.GetResourceFlowResponse))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&startDate, "start-date", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&endDate, "end-date", "", "End date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&resource, "resource", "", "Only report this resource")

	return cmd
}

// NewEventsCommand creates the event log command
func NewEventsCommand() *cobra.Command {
	var (
		level     string
		eventType string
		since     time.Duration
		limit     int
		clearLog  bool
	)

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Show the colony event log",
		Long: `Show persisted simulation events, newest first.

Events are only persisted when logging.event_log is enabled. Repeated
identical events inside the dedup window are stored once.

Examples:
  idlecolony events --limit 20
  idlecolony events --level WARNING --since 1h
  idlecolony events --type production.halted`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withColony(false, func(ctx context.Context, app *App) error {
				log := app.EventLog()
				if log == nil {
					return fmt.Errorf("event log is not available")
				}
				if clearLog {
					if err := log.DeleteAll(ctx); err != nil {
						return err
					}
					fmt.Printf("✓ Event log of slot %s cleared\n", app.Slot)
					return nil
				}

				filter := persistence.EventLogFilter{
					Level:     strings.ToUpper(level),
					EventType: eventType,
					Limit:     limit,
				}
				if since > 0 {
					from := time.Now().Add(-since)
					filter.Since = &from
				}
				entries, err := log.GetLogs(ctx, filter)
				if err != nil {
					return err
				}
				displayEvents(entries)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&level, "level", "", "Filter by level (DEBUG, INFO, WARNING, ERROR)")
	cmd.Flags().StringVar(&eventType, "type", "", "Filter by event type")
	cmd.Flags().DurationVar(&since, "since", 0, "Only show events newer than this")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of events")
	cmd.Flags().BoolVar(&clearLog, "clear", false, "Delete the slot's event log")

	return cmd
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

// parseDateRange parses YYYY-MM-DD bounds; the end date covers its whole day
func parseDateRange(startDate, endDate string) (*time.Time, *time.Time, error) {
	var start, end *time.Time
	if startDate != "" {
		parsed, err := time.Parse("2006-01-02", startDate)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid start date format: %w", err)
		}
		start = &parsed
	}
	if endDate != "" {
		parsed, err := time.Parse("2006-01-02", endDate)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid end date format: %w", err)
		}
		endOfDay := parsed.Add(24*time.Hour - time.Nanosecond)
		end = &endOfDay
	}
	if start != nil && end != nil && end.Before(*start) {
		return nil, nil, fmt.Errorf("end date %s is before start date %s", endDate, startDate)
	}
	return start, end, nil
}

func displayTransactionList(response *queries.GetTransactionsResponse) {
	if len(response.Transactions) == 0 {
		fmt.Println("No transactions found")
		return
	}

	fmt.Printf("\nTRANSACTIONS (Showing %d of %d total)\n", len(response.Transactions), response.Total)
	fmt.Println(separator)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Timestamp\tType\tResource\tAmount\tBalance\tRelated")
	fmt.Fprintln(w, "─────────\t────\t────────\t──────\t───────\t───────")

	for _, tx := range response.Transactions {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			tx.Timestamp.Format("2006-01-02 15:04:05"),
			tx.Type,
			tx.Resource,
			formatSigned(tx.Amount),
			formatAmount(tx.BalanceAfter),
			orDash(tx.RelatedEntityID),
		)
	}

	w.Flush()
	fmt.Println(separator)
	fmt.Printf("Total: %d transactions\n\n", response.Total)
}

func displayResourceFlow(response *queries.GetResourceFlowResponse) {
	if len(response.Resources) == 0 {
		fmt.Println("No transactions found")
		return
	}

	fmt.Printf("\nRESOURCE FLOW (By Category)\n")
	fmt.Println(separator)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Resource\tCategory\tInflow\tOutflow\tNet Flow\tTransactions")
	fmt.Fprintln(w, "────────\t────────\t──────\t───────\t────────\t────────────")

	for _, res := range response.Resources {
		for _, cat := range res.Categories {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\n",
				res.Resource,
				cat.Category,
				formatAmount(cat.Inflow),
				formatAmount(-cat.Outflow),
				formatSigned(cat.NetFlow),
				cat.Transactions,
			)
		}
		fmt.Fprintf(w, "%s\tTOTAL\t%s\t%s\t%s\t\n",
			res.Resource,
			formatAmount(res.Inflow),
			formatAmount(-res.Outflow),
			formatSigned(res.NetFlow),
		)
	}

	w.Flush()
	fmt.Println(separator)
}

func displayEvents(entries []persistence.EventLogEntry) {
	if len(entries) == 0 {
		fmt.Println("No events found")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Timestamp\tLevel\tEvent\tMessage")
	fmt.Fprintln(w, "─────────\t─────\t─────\t───────")
	for _, e := range entries {
		msg := e.Message
		if len(e.Metadata) > 0 {
			msg += " " + formatMetadata(e.Metadata)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Timestamp.Format("2006-01-02 15:04:05"), e.Level, e.EventType, msg)
	}
	w.Flush()
}

func formatMetadata(metadata map[string]interface{}) string {
	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, metadata[k]))
	}
	return strings.Join(parts, " ")
}

// formatSigned formats an amount with +/- sign
func formatSigned(amount float64) string {
	if amount >= 0 {
		return "+" + formatAmount(amount)
	}
	return formatAmount(amount)
}

func orDash(v string) string {
	if v == "" {
		return "-"
	}
	return v
}
