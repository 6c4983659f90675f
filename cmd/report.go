package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"genfity-report-service/internal/config"
	"genfity-report-service/internal/db"
	"genfity-report-service/internal/report"
	"genfity-report-service/internal/storage"
	"genfity-report-service/internal/store"

	"github.com/spf13/cobra"
)

type reportOptions struct {
	merchantID int64
	file       string
	period     string
	startDate  string
	endDate    string
	orderType  string
	status     string
	payment    string
	voucher    string
	scheduled  bool
	dashboard  bool
	revenue    bool
	archive    bool

	anomalyWindow  int
	anomalyStdDev  float64
	anomalyMinDrop float64
}

func newReportCmd(a *app) *cobra.Command {
	opts := &reportOptions{}
	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Render one merchant report as JSON",
		Long: `report builds the same document as GET /api/merchant/reports.
Orders come from the database (DATABASE_URL) or, with --file, from an
exported JSON order file. --archive also stores the result in the object store.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, a.config(), opts)
		},
	}

	flags := reportCmd.Flags()
	flags.Int64Var(&opts.merchantID, "merchant", 0, "merchant id (defaults to the file's merchant with --file)")
	flags.StringVar(&opts.file, "file", "", "exported order file to report on instead of the database")
	flags.StringVar(&opts.period, "period", report.PeriodMonth, "today, week, month, year or custom")
	flags.StringVar(&opts.startDate, "start", "", "custom range start (YYYY-MM-DD or RFC3339)")
	flags.StringVar(&opts.endDate, "end", "", "custom range end (YYYY-MM-DD or RFC3339)")
	flags.StringVar(&opts.orderType, "order-type", "", "comma separated order types")
	flags.StringVar(&opts.status, "status", "", "comma separated order statuses")
	flags.StringVar(&opts.payment, "payment-method", "", "comma separated payment methods")
	flags.StringVar(&opts.voucher, "voucher-source", "", "comma separated voucher sources")
	flags.BoolVar(&opts.scheduled, "scheduled-only", false, "only scheduled orders")
	flags.BoolVar(&opts.dashboard, "dashboard", false, "render the sales dashboard instead of the full report")
	flags.BoolVar(&opts.revenue, "revenue", false, "render revenue analytics for --start/--end (last 30 days by default)")
	flags.IntVar(&opts.anomalyWindow, "anomaly-window", report.DefaultAnomalyWindow, "trailing days the anomaly baseline is computed over")
	flags.Float64Var(&opts.anomalyStdDev, "anomaly-std-dev", report.DefaultAnomalyStdDev, "standard deviations below the baseline that count as an anomaly")
	flags.Float64Var(&opts.anomalyMinDrop, "anomaly-min-drop-pct", report.DefaultAnomalyMinDropPct, "minimum percentage drop below the baseline that counts as an anomaly")
	flags.BoolVar(&opts.archive, "archive", false, "store the rendered report in the object store")
	return reportCmd
}

// values maps the flags onto the query string the HTTP API accepts, so both
// surfaces share one parser.
func (o *reportOptions) values() url.Values {
	values := url.Values{}
	values.Set("period", o.period)
	values.Set("startDate", o.startDate)
	values.Set("endDate", o.endDate)
	values.Set("orderType", o.orderType)
	values.Set("status", o.status)
	values.Set("paymentMethod", o.payment)
	values.Set("voucherSource", o.voucher)
	values.Set("scheduledOnly", strconv.FormatBool(o.scheduled))
	values.Set("anomalyWindow", strconv.Itoa(o.anomalyWindow))
	values.Set("anomalyStdDev", strconv.FormatFloat(o.anomalyStdDev, 'f', -1, 64))
	values.Set("anomalyMinDropPct", strconv.FormatFloat(o.anomalyMinDrop, 'f', -1, 64))
	return values
}

func runReport(cmd *cobra.Command, cfg config.Config, opts *reportOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	source, merchantID, closeSource, err := openSource(ctx, cfg, opts)
	if err != nil {
		return err
	}
	defer closeSource()

	engine := report.NewEngine(source)
	var out any
	switch {
	case opts.dashboard:
		out, err = engine.BuildDashboard(ctx, merchantID, opts.period)
	case opts.revenue:
		out, err = engine.BuildRevenue(ctx, merchantID, opts.startDate, opts.endDate)
	default:
		out, err = engine.Build(ctx, merchantID, report.ParseParams(opts.values()))
	}
	if errors.Is(err, store.ErrMerchantNotFound) {
		return fmt.Errorf("merchant %d not found", merchantID)
	}
	if err != nil {
		return err
	}

	body, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}

	if opts.archive {
		objectStore, err := storage.NewObjectStore(ctx, storageConfig(cfg))
		if err != nil {
			return fmt.Errorf("archive: %w", err)
		}
		snapshot, err := storage.NewSnapshots(objectStore).Archive(ctx, merchantID, body)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "archived %s\n", snapshot.Key)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(body))
	return err
}

func openSource(ctx context.Context, cfg config.Config, opts *reportOptions) (report.OrderSource, int64, func(), error) {
	if opts.file != "" {
		mem, merchant, err := store.LoadFile(opts.file)
		if err != nil {
			return nil, 0, nil, err
		}
		merchantID := opts.merchantID
		if merchantID == 0 {
			merchantID = merchant.ID
		}
		return mem, merchantID, func() {}, nil
	}

	if opts.merchantID <= 0 {
		return nil, 0, nil, errors.New("--merchant is required without --file")
	}
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, 0, nil, err
	}
	source := store.NewPostgres(pool, store.Defaults{Currency: cfg.DefaultCurrency, Timezone: cfg.DefaultTimezone})
	return source, opts.merchantID, pool.Close, nil
}
