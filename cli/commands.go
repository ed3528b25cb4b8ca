package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/Govind-619/JewelSphere/config"
	"github.com/Govind-619/JewelSphere/payments"
	"github.com/Govind-619/JewelSphere/utils"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the order and payment tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.DBDriver == "memory" {
				return fmt.Errorf("DB_DRIVER=memory has nothing to migrate")
			}
			db, err := config.OpenDatabase(cfg)
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}
			if err := config.Migrate(db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Migration complete")
			return nil
		},
	}
}

func orderStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "order-status <orderID>",
		Short: "Print an order's derived payment status and retry chain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			app, err := Bootstrap(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			report, err := app.Service.Inspect(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printReport(cmd.OutOrStdout(), report)
			return nil
		},
	}
}

func printReport(w io.Writer, r *payments.OrderReport) {
	fmt.Fprintf(w, "Order:          %s\n", r.Order.ID)
	fmt.Fprintf(w, "Customer:       %s <%s>\n", r.Order.CustomerName, r.Order.CustomerEmail)
	fmt.Fprintf(w, "Amount:         %s %s\n", r.Order.Amount.StringFixed(2), r.Order.Currency)
	fmt.Fprintf(w, "Order status:   %s\n", r.Order.Status)
	fmt.Fprintf(w, "Payment status: %s\n", r.PaymentStatus)
	fmt.Fprintf(w, "Attempt state:  %s\n", r.State)
	fmt.Fprintln(w, "Retry chain:")
	for i, p := range r.Chain.Attempts {
		fmt.Fprintf(w, "  %d. %s  %-10s  %s  %s\n", i+1, p.ID, p.Status, p.TxRef, p.CreatedAt.Format(time.RFC3339))
	}
	if r.Chain.Branched {
		fmt.Fprintln(w, "  (chain is branched)")
	}
	if r.Integrity != nil {
		fmt.Fprintf(w, "Integrity:      %v\n", r.Integrity)
	}
}

func analyzeLogsCmd() *cobra.Command {
	var date, dir string
	var top int

	cmd := &cobra.Command{
		Use:   "analyze-logs",
		Short: "Summarise a day of payment activity from the log files",
		RunE: func(cmd *cobra.Command, args []string) error {
			day := time.Now()
			if date != "" {
				parsed, err := time.Parse("2006-01-02", date)
				if err != nil {
					return fmt.Errorf("invalid --date %q, want YYYY-MM-DD", date)
				}
				day = parsed
			}
			if dir == "" {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				dir = cfg.LogDir
			}

			stats, err := utils.AnalyzeLogs(dir, day)
			if err != nil {
				return err
			}
			stats.WriteReport(cmd.OutOrStdout(), top)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "day to analyze (YYYY-MM-DD), default today")
	cmd.Flags().StringVar(&dir, "dir", "", "log directory, default LOG_DIR")
	cmd.Flags().IntVar(&top, "top", 5, "entries listed per ranking")
	return cmd
}
