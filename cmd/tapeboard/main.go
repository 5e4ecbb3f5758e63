// Tapeboard — earnings dates and large-flow positioning on one timeline.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/zanisimone/tapeboard/api"
	"github.com/zanisimone/tapeboard/internal/config"
	"github.com/zanisimone/tapeboard/internal/dashboard"
	"github.com/zanisimone/tapeboard/internal/earnings"
	"github.com/zanisimone/tapeboard/internal/logging"
	"github.com/zanisimone/tapeboard/internal/positions"
	"github.com/zanisimone/tapeboard/pkg/utils"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config
var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "tapeboard",
	Short: "Tapeboard — earnings dates and large-flow positioning on one timeline",
	Long: `Tapeboard tracks the next earnings date for a watchlist of symbols and
overlays large positioning events (block trades, options sweeps) uploaded
from CSV, merged into a single chronological view. Serve it as a local
dashboard or render the same view straight to the terminal.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional; real environment variables win either way.
		_ = godotenv.Load()

		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logCfg := logging.Config{
			Level:      cfg.Logging.Level,
			Console:    cfg.Logging.Console,
			File:       cfg.Logging.File,
			MaxSizeMB:  cfg.Logging.MaxSizeMB,
			MaxBackups: cfg.Logging.MaxBackups,
			MaxAgeDays: cfg.Logging.MaxAgeDays,
		}
		if level, _ := cmd.Flags().GetString("log-level"); level != "" {
			logCfg.Level = level
		}
		logging.New(logCfg)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(earningsCmd)
	rootCmd.AddCommand(timelineCmd)
	rootCmd.AddCommand(templateCmd)
	rootCmd.AddCommand(statusCmd)
}

// newEarningsService wires the Yahoo source the same way the server does.
func newEarningsService() *earnings.Service {
	src := earnings.NewYahooSource(cfg.Provider.RequestsPerSec, cfg.Provider.UserAgent)
	return earnings.NewService(src, cfg.Provider.CacheTTL(), cfg.Provider.Timeout())
}

// resolveArgs normalizes positional symbols, falling back to the configured
// watchlist when none are given.
func resolveArgs(args []string) []string {
	if len(args) > 0 {
		return utils.ResolveSymbolList(args)
	}
	return utils.ResolveSymbolList(cfg.Dashboard.Symbols)
}

func untilText(now, date time.Time) string {
	days := utils.DaysUntil(now, date)
	switch {
	case days < 0:
		return fmt.Sprintf("%dd ago", -days)
	case days == 0:
		return "today"
	case days == 1:
		return "tomorrow"
	default:
		return fmt.Sprintf("in %dd", days)
	}
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Tapeboard %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Serve Command (Dashboard Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard and API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if host, _ := cmd.Flags().GetString("host"); host != "" {
			cfg.Server.Host = host
		}
		if port, _ := cmd.Flags().GetInt("port"); port != 0 {
			cfg.Server.Port = port
		}

		fmt.Printf("🌐 Tapeboard dashboard on http://%s\n", cfg.Server.Addr())
		return api.NewServer(cfg, version).ListenAndServe(cfg.Server.Addr())
	},
}

func init() {
	serveCmd.Flags().String("host", "", "listen host override")
	serveCmd.Flags().Int("port", 0, "listen port override")
}

// --- Earnings Command ---

var earningsCmd = &cobra.Command{
	Use:   "earnings [symbols...]",
	Short: "Look up the next earnings date for each symbol",
	Long: `Look up the next scheduled earnings date for each symbol, or for the
configured watchlist when no symbols are given.

Examples:
  tapeboard earnings AAPL MSFT NVDA
  tapeboard earnings`,
	RunE: func(cmd *cobra.Command, args []string) error {
		symbols := resolveArgs(args)
		if len(symbols) == 0 {
			return fmt.Errorf("no symbols given and the configured watchlist is empty")
		}

		fmt.Printf("📅 Fetching earnings dates for %s\n\n", strings.Join(symbols, ", "))

		result := newEarningsService().Fetch(cmd.Context(), symbols)

		now := time.Now().UTC()
		for _, ev := range result.Events {
			fmt.Printf("  %-8s %s  %-10s %s\n",
				ev.Symbol, ev.Date.Format("2006-01-02"), ev.Status, untilText(now, ev.Date))
		}
		for _, miss := range result.Missing {
			fmt.Printf("  %-8s %s\n", miss.Symbol, miss.Reason)
		}
		return nil
	},
}

// --- Timeline Command ---

var timelineCmd = &cobra.Command{
	Use:   "timeline [symbols...]",
	Short: "Render the merged earnings and positioning timeline",
	Long: `Render the merged timeline as text: upcoming earnings for the symbols
plus any positioning events from a CSV file, sorted chronologically.

Examples:
  tapeboard timeline AAPL NVDA --positions flows.csv
  tapeboard timeline --positions flows.csv --min-notional 2000000
  tapeboard timeline`,
	RunE: func(cmd *cobra.Command, args []string) error {
		symbols := resolveArgs(args)

		minNotional := cfg.Dashboard.MinNotional
		if cmd.Flags().Changed("min-notional") {
			minNotional, _ = cmd.Flags().GetFloat64("min-notional")
		}

		in := dashboard.Inputs{
			Now:         time.Now().UTC(),
			Symbols:     symbols,
			MinNotional: minNotional,
			Version:     version,
		}

		if path, _ := cmd.Flags().GetString("positions"); path != "" {
			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("failed to open positions file: %w", err)
			}
			defer f.Close()

			events, dropped := positions.ParseCSV(f)
			if events == nil {
				return fmt.Errorf("unusable positions file: %s", dropped[0].Reason)
			}
			in.Positions = events
			in.Upload = &positions.UploadReport{At: in.Now, Accepted: len(events), Dropped: dropped}
		}

		result := newEarningsService().Fetch(cmd.Context(), symbols)
		in.Earnings = result.Events
		in.Missing = result.Missing

		fmt.Print(dashboard.RenderText(in))
		return nil
	},
}

func init() {
	timelineCmd.Flags().String("positions", "", "CSV file of positioning events to overlay")
	timelineCmd.Flags().Float64("min-notional", 0, "minimum absolute notional for positioning events (default from config)")
}

// --- Template Command ---

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Print a starter positions CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		data := positions.Template(time.Now())

		out, _ := cmd.Flags().GetString("output")
		if out == "" {
			fmt.Print(string(data))
			return nil
		}
		if err := os.WriteFile(out, data, 0644); err != nil {
			return fmt.Errorf("failed to write template: %w", err)
		}
		fmt.Printf("📄 Wrote %s\n", out)
		return nil
	},
}

func init() {
	templateCmd.Flags().StringP("output", "o", "", "write to file instead of stdout")
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		news := "disabled"
		if cfg.News.Enabled {
			news = fmt.Sprintf("enabled (limit %d)", cfg.News.Limit)
		}

		fmt.Println("═══════════════════════════════════════")
		fmt.Println("  Tapeboard — Status")
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  Version:  %s (%s)\n", version, commit)
		fmt.Println()
		fmt.Println("  Configuration:")
		fmt.Printf("    Server:        http://%s\n", cfg.Server.Addr())
		fmt.Printf("    Watchlist:     %s\n", strings.Join(cfg.Dashboard.Symbols, ", "))
		fmt.Printf("    Min Notional:  %s\n", utils.FormatCompact(cfg.Dashboard.MinNotional))
		fmt.Printf("    Provider:      yahoo (timeout %ds, %d req/s)\n", cfg.Provider.TimeoutSec, cfg.Provider.RequestsPerSec)
		fmt.Printf("    News:          %s\n", news)
		fmt.Printf("    Log Level:     %s\n", cfg.Logging.Level)
		fmt.Println("═══════════════════════════════════════")
		return nil
	},
}
