// NiftyScan — sector-wide NSE stock screener
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"fmt"
	"math"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/seenimoa/niftyscan/internal/analysis/fundamental"
	"github.com/seenimoa/niftyscan/internal/config"
	"github.com/seenimoa/niftyscan/internal/datasource"
	"github.com/seenimoa/niftyscan/internal/logging"
	"github.com/seenimoa/niftyscan/internal/scan"
	"github.com/seenimoa/niftyscan/internal/universe"
	"github.com/seenimoa/niftyscan/pkg/models"
	"github.com/seenimoa/niftyscan/pkg/utils"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config and logger, set in PersistentPreRunE.
var (
	cfg *config.Config
	log zerolog.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "niftyscan",
	Short: "NiftyScan — sector-wide NSE stock screener",
	Long: `NiftyScan screens every stock in the NSE sectoral indices against
four fundamental quality rules, attaches ATR-based stop-loss and target
levels to qualifying stocks, and prints a ranked shortlist.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
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

		level := cfg.Logging.Level
		if override, _ := cmd.Flags().GetString("log-level"); override != "" {
			level = override
		}
		log = logging.New(level, cfg.Logging.Format)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(sectorsCmd)
	rootCmd.AddCommand(newsCmd)
	rootCmd.AddCommand(statusCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("NiftyScan %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Scan Command ---

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan all sectoral indices for quality stocks",
	Long: `Fetch every constituent of the NSE sectoral indices, score each stock
against the four quality rules (ROE, debt, PEG, PE), and print the ranked
top picks and watchlist with ATR-based trade levels.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		workers := cfg.Scan.Workers
		if v, _ := cmd.Flags().GetInt("workers"); cmd.Flags().Changed("workers") {
			workers = v
		}
		presetName := cfg.Scan.Preset
		if v, _ := cmd.Flags().GetString("preset"); cmd.Flags().Changed("preset") {
			presetName = v
		}
		sortBy := cfg.Scan.SortBy
		if v, _ := cmd.Flags().GetString("sort-by"); cmd.Flags().Changed("sort-by") {
			sortBy = v
		}
		debug := cfg.Scan.Debug
		if v, _ := cmd.Flags().GetBool("debug"); cmd.Flags().Changed("debug") {
			debug = v
		}

		preset, err := fundamental.PresetByName(presetName)
		if err != nil {
			return err
		}

		fmt.Printf("🔍 NiftyScan — %s preset, %d workers\n", preset.Name, workers)
		fmt.Printf("   Market Status: %s\n\n", utils.MarketStatus())

		fetcher := universe.NewFetcher(log, time.Duration(cfg.Universe.CacheTTLSec)*time.Second)
		tickers, err := fetcher.FetchAll(ctx, func(done, total int, sector string) {
			fmt.Printf("\r   Fetching sector lists... %d/%d (%s)   ", done, total, sector)
		})
		if err != nil {
			return fmt.Errorf("fetch universe: %w", err)
		}
		fmt.Printf("\r   Universe: %d unique stocks across %d sectors          \n\n",
			len(tickers), len(universe.Sectors))

		provider := datasource.NewAggregator(log)
		analyzer := scan.NewAnalyzer(provider, preset, log)
		orch := scan.NewOrchestrator(analyzer, workers, scan.SortBy(sortBy), log)

		report := orch.Scan(ctx, tickers, func(done, total int, ticker string) {
			fmt.Printf("\r   Analyzing... %d/%d   ", done, total)
		})
		fmt.Print("\r                                \r")

		renderReport(report, debug)
		return nil
	},
}

func init() {
	scanCmd.Flags().Int("workers", 5, "concurrent analysis workers (1-20)")
	scanCmd.Flags().String("preset", "tolerant", "scoring preset: tolerant or strict")
	scanCmd.Flags().String("sort-by", "peg", "tie-break within a score band: peg or roe")
	scanCmd.Flags().Bool("debug", false, "show the per-ticker error table")
}

// --- Analyze Command ---

var analyzeCmd = &cobra.Command{
	Use:   "analyze [ticker]",
	Short: "Run the full scoring pipeline on a single stock",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ticker := utils.NormalizeTicker(args[0])
		presetName, _ := cmd.Flags().GetString("preset")
		preset, err := fundamental.PresetByName(presetName)
		if err != nil {
			return err
		}

		provider := datasource.NewAggregator(log)
		analyzer := scan.NewAnalyzer(provider, preset, log)

		fmt.Printf("🔍 Analyzing %s (%s preset)\n\n", ticker, preset.Name)
		rec := analyzer.Analyze(cmd.Context(), ticker)
		if rec.Failed() {
			return fmt.Errorf("analysis failed: %s", rec.Err)
		}

		fmt.Printf("  Price:        ₹%.2f\n", rec.Price)
		fmt.Printf("  Score:        %d/4 — %s\n", rec.Score.Score, rec.Score.Verdict)
		fmt.Printf("  Rules passed: %s\n", strings.Join(rec.Score.RulesPassed, ", "))
		fmt.Printf("  ROE:          %.1f%%\n", rec.ROEPct)
		fmt.Printf("  Debt/Equity:  %.2f\n", rec.DebtEquity)
		fmt.Printf("  P/E:          %s\n", fmtRatio(rec.PE))
		fmt.Printf("  PEG:          %s\n", fmtRatio(rec.PEG))
		if rec.Levels != nil {
			fmt.Printf("  ATR(14):      %.2f\n", rec.Levels.ATR)
			fmt.Printf("  Stop Loss:    ₹%.2f\n", rec.Levels.StopLoss)
			fmt.Printf("  Target:       ₹%.2f (risk:reward %s)\n", rec.Levels.Target, rec.RiskReward)
		} else {
			fmt.Println("  Levels:       unavailable")
		}
		return nil
	},
}

func init() {
	analyzeCmd.Flags().String("preset", "tolerant", "scoring preset: tolerant or strict")
}

// --- Sectors Command ---

var sectorsCmd = &cobra.Command{
	Use:   "sectors",
	Short: "List the sectoral indices in the scan universe",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("📋 Scan universe: %d NSE sectoral indices\n\n", len(universe.Sectors))

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "  INDEX\tSLUG")
		for _, s := range universe.Sectors {
			fmt.Fprintf(w, "  Nifty %s\t%s\n", s.Name, s.Slug)
		}
		return w.Flush()
	},
}

// --- News Command ---

var newsCmd = &cobra.Command{
	Use:   "news [ticker]",
	Short: "Show recent market news, optionally filtered by ticker",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		news := datasource.NewNews()

		var articles []models.NewsArticle
		var err error
		if len(args) == 1 {
			ticker := utils.NormalizeTicker(args[0])
			fmt.Printf("📰 News mentioning %s\n\n", ticker)
			articles, err = news.GetStockNews(cmd.Context(), ticker, limit)
		} else {
			fmt.Println("📰 Market News")
			fmt.Println()
			articles, err = news.GetMarketNews(cmd.Context(), limit)
		}
		if err != nil {
			return fmt.Errorf("fetch news: %w", err)
		}
		if len(articles) == 0 {
			fmt.Println("  no articles found")
			return nil
		}

		for _, a := range articles {
			fmt.Printf("  • %s\n    %s — %s\n    %s\n\n",
				a.Title, a.Source, a.PublishedAt.Format("02 Jan 2006 15:04"), a.Link)
		}
		return nil
	},
}

func init() {
	newsCmd.Flags().Int("limit", 15, "maximum articles to show")
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show system status and configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("═══════════════════════════════════════")
		fmt.Println("  NiftyScan — System Status")
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  Version:       %s (%s)\n", version, commit)
		fmt.Printf("  Market Status: %s\n", utils.MarketStatus())
		fmt.Printf("  Time (IST):    %s\n", utils.FormatDateTimeIST(utils.NowIST()))
		fmt.Println()
		fmt.Println("  Configuration:")
		fmt.Printf("    Workers:       %d\n", cfg.Scan.Workers)
		fmt.Printf("    Preset:        %s\n", cfg.Scan.Preset)
		fmt.Printf("    Sort By:       %s\n", cfg.Scan.SortBy)
		fmt.Printf("    Cache TTL:     %ds\n", cfg.Universe.CacheTTLSec)
		fmt.Printf("    Log Level:     %s\n", cfg.Logging.Level)
		fmt.Println("═══════════════════════════════════════")
		return nil
	},
}

// --- Report rendering ---

// renderReport prints the two ranked tiers and, in debug mode, the error
// table.
func renderReport(report *models.ScanReport, debug bool) {
	if report.Matches() == 0 {
		fmt.Printf("⚠️  %s\n", report.EmptyState())
		if debug {
			renderErrors(report.Errors)
		}
		return
	}

	if len(report.TopPicks) > 0 {
		fmt.Printf("🏆 Top Picks (%d)\n", len(report.TopPicks))
		renderTier(report.TopPicks)
	}
	if len(report.Watchlist) > 0 {
		fmt.Printf("👀 Watchlist (%d)\n", len(report.Watchlist))
		renderTier(report.Watchlist)
	}
	if debug {
		renderErrors(report.Errors)
	}

	fmt.Printf("Scanned %d stocks in %s — %d matched, %d errors\n",
		report.Total, report.Duration.Round(time.Second), report.Matches(), len(report.Errors))
}

func renderTier(recs []models.AnalysisRecord) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "  TICKER\tVERDICT\tSCORE\tPRICE\tROE%\tD/E\tPE\tPEG\tSTOP\tTARGET\tR:R")
	for _, r := range recs {
		stop, target := "-", "-"
		if r.Levels != nil {
			stop = fmt.Sprintf("%.2f", r.Levels.StopLoss)
			target = fmt.Sprintf("%.2f", r.Levels.Target)
		}
		rr := r.RiskReward
		if rr == "" {
			rr = "-"
		}
		fmt.Fprintf(w, "  %s\t%s\t%d/4\t%.2f\t%.1f\t%.2f\t%s\t%s\t%s\t%s\t%s\n",
			r.Ticker, r.Score.Verdict, r.Score.Score, r.Price, r.ROEPct, r.DebtEquity,
			fmtRatio(r.PE), fmtRatio(r.PEG), stop, target, rr)
	}
	w.Flush()
	fmt.Println()
}

func renderErrors(errs []models.AnalysisRecord) {
	if len(errs) == 0 {
		return
	}
	fmt.Printf("❌ Errors (%d)\n", len(errs))
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "  TICKER\tREASON")
	for _, r := range errs {
		fmt.Fprintf(w, "  %s\t%s\n", r.Ticker, r.Err)
	}
	w.Flush()
	fmt.Println()
}

// fmtRatio renders an optional ratio, showing "-" when the provider did
// not report it.
func fmtRatio(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.2f", v)
}
