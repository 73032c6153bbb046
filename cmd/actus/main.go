// actus-core — deterministic cashflow engines for ACTUS contract types
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/atpar/actus-core/api"
	"github.com/atpar/actus-core/internal/config"
	"github.com/atpar/actus-core/internal/engine"
	"github.com/atpar/actus-core/internal/simulation"
	"github.com/atpar/actus-core/pkg/models"
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
	Use:   "actus",
	Short: "actus-core — deterministic cashflow engines for ACTUS contract types",
	Long: `actus-core computes event schedules, state transitions, and payoffs
for ACTUS contract types (PAM, ANN, CEG, CEC, CERTF, STK, COLLA).
All arithmetic is 18-decimal fixed point; identical inputs always
produce identical cashflow streams.`,
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
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(stateCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statusCmd)
}

// loadTerms reads a contract terms JSON file.
func loadTerms(path string) (*models.Terms, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read terms file: %w", err)
	}
	var terms models.Terms
	if err := json.Unmarshal(data, &terms); err != nil {
		return nil, fmt.Errorf("failed to parse terms file: %w", err)
	}
	return &terms, nil
}

func formatDate(ts int64) string {
	return time.Unix(ts, 0).UTC().Format("2006-01-02")
}

// horizon resolves the projection window end from the configured
// horizon for contracts without a maturity date.
func horizon(terms *models.Terms) int64 {
	years := cfg.Simulation.HorizonYears
	if years <= 0 {
		years = 50
	}
	return simulation.Horizon(terms, time.Now().UTC().AddDate(years, 0, 0).Unix())
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("actus-core %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- State Command ---

var stateCmd = &cobra.Command{
	Use:   "state [terms.json]",
	Short: "Print the initial contract state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		terms, err := loadTerms(args[0])
		if err != nil {
			return err
		}
		eng, err := engine.ForContractType(terms.ContractType)
		if err != nil {
			return err
		}
		state, err := eng.ComputeInitialState(terms)
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(state, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

// --- Events Command ---

var eventsCmd = &cobra.Command{
	Use:   "events [terms.json]",
	Short: "Print the contract event schedule",
	Long:  "Generate and print the full merged event schedule of a contract.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		terms, err := loadTerms(args[0])
		if err != nil {
			return err
		}
		events, err := simulation.Schedule(terms, 0, horizon(terms))
		if err != nil {
			return err
		}

		fmt.Printf("📅 %s schedule — %d events\n\n", terms.ContractType, len(events))
		fmt.Printf("  %-12s %s\n", "DATE", "TYPE")
		for _, ev := range events {
			fmt.Printf("  %-12s %s\n", formatDate(ev.ScheduleTime()), ev.Type())
		}
		return nil
	},
}

// --- Simulate Command ---

var simulateCmd = &cobra.Command{
	Use:   "simulate [terms.json]",
	Short: "Project the contract cashflow stream",
	Long:  "Replay the full event schedule and print the resulting cashflow rows.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		terms, err := loadTerms(args[0])
		if err != nil {
			return err
		}
		asJSON, _ := cmd.Flags().GetBool("json")

		contract := simulation.Contract{ID: terms.ContractID, Terms: terms}
		result, err := simulation.Run(cmd.Context(), contract, 0, horizon(terms))
		if err != nil {
			return err
		}

		if asJSON {
			out, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		}

		fmt.Printf("💰 %s cashflow projection — run %s\n\n", terms.ContractType, result.RunID)
		fmt.Printf("  %-12s %-6s %18s %18s\n", "DATE", "TYPE", "PAYOFF", "NOTIONAL")
		for _, row := range result.Rows {
			fmt.Printf("  %-12s %-6s %18s %18s\n",
				formatDate(row.Time), row.EventType, row.Payoff, row.Notional)
		}
		fmt.Printf("\n  Final performance: %s\n", result.FinalState.ContractPerformance)
		return nil
	},
}

func init() {
	simulateCmd.Flags().Bool("json", false, "print the full result as JSON")
}

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		fmt.Printf("🌐 Starting actus-core API server on %s\n", addr)
		return api.NewServer(cfg).ListenAndServe(addr)
	},
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show system status and configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("═══════════════════════════════════════")
		fmt.Println("  actus-core — System Status")
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  Version:       %s (%s)\n", version, commit)
		fmt.Println()
		fmt.Println("  Configuration:")
		fmt.Printf("    API Server:      %s:%d\n", cfg.API.Host, cfg.API.Port)
		fmt.Printf("    Horizon (years): %d\n", cfg.Simulation.HorizonYears)
		fmt.Printf("    Max Batch Size:  %d\n", cfg.Simulation.MaxBatchSize)
		fmt.Printf("    Log Level:       %s\n", cfg.Logging.Level)
		fmt.Println("═══════════════════════════════════════")
		return nil
	},
}
