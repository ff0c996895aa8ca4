// Command clientreport builds the client re-engagement workbook from two
// dashboard exports: the activity log and the client roster.
package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"clientreport/pkg/config"
	"clientreport/pkg/engine"
	"clientreport/pkg/excel"
	"clientreport/pkg/parser"
	"clientreport/pkg/report"
	"clientreport/pkg/schema"
)

var (
	activitiesPath string
	clientsPath    string
	outputPath     string
	configPath     string
	refPeriod      string
	staleAfter     int
	fuzzy          bool
	fuzzyThreshold float64
	orphanPolicy   string
	verbose        bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "clientreport",
	Short: "Build the client re-engagement activity report",
	Long: `clientreport reconciles the commercial dashboard's activity log with the
client roster and produces a formatted workbook: per client, the most recent
recorded activity and whether the client is overdue for re-engagement.

Inputs are .xlsx or .csv exports; the output is a styled .xlsx workbook with
a master sheet plus one sheet per client type.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zc := zap.NewProductionConfig()
		if verbose {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: run,
}

func init() {
	rootCmd.Flags().StringVarP(&activitiesPath, "activities", "a", "", "path to the activity log export (.xlsx or .csv)")
	rootCmd.Flags().StringVarP(&clientsPath, "clients", "c", "", "path to the client roster export (.xlsx or .csv)")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output workbook path")
	rootCmd.Flags().StringVar(&configPath, "config", "config.yaml", "path to the YAML config file")
	rootCmd.Flags().StringVar(&refPeriod, "reference-period", "", "staleness anchor period, YYYY-MM (default: current month)")
	rootCmd.Flags().IntVar(&staleAfter, "stale-after", 0, "months without activity before a client needs reassignment")
	rootCmd.Flags().BoolVar(&fuzzy, "fuzzy", false, "enable fuzzy name matching")
	rootCmd.Flags().Float64Var(&fuzzyThreshold, "fuzzy-threshold", 0, "minimum similarity for a fuzzy match (0-1)")
	rootCmd.Flags().StringVar(&orphanPolicy, "orphan-policy", "", "verdict policy for unmatched activities: always_flag or same_rule")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	_ = rootCmd.MarkFlagRequired("activities")
	_ = rootCmd.MarkFlagRequired("clients")
}

func run(cmd *cobra.Command, args []string) error {
	started := time.Now()
	runID := uuid.New().String()
	log := logger.With(zap.String("run_id", runID))

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	applyFlagOverrides(cmd, &cfg)

	engineCfg, err := cfg.EngineConfig(time.Now())
	if err != nil {
		return err
	}
	log.Info("starting run",
		zap.String("activities", activitiesPath),
		zap.String("clients", clientsPath),
		zap.Int("ref_year", engineCfg.RefYear),
		zap.Int("ref_month", engineCfg.RefMonth),
		zap.Bool("fuzzy", engineCfg.Fuzzy),
	)

	activityTable, err := parser.ReadActivityTable(activitiesPath)
	if err != nil {
		return inputError(err)
	}
	logWarnings(log, "activity", activityTable.Warnings)

	clientTable, err := parser.ReadClientTable(clientsPath)
	if err != nil {
		return inputError(err)
	}
	logWarnings(log, "client", clientTable.Warnings)

	activities := schema.BuildActivities(activityTable.Records)
	clients := schema.BuildClients(clientTable.Records)
	log.Debug("tables loaded",
		zap.Int("activities", len(activities)),
		zap.Int("clients", len(clients)),
	)

	result, err := engine.Reconcile(clients, activities, engineCfg)
	if err != nil {
		return err
	}

	partition := report.Build(result.Records)
	if err := excel.Write(cfg.OutputPath, partition); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	log.Info("run complete",
		zap.Int("records", len(result.Records)),
		zap.Int("categories", len(partition.Categories)),
		zap.String("output", cfg.OutputPath),
		zap.Duration("elapsed", time.Since(started)),
	)
	printSummary(result, partition, cfg.OutputPath, time.Since(started))
	return nil
}

// applyFlagOverrides lets explicit flags win over file and environment
// configuration.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("output") {
		cfg.OutputPath = outputPath
	}
	if cmd.Flags().Changed("reference-period") {
		cfg.ReferencePeriod = refPeriod
	}
	if cmd.Flags().Changed("stale-after") {
		cfg.StaleAfterMonths = staleAfter
	}
	if cmd.Flags().Changed("fuzzy") {
		cfg.FuzzyMatching = fuzzy
	}
	if cmd.Flags().Changed("fuzzy-threshold") {
		cfg.FuzzyThreshold = fuzzyThreshold
	}
	if cmd.Flags().Changed("orphan-policy") {
		cfg.OrphanPolicy = orphanPolicy
	}
}

// inputError keeps structural validation messages user-facing: the report
// names exactly which required columns are missing from which table.
func inputError(err error) error {
	var verr *parser.ValidationError
	if errors.As(err, &verr) {
		return fmt.Errorf("input not usable: %s", verr.Error())
	}
	return err
}

func logWarnings(log *zap.Logger, tableName string, warnings []parser.Warning) {
	for _, w := range warnings {
		log.Warn("recovered input row",
			zap.String("table", tableName),
			zap.Int("row", w.Row),
			zap.String("issue", w.Message),
		)
	}
}

func printSummary(result *engine.Result, partition *report.Partition, output string, elapsed time.Duration) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("Client Activity Report")
	t.AppendHeader(table.Row{"Category", "Rows"})
	for _, category := range partition.Categories {
		t.AppendRow(table.Row{category.Label, len(category.Records)})
	}
	t.AppendFooter(table.Row{"Total", len(partition.Master)})
	t.Render()

	s := result.Stats
	fmt.Printf("Clients: %d (direct %d, reversed %d, fuzzy %d, unmatched %d)\n",
		s.Clients, s.DirectMatches, s.ReversedMatches, s.FuzzyMatches, s.Unmatched)
	fmt.Printf("Orphaned activity groups: %d\n", s.OrphanGroups)
	fmt.Printf("Needing reassignment: %d\n", s.NeedReassign)
	fmt.Printf("Report saved to %s in %s\n", output, elapsed.Round(time.Millisecond))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
