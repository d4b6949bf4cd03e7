package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradebot/bot"
	"github.com/rustyeddy/tradebot/broker/alpaca"
	"github.com/rustyeddy/tradebot/config"
	"github.com/rustyeddy/tradebot/journal"
	"github.com/rustyeddy/tradebot/strategy"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the trading loop",
	Long: `Start the bot: spawn the strategy engine, sync any open position, and
trade on the configured cadence until interrupted.

Credentials come from the environment (APCA_API_KEY_ID and
APCA_API_SECRET_KEY); the process refuses to start without them.

Example:
  tradebot run -f bot.yaml`,
	RunE:         runRun,
	SilenceUsage: true,
}

var runConfigPath string

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "", "path to config file (YAML or JSON) (required)")
	runCmd.MarkFlagRequired("config")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(runConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	fmt.Printf("Starting tradebot with config: %s\n", runConfigPath)
	fmt.Printf("  Instrument: %s (asset %s)\n", cfg.Trading.Symbol, cfg.Trading.AssetID)
	fmt.Printf("  Cycle: %s (retry %s), decision deadline %s, order wait %s\n",
		cfg.Trading.Sleep(), cfg.Trading.Retry(), cfg.Trading.DecisionDeadline(), cfg.Trading.MaxOrderWait())
	fmt.Printf("  Journal: %s\n", cfg.Journal.Type)
	fmt.Println()

	var j journal.Journal
	if cfg.Journal.Type == "csv" {
		j, err = journal.NewCSV(cfg.Journal.TradesFile, cfg.Journal.StatusFile)
	} else {
		j, err = journal.NewSQLite(cfg.Journal.DBPath)
	}
	if err != nil {
		return fmt.Errorf("create journal: %w", err)
	}
	defer j.Close()

	engineProc, err := strategy.Launch(cfg.Strategy.Command, cfg.Strategy.Args...)
	if err != nil {
		return fmt.Errorf("launch strategy engine: %w", err)
	}
	defer engineProc.Stop()

	client := alpaca.NewClient(cfg.Broker.APIKey, cfg.Broker.APISecret, cfg.Broker.Paper)

	b := bot.New(bot.Config{
		Symbol:           cfg.Trading.Symbol,
		AssetID:          cfg.Trading.AssetID,
		Sleep:            cfg.Trading.Sleep(),
		Retry:            cfg.Trading.Retry(),
		DecisionDeadline: cfg.Trading.DecisionDeadline(),
		MaxOrderWait:     cfg.Trading.MaxOrderWait(),
	}, client, engineProc.Channel, j)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := b.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	fmt.Println("\nShutting down")
	return nil
}
