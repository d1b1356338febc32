package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"txstream/internal/config"
	"txstream/internal/publish"
	"txstream/internal/replay"
	"txstream/internal/store/postgres"
	"txstream/internal/txevents"
)

func main() {
	root := &cobra.Command{
		Use:          "streamer",
		Short:        "Transaction event stream tools",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	extractCmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract and publish events for committed transactions",
		RunE:  runExtract,
	}

	extractCmd.Flags().String("in", "", "committed transactions JSONL path")
	extractCmd.Flags().String("out", "./data/payloads.jsonl", "output payloads JSONL path")
	extractCmd.Flags().String("kafka-broker", "", "Kafka bootstrap servers (publishes to Kafka instead of the output file)")
	extractCmd.Flags().String("pg-dsn", "", "Postgres DSN of the object store (defaults to per-record embedded objects)")
	extractCmd.Flags().String("checkpoint", "./data/checkpoint.json", "checkpoint file path")
	extractCmd.Flags().Bool("checkpoint-enabled", true, "enable checkpointing")
	extractCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(extractCmd)

	decodeCmd := &cobra.Command{
		Use:   "decode",
		Short: "Decode published payloads into readable JSONL",
		RunE:  runDecode,
	}

	decodeCmd.Flags().String("in", "", "input payloads JSONL path")
	decodeCmd.Flags().String("out", "./data/decoded.jsonl", "output decoded JSONL path")
	decodeCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(decodeCmd)

	topicsCmd := &cobra.Command{
		Use:   "topics",
		Short: "Print the stream topics for an epoch",
		RunE:  runTopics,
	}

	topicsCmd.Flags().Uint64("epoch", 0, "ledger epoch")

	root.AddCommand(topicsCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runExtract(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.In == "" {
		return fmt.Errorf("input path is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var publisher publish.Publisher
	if cfg.KafkaBroker != "" {
		publisher, err = publish.NewKafkaPublisher(cfg.KafkaBroker, logger)
		if err != nil {
			return err
		}
	} else {
		publisher = publish.NewJSONLPublisher(cfg.Out)
	}
	defer publisher.Close()

	var objects txevents.ObjectStore
	if cfg.PgDSN != "" {
		pg, err := postgres.NewStore(ctx, cfg.PgDSN)
		if err != nil {
			return fmt.Errorf("connect object store: %w", err)
		}
		defer pg.Close()
		objects = pg
	}

	runner := replay.NewRunner(replay.RunConfig{
		In:                cfg.In,
		CheckpointPath:    cfg.Checkpoint,
		CheckpointEnabled: cfg.CheckpointEnabled,
	}, objects, publisher, logger)

	logger.Info("extract start",
		zap.String("in", cfg.In),
		zap.String("out", cfg.Out),
		zap.String("kafka_broker", cfg.KafkaBroker),
		zap.Bool("pg_object_store", cfg.PgDSN != ""),
		zap.Bool("checkpoint_enabled", cfg.CheckpointEnabled),
		zap.String("checkpoint", cfg.Checkpoint),
	)

	return runner.Run(ctx)
}

func runTopics(cmd *cobra.Command, _ []string) error {
	epoch, err := cmd.Flags().GetUint64("epoch")
	if err != nil {
		return err
	}

	for _, kind := range txevents.Kinds() {
		fmt.Fprintln(cmd.OutOrStdout(), kind.TopicForEpoch(epoch))
	}
	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
