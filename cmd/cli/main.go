package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"AddressBook/config"
	"AddressBook/internal/console"
	"AddressBook/internal/service"
	"AddressBook/internal/telemetry"
	"AddressBook/pkg/logger"
	"AddressBook/storage"
	"AddressBook/storage/redis"
)

var (
	dataDir         string
	contactsFile    string
	countryCode     string
	logFile         string
	allowDuplicates bool
	noBackups       bool
	noTelemetry     bool

	rootCmd = &cobra.Command{
		Use:   "addressbook",
		Short: "Interactive address book assistant",
		Long: `addressbook keeps contacts in a JSON file under the data directory,
with undo/redo, CSV import/export and upcoming birthday reports.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}
)

func init() {
	cfg := config.Cfg

	flags := rootCmd.Flags()
	flags.StringVar(&dataDir, "data-dir", cfg.DataDir, "directory holding contacts.json, backups and telemetry")
	flags.StringVar(&contactsFile, "contacts-file", cfg.ContactsFile, "contacts file name inside the data directory")
	flags.StringVar(&countryCode, "country-code", cfg.DefaultCountryCode, "country code for local numbers starting with 0")
	flags.StringVar(&logFile, "log-file", "", "log destination (default <data-dir>/addressbook.log)")
	flags.BoolVar(&allowDuplicates, "allow-duplicates", cfg.AllowDuplicatePhones, "allow several contacts to share a phone")
	flags.BoolVar(&noBackups, "no-backups", !cfg.EnableBackups, "do not keep timestamped backups on save")
	flags.BoolVar(&noTelemetry, "no-telemetry", !cfg.TelemetryEnabled, "do not count command usage")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	cfg := &config.Cfg
	cfg.DataDir = dataDir
	cfg.ContactsFile = contactsFile
	cfg.DefaultCountryCode = countryCode
	cfg.AllowDuplicatePhones = allowDuplicates
	cfg.EnableBackups = !noBackups
	cfg.TelemetryEnabled = !noTelemetry

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	// 交互界面占用 stdout，日志默认写到数据目录
	switch {
	case logFile != "":
		cfg.LoggerOutputPath = logFile
	case cfg.LoggerOutputPath == "stdout":
		cfg.LoggerOutputPath = filepath.Join(cfg.DataDir, "addressbook.log")
	}
	logger.Init()
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Ctrl+C 时关闭 stdin，让 Run 走正常的退出流程把修改落盘
	go func() {
		<-ctx.Done()
		_ = os.Stdin.Close()
	}()

	// Redis 只用于遥测计数，连不上时退回本地文件
	if err := storage.Init(); err != nil {
		logger.Logger.Warn("Optional storage unavailable, continuing without it", zap.Error(err))
	}
	defer storage.Close()

	svc, err := service.Open(service.OptionsFromConfig(*cfg))
	if err != nil {
		return err
	}

	rec := telemetry.New(cfg.TelemetryEnabled, cfg.DataDir, redis.Client(), logger.Logger)
	c := console.New(svc, cmd.InOrStdin(), cmd.OutOrStdout(),
		console.WithTelemetry(rec),
		console.WithLogger(logger.Logger),
	)

	if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Logger.Error("Failed to save address book on exit", zap.Error(err))
		return err
	}
	return nil
}
