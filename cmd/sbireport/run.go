package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"google.golang.org/api/gmail/v1"

	"github.com/ayane-dev/sbireport/pkg/api"
	"github.com/ayane-dev/sbireport/pkg/client"
	"github.com/ayane-dev/sbireport/pkg/config"
	gmailreader "github.com/ayane-dev/sbireport/pkg/reader/gmail"
	"github.com/ayane-dev/sbireport/pkg/report"
	csvwriter "github.com/ayane-dev/sbireport/pkg/writer/csv"
	jsonwriter "github.com/ayane-dev/sbireport/pkg/writer/json"
	"github.com/ayane-dev/sbireport/pkg/writer/postgres"
)

var runJSON bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fetch notifications and generate reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReport(cmd.Context())
	},
}

func init() {
	runCmd.Flags().BoolVar(&runJSON, "json", false, "also export transactions as JSON")
}

func runReport(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	httpClient, err := client.New(
		cfg.CredentialsFile,
		client.NewFileStore(cfg.TokenFile),
		gmail.GmailReadonlyScope,
	)
	if err != nil {
		return fmt.Errorf("creating http client: %w", err)
	}

	reader, err := gmailreader.New(httpClient, gmailreader.Config{
		Query:      cfg.Query,
		MaxResults: int64(cfg.MaxResults),
	}, logger.With("component", "gmail_reader"))
	if err != nil {
		return fmt.Errorf("creating gmail reader: %w", err)
	}

	transactions, err := reader.FetchTransactions(ctx)
	if err != nil {
		return fmt.Errorf("fetching transactions: %w", err)
	}

	if len(transactions) == 0 {
		fmt.Println("対象のメールが見つかりませんでした。")
		return nil
	}

	report.SortByDateTimeDesc(transactions)

	stats := report.Aggregate(transactions)
	report.WriteSummary(os.Stdout, stats, transactions)

	monthly := report.MonthlySummary(transactions)

	writer := csvwriter.New(cfg.OutputDir, logger.With("component", "csv_writer"))
	paths, err := writer.WriteReports(transactions, monthly)
	if err != nil {
		return fmt.Errorf("writing reports: %w", err)
	}

	fmt.Println()
	fmt.Printf("CSVファイルを出力しました:\n  %s\n  %s\n", paths.Detail, paths.Monthly)

	if runJSON {
		jsonPath, err := jsonwriter.New(cfg.OutputDir, logger.With("component", "json_writer")).Export(transactions)
		if err != nil {
			return fmt.Errorf("exporting json: %w", err)
		}
		fmt.Printf("  %s\n", jsonPath)
	}

	if cfg.PostgresEnabled() {
		if err := archiveTransactions(ctx, cfg, transactions); err != nil {
			return fmt.Errorf("archiving transactions: %w", err)
		}
	}

	return nil
}

func archiveTransactions(ctx context.Context, cfg *config.Config, transactions []api.Transaction) error {
	archiver, err := postgres.New(ctx, postgres.Config{
		Host:     cfg.PostgresHost,
		Port:     cfg.PostgresPort,
		Database: cfg.PostgresDatabase,
		User:     cfg.PostgresUser,
		Password: cfg.PostgresPassword,
		SSLMode:  cfg.PostgresSSLMode,
	}, logger.With("component", "postgres_archiver"))
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer archiver.Close()

	return archiver.Store(ctx, transactions)
}
