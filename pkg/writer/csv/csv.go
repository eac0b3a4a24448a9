// Package csv writes the detailed and monthly CSV reports. Files carry a
// UTF-8 BOM so the Japanese headers open cleanly in Excel.
package csv

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/ayane-dev/sbireport/pkg/api"
	"github.com/ayane-dev/sbireport/pkg/report"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Paths holds the locations of the generated reports.
type Paths struct {
	Detail  string
	Monthly string
}

// Writer renders transaction reports into an output directory.
type Writer struct {
	outputDir string
	logger    *slog.Logger
}

// New creates a report writer. The output directory is created on first
// write.
func New(outputDir string, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{outputDir: outputDir, logger: logger}
}

// WriteReports writes the detailed CSV and the monthly summary CSV, both
// stamped with the generation time, and returns their paths.
func (w *Writer) WriteReports(transactions []api.Transaction, monthly []report.MonthlyRow) (Paths, error) {
	if err := os.MkdirAll(w.outputDir, 0o755); err != nil {
		return Paths{}, fmt.Errorf("creating output directory: %w", err)
	}

	stamp := time.Now().Format("20060102_150405")

	detailPath := filepath.Join(w.outputDir, fmt.Sprintf("sbi_debit_%s.csv", stamp))
	if err := w.writeDetail(detailPath, transactions); err != nil {
		return Paths{}, err
	}

	monthlyPath := filepath.Join(w.outputDir, fmt.Sprintf("sbi_debit_monthly_%s.csv", stamp))
	if err := w.writeMonthly(monthlyPath, monthly); err != nil {
		return Paths{}, err
	}

	w.logger.Info("wrote reports",
		"detail", detailPath,
		"monthly", monthlyPath,
		"transactions", len(transactions),
	)

	return Paths{Detail: detailPath, Monthly: monthlyPath}, nil
}

func (w *Writer) writeDetail(path string, transactions []api.Transaction) error {
	records := make([][]string, 0, len(transactions)+1)
	records = append(records, []string{"利用日", "利用時刻", "利用加盟店", "金額", "通貨", "承認番号", "メール受信日時"})

	for _, t := range transactions {
		currency := t.Currency
		if currency == "" {
			currency = "JPY"
		}
		records = append(records, []string{
			t.TransactionDate,
			t.TransactionTime,
			t.Merchant,
			formatNumber(t.Amount),
			currency,
			t.AuthNumber,
			t.EmailDate,
		})
	}

	return writeFile(path, records)
}

func (w *Writer) writeMonthly(path string, monthly []report.MonthlyRow) error {
	records := make([][]string, 0, len(monthly)+1)
	records = append(records, []string{"年月", "利用回数", "合計金額", "平均金額"})

	for _, row := range monthly {
		records = append(records, []string{
			row.Month,
			strconv.Itoa(row.Count),
			formatNumber(row.Total),
			strconv.Itoa(row.Average),
		})
	}

	return writeFile(path, records)
}

func writeFile(path string, records [][]string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("creating csv file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(utf8BOM); err != nil {
		return fmt.Errorf("writing BOM: %w", err)
	}

	cw := csv.NewWriter(f)
	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("writing csv records: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("closing csv file: %w", err)
	}
	return nil
}

// formatNumber renders amounts without a forced precision, so whole yen
// amounts stay integers.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
