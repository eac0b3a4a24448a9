// Package json exports extracted transactions as a JSON file, for feeding
// other tools without reparsing the CSV reports.
package json

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/ayane-dev/sbireport/pkg/api"
)

// Writer exports transactions into an output directory.
type Writer struct {
	outputDir string
	logger    *slog.Logger
}

// New creates a JSON export writer.
func New(outputDir string, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{outputDir: outputDir, logger: logger}
}

// Export writes the transactions as an indented JSON array and returns the
// file path.
func (w *Writer) Export(transactions []api.Transaction) (string, error) {
	if err := os.MkdirAll(w.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	path := filepath.Join(w.outputDir, fmt.Sprintf("sbi_debit_%s.json", time.Now().Format("20060102_150405")))

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return "", fmt.Errorf("creating json file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(transactions); err != nil {
		return "", fmt.Errorf("encoding transactions: %w", err)
	}

	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing json file: %w", err)
	}

	w.logger.Info("exported transactions", "path", path, "count", len(transactions))
	return path, nil
}
