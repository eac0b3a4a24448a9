package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/ayane-dev/sbireport/pkg/client"
	"github.com/ayane-dev/sbireport/pkg/config"
	gmailreader "github.com/ayane-dev/sbireport/pkg/reader/gmail"
)

var (
	dumpDir   string
	dumpLimit int64
)

// dumpCmd saves raw notification bodies to files, used to collect samples
// for parser tests.
var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Dump matching email bodies to files",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDump(cmd.Context())
	},
}

func init() {
	dumpCmd.Flags().StringVar(&dumpDir, "dir", "testdata/dump", "directory to write email bodies to")
	dumpCmd.Flags().Int64Var(&dumpLimit, "limit", 10, "maximum number of emails to dump")
}

func runDump(ctx context.Context) error {
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

	svc, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return fmt.Errorf("creating gmail service: %w", err)
	}

	if err := os.MkdirAll(dumpDir, 0o755); err != nil {
		return fmt.Errorf("creating dump directory: %w", err)
	}

	query := cfg.Query
	if query == "" {
		query = gmailreader.DefaultQuery
	}

	resp, err := svc.Users.Messages.List("me").Q(query).MaxResults(dumpLimit).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("listing messages: %w", err)
	}

	count := 0
	for _, m := range resp.Messages {
		if err := dumpMessage(ctx, svc, m.Id); err != nil {
			logger.Warn("failed to dump message", "message_id", m.Id, "error", err)
			continue
		}
		count++
	}

	logger.Info("email dump complete", "dumped", count, "directory", dumpDir)
	return nil
}

func dumpMessage(ctx context.Context, svc *gmail.Service, msgID string) error {
	msg, err := svc.Users.Messages.Get("me", msgID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("getting message: %w", err)
	}

	body := extractBody(msg)
	if body == "" {
		return fmt.Errorf("empty message body")
	}

	received := time.UnixMilli(msg.InternalDate).Format("2006-01-02_150405")
	filename := sanitizeFilename(fmt.Sprintf("sbi_%s_%s.txt", received, msgID))
	path := filepath.Join(dumpDir, filename)

	if _, err := os.Stat(path); err == nil {
		logger.Debug("file already exists, skipping", "file", filename)
		return nil
	}

	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}

	logger.Info("dumped email", "file", filename)
	return nil
}

func extractBody(msg *gmail.Message) string {
	if msg.Payload == nil {
		return ""
	}

	for _, part := range msg.Payload.Parts {
		if part.MimeType == "text/plain" && part.Body != nil {
			bodyBytes, err := base64.URLEncoding.DecodeString(part.Body.Data)
			if err != nil {
				continue
			}
			return string(bodyBytes)
		}
	}

	if msg.Payload.Body != nil && msg.Payload.Body.Data != "" {
		bodyBytes, err := base64.URLEncoding.DecodeString(msg.Payload.Body.Data)
		if err == nil {
			return string(bodyBytes)
		}
	}

	return ""
}

func sanitizeFilename(name string) string {
	unsafe := regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	name = unsafe.ReplaceAllString(name, "_")
	name = regexp.MustCompile(`_+`).ReplaceAllString(name, "_")
	name = strings.Trim(name, "_")
	if len(name) > 200 {
		name = name[:200]
	}
	return name
}
