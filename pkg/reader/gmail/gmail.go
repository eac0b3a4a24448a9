// Package gmail fetches debit-card notification emails from Gmail and turns
// them into transactions. Per-message failures are logged and skipped; a run
// never aborts because one email was malformed.
package gmail

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/mail"
	"time"

	"github.com/avast/retry-go"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/ayane-dev/sbireport/pkg/api"
	"github.com/ayane-dev/sbireport/pkg/parser"
)

// DefaultQuery matches the bank's debit-card usage notifications.
const DefaultQuery = `subject:"【デビットカード】ご利用のお知らせ(住信SBIネット銀行)"`

const (
	defaultMaxResults  = 500
	defaultConcurrency = 8
)

// Reader reads notification emails and extracts transactions from them.
type Reader struct {
	svc         *gmail.Service
	query       string
	maxResults  int64
	concurrency int
	logger      *slog.Logger
}

// Config holds configuration for the Gmail reader.
type Config struct {
	// Query overrides DefaultQuery.
	Query string
	// MaxResults caps how many messages one fetch considers. Defaults to 500.
	MaxResults int64
	// Concurrency bounds the parallel message fetches. Defaults to 8.
	Concurrency int
}

// New creates a Gmail reader on top of an authenticated HTTP client.
func New(httpClient *http.Client, cfg Config, logger *slog.Logger) (*Reader, error) {
	if logger == nil {
		logger = slog.Default()
	}

	svc, err := gmail.NewService(context.Background(), option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("creating gmail service: %w", err)
	}

	query := cfg.Query
	if query == "" {
		query = DefaultQuery
	}
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	return &Reader{
		svc:         svc,
		query:       query,
		maxResults:  maxResults,
		concurrency: concurrency,
		logger:      logger,
	}, nil
}

// FetchTransactions searches for notification emails, fetches their bodies
// in parallel and extracts transactions. Messages that don't match the
// notification template are dropped silently; the returned order is
// unspecified and callers sort before presentation.
func (r *Reader) FetchTransactions(ctx context.Context) ([]api.Transaction, error) {
	resp, err := r.listMessages(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}

	if len(resp.Messages) == 0 {
		r.logger.Info("no notification emails found", "query", r.query)
		return nil, nil
	}

	r.logger.Info("fetching messages", "count", len(resp.Messages))

	results := make([]*api.Transaction, len(resp.Messages))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, msg := range resp.Messages {
		i, msg := i, msg
		g.Go(func() error {
			txn, err := r.fetchTransaction(gctx, msg.Id)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return err
				}
				r.logger.Warn("skipping message", "message_id", msg.Id, "error", err)
				return nil
			}
			results[i] = txn
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	transactions := make([]api.Transaction, 0, len(results))
	for _, txn := range results {
		if txn != nil {
			transactions = append(transactions, *txn)
		}
	}

	r.logger.Info("extracted transactions",
		"messages", len(resp.Messages),
		"transactions", len(transactions),
	)

	return transactions, nil
}

// fetchTransaction fetches one message and extracts a transaction from it.
// A nil transaction with nil error means the message didn't match the
// notification template, the normal case for stray search hits.
func (r *Reader) fetchTransaction(ctx context.Context, msgID string) (*api.Transaction, error) {
	msg, err := r.getMessage(ctx, msgID)
	if err != nil {
		return nil, fmt.Errorf("getting message: %w", err)
	}

	body := extractBody(msg)
	if body == "" {
		r.logger.Debug("empty message body", "message_id", msgID)
		return nil, nil
	}

	txn, ok := parser.Extract(body)
	if !ok {
		r.logger.Debug("no transaction in message", "message_id", msgID)
		return nil, nil
	}

	// Provenance is attached here, after extraction succeeded.
	txn.EmailID = msgID
	txn.EmailDate = formatEmailDate(headerValue(msg, "Date"), msg.InternalDate)

	return &txn, nil
}

func (r *Reader) listMessages(ctx context.Context) (*gmail.ListMessagesResponse, error) {
	var resp *gmail.ListMessagesResponse
	err := retry.Do(
		func() error {
			var err error
			resp, err = r.svc.Users.Messages.List("me").
				Q(r.query).
				MaxResults(r.maxResults).
				Context(ctx).
				Do()
			return err
		},
		r.retryOptions()...,
	)
	return resp, err
}

func (r *Reader) getMessage(ctx context.Context, msgID string) (*gmail.Message, error) {
	var msg *gmail.Message
	err := retry.Do(
		func() error {
			var err error
			msg, err = r.svc.Users.Messages.Get("me", msgID).Context(ctx).Do()
			return err
		},
		r.retryOptions()...,
	)
	return msg, err
}

func (r *Reader) retryOptions() []retry.Option {
	return []retry.Option{
		retry.RetryIf(func(err error) bool {
			var apiErr *googleapi.Error
			if errors.As(err, &apiErr) &&
				(apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError) {
				r.logger.Warn("gmail API error, will retry", "code", apiErr.Code)
				return true
			}
			return false
		}),
		retry.Attempts(3),
		retry.Delay(2 * time.Second),
		retry.LastErrorOnly(true),
	}
}

// extractBody pulls the decoded text body out of a message. Notification
// emails are plain text, so text/plain parts win; the direct body is the
// fallback for single-part messages.
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

func headerValue(msg *gmail.Message, name string) string {
	if msg.Payload == nil {
		return ""
	}
	for _, header := range msg.Payload.Headers {
		if header.Name == name {
			return header.Value
		}
	}
	return ""
}

// formatEmailDate renders the received time in the canonical datetime
// format, preferring the Date header and falling back to the server-side
// internal date.
func formatEmailDate(dateHeader string, internalDate int64) string {
	if dateHeader != "" {
		if ts, err := mail.ParseDate(dateHeader); err == nil {
			return ts.Local().Format(api.DateTimeLayout)
		}
	}
	if internalDate > 0 {
		return time.UnixMilli(internalDate).Format(api.DateTimeLayout)
	}
	return ""
}
