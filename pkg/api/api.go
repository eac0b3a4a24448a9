// Package api defines the core data structures for sbireport.
package api

// Time layouts shared across the pipeline. The bank's notification emails
// carry timestamps as "2006/01/02 15:04:05"; everything downstream uses the
// dashed form, which also sorts lexicographically.
const (
	SourceDateTimeLayout = "2006/01/02 15:04:05"
	DateTimeLayout       = "2006-01-02 15:04:05"
	DateLayout           = "2006-01-02"
	TimeLayout           = "15:04:05"
)

// Transaction is one debit-card usage extracted from a notification email.
// It is a plain value record, immutable once built.
type Transaction struct {
	// TransactionDate, TransactionTime and TransactionDateTime are all
	// derived from the single usage timestamp in the email body.
	// TransactionDateTime is the canonical sort key.
	TransactionDate     string  `json:"transactionDate"`
	TransactionTime     string  `json:"transactionTime"`
	TransactionDateTime string  `json:"transactionDateTime"`
	Merchant            string  `json:"merchant"`
	Amount              float64 `json:"amount"`
	Currency            string  `json:"currency"`
	// AuthNumber is the approval number. It is the one optional field of
	// the notification template.
	AuthNumber string `json:"authNumber,omitempty"`

	// EmailID and EmailDate are provenance metadata attached by the mail
	// reader after a successful extraction, never by the parser itself.
	EmailID   string `json:"emailId,omitempty"`
	EmailDate string `json:"emailDate,omitempty"`
}
