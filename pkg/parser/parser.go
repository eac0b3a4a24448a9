// Package parser extracts debit-card transactions from notification email
// bodies. It targets the fixed template used by Sumishin SBI Net Bank's
// 「【デビットカード】ご利用のお知らせ」 emails and fails closed: any body that
// does not yield every required field produces no transaction.
package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ayane-dev/sbireport/pkg/api"
)

// Field labels appear as "<label>：<value>" lines in the body. The bank uses
// a full-width colon, but half-width is accepted too. Each pattern is matched
// independently and only the first occurrence counts; bodies with multiple
// embedded notifications are out of scope.
var (
	authNumberRe = regexp.MustCompile(`承認番号\s*[:：]\s*(\d+)`)
	dateTimeRe   = regexp.MustCompile(`利用日時\s*[:：]\s*(\d{4}/\d{2}/\d{2})\s+(\d{2}:\d{2}:\d{2})`)
	merchantRe   = regexp.MustCompile(`利用加盟店\s*[:：]\s*([^\r\n]+)`)
	currencyRe   = regexp.MustCompile(`引落通貨\s*[:：]\s*([A-Z]+)`)
	amountRe     = regexp.MustCompile(`引落金額\s*[:：]\s*([\d,]+\.?\d*)`)
)

// fields is the partial result of pattern matching, before the required-field
// contract is enforced. Absent fields stay empty; hasAmount distinguishes a
// genuine zero amount from no match.
type fields struct {
	authNumber string
	dateTime   time.Time
	hasTime    bool
	merchant   string
	currency   string
	amount     float64
	hasAmount  bool
}

// extractFields applies every pattern to the body independently. It never
// fails; a pattern that does not match simply leaves its field unset.
func extractFields(body string) fields {
	var f fields

	if m := authNumberRe.FindStringSubmatch(body); m != nil {
		f.authNumber = m[1]
	}

	if m := dateTimeRe.FindStringSubmatch(body); m != nil {
		// Strict parse: the regex pins the shape, time.Parse rejects
		// impossible dates (month 13, minute 61, ...).
		ts, err := time.Parse(api.SourceDateTimeLayout, m[1]+" "+m[2])
		if err == nil {
			f.dateTime = ts
			f.hasTime = true
		}
	}

	if m := merchantRe.FindStringSubmatch(body); m != nil {
		f.merchant = strings.TrimSpace(m[1])
	}

	if m := currencyRe.FindStringSubmatch(body); m != nil {
		f.currency = m[1]
	}

	if m := amountRe.FindStringSubmatch(body); m != nil {
		raw := strings.ReplaceAll(m[1], ",", "")
		amount, err := strconv.ParseFloat(raw, 64)
		if err == nil {
			f.amount = amount
			f.hasAmount = true
		}
	}

	return f
}

// build enforces the required-field contract: usage timestamp, merchant,
// amount and currency must all be present. The approval number is optional.
// A partial extraction yields ok=false, which is the normal outcome for
// emails that merely resemble the template.
func build(f fields) (api.Transaction, bool) {
	if !f.hasTime || !f.hasAmount || f.merchant == "" || f.currency == "" {
		return api.Transaction{}, false
	}

	return api.Transaction{
		TransactionDate:     f.dateTime.Format(api.DateLayout),
		TransactionTime:     f.dateTime.Format(api.TimeLayout),
		TransactionDateTime: f.dateTime.Format(api.DateTimeLayout),
		Merchant:            f.merchant,
		Amount:              f.amount,
		Currency:            f.currency,
		AuthNumber:          f.authNumber,
	}, true
}

// Extract attempts to pull a complete transaction out of an email body.
// It returns ok=false for any body that does not satisfy the required-field
// contract. It never returns an error: non-matching input is expected, not
// exceptional.
func Extract(body string) (api.Transaction, bool) {
	return build(extractFields(body))
}
