package parser

import (
	"fmt"
	"testing"
)

// sampleBody is a body in the bank's notification template, full-width
// colons and all.
const sampleBody = `いつも住信SBIネット銀行をご利用いただきありがとうございます。
デビットカードのご利用がありましたのでお知らせします。

承認番号：204183
利用日時：2025/09/07 08:44:40
利用加盟店：SEVEN-ELEVEN
引落通貨：JPY
引落金額：446

ご利用ありがとうございました。
`

func TestExtract_FullTemplate(t *testing.T) {
	txn, ok := Extract(sampleBody)
	if !ok {
		t.Fatal("expected a transaction, got none")
	}

	if txn.AuthNumber != "204183" {
		t.Errorf("authNumber: got %q, want %q", txn.AuthNumber, "204183")
	}
	if txn.TransactionDate != "2025-09-07" {
		t.Errorf("transactionDate: got %q, want %q", txn.TransactionDate, "2025-09-07")
	}
	if txn.TransactionTime != "08:44:40" {
		t.Errorf("transactionTime: got %q, want %q", txn.TransactionTime, "08:44:40")
	}
	if txn.TransactionDateTime != "2025-09-07 08:44:40" {
		t.Errorf("transactionDateTime: got %q, want %q", txn.TransactionDateTime, "2025-09-07 08:44:40")
	}
	if txn.Merchant != "SEVEN-ELEVEN" {
		t.Errorf("merchant: got %q, want %q", txn.Merchant, "SEVEN-ELEVEN")
	}
	if txn.Currency != "JPY" {
		t.Errorf("currency: got %q, want %q", txn.Currency, "JPY")
	}
	if txn.Amount != 446 {
		t.Errorf("amount: got %v, want %v", txn.Amount, 446.0)
	}
	if txn.EmailID != "" || txn.EmailDate != "" {
		t.Error("parser must not attach provenance fields")
	}
}

// renderBody builds a synthetic body from known field values so extraction
// can be checked against exactly those values.
func renderBody(authNumber, dateTime, merchant, currency, amount string) string {
	return fmt.Sprintf(
		"承認番号：%s\n利用日時：%s\n利用加盟店：%s\n引落通貨：%s\n引落金額：%s\n",
		authNumber, dateTime, merchant, currency, amount,
	)
}

func TestExtract_RoundTrip(t *testing.T) {
	body := renderBody("991234", "2024/12/31 23:59:59", "AMAZON CO JP", "JPY", "12,800")

	txn, ok := Extract(body)
	if !ok {
		t.Fatal("expected a transaction, got none")
	}

	if txn.AuthNumber != "991234" {
		t.Errorf("authNumber: got %q", txn.AuthNumber)
	}
	if txn.TransactionDateTime != "2024-12-31 23:59:59" {
		t.Errorf("transactionDateTime: got %q", txn.TransactionDateTime)
	}
	if txn.Merchant != "AMAZON CO JP" {
		t.Errorf("merchant: got %q", txn.Merchant)
	}
	if txn.Amount != 12800 {
		t.Errorf("amount: got %v", txn.Amount)
	}
}

func TestExtract_MissingRequiredField(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "no usage timestamp",
			body: "承認番号：204183\n利用加盟店：LAWSON\n引落通貨：JPY\n引落金額：220\n",
		},
		{
			name: "no merchant",
			body: "承認番号：204183\n利用日時：2025/09/07 08:44:40\n引落通貨：JPY\n引落金額：220\n",
		},
		{
			name: "no currency",
			body: "利用日時：2025/09/07 08:44:40\n利用加盟店：LAWSON\n引落金額：220\n",
		},
		{
			name: "no amount",
			body: "利用日時：2025/09/07 08:44:40\n利用加盟店：LAWSON\n引落通貨：JPY\n",
		},
		{
			name: "non-numeric amount",
			body: "利用日時：2025/09/07 08:44:40\n利用加盟店：LAWSON\n引落通貨：JPY\n引落金額：不明\n",
		},
		{
			name: "unrelated email",
			body: "お振込みを受け付けました。ご確認ください。",
		},
		{
			name: "empty body",
			body: "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, ok := Extract(tc.body); ok {
				t.Error("expected no transaction")
			}
		})
	}
}

func TestExtract_MissingAuthNumberIsAllowed(t *testing.T) {
	body := "利用日時：2025/09/07 08:44:40\n利用加盟店：LAWSON\n引落通貨：JPY\n引落金額：220\n"

	txn, ok := Extract(body)
	if !ok {
		t.Fatal("expected a transaction, got none")
	}
	if txn.AuthNumber != "" {
		t.Errorf("authNumber: got %q, want empty", txn.AuthNumber)
	}
}

func TestExtract_StrictTimestampShape(t *testing.T) {
	tests := []struct {
		name     string
		dateTime string
	}{
		{"unpadded month and day", "2025/9/7 08:44:40"},
		{"missing seconds", "2025/09/07 08:44"},
		{"dashed date", "2025-09-07 08:44:40"},
		{"impossible month", "2025/13/07 08:44:40"},
		{"impossible minute", "2025/09/07 08:61:40"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			body := renderBody("1", tc.dateTime, "LAWSON", "JPY", "220")
			if _, ok := Extract(body); ok {
				t.Errorf("expected no transaction for timestamp %q", tc.dateTime)
			}
		})
	}
}

func TestExtract_AmountFormats(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"446", 446},
		{"1,234.50", 1234.50},
		{"1,234,567.89", 1234567.89},
		{"0", 0},
		{"12800.5", 12800.5},
	}

	for _, tc := range tests {
		t.Run(tc.raw, func(t *testing.T) {
			body := renderBody("1", "2025/09/07 08:44:40", "LAWSON", "JPY", tc.raw)
			txn, ok := Extract(body)
			if !ok {
				t.Fatalf("expected a transaction for amount %q", tc.raw)
			}
			if txn.Amount != tc.want {
				t.Errorf("amount: got %v, want %v", txn.Amount, tc.want)
			}
		})
	}
}

func TestExtract_MerchantTrimming(t *testing.T) {
	body := "利用日時：2025/09/07 08:44:40\n利用加盟店：  SEVEN-ELEVEN  \r\n引落通貨：JPY\n引落金額：446\n"

	txn, ok := Extract(body)
	if !ok {
		t.Fatal("expected a transaction, got none")
	}
	if txn.Merchant != "SEVEN-ELEVEN" {
		t.Errorf("merchant: got %q, want %q", txn.Merchant, "SEVEN-ELEVEN")
	}
}

func TestExtract_HalfWidthColon(t *testing.T) {
	body := "承認番号: 204183\n利用日時: 2025/09/07 08:44:40\n利用加盟店: SEVEN-ELEVEN\n引落通貨: JPY\n引落金額: 446\n"

	txn, ok := Extract(body)
	if !ok {
		t.Fatal("expected a transaction, got none")
	}
	if txn.AuthNumber != "204183" || txn.Merchant != "SEVEN-ELEVEN" {
		t.Errorf("unexpected extraction: %+v", txn)
	}
}

func TestExtract_FirstMatchWins(t *testing.T) {
	body := renderBody("111111", "2025/09/07 08:44:40", "FIRST STORE", "JPY", "100") +
		renderBody("222222", "2025/09/08 10:00:00", "SECOND STORE", "JPY", "200")

	txn, ok := Extract(body)
	if !ok {
		t.Fatal("expected a transaction, got none")
	}
	if txn.Merchant != "FIRST STORE" {
		t.Errorf("merchant: got %q, want first occurrence", txn.Merchant)
	}
	if txn.Amount != 100 {
		t.Errorf("amount: got %v, want first occurrence", txn.Amount)
	}
}
