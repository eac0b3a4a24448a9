package gmail

import (
	"encoding/base64"
	"testing"
	"time"

	"google.golang.org/api/gmail/v1"
)

func encode(s string) string {
	return base64.URLEncoding.EncodeToString([]byte(s))
}

func TestExtractBody_PrefersTextPlainPart(t *testing.T) {
	msg := &gmail.Message{
		Payload: &gmail.MessagePart{
			Parts: []*gmail.MessagePart{
				{MimeType: "text/html", Body: &gmail.MessagePartBody{Data: encode("<p>html</p>")}},
				{MimeType: "text/plain", Body: &gmail.MessagePartBody{Data: encode("plain body")}},
			},
		},
	}

	if got := extractBody(msg); got != "plain body" {
		t.Errorf("body: got %q, want %q", got, "plain body")
	}
}

func TestExtractBody_DirectBodyFallback(t *testing.T) {
	msg := &gmail.Message{
		Payload: &gmail.MessagePart{
			Body: &gmail.MessagePartBody{Data: encode("direct body")},
		},
	}

	if got := extractBody(msg); got != "direct body" {
		t.Errorf("body: got %q, want %q", got, "direct body")
	}
}

func TestExtractBody_Empty(t *testing.T) {
	tests := []struct {
		name string
		msg  *gmail.Message
	}{
		{"nil payload", &gmail.Message{}},
		{"no body data", &gmail.Message{Payload: &gmail.MessagePart{}}},
		{
			"invalid base64 part",
			&gmail.Message{Payload: &gmail.MessagePart{
				Parts: []*gmail.MessagePart{
					{MimeType: "text/plain", Body: &gmail.MessagePartBody{Data: "!!not-base64!!"}},
				},
			}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := extractBody(tc.msg); got != "" {
				t.Errorf("body: got %q, want empty", got)
			}
		})
	}
}

func TestHeaderValue(t *testing.T) {
	msg := &gmail.Message{
		Payload: &gmail.MessagePart{
			Headers: []*gmail.MessagePartHeader{
				{Name: "Subject", Value: "【デビットカード】ご利用のお知らせ(住信SBIネット銀行)"},
				{Name: "Date", Value: "Sun, 07 Sep 2025 08:45:01 +0900"},
			},
		},
	}

	if got := headerValue(msg, "Date"); got != "Sun, 07 Sep 2025 08:45:01 +0900" {
		t.Errorf("Date header: got %q", got)
	}
	if got := headerValue(msg, "X-Missing"); got != "" {
		t.Errorf("missing header: got %q, want empty", got)
	}
}

func TestFormatEmailDate(t *testing.T) {
	got := formatEmailDate("Sun, 07 Sep 2025 08:45:01 +0900", 0)
	want := time.Date(2025, 9, 7, 8, 45, 1, 0, time.FixedZone("JST", 9*60*60)).
		Local().Format("2006-01-02 15:04:05")
	if got != want {
		t.Errorf("from header: got %q, want %q", got, want)
	}
}

func TestFormatEmailDate_InternalDateFallback(t *testing.T) {
	internal := time.Date(2025, 9, 7, 8, 45, 1, 0, time.Local)

	got := formatEmailDate("not a date", internal.UnixMilli())
	if got != "2025-09-07 08:45:01" {
		t.Errorf("from internal date: got %q", got)
	}

	if got := formatEmailDate("", 0); got != "" {
		t.Errorf("no sources: got %q, want empty", got)
	}
}
