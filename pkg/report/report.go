// Package report folds extracted transactions into summary statistics and
// derives the ranked views used by the terminal summary and CSV exports.
// Everything here is pure data transformation: no I/O, no hidden state.
package report

import (
	"math"
	"sort"

	"github.com/ayane-dev/sbireport/pkg/api"
)

// MerchantStats accumulates usage for a single merchant.
type MerchantStats struct {
	Count int     `json:"count"`
	Total float64 `json:"total"`
}

// DailyStats accumulates usage for a single calendar date.
type DailyStats struct {
	Count int     `json:"count"`
	Total float64 `json:"total"`
}

// Stats is the aggregate over one batch of transactions. It is recomputed
// from scratch per report run and holds no persisted identity.
type Stats struct {
	TotalAmount float64                  `json:"totalAmount"`
	Count       int                      `json:"count"`
	Merchants   map[string]MerchantStats `json:"merchants"`
	DailyTotals map[string]DailyStats    `json:"dailyTotals"`

	// merchantOrder records first-seen order so that ranking ties stay
	// stable across runs.
	merchantOrder []string
}

// MonthlyRow is one row of the monthly summary.
type MonthlyRow struct {
	Month   string  `json:"month"`
	Count   int     `json:"count"`
	Total   float64 `json:"total"`
	Average int     `json:"average"`
}

// MerchantRank is one row of the top-merchants ranking.
type MerchantRank struct {
	Merchant string  `json:"merchant"`
	Count    int     `json:"count"`
	Total    float64 `json:"total"`
}

// Aggregate computes statistics over a batch of transactions in a single
// pass. Input order is irrelevant to the totals; it only determines the
// first-seen order used for ranking tie-breaks. An empty batch yields zero
// counts and empty groupings, never an error.
func Aggregate(transactions []api.Transaction) Stats {
	stats := Stats{
		Count:       len(transactions),
		Merchants:   make(map[string]MerchantStats),
		DailyTotals: make(map[string]DailyStats),
	}

	for _, t := range transactions {
		stats.TotalAmount += t.Amount

		m, seen := stats.Merchants[t.Merchant]
		if !seen {
			stats.merchantOrder = append(stats.merchantOrder, t.Merchant)
		}
		m.Count++
		m.Total += t.Amount
		stats.Merchants[t.Merchant] = m

		d := stats.DailyTotals[t.TransactionDate]
		d.Count++
		d.Total += t.Amount
		stats.DailyTotals[t.TransactionDate] = d
	}

	return stats
}

// MonthlySummary groups transactions by calendar month (YYYY-MM) and returns
// rows ordered by month descending. The average is rounded half away from
// zero to the nearest integer and is derived, not stored.
func MonthlySummary(transactions []api.Transaction) []MonthlyRow {
	type monthly struct {
		count int
		total float64
	}

	byMonth := make(map[string]monthly)
	for _, t := range transactions {
		if len(t.TransactionDate) < 7 {
			continue
		}
		month := t.TransactionDate[:7]
		m := byMonth[month]
		m.count++
		m.total += t.Amount
		byMonth[month] = m
	}

	months := make([]string, 0, len(byMonth))
	for month := range byMonth {
		months = append(months, month)
	}
	// The key is fixed-width YYYY-MM, so plain string comparison orders
	// months correctly.
	sort.Sort(sort.Reverse(sort.StringSlice(months)))

	rows := make([]MonthlyRow, 0, len(months))
	for _, month := range months {
		m := byMonth[month]
		rows = append(rows, MonthlyRow{
			Month:   month,
			Count:   m.count,
			Total:   m.total,
			Average: int(math.Round(m.total / float64(m.count))),
		})
	}

	return rows
}

// TopMerchants returns the n most frequently used merchants, by count
// descending. Ties keep first-seen order, so the ranking is deterministic
// for a given input order.
func TopMerchants(stats Stats, n int) []MerchantRank {
	ranks := make([]MerchantRank, 0, len(stats.merchantOrder))
	for _, merchant := range stats.merchantOrder {
		m := stats.Merchants[merchant]
		ranks = append(ranks, MerchantRank{
			Merchant: merchant,
			Count:    m.Count,
			Total:    m.Total,
		})
	}

	sort.SliceStable(ranks, func(i, j int) bool {
		return ranks[i].Count > ranks[j].Count
	})

	if n < len(ranks) {
		ranks = ranks[:n]
	}
	return ranks
}

// Recent returns the n most recent transactions. The caller must have sorted
// the list by TransactionDateTime descending already; this is a plain prefix
// take.
func Recent(transactions []api.Transaction, n int) []api.Transaction {
	if n > len(transactions) {
		n = len(transactions)
	}
	return transactions[:n]
}

// SortByDateTimeDesc orders transactions most recent first. The canonical
// datetime format is fixed-width, so lexicographic comparison is exact.
func SortByDateTimeDesc(transactions []api.Transaction) {
	sort.SliceStable(transactions, func(i, j int) bool {
		return transactions[i].TransactionDateTime > transactions[j].TransactionDateTime
	})
}
