package entities

import (
	"time"

	accountentities "github.com/Conte777/operator-service/internal/domain/account/entities"
)

// ComputeDailyStats counts, per account, the conversations whose first message
// and whose last message fall on the calendar date of now in loc. Every
// account gets an entry, in the given order.
func ComputeDailyStats(conversations []Conversation, accounts []*accountentities.Account, now time.Time, loc *time.Location) []DailyStat {
	if loc == nil {
		loc = time.Local
	}
	today := now.In(loc)

	index := make(map[string]int, len(accounts))
	stats := make([]DailyStat, len(accounts))
	for i, account := range accounts {
		index[account.ID] = i
		stats[i] = DailyStat{AccountID: account.ID, AccountPhone: account.PhoneNumber}
	}

	for _, c := range conversations {
		i, ok := index[c.AccountID]
		if !ok {
			continue
		}
		if sameDay(c.FirstMessageAt, today, loc) {
			stats[i].NewToday++
		}
		if c.LastMessage != nil && sameDay(c.LastMessage.Date, today, loc) {
			stats[i].ActiveToday++
		}
	}

	return stats
}

func sameDay(t *time.Time, today time.Time, loc *time.Location) bool {
	if t == nil {
		return false
	}
	y1, m1, d1 := t.In(loc).Date()
	y2, m2, d2 := today.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
