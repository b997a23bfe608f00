// Package notify pushes due schedule slots to users who linked a
// Telegram chat. Dispatch is fire-and-forget: failures are logged and the
// next slot is attempted regardless.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pillme-team/pillme-server/pkg/db"
	"github.com/pillme-team/pillme-server/pkg/logger"
	"github.com/pillme-team/pillme-server/pkg/pill"
	"github.com/pillme-team/pillme-server/pkg/schedule"
)

type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// Run polls once a minute and delivers the slot that just became due,
// using the fixed UTC offset the whole system runs on.
func Run(ctx context.Context, sender Sender, offsetHours int) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	var lastSlot string
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			local := now.UTC().Add(time.Duration(offsetHours) * time.Hour)
			slot := local.Format(pill.TimeLayout)
			if slot == lastSlot {
				continue
			}
			lastSlot = slot
			dispatchSlot(ctx, sender, local, slot)
		}
	}
}

func dispatchSlot(ctx context.Context, sender Sender, local time.Time, slot string) {
	var users []db.User
	if err := db.DB.Where("telegram_chat_id <> 0").Find(&users).Error; err != nil {
		logger.Error("failed to fetch users for reminders", "error", err)
		return
	}

	day := pill.DateOnly(local)
	for _, u := range users {
		entries, err := schedule.DayView(u.ID, day)
		if err != nil {
			logger.Error("failed to expand schedule for reminder", "user_id", u.ID, "error", err)
			continue
		}

		var due []schedule.Entry
		for _, e := range entries {
			if e.Time == slot && !e.IsCheck {
				due = append(due, e)
			}
		}
		if len(due) == 0 {
			continue
		}

		if err := sender.SendMessage(ctx, u.TelegramChatID, buildMessage(slot, due)); err != nil {
			logger.Error("failed to send reminder", "user_id", u.ID, "error", err)
		}
	}
}

func buildMessage(slot string, due []schedule.Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "It's %s, time to take:\n", slot)
	for _, e := range due {
		fmt.Fprintf(&b, "- %s\n", e.PillName)
	}
	return b.String()
}
