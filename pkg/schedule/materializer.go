package schedule

import (
	"fmt"
	"time"

	"github.com/pillme-team/pillme-server/pkg/db"
	"github.com/pillme-team/pillme-server/pkg/domain"
	"github.com/pillme-team/pillme-server/pkg/pill"
	"github.com/pillme-team/pillme-server/pkg/user"
	"gorm.io/gorm/clause"
)

// Entry is one (pill, date, time) schedule instance merged with its
// persisted check state.
type Entry struct {
	ScheduleID uint       `json:"scheduleId"`
	PillID     uint       `json:"pillId"`
	PillName   string     `json:"pillName"`
	Color      int        `json:"color"`
	Time       string     `json:"time"`
	IsCheck    bool       `json:"isCheck"`
	CheckedAt  *time.Time `json:"checkedAt,omitempty"`
}

// DaySummary backs the calendar dot rendering: per date, only whether any
// schedule instance exists, without per-time expansion.
type DaySummary struct {
	Date        string `json:"date"`
	HasSchedule bool   `json:"hasSchedule"`
}

// DayView expands every pill of userID on date into schedule entries and
// merges the persisted check state. Rows the user never touched are
// materialized here so each entry carries a stable schedule id; the
// upsert ignores the row when a concurrent request created it first.
func DayView(userID uint, date time.Time) ([]Entry, error) {
	if err := user.Exists(db.DB, userID); err != nil {
		return nil, err
	}
	day := pill.DateOnly(date)

	var pills []db.Pill
	if err := db.DB.Where("user_id = ?", userID).Order("id ASC").Find(&pills).Error; err != nil {
		return nil, fmt.Errorf("list pills of user %d: %w", userID, err)
	}

	entries := make([]Entry, 0)
	rows := make([]db.ScheduleCheck, 0)
	for i := range pills {
		def, err := pill.FromModel(&pills[i])
		if err != nil {
			return nil, err
		}
		for _, tod := range def.TimesOn(day) {
			entries = append(entries, Entry{
				PillID:   pills[i].ID,
				PillName: pills[i].PillName,
				Color:    pills[i].Color,
				Time:     tod,
			})
			rows = append(rows, db.ScheduleCheck{
				PillID:       pills[i].ID,
				UserID:       userID,
				ScheduleDate: day,
				ScheduleTime: tod,
			})
		}
	}
	if len(rows) == 0 {
		return entries, nil
	}

	err := db.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "pill_id"},
			{Name: "schedule_date"},
			{Name: "schedule_time"},
		},
		DoNothing: true,
	}).Create(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("materialize schedule rows for user %d: %w", userID, err)
	}

	var persisted []db.ScheduleCheck
	err = db.DB.Where("user_id = ? AND schedule_date = ?", userID, day).Find(&persisted).Error
	if err != nil {
		return nil, fmt.Errorf("load schedule rows for user %d: %w", userID, err)
	}
	type key struct {
		pillID uint
		tod    string
	}
	byKey := make(map[key]*db.ScheduleCheck, len(persisted))
	for i := range persisted {
		byKey[key{persisted[i].PillID, persisted[i].ScheduleTime}] = &persisted[i]
	}
	for i := range entries {
		if row, ok := byKey[key{entries[i].PillID, entries[i].Time}]; ok {
			entries[i].ScheduleID = row.ID
			entries[i].IsCheck = row.IsCheck
			entries[i].CheckedAt = row.CheckedAt
		}
	}
	return entries, nil
}

// RangeView summarizes [from, to] per date: does any pill have a schedule
// instance that day. No check rows are created; this only consults the
// expander.
func RangeView(userID uint, from, to time.Time) ([]DaySummary, error) {
	if err := user.Exists(db.DB, userID); err != nil {
		return nil, err
	}
	from = pill.DateOnly(from)
	to = pill.DateOnly(to)
	if to.Before(from) {
		return nil, domain.E(domain.CodeNullValue, "range end before start")
	}

	var pills []db.Pill
	if err := db.DB.Where("user_id = ?", userID).Find(&pills).Error; err != nil {
		return nil, fmt.Errorf("list pills of user %d: %w", userID, err)
	}
	defs := make([]pill.Definition, 0, len(pills))
	for i := range pills {
		def, err := pill.FromModel(&pills[i])
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}

	var out []DaySummary
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		active := false
		for _, def := range defs {
			if def.ActiveOn(day) {
				active = true
				break
			}
		}
		out = append(out, DaySummary{Date: day.Format(pill.DateLayout), HasSchedule: active})
	}
	return out, nil
}

// MonthView is RangeView over a whole calendar month.
func MonthView(userID uint, year int, month time.Month) ([]DaySummary, error) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return RangeView(userID, first, last)
}

// MemberDayView is DayView for a linked member. The gate runs after the
// member's existence check so NO_USER wins over NO_MEMBER.
func MemberDayView(callerID, memberID uint, date time.Time) ([]Entry, error) {
	if err := user.Exists(db.DB, memberID); err != nil {
		return nil, err
	}
	if err := user.CanActFor(db.DB, callerID, memberID); err != nil {
		return nil, err
	}
	return DayView(memberID, date)
}

func MemberMonthView(callerID, memberID uint, year int, month time.Month) ([]DaySummary, error) {
	if err := user.Exists(db.DB, memberID); err != nil {
		return nil, err
	}
	if err := user.CanActFor(db.DB, callerID, memberID); err != nil {
		return nil, err
	}
	return MonthView(memberID, year, month)
}
