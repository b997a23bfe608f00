package db

import (
	"time"

	"gorm.io/datatypes"
)

type User struct {
	ID             uint   `gorm:"primaryKey"`
	Username       string `gorm:"not null"`
	Email          string `gorm:"uniqueIndex"`
	SocialID       string `gorm:"uniqueIndex;not null"`
	DeviceToken    string
	TelegramChatID int64 `gorm:"index"` // 0 when the user never linked a chat
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// MemberLink authorizes UserID to read and manage MemberID's pills and
// schedules once the member accepted the request.
type MemberLink struct {
	ID         uint `gorm:"primaryKey"`
	UserID     uint `gorm:"index;uniqueIndex:idx_user_member"`
	MemberID   uint `gorm:"index;uniqueIndex:idx_user_member"`
	MemberName string
	Accepted   bool `gorm:"not null;default:false"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type Pill struct {
	ID       uint   `gorm:"primaryKey"`
	UserID   uint   `gorm:"index"` // owning take-er, not necessarily the creator
	PillName string `gorm:"not null"`
	Color    int    `gorm:"not null;default:1"`

	// Recurrence columns. RuleKind selects which of the three shapes is
	// authoritative; the others are left empty.
	RuleKind      string         `gorm:"not null"`
	TakeInterval  int            `gorm:"not null;default:1"`
	Weekdays      datatypes.JSON // e.g. [1,3] for Mon,Wed (time.Weekday numbering)
	SpecificDates datatypes.JSON // e.g. ["2024-01-01"]
	TimeList      datatypes.JSON `gorm:"not null"` // e.g. ["08:00","20:00"]

	StartDate time.Time  `gorm:"type:date;not null"`
	EndDate   *time.Time `gorm:"type:date"`
	IsStop    bool       `gorm:"not null;default:false"`
	StopDate  *time.Time `gorm:"type:date"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ScheduleCheck is the persisted taken/not-taken state of one schedule
// instance. Rows are materialized lazily on first view or toggle; the
// unique index makes concurrent first-touch creation an upsert.
type ScheduleCheck struct {
	ID           uint      `gorm:"primaryKey"`
	PillID       uint      `gorm:"index;uniqueIndex:idx_pill_date_time"`
	UserID       uint      `gorm:"index"`
	ScheduleDate time.Time `gorm:"type:date;uniqueIndex:idx_pill_date_time"`
	ScheduleTime string    `gorm:"not null;uniqueIndex:idx_pill_date_time"` // "HH:MM"
	IsCheck      bool      `gorm:"not null;default:false"`
	CheckedAt    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
