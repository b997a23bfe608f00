package schedule

import (
	"errors"
	"fmt"
	"time"

	"github.com/pillme-team/pillme-server/pkg/db"
	"github.com/pillme-team/pillme-server/pkg/domain"
	"github.com/pillme-team/pillme-server/pkg/logger"
	"github.com/pillme-team/pillme-server/pkg/pill"
	"github.com/pillme-team/pillme-server/pkg/user"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Check marks the (pillID, date, timeOfDay) instance as taken. The row is
// materialized on first touch; repeating the call is a no-op success.
func Check(callerID, pillID uint, date time.Time, timeOfDay string) (*db.ScheduleCheck, error) {
	return setCheck(callerID, pillID, date, timeOfDay, true)
}

// Uncheck reverts the instance to not taken.
func Uncheck(callerID, pillID uint, date time.Time, timeOfDay string) (*db.ScheduleCheck, error) {
	return setCheck(callerID, pillID, date, timeOfDay, false)
}

func setCheck(callerID, pillID uint, date time.Time, timeOfDay string, checked bool) (*db.ScheduleCheck, error) {
	tod, err := pill.ParseTimeOfDay(timeOfDay)
	if err != nil {
		return nil, domain.E(domain.CodeNullValue, "invalid time of day %q", timeOfDay)
	}
	day := pill.DateOnly(date)

	var row db.ScheduleCheck
	err = db.DB.Transaction(func(tx *gorm.DB) error {
		var p db.Pill
		err := tx.First(&p, pillID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.E(domain.CodeNoPill, "pill %d not found", pillID)
		}
		if err != nil {
			return fmt.Errorf("find pill %d: %w", pillID, err)
		}
		if p.UserID != callerID {
			if gateErr := user.CanActFor(tx, callerID, p.UserID); gateErr != nil {
				if domain.HasCode(gateErr, domain.CodeNoMember) {
					return domain.E(domain.CodePillUnauthorized, "user %d may not check pill %d", callerID, pillID)
				}
				return gateErr
			}
		}

		// the instance must actually exist for this pill and date
		def, err := pill.FromModel(&p)
		if err != nil {
			return err
		}
		exists := false
		for _, slot := range def.TimesOn(day) {
			if slot == tod {
				exists = true
				break
			}
		}
		if !exists {
			return domain.E(domain.CodeNoPill, "pill %d has no schedule at %s %s", pillID, day.Format(pill.DateLayout), tod)
		}

		row = db.ScheduleCheck{
			PillID:       pillID,
			UserID:       p.UserID,
			ScheduleDate: day,
			ScheduleTime: tod,
		}
		err = tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "pill_id"},
				{Name: "schedule_date"},
				{Name: "schedule_time"},
			},
			DoNothing: true,
		}).Create(&row).Error
		if err != nil {
			return fmt.Errorf("materialize check row for pill %d: %w", pillID, err)
		}

		// flip only when the state differs, so repeated calls keep the
		// original checked_at
		updates := map[string]any{"is_check": checked, "checked_at": nil}
		if checked {
			now := time.Now().UTC()
			updates["checked_at"] = &now
		}
		err = tx.Model(&db.ScheduleCheck{}).
			Where("pill_id = ? AND schedule_date = ? AND schedule_time = ? AND is_check <> ?", pillID, day, tod, checked).
			Updates(updates).Error
		if err != nil {
			return fmt.Errorf("toggle check row for pill %d: %w", pillID, err)
		}

		return tx.Where("pill_id = ? AND schedule_date = ? AND schedule_time = ?", pillID, day, tod).
			First(&row).Error
	})
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// PurgeStoppedChecks removes check rows dated on or after their pill's
// stop date. Those instances no longer exist, the rows are leftovers from
// views rendered before the stop.
func PurgeStoppedChecks() (int64, error) {
	var stopped []db.Pill
	err := db.DB.Where("is_stop = ? AND stop_date IS NOT NULL", true).Find(&stopped).Error
	if err != nil {
		return 0, fmt.Errorf("list stopped pills: %w", err)
	}

	var total int64
	for i := range stopped {
		res := db.DB.Where("pill_id = ? AND schedule_date >= ?", stopped[i].ID, *stopped[i].StopDate).
			Delete(&db.ScheduleCheck{})
		if res.Error != nil {
			return total, fmt.Errorf("purge checks of pill %d: %w", stopped[i].ID, res.Error)
		}
		total += res.RowsAffected
	}
	if total > 0 {
		logger.Info("purged stale check rows", "count", total)
	}
	return total, nil
}
