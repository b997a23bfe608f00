package pill

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/pillme-team/pillme-server/pkg/db"
	"github.com/pillme-team/pillme-server/pkg/domain"
	"github.com/pillme-team/pillme-server/pkg/user"
	"gorm.io/gorm"
)

// MaxActivePills is the per-owner cap on concurrently active pills,
// enforced at creation time only.
const MaxActivePills = 5

const maxNameLength = 10

type CreateInput struct {
	Name  string
	Rule  Rule
	Times []string
	Start time.Time
	End   *time.Time
	Color int
}

type ModifyInput struct {
	Name  *string
	Rule  *Rule
	Times []string
	Start *time.Time
	End   *time.Time
	Color *int
}

type CountInfo struct {
	Used      int `json:"used"`
	Remaining int `json:"remaining"`
}

// ValidateName enforces the 1..10 character pill name bound.
func ValidateName(name string) error {
	n := utf8.RuneCountInString(name)
	if n == 0 || n > maxNameLength {
		return domain.E(domain.CodeNoPillName, "pill name must be 1-%d characters", maxNameLength)
	}
	return nil
}

// Create persists a new pill owned by ownerID. Validation and the count
// limit run before any insert so a rejected call leaves storage untouched.
func Create(ownerID uint, in CreateInput) (*db.Pill, error) {
	p, err := buildPill(ownerID, in)
	if err != nil {
		return nil, err
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := user.Exists(tx, ownerID); err != nil {
			return err
		}
		if err := checkCountLimit(tx, ownerID); err != nil {
			return err
		}
		return tx.Create(p).Error
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// CreateForMember adds a pill owned by memberID on behalf of callerID.
// The gate runs after the member's existence check, matching the error
// precedence of the read paths.
func CreateForMember(callerID, memberID uint, in CreateInput) (*db.Pill, error) {
	p, err := buildPill(memberID, in)
	if err != nil {
		return nil, err
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := user.Exists(tx, memberID); err != nil {
			return err
		}
		if err := user.CanActFor(tx, callerID, memberID); err != nil {
			return err
		}
		if err := checkCountLimit(tx, memberID); err != nil {
			return err
		}
		return tx.Create(p).Error
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Modify replaces the pill's name, rule, times and range atomically.
// Persisted check rows are never touched: a rule change only affects how
// future dates expand, history stays as recorded.
func Modify(callerID, pillID uint, in ModifyInput) (*db.Pill, error) {
	var p db.Pill
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := loadOwned(tx, callerID, pillID, &p); err != nil {
			return err
		}

		if in.Name != nil {
			if err := ValidateName(*in.Name); err != nil {
				return err
			}
			p.PillName = *in.Name
		}
		if in.Color != nil {
			p.Color = *in.Color
		}
		if in.Start != nil {
			p.StartDate = DateOnly(*in.Start)
		}
		if in.End != nil {
			end := DateOnly(*in.End)
			p.EndDate = &end
		}
		if in.Rule != nil {
			if err := in.Rule.Validate(); err != nil {
				return err
			}
			times := in.Times
			if times == nil {
				def, err := FromModel(&p)
				if err != nil {
					return err
				}
				times = def.Times
			}
			normalized, err := NormalizeTimes(times)
			if err != nil {
				return err
			}
			if err := applyRule(&p, *in.Rule, normalized); err != nil {
				return err
			}
		} else if in.Times != nil {
			normalized, err := NormalizeTimes(in.Times)
			if err != nil {
				return err
			}
			def, err := FromModel(&p)
			if err != nil {
				return err
			}
			if err := applyRule(&p, def.Rule, normalized); err != nil {
				return err
			}
		}

		return tx.Save(&p).Error
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Stop marks the pill inactive from stopDate forward. Dates before the
// stop date stay queryable as history.
func Stop(callerID, pillID uint, stopDate time.Time) (*db.Pill, error) {
	var p db.Pill
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := loadOwned(tx, callerID, pillID, &p); err != nil {
			return err
		}
		if p.IsStop {
			return domain.E(domain.CodeAlreadyStopped, "pill %d is already stopped", pillID)
		}
		day := DateOnly(stopDate)
		p.IsStop = true
		p.StopDate = &day
		return tx.Save(&p).Error
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Remove hard-deletes the pill and every check row it materialized.
func Remove(callerID, pillID uint) error {
	return db.DB.Transaction(func(tx *gorm.DB) error {
		var p db.Pill
		if err := loadOwned(tx, callerID, pillID, &p); err != nil {
			return err
		}
		if err := tx.Where("pill_id = ?", pillID).Delete(&db.ScheduleCheck{}).Error; err != nil {
			return fmt.Errorf("delete check rows of pill %d: %w", pillID, err)
		}
		return tx.Delete(&p).Error
	})
}

// Count reports how many active pills ownerID uses against the limit.
func Count(ownerID uint) (CountInfo, error) {
	if err := user.Exists(db.DB, ownerID); err != nil {
		return CountInfo{}, err
	}
	used, err := countActive(db.DB, ownerID)
	if err != nil {
		return CountInfo{}, err
	}
	remaining := MaxActivePills - used
	if remaining < 0 {
		remaining = 0
	}
	return CountInfo{Used: used, Remaining: remaining}, nil
}

// ActivePills lists the non-stopped pills of an owner.
func ActivePills(ownerID uint) ([]db.Pill, error) {
	var pills []db.Pill
	err := db.DB.Where("user_id = ? AND is_stop = ?", ownerID, false).
		Order("id ASC").Find(&pills).Error
	if err != nil {
		return nil, fmt.Errorf("list active pills of user %d: %w", ownerID, err)
	}
	return pills, nil
}

func buildPill(ownerID uint, in CreateInput) (*db.Pill, error) {
	if err := ValidateName(in.Name); err != nil {
		return nil, err
	}
	if err := in.Rule.Validate(); err != nil {
		return nil, err
	}
	times, err := NormalizeTimes(in.Times)
	if err != nil {
		return nil, err
	}
	if in.Start.IsZero() {
		return nil, domain.E(domain.CodeNullValue, "start date is required")
	}

	p := db.Pill{
		UserID:    ownerID,
		PillName:  in.Name,
		Color:     in.Color,
		StartDate: DateOnly(in.Start),
	}
	if p.Color == 0 {
		p.Color = 1
	}
	if in.End != nil {
		end := DateOnly(*in.End)
		p.EndDate = &end
	}
	if err := applyRule(&p, in.Rule, times); err != nil {
		return nil, err
	}
	return &p, nil
}

func checkCountLimit(tx *gorm.DB, ownerID uint) error {
	used, err := countActive(tx, ownerID)
	if err != nil {
		return err
	}
	if used >= MaxActivePills {
		return domain.E(domain.CodePillCountOver, "user %d already has %d active pills", ownerID, used)
	}
	return nil
}

func countActive(tx *gorm.DB, ownerID uint) (int, error) {
	var count int64
	err := tx.Model(&db.Pill{}).
		Where("user_id = ? AND is_stop = ?", ownerID, false).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count active pills of user %d: %w", ownerID, err)
	}
	return int(count), nil
}

// loadOwned resolves a pill and gates access to it. Existence failures
// (NO_PILL) take precedence over authorization (PILL_UNAUTHORIZED).
func loadOwned(tx *gorm.DB, callerID, pillID uint, out *db.Pill) error {
	err := tx.First(out, pillID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.E(domain.CodeNoPill, "pill %d not found", pillID)
	}
	if err != nil {
		return fmt.Errorf("find pill %d: %w", pillID, err)
	}
	if out.UserID == callerID {
		return nil
	}
	if err := user.CanActFor(tx, callerID, out.UserID); err != nil {
		if domain.HasCode(err, domain.CodeNoMember) {
			return domain.E(domain.CodePillUnauthorized, "user %d may not manage pill %d", callerID, pillID)
		}
		return err
	}
	return nil
}
