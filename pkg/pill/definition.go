package pill

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/pillme-team/pillme-server/pkg/db"
	"gorm.io/datatypes"
)

// Definition is the expanded, decoded form of a pill's recurrence: the
// rule expander operates on it without touching storage.
type Definition struct {
	Rule     Rule
	Times    []string
	Start    time.Time
	End      *time.Time
	Stopped  bool
	StopDate *time.Time
}

// ActiveOn reports whether the pill has any schedule instance on date.
// Range and stop bounds are applied before the rule is consulted: dates
// before start, after end, or on/after the stop date never exist.
func (d Definition) ActiveOn(date time.Time) bool {
	date = DateOnly(date)
	start := DateOnly(d.Start)
	if date.Before(start) {
		return false
	}
	if d.End != nil && date.After(DateOnly(*d.End)) {
		return false
	}
	if d.Stopped && d.StopDate != nil && !date.Before(DateOnly(*d.StopDate)) {
		return false
	}
	return d.Rule.activeOn(start, date)
}

// TimesOn returns the ordered time-of-day slots on date, empty when the
// pill is not active that day.
func (d Definition) TimesOn(date time.Time) []string {
	if !d.ActiveOn(date) {
		return nil
	}
	out := make([]string, len(d.Times))
	copy(out, d.Times)
	return out
}

// FromModel decodes the persisted recurrence columns of a pill row.
func FromModel(p *db.Pill) (Definition, error) {
	def := Definition{
		Rule:     Rule{Kind: RuleKind(p.RuleKind), EveryNDays: p.TakeInterval},
		Start:    DateOnly(p.StartDate),
		End:      p.EndDate,
		Stopped:  p.IsStop,
		StopDate: p.StopDate,
	}

	if len(p.TimeList) > 0 {
		if err := json.Unmarshal(p.TimeList, &def.Times); err != nil {
			return Definition{}, fmt.Errorf("decode time list of pill %d: %w", p.ID, err)
		}
	}

	switch def.Rule.Kind {
	case KindWeekdays:
		var days []int
		if err := json.Unmarshal(p.Weekdays, &days); err != nil {
			return Definition{}, fmt.Errorf("decode weekdays of pill %d: %w", p.ID, err)
		}
		def.Rule.Weekdays = make([]time.Weekday, 0, len(days))
		for _, d := range days {
			def.Rule.Weekdays = append(def.Rule.Weekdays, time.Weekday(d))
		}
	case KindSpecificDates:
		var raw []string
		if err := json.Unmarshal(p.SpecificDates, &raw); err != nil {
			return Definition{}, fmt.Errorf("decode specific dates of pill %d: %w", p.ID, err)
		}
		def.Rule.Dates = make([]time.Time, 0, len(raw))
		for _, s := range raw {
			d, err := ParseDate(s)
			if err != nil {
				return Definition{}, fmt.Errorf("decode specific dates of pill %d: %w", p.ID, err)
			}
			def.Rule.Dates = append(def.Rule.Dates, d)
		}
	}

	return def, nil
}

// applyRule encodes a rule and time list onto a pill row, clearing the
// columns the rule kind does not use.
func applyRule(p *db.Pill, rule Rule, times []string) error {
	timeJSON, err := json.Marshal(times)
	if err != nil {
		return fmt.Errorf("encode time list: %w", err)
	}
	p.TimeList = datatypes.JSON(timeJSON)
	p.RuleKind = string(rule.Kind)
	p.TakeInterval = 1
	p.Weekdays = nil
	p.SpecificDates = nil

	switch rule.Kind {
	case KindInterval:
		p.TakeInterval = rule.EveryNDays
	case KindWeekdays:
		days := make([]int, 0, len(rule.Weekdays))
		for _, d := range rule.Weekdays {
			days = append(days, int(d))
		}
		dayJSON, err := json.Marshal(days)
		if err != nil {
			return fmt.Errorf("encode weekdays: %w", err)
		}
		p.Weekdays = datatypes.JSON(dayJSON)
	case KindSpecificDates:
		raw := make([]string, 0, len(rule.Dates))
		for _, d := range rule.Dates {
			raw = append(raw, d.Format(DateLayout))
		}
		dateJSON, err := json.Marshal(raw)
		if err != nil {
			return fmt.Errorf("encode specific dates: %w", err)
		}
		p.SpecificDates = datatypes.JSON(dateJSON)
	}
	return nil
}
