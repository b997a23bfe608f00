package pill

import (
	"sort"
	"time"

	"github.com/pillme-team/pillme-server/pkg/domain"
)

type RuleKind string

const (
	KindInterval      RuleKind = "interval"
	KindWeekdays      RuleKind = "weekdays"
	KindSpecificDates RuleKind = "dates"
)

// Rule is the closed recurrence variant of a pill. Exactly one shape is
// meaningful, selected by Kind.
type Rule struct {
	Kind       RuleKind
	EveryNDays int            // KindInterval: active every N days from start
	Weekdays   []time.Weekday // KindWeekdays: active on these weekdays
	Dates      []time.Time    // KindSpecificDates: active exactly on these dates
}

func (r Rule) Validate() error {
	switch r.Kind {
	case KindInterval:
		if r.EveryNDays < 1 {
			return domain.E(domain.CodeNullValue, "take interval must be at least 1")
		}
	case KindWeekdays:
		if len(r.Weekdays) == 0 {
			return domain.E(domain.CodeNullValue, "weekday rule needs at least one day")
		}
		for _, d := range r.Weekdays {
			if d < time.Sunday || d > time.Saturday {
				return domain.E(domain.CodeNullValue, "invalid weekday %d", d)
			}
		}
	case KindSpecificDates:
		if len(r.Dates) == 0 {
			return domain.E(domain.CodeNullValue, "date rule needs at least one date")
		}
	default:
		return domain.E(domain.CodeNullValue, "unknown rule kind %q", r.Kind)
	}
	return nil
}

// activeOn reports whether the rule fires on date for a pill started at
// start. Both arguments must already be day-normalized; range and stop
// bounds are the Definition's concern.
func (r Rule) activeOn(start, date time.Time) bool {
	switch r.Kind {
	case KindInterval:
		n := r.EveryNDays
		if n < 1 {
			n = 1
		}
		diff := DaysBetween(start, date)
		return diff >= 0 && diff%n == 0
	case KindWeekdays:
		for _, d := range r.Weekdays {
			if date.Weekday() == d {
				return true
			}
		}
		return false
	case KindSpecificDates:
		for _, d := range r.Dates {
			if DateOnly(d).Equal(date) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// ResolveRule builds a Rule from the loosely typed request fields where
// the three shapes may coexist. Precedence is fixed: interval wins over
// weekdays, weekdays win over specific dates.
func ResolveRule(takeInterval int, weekdays []int, specific []string) (Rule, error) {
	switch {
	case takeInterval > 0:
		return Rule{Kind: KindInterval, EveryNDays: takeInterval}, nil
	case len(weekdays) > 0:
		days := make([]time.Weekday, 0, len(weekdays))
		for _, d := range weekdays {
			if d < 0 || d > 6 {
				return Rule{}, domain.E(domain.CodeNullValue, "invalid weekday %d", d)
			}
			days = append(days, time.Weekday(d))
		}
		sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
		return Rule{Kind: KindWeekdays, Weekdays: days}, nil
	case len(specific) > 0:
		dates := make([]time.Time, 0, len(specific))
		for _, s := range specific {
			d, err := ParseDate(s)
			if err != nil {
				return Rule{}, domain.E(domain.CodeNullValue, "invalid specific date %q", s)
			}
			dates = append(dates, d)
		}
		sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
		return Rule{Kind: KindSpecificDates, Dates: dates}, nil
	default:
		return Rule{}, domain.E(domain.CodeNullValue, "no recurrence rule supplied")
	}
}

// NormalizeTimes validates and sorts a time-of-day list, dropping
// duplicates.
func NormalizeTimes(times []string) ([]string, error) {
	if len(times) == 0 {
		return nil, domain.E(domain.CodeNullValue, "time list is required")
	}
	seen := make(map[string]struct{}, len(times))
	out := make([]string, 0, len(times))
	for _, raw := range times {
		tod, err := ParseTimeOfDay(raw)
		if err != nil {
			return nil, domain.E(domain.CodeNullValue, "invalid time of day %q", raw)
		}
		if _, dup := seen[tod]; dup {
			continue
		}
		seen[tod] = struct{}{}
		out = append(out, tod)
	}
	sort.Strings(out)
	return out, nil
}
