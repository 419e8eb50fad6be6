package calendar

import (
	"fmt"
	"strings"

	"github.com/kilianp07/baysim/core/model"
)

// Season is winter or summer.
type Season int

const (
	Winter Season = iota
	Summer
)

func (s Season) String() string {
	if s == Winter {
		return "winter"
	}
	return "summer"
}

// DayType is weekday or weekend.
type DayType int

const (
	Weekday DayType = iota
	Weekend
)

func (d DayType) String() string {
	if d == Weekday {
		return "weekday"
	}
	return "weekend"
}

// TimeOfDay is daytime or nighttime.
type TimeOfDay int

const (
	Daytime TimeOfDay = iota
	Nighttime
)

func (t TimeOfDay) String() string {
	if t == Daytime {
		return "daytime"
	}
	return "nighttime"
}

// Bucket is the classification of one timestep.
type Bucket struct {
	Season    Season
	DayType   DayType
	TimeOfDay TimeOfDay
}

// Key joins the bucket parts with sep, e.g. "winter_weekday_daytime".
func (b Bucket) Key(sep string) string {
	return b.Season.String() + sep + b.DayType.String() + sep + b.TimeOfDay.String()
}

func (b Bucket) String() string { return b.Key("_") }

// AllBuckets returns the eight buckets in canonical order: winter before
// summer, weekday before weekend, daytime before nighttime.
func AllBuckets() []Bucket {
	out := make([]Bucket, 0, 8)
	for _, s := range []Season{Winter, Summer} {
		for _, d := range []DayType{Weekday, Weekend} {
			for _, t := range []TimeOfDay{Daytime, Nighttime} {
				out = append(out, Bucket{Season: s, DayType: d, TimeOfDay: t})
			}
		}
	}
	return out
}

// ParseBucket reads a key produced by Key with either "_" or "-" as separator.
func ParseBucket(key string) (Bucket, error) {
	parts := strings.FieldsFunc(key, func(r rune) bool { return r == '_' || r == '-' })
	if len(parts) != 3 {
		return Bucket{}, fmt.Errorf("%w: bad bucket key %q", model.ErrConfiguration, key)
	}
	var b Bucket
	switch parts[0] {
	case "winter":
		b.Season = Winter
	case "summer":
		b.Season = Summer
	default:
		return Bucket{}, fmt.Errorf("%w: bad season in %q", model.ErrConfiguration, key)
	}
	switch parts[1] {
	case "weekday":
		b.DayType = Weekday
	case "weekend":
		b.DayType = Weekend
	default:
		return Bucket{}, fmt.Errorf("%w: bad day type in %q", model.ErrConfiguration, key)
	}
	switch parts[2] {
	case "daytime":
		b.TimeOfDay = Daytime
	case "nighttime":
		b.TimeOfDay = Nighttime
	default:
		return Bucket{}, fmt.Errorf("%w: bad time of day in %q", model.ErrConfiguration, key)
	}
	return b, nil
}

// Range is a half-open index interval [Start, End).
type Range struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

// Contains reports whether t lies in the range.
func (r Range) Contains(t int) bool { return t >= r.Start && t < r.End }

const (
	// StepsPerDay is the number of 15-minute slots in a day.
	StepsPerDay = 96
	// StepsPerYear is one non-leap year of 15-minute slots.
	StepsPerYear = 35040
)

// Calendar holds the parameters of the classification.
type Calendar struct {
	StepsPerDay  int     `json:"steps_per_day"`
	DayStart     int     `json:"day_start"` // first daytime slot of a day
	DayEnd       int     `json:"day_end"`   // first nighttime slot after daytime
	WeekendDays  []int   `json:"weekend_days"`
	WinterRanges []Range `json:"winter_ranges"`
}

// Default returns the calendar of a year starting in winter: November to
// February approximated by two fixed index ranges, days split 7:00-19:00.
func Default() Calendar {
	return Calendar{
		StepsPerDay: StepsPerDay,
		DayStart:    7 * 4,
		DayEnd:      19 * 4,
		WeekendDays: []int{5, 6},
		WinterRanges: []Range{
			{Start: 0, End: 8640},
			{Start: 29184, End: StepsPerYear},
		},
	}
}

// Validate checks that the calendar can classify indices.
func (c Calendar) Validate() error {
	if c.StepsPerDay <= 0 {
		return fmt.Errorf("%w: steps_per_day must be positive", model.ErrConfiguration)
	}
	if c.DayStart < 0 || c.DayEnd > c.StepsPerDay || c.DayStart > c.DayEnd {
		return fmt.Errorf("%w: daytime window [%d,%d) outside day of %d slots",
			model.ErrConfiguration, c.DayStart, c.DayEnd, c.StepsPerDay)
	}
	for _, d := range c.WeekendDays {
		if d < 0 || d > 6 {
			return fmt.Errorf("%w: weekend day %d not in 0..6", model.ErrConfiguration, d)
		}
	}
	for _, r := range c.WinterRanges {
		if r.End < r.Start {
			return fmt.Errorf("%w: winter range [%d,%d) is inverted", model.ErrConfiguration, r.Start, r.End)
		}
	}
	return nil
}

// Classify returns the bucket of timestep t.
func (c Calendar) Classify(t int) Bucket {
	var b Bucket
	b.Season = Summer
	for _, r := range c.WinterRanges {
		if r.Contains(t) {
			b.Season = Winter
			break
		}
	}
	dow := (t / c.StepsPerDay) % 7
	b.DayType = Weekday
	for _, d := range c.WeekendDays {
		if dow == d {
			b.DayType = Weekend
			break
		}
	}
	slot := t % c.StepsPerDay
	if slot >= c.DayStart && slot < c.DayEnd {
		b.TimeOfDay = Daytime
	} else {
		b.TimeOfDay = Nighttime
	}
	return b
}
