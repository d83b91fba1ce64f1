package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/angelmondragon/fooddiscount-backend/pkg/enums"
	"github.com/rs/zerolog/log"
	"go.uber.org/multierr"
)

// ClosedMarker is the schedule text for a day the store does not open.
const ClosedMarker = "closed"

const maxScheduleLen = 64

// WorkingHours maps a lowercase weekday to a free text schedule such as
// "09:00-18:00" or ClosedMarker.
type WorkingHours map[string]string

// HoursOutcome reports how a stored value was decoded.
type HoursOutcome string

const (
	HoursFlat      HoursOutcome = "flat"
	HoursLegacy    HoursOutcome = "legacy_object"
	HoursRecovered HoursOutcome = "recovered_char_array"
	HoursDefault   HoursOutcome = "default"
)

// DefaultWorkingHours is the schedule assigned when none is provided.
func DefaultWorkingHours() WorkingHours {
	return WorkingHours{
		string(enums.WeekdayMonday):    "09:00-18:00",
		string(enums.WeekdayTuesday):   "09:00-18:00",
		string(enums.WeekdayWednesday): "09:00-18:00",
		string(enums.WeekdayThursday):  "09:00-18:00",
		string(enums.WeekdayFriday):    "09:00-18:00",
		string(enums.WeekdaySaturday):  "10:00-16:00",
		string(enums.WeekdaySunday):    ClosedMarker,
	}
}

// NormalizeWorkingHours decodes any shape the column has held over time.
// Flat string values are kept, legacy {open, close, closed} objects are
// flattened, numeric keys are dropped, and an array of single characters is
// joined and decoded again. Anything else yields the default schedule.
func NormalizeWorkingHours(raw any) (WorkingHours, HoursOutcome) {
	return normalizeHours(raw, 0)
}

func normalizeHours(raw any, depth int) (WorkingHours, HoursOutcome) {
	switch v := raw.(type) {
	case nil:
		return DefaultWorkingHours(), HoursDefault
	case map[string]string:
		return normalizeHoursMap(toAnyMap(v))
	case WorkingHours:
		return normalizeHoursMap(toAnyMap(v))
	case map[string]any:
		return normalizeHoursMap(v)
	case []any:
		if depth > 0 {
			return DefaultWorkingHours(), HoursDefault
		}
		var b strings.Builder
		for _, part := range v {
			s, ok := part.(string)
			if !ok {
				return DefaultWorkingHours(), HoursDefault
			}
			b.WriteString(s)
		}
		var parsed any
		if err := json.Unmarshal([]byte(b.String()), &parsed); err != nil {
			return DefaultWorkingHours(), HoursDefault
		}
		hours, outcome := normalizeHours(parsed, depth+1)
		if outcome == HoursDefault {
			return hours, outcome
		}
		return hours, HoursRecovered
	case string:
		if depth > 0 {
			return DefaultWorkingHours(), HoursDefault
		}
		var parsed any
		if err := json.Unmarshal([]byte(v), &parsed); err != nil {
			return DefaultWorkingHours(), HoursDefault
		}
		return normalizeHours(parsed, depth+1)
	default:
		return DefaultWorkingHours(), HoursDefault
	}
}

func normalizeHoursMap(m map[string]any) (WorkingHours, HoursOutcome) {
	out := WorkingHours{}
	outcome := HoursFlat
	for day, value := range m {
		if _, err := strconv.ParseFloat(day, 64); err == nil {
			continue
		}
		switch v := value.(type) {
		case string:
			out[day] = v
		case map[string]any:
			if flat, ok := flattenLegacyDay(v); ok {
				out[day] = flat
				outcome = HoursLegacy
			}
		}
	}
	if len(out) == 0 {
		return DefaultWorkingHours(), HoursDefault
	}
	return out, outcome
}

func flattenLegacyDay(v map[string]any) (string, bool) {
	if closed, _ := v["closed"].(bool); closed {
		return ClosedMarker, true
	}
	open, _ := v["open"].(string)
	closeAt, _ := v["close"].(string)
	if open == "" || closeAt == "" {
		return "", false
	}
	return open + "-" + closeAt, true
}

func toAnyMap[V any](m map[string]V) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Validate rejects unknown weekday keys and blank or oversized schedules.
func (w WorkingHours) Validate() error {
	var err error
	days := make([]string, 0, len(w))
	for day := range w {
		days = append(days, day)
	}
	sort.Strings(days)
	for _, day := range days {
		if !enums.Weekday(day).IsValid() {
			err = multierr.Append(err, fmt.Errorf("unknown weekday %q", day))
			continue
		}
		schedule := strings.TrimSpace(w[day])
		switch {
		case schedule == "":
			err = multierr.Append(err, fmt.Errorf("%s: schedule is required", day))
		case len(schedule) > maxScheduleLen:
			err = multierr.Append(err, fmt.Errorf("%s: schedule exceeds %d characters", day, maxScheduleLen))
		}
	}
	return err
}

// Clean returns a copy with trimmed schedule values.
func (w WorkingHours) Clean() WorkingHours {
	out := make(WorkingHours, len(w))
	for day, schedule := range w {
		out[day] = strings.TrimSpace(schedule)
	}
	return out
}

// Value implements driver.Valuer.
func (w WorkingHours) Value() (driver.Value, error) {
	if w == nil {
		w = DefaultWorkingHours()
	}
	b, err := json.Marshal(map[string]string(w))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner. Malformed stored values never fail the read;
// they are normalised and a warning is logged.
func (w *WorkingHours) Scan(value any) error {
	var raw any
	switch v := value.(type) {
	case nil:
		raw = nil
	case []byte:
		if err := json.Unmarshal(v, &raw); err != nil {
			raw = nil
		}
	case string:
		if err := json.Unmarshal([]byte(v), &raw); err != nil {
			raw = nil
		}
	default:
		return fmt.Errorf("working hours: unsupported scan type %T", value)
	}

	hours, outcome := NormalizeWorkingHours(raw)
	if outcome != HoursFlat {
		log.Warn().Str("outcome", string(outcome)).Msg("working_hours.normalized")
	}
	*w = hours
	return nil
}

// GormDataType keeps migrations and sqlite tests on a JSON column.
func (WorkingHours) GormDataType() string {
	return "jsonb"
}
