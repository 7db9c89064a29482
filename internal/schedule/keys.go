package schedule

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const SlotsPerDay = 8

var Days = []string{"Mon", "Tue", "Wed", "Thu", "Fri"}

func PeriodKey(day string, slot int) string {
	return day + "-" + strconv.Itoa(slot)
}

// ParseKey splits "{day}-{slot}" and checks both halves.
func ParseKey(key string) (string, int, error) {
	day, rawSlot, ok := strings.Cut(key, "-")
	if !ok {
		return "", 0, errors.Errorf("period key %q is not {day}-{slot}", key)
	}
	if !ValidDay(day) {
		return "", 0, errors.Errorf("period key %q has unknown day %q", key, day)
	}
	slot, err := strconv.Atoi(rawSlot)
	if err != nil || slot < 0 || slot >= SlotsPerDay {
		return "", 0, errors.Errorf("period key %q has slot outside 0..%d", key, SlotsPerDay-1)
	}
	return day, slot, nil
}

func ValidKey(key string) bool {
	_, _, err := ParseKey(key)
	return err == nil
}

func ValidDay(day string) bool {
	for _, d := range Days {
		if d == day {
			return true
		}
	}
	return false
}

// NormalizeDay maps "monday", "MON" or "Mon" to "Mon". Unknown input yields "".
func NormalizeDay(day string) string {
	day = strings.TrimSpace(day)
	if len(day) < 3 {
		return ""
	}
	short := strings.ToUpper(day[:1]) + strings.ToLower(day[1:3])
	if ValidDay(short) {
		return short
	}
	return ""
}
