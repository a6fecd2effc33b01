package device

import (
	"strconv"
	"strings"
)

// Query protocol constants.
const (
	// MaxDays is the number of daily values the appliance keeps.
	MaxDays = 14

	// DailyFieldPrefix precedes the 1-based day number in field names.
	DailyFieldPrefix = "D_Y_2_"

	// StatusField carries the appliance's response status.
	StatusField = "code"

	// StatusOK is the only status value that allows values to be read.
	StatusOK = "ok"

	// queryID selects the consumption statistics page on the appliance.
	queryID = 625

	// queryTerminator closes the show= field list.
	queryTerminator = "~"
)

// DailyFieldName returns the element name for the given 1-based day.
//
// Example: DailyFieldName(3) == "D_Y_2_3"
func DailyFieldName(day int) string {
	return DailyFieldPrefix + strconv.Itoa(day)
}

// ParseDailyFieldName reports the 1-based day encoded in name.
// Only D_Y_2_1 through D_Y_2_14 are recognised.
func ParseDailyFieldName(name string) (int, bool) {
	suffix, found := strings.CutPrefix(name, DailyFieldPrefix)
	if !found || suffix == "" {
		return 0, false
	}
	for _, r := range suffix {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	day, err := strconv.Atoi(suffix)
	if err != nil || day < 1 || day > MaxDays {
		return 0, false
	}
	return day, true
}

// RequestBody builds the form body for one query.
//
// With history the body lists all 14 daily fields:
//
//	id=625&show=D_Y_2_1|D_Y_2_2|...|D_Y_2_14~
//
// Without history only the most recent day is requested:
//
//	id=625&show=D_Y_2_1~
func RequestBody(history bool) string {
	days := 1
	if history {
		days = MaxDays
	}

	fields := make([]string, 0, days)
	for day := 1; day <= days; day++ {
		fields = append(fields, DailyFieldName(day))
	}

	return "id=" + strconv.Itoa(queryID) + "&show=" + strings.Join(fields, "|") + queryTerminator
}
