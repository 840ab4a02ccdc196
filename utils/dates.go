package utils

import (
	"fmt"
	"strings"
	"time"
)

// dateLayouts are the accepted calendar date forms, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
}

// ParseDate converts an ISO (2015-08-24) or US (08/24/2015) date string to
// a midnight UTC time.Time.
func ParseDate(s string) (time.Time, error) {
	trimmed := strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q (want 2006-01-02 or 01/02/2006)", s)
}

// AddMonth behaves like Excel's EDATE: the day of month is preserved and
// clamped to the last day when the target month is shorter. Go's AddDate
// would normalize Jan 31 + 1 month into March instead.
func AddMonth(t time.Time, months int) time.Time {
	d := t.AddDate(0, months, 0)
	want := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location()).AddDate(0, months, 0)
	if d.Month() == want.Month() {
		return d
	}

	// AddDate overflowed into the following month; walk back to month end.
	for m := d.Month(); d.Month() == m; {
		d = d.AddDate(0, 0, -1)
	}
	return d
}
