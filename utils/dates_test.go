package utils_test

import (
	"testing"
	"time"

	"github.com/meenmo/loancast/utils"
)

func TestParseDate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want time.Time
	}{
		{"2015-08-24", time.Date(2015, 8, 24, 0, 0, 0, 0, time.UTC)},
		{"08/24/2015", time.Date(2015, 8, 24, 0, 0, 0, 0, time.UTC)},
		{"01/02/2006", time.Date(2006, 1, 2, 0, 0, 0, 0, time.UTC)},
		{" 2020-02-29 ", time.Date(2020, 2, 29, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		got, err := utils.ParseDate(tc.in)
		if err != nil {
			t.Fatalf("ParseDate(%q): %v", tc.in, err)
		}
		if !got.Equal(tc.want) {
			t.Errorf("ParseDate(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestParseDateRejectsGarbage(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "24-08-2015", "2015/08/24", "yesterday"} {
		if _, err := utils.ParseDate(in); err == nil {
			t.Errorf("ParseDate(%q): expected error", in)
		}
	}
}

func TestAddMonth(t *testing.T) {
	t.Parallel()

	day := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}

	cases := []struct {
		name   string
		start  time.Time
		months int
		want   time.Time
	}{
		{"plain step", day(2015, time.August, 24), 1, day(2015, time.September, 24)},
		{"year step", day(2015, time.August, 24), 12, day(2016, time.August, 24)},
		{"zero step", day(2015, time.August, 24), 0, day(2015, time.August, 24)},
		{"clamp to feb", day(2015, time.January, 31), 1, day(2015, time.February, 28)},
		{"clamp to leap feb", day(2016, time.January, 31), 1, day(2016, time.February, 29)},
		{"clamp to 30-day month", day(2015, time.August, 31), 1, day(2015, time.September, 30)},
		{"backward clamp", day(2015, time.March, 31), -1, day(2015, time.February, 28)},
		{"day preserved after clamping month", day(2015, time.January, 31), 2, day(2015, time.March, 31)},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := utils.AddMonth(tc.start, tc.months)
			if !got.Equal(tc.want) {
				t.Errorf("AddMonth(%s, %d) = %s, want %s",
					tc.start.Format("2006-01-02"), tc.months, got.Format("2006-01-02"), tc.want.Format("2006-01-02"))
			}
		})
	}
}
