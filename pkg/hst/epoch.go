package hst

import "time"

// Seconds between 1601-01-01 and 1970-01-01.
const filetimeUnixOffset = 11644473600

const ticksPerSecond = 10_000_000

// localTime presents a decoded time in loc. Unix seconds are instants and
// keep their instant. FILETIME stamps are written as a wall clock with no
// zone, so the wall clock is kept and reinterpreted in loc.
func localTime(t time.Time, l Layout, loc *time.Location) time.Time {
	if loc == nil {
		return t
	}
	if l != LayoutV6 {
		return t.In(loc)
	}
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), u.Hour(), u.Minute(), u.Second(), u.Nanosecond(), loc)
}

func unixSecondsTime(s uint32) time.Time {
	return time.Unix(int64(s), 0).UTC()
}

// filetimeTime converts 100ns ticks since 1601-01-01 UTC. The tick count is
// split into seconds first since the full span overflows time.Duration.
func filetimeTime(ticks uint64) time.Time {
	secs := int64(ticks / ticksPerSecond)
	nsec := int64(ticks%ticksPerSecond) * 100
	return time.Unix(secs-filetimeUnixOffset, nsec).UTC()
}
