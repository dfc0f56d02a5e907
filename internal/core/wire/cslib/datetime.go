package cslib

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/satishbabariya/tds-go/internal/core/errdefs"
	"github.com/satishbabariya/tds-go/internal/core/wire"
)

// Moment is a decoded date-family value. Type records which parts are
// meaningful: DATE carries no clock and TIME carries no calendar date.
type Moment struct {
	Time time.Time
	Type wire.DataType
}

// HasDate reports whether the calendar date is meaningful.
func (m Moment) HasDate() bool {
	return m.Type != wire.Time && m.Type != wire.BigTime
}

// HasClock reports whether the time of day is meaningful.
func (m Moment) HasClock() bool {
	return m.Type != wire.Date
}

const (
	ticksPerSecond = 300
	ticksPerDay    = ticksPerSecond * 86400
	secondsPerDay  = 86400
	microsPerDay   = int64(secondsPerDay) * 1_000_000
)

var (
	epoch    = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)
	bigEpoch = time.Date(0, time.January, 1, 0, 0, 0, 0, time.UTC)
)

func decodeMoment(t wire.DataType, b []byte) (Moment, error) {
	le := binary.LittleEndian

	switch t {
	case wire.DateTime:
		if len(b) != 8 {
			return Moment{}, lengthError(t, 8, len(b))
		}
		days := int32(le.Uint32(b))
		ticks := int32(le.Uint32(b[4:]))
		return Moment{Time: fromTicks(epoch.AddDate(0, 0, int(days)), int64(ticks)), Type: t}, nil

	case wire.DateTime4:
		if len(b) != 4 {
			return Moment{}, lengthError(t, 4, len(b))
		}
		days := le.Uint16(b)
		minutes := le.Uint16(b[2:])
		tm := epoch.AddDate(0, 0, int(days)).Add(time.Duration(minutes) * time.Minute)
		return Moment{Time: tm, Type: t}, nil

	case wire.Date:
		if len(b) != 4 {
			return Moment{}, lengthError(t, 4, len(b))
		}
		days := int32(le.Uint32(b))
		return Moment{Time: epoch.AddDate(0, 0, int(days)), Type: t}, nil

	case wire.Time:
		if len(b) != 4 {
			return Moment{}, lengthError(t, 4, len(b))
		}
		ticks := int32(le.Uint32(b))
		return Moment{Time: fromTicks(epoch, int64(ticks)), Type: t}, nil

	case wire.BigDateTime:
		if len(b) != 8 {
			return Moment{}, lengthError(t, 8, len(b))
		}
		us := le.Uint64(b)
		days := us / uint64(microsPerDay)
		rem := us % uint64(microsPerDay)
		tm := bigEpoch.AddDate(0, 0, int(days)).Add(time.Duration(rem) * time.Microsecond)
		return Moment{Time: tm, Type: t}, nil

	case wire.BigTime:
		if len(b) != 8 {
			return Moment{}, lengthError(t, 8, len(b))
		}
		us := le.Uint64(b) % uint64(microsPerDay)
		return Moment{Time: epoch.Add(time.Duration(us) * time.Microsecond), Type: t}, nil
	}

	return Moment{}, fmt.Errorf("%w: %s is not a date type", errdefs.ErrUnsupportedType, t)
}

// fromTicks adds 1/300 second ticks to day, rounding to whole milliseconds.
func fromTicks(day time.Time, ticks int64) time.Time {
	secs := ticks / ticksPerSecond
	ms := ((ticks%ticksPerSecond)*1000 + ticksPerSecond/2) / ticksPerSecond
	return day.Add(time.Duration(secs)*time.Second + time.Duration(ms)*time.Millisecond)
}

// dayNumber returns the whole days between base and the date of t.
func dayNumber(base, t time.Time) int64 {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return (day.Unix() - base.Unix()) / secondsPerDay
}

func secondOfDay(t time.Time) int64 {
	return int64(t.Hour()*3600 + t.Minute()*60 + t.Second())
}

// clockTicks returns the 1/300 s ticks since midnight and whether rounding
// carried into the next day.
func clockTicks(t time.Time) (int64, bool) {
	ticks := secondOfDay(t)*ticksPerSecond + (int64(t.Nanosecond())*3+5_000_000)/10_000_000
	if ticks >= ticksPerDay {
		return ticks - ticksPerDay, true
	}
	return ticks, false
}

func encodeMoment(dst wire.DataType, m Moment) ([]byte, error) {
	le := binary.LittleEndian
	tm := m.Time
	if !m.HasDate() {
		tm = time.Date(epoch.Year(), epoch.Month(), epoch.Day(), tm.Hour(), tm.Minute(), tm.Second(), tm.Nanosecond(), time.UTC)
	}
	if !m.HasClock() {
		tm = time.Date(tm.Year(), tm.Month(), tm.Day(), 0, 0, 0, 0, time.UTC)
	}

	switch dst {
	case wire.DateTime:
		ticks, carry := clockTicks(tm)
		days := dayNumber(epoch, tm)
		if carry {
			days++
		}
		if days < math.MinInt32 || days > math.MaxInt32 {
			return nil, dateOverflow(m, dst)
		}
		out := make([]byte, 8)
		le.PutUint32(out, uint32(int32(days)))
		le.PutUint32(out[4:], uint32(int32(ticks)))
		return out, nil

	case wire.DateTime4:
		days := dayNumber(epoch, tm)
		minutes := (secondOfDay(tm) + 30) / 60
		if minutes >= 24*60 {
			minutes -= 24 * 60
			days++
		}
		if days < 0 || days > math.MaxUint16 {
			return nil, dateOverflow(m, dst)
		}
		out := make([]byte, 4)
		le.PutUint16(out, uint16(days))
		le.PutUint16(out[2:], uint16(minutes))
		return out, nil

	case wire.Date:
		days := dayNumber(epoch, tm)
		if days < math.MinInt32 || days > math.MaxInt32 {
			return nil, dateOverflow(m, dst)
		}
		out := make([]byte, 4)
		le.PutUint32(out, uint32(int32(days)))
		return out, nil

	case wire.Time:
		ticks, _ := clockTicks(tm)
		out := make([]byte, 4)
		le.PutUint32(out, uint32(int32(ticks)))
		return out, nil

	case wire.BigDateTime:
		days := dayNumber(bigEpoch, tm)
		if days < 0 {
			return nil, dateOverflow(m, dst)
		}
		us := days*microsPerDay + secondOfDay(tm)*1_000_000 + int64(tm.Nanosecond())/1_000
		out := make([]byte, 8)
		le.PutUint64(out, uint64(us))
		return out, nil

	case wire.BigTime:
		us := secondOfDay(tm)*1_000_000 + int64(tm.Nanosecond())/1_000
		out := make([]byte, 8)
		le.PutUint64(out, uint64(us))
		return out, nil
	}

	return nil, fmt.Errorf("%w: %s is not a date type", errdefs.ErrUnsupportedType, dst)
}

func dateOverflow(m Moment, dst wire.DataType) error {
	return &errdefs.ConversionError{
		From:   m.Type.String(),
		To:     dst.String(),
		Reason: fmt.Sprintf("%s is out of range", m.Time.Format(time.RFC3339)),
	}
}

var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006/01/02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02 15:04",
	"Jan _2 2006 3:04:05PM",
	"Jan _2 2006 3:04PM",
	"Jan _2 2006",
	"2006-01-02",
	"2006/01/02",
	"20060102",
}

var clockLayouts = []string{
	"15:04:05",
	"15:04",
	"3:04:05PM",
	"3:04PM",
}

func parseMoment(s string, loc *time.Location) (Moment, error) {
	s = strings.TrimSpace(s)
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range dateLayouts {
		if tm, err := time.ParseInLocation(layout, s, loc); err == nil {
			kind := wire.BigDateTime
			if !strings.Contains(layout, "15") && !strings.Contains(layout, "3:04") {
				kind = wire.Date
			}
			return Moment{Time: tm, Type: kind}, nil
		}
	}
	for _, layout := range clockLayouts {
		if tm, err := time.ParseInLocation(layout, s, loc); err == nil {
			return Moment{Time: tm, Type: wire.BigTime}, nil
		}
	}
	return Moment{}, &errdefs.ConversionError{From: wire.Char.String(), To: "date", Reason: fmt.Sprintf("cannot parse %q", s)}
}

func formatMoment(m Moment) string {
	tm := m.Time
	frac := ".000"
	if m.Type == wire.BigDateTime || m.Type == wire.BigTime {
		frac = ".000000"
	}
	switch {
	case !m.HasClock():
		return tm.Format("2006-01-02")
	case !m.HasDate():
		return tm.Format("15:04:05" + frac)
	default:
		return tm.Format("2006-01-02 15:04:05" + frac)
	}
}
