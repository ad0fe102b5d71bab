// Copyright 2021 Matrix Origin
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Temporal values are stored as 64 bit integers counting nanoseconds
// since 1970-01-01 00:00:00.
//
// For a zone aware column (T_timestamp) the value is the absolute UTC
// instant; the zone is metadata on the column type, so converting a
// column to another zone never touches the stored values.
// For a naive column (T_datetime) the value is the wall clock read as if
// it were UTC.
//
// The minimum int64 is reserved as NaT, the temporal missing value.

package types

import (
	"math"
	"time"
)

type Timestamp int64

const NaT Timestamp = math.MinInt64

const timestampLayout = "2006-01-02 15:04:05.999999999"

func (ts Timestamp) IsNaT() bool {
	return ts == NaT
}

// FromTime returns the absolute instant of t.
func FromTime(t time.Time) Timestamp {
	return Timestamp(t.UnixNano())
}

// FromClock returns the naive timestamp of a wall clock.
func FromClock(year int, month time.Month, day, hour, minute, sec, nsec int) Timestamp {
	return FromTime(time.Date(year, month, day, hour, minute, sec, nsec, time.UTC))
}

// FromClockIn returns the absolute instant of a wall clock read in loc.
func FromClockIn(loc *time.Location, year int, month time.Month, day, hour, minute, sec, nsec int) Timestamp {
	return FromTime(time.Date(year, month, day, hour, minute, sec, nsec, loc))
}

// In returns the instant as a time.Time in loc, a nil loc means UTC.
func (ts Timestamp) In(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Unix(0, int64(ts)).In(loc)
}

// String formats a naive timestamp, zone aware values are formatted by
// the cell codec which knows their zone.
func (ts Timestamp) String() string {
	if ts.IsNaT() {
		return "NaT"
	}
	return ts.In(time.UTC).Format(timestampLayout)
}

// StringIn formats the instant as a wall clock in loc followed by the
// utc offset, for example 2013-01-01 00:00:00-05:00.
func (ts Timestamp) StringIn(loc *time.Location) string {
	if ts.IsNaT() {
		return "NaT"
	}
	return ts.In(loc).Format(timestampLayout + "-07:00")
}

// ParseTimestamp parses a wall clock in the layouts accepted by table
// descriptions and returns its instant read in loc.
func ParseTimestamp(s string, loc *time.Location) (Timestamp, error) {
	if s == "NaT" || s == "" {
		return NaT, nil
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range []string{
		timestampLayout,
		"2006-01-02T15:04:05.999999999",
		"2006-01-02",
	} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return FromTime(t), nil
		}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return NaT, err
	}
	return FromTime(t), nil
}
