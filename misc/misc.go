//
// Copyright 2017 The Tschart Authors. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package misc is misc stuff: MJD conversions, signal name
// sanitizing, friendlier duration parsing.
package misc

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// MJD of the Unix epoch (1970-01-01 00:00 UTC).
const mjdUnixEpoch = 40587.0

const secPerDay = 86400.0

// TimeToMJD converts a time.Time to a Modified Julian Date.
func TimeToMJD(t time.Time) float64 {
	return mjdUnixEpoch + float64(t.UnixNano())/1e9/secPerDay
}

// MJDToTime converts a Modified Julian Date to a time.Time.
func MJDToTime(mjd float64) time.Time {
	sec := (mjd - mjdUnixEpoch) * secPerDay
	return time.Unix(0, int64(sec*1e9))
}

// MJDNow is the current time as MJD.
func MJDNow() float64 {
	return TimeToMJD(time.Now())
}

var (
	sanitizeRegexSpace       = regexp.MustCompile(`\s+`)
	sanitizeRegexSlash       = regexp.MustCompile(`/`)
	sanitizeRegexNonAlphaNum = regexp.MustCompile(`[^a-zA-Z_\-0-9\.]`)
)

// SanitizeName makes a signal name safe for use as a dotted series
// key: spaces to underscores, slashes to dashes, everything else
// non-alphanumeric stripped.
func SanitizeName(name string) string {
	name = sanitizeRegexSpace.ReplaceAllString(name, "_")
	name = sanitizeRegexSlash.ReplaceAllString(name, "-")
	return sanitizeRegexNonAlphaNum.ReplaceAllString(name, "")
}

// ParseDuration is time.ParseDuration plus "d" (days) and "w" (weeks)
// units, which show up naturally in chart window configuration.
func ParseDuration(s string) (time.Duration, error) {
	if n := len(s); n > 1 {
		unit := s[n-1]
		if unit == 'd' || unit == 'w' {
			days, err := strconv.ParseFloat(strings.TrimSpace(s[:n-1]), 64)
			if err != nil {
				return 0, err
			}
			if unit == 'w' {
				days *= 7
			}
			return time.Duration(days * 24 * float64(time.Hour)), nil
		}
	}
	return time.ParseDuration(s)
}
