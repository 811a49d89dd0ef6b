/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//nolint:gochecknoglobals // lookup table
var intervalUnits = map[string]int{
	"s": 1, "sec": 1, "secs": 1, "second": 1, "seconds": 1,
	"m": 60, "min": 60, "mins": 60, "minute": 60, "minutes": 60,
	"h": 3600, "hr": 3600, "hrs": 3600, "hour": 3600, "hours": 3600,
}

// Interval is an optional duration configured either as raw seconds or as a
// {value, unit} mapping. The zero value is unset.
type Interval struct {
	seconds int
	set     bool
}

// Seconds builds a set Interval; negative values clamp to zero.
func Seconds(n int) Interval {
	return Interval{seconds: max(0, n), set: true}
}

// IsSet reports whether the interval was configured with a usable value.
func (i Interval) IsSet() bool {
	return i.set
}

// Active reports whether the interval is set and positive.
func (i Interval) Active() bool {
	return i.set && i.seconds > 0
}

func (i Interval) Duration() time.Duration {
	return time.Duration(i.seconds) * time.Second
}

func (i Interval) Seconds() int {
	return i.seconds
}

// Or returns i when set, otherwise fallback.
func (i Interval) Or(fallback Interval) Interval {
	if i.set {
		return i
	}

	return fallback
}

// ParseInterval converts a decoded configuration value into an Interval.
// Nil, unknown units, missing values and unsupported shapes yield an unset
// Interval rather than an error.
func ParseInterval(raw any) Interval {
	switch v := raw.(type) {
	case nil:
		return Interval{}
	case int:
		return Seconds(v)
	case int64:
		return Seconds(int(v))
	case float64:
		return Seconds(int(v))
	case map[string]any:
		return parseIntervalMap(v)
	default:
		return Interval{}
	}
}

func parseIntervalMap(m map[string]any) Interval {
	value, ok := toFloat(m["value"])
	if !ok {
		return Interval{}
	}

	unit := "seconds"
	if u, present := m["unit"]; present && u != nil {
		unit = strings.ToLower(fmt.Sprint(u))
	}

	multiplier, ok := intervalUnits[unit]
	if !ok {
		return Interval{}
	}

	return Seconds(int(value * float64(multiplier)))
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// UnmarshalYAML accepts a scalar number or a {value, unit} mapping.
func (i *Interval) UnmarshalYAML(node *yaml.Node) error {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return err
	}

	*i = ParseInterval(raw)

	return nil
}

// MarshalYAML renders the interval as seconds, or null when unset.
func (i Interval) MarshalYAML() (any, error) {
	if !i.set {
		return nil, nil
	}

	return i.seconds, nil
}
