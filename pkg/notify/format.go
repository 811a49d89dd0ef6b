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

package notify

import (
	"fmt"
	"html"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/carverauto/monitord/pkg/models"
)

// subjectFor returns the report title, or a generic subject built from the
// report and event type.
func subjectFor(reportType models.ReportType, r *models.Report) string {
	if r.Title != "" {
		return r.Title
	}

	eventType := r.EventType
	if eventType == "" {
		eventType = "event"
	}

	if reportType == models.ReportAction {
		return "Action Report: " + eventType
	}

	return "Event Report: " + eventType
}

type section struct {
	title  string
	fields map[string]any
}

func sections(r *models.Report) []section {
	return []section{
		{"Service", r.Service},
		{"Resource", r.Resource},
		{"Action", r.Action},
	}
}

func timestampText(r *models.Report) string {
	if r.Timestamp.IsZero() {
		return "N/A"
	}

	return r.Timestamp.UTC().Format(time.RFC3339)
}

// formatPlain renders a report as indented plain text.
func formatPlain(reportType models.ReportType, r *models.Report) string {
	title := subjectFor(reportType, r)

	lines := []string{
		title,
		strings.Repeat("=", len(title)),
		"Timestamp: " + timestampText(r),
		"Severity: " + string(r.Severity.Normalize()),
	}

	for _, s := range sections(r) {
		if len(s.fields) == 0 {
			continue
		}

		lines = append(lines, "\n"+s.title+":", dumpFields(s.fields, 1))
	}

	if r.Details != "" {
		lines = append(lines, "\nDetails:", r.Details)
	}

	if len(r.SystemStats) > 0 {
		lines = append(lines, "\nSystem Stats:", dumpFields(r.SystemStats, 1))
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// formatHTML renders a report as a small HTML fragment. Every interpolated
// value is escaped.
func formatHTML(reportType models.ReportType, r *models.Report) string {
	title := html.EscapeString(subjectFor(reportType, r))

	parts := []string{
		"<h2>" + title + "</h2>",
		fmt.Sprintf("<p><strong>Timestamp:</strong> %s<br><strong>Severity:</strong> %s</p>",
			html.EscapeString(timestampText(r)), html.EscapeString(string(r.Severity.Normalize()))),
	}

	for _, s := range sections(r) {
		if len(s.fields) == 0 {
			continue
		}

		parts = append(parts, "<h3>"+s.title+"</h3>", "<pre>"+html.EscapeString(dumpFields(s.fields, 0))+"</pre>")
	}

	if r.Details != "" {
		parts = append(parts, "<h3>Details</h3>", "<pre>"+html.EscapeString(r.Details)+"</pre>")
	}

	if len(r.SystemStats) > 0 {
		parts = append(parts, "<h3>System Stats</h3>", "<pre>"+html.EscapeString(dumpFields(r.SystemStats, 0))+"</pre>")
	}

	return strings.Join(parts, "\n")
}

// dumpFields writes a nested map as "key: value" lines, two spaces of
// indent per level, keys sorted.
func dumpFields(fields map[string]any, indent int) string {
	return dumpValue(reflect.ValueOf(fields), indent)
}

func dumpValue(m reflect.Value, indent int) string {
	pad := strings.Repeat("  ", indent)

	keys := make([]string, 0, m.Len())
	values := make(map[string]reflect.Value, m.Len())

	for _, k := range m.MapKeys() {
		name := fmt.Sprint(k.Interface())
		keys = append(keys, name)
		values[name] = m.MapIndex(k)
	}

	sort.Strings(keys)

	lines := make([]string, 0, len(keys))

	for _, key := range keys {
		v := unwrap(values[key])

		switch v.Kind() {
		case reflect.Map:
			lines = append(lines, pad+key+":", dumpValue(v, indent+1))
		case reflect.Slice, reflect.Array:
			lines = append(lines, pad+key+":")

			for i := range v.Len() {
				item := unwrap(v.Index(i))
				if item.Kind() == reflect.Map {
					lines = append(lines, dumpValue(item, indent+1))
					continue
				}

				lines = append(lines, pad+"  - "+scalarText(item))
			}
		default:
			lines = append(lines, pad+key+": "+scalarText(v))
		}
	}

	return strings.Join(lines, "\n")
}

func unwrap(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Interface || v.Kind() == reflect.Pointer) {
		if v.IsNil() {
			return reflect.Value{}
		}

		v = v.Elem()
	}

	return v
}

func scalarText(v reflect.Value) string {
	if !v.IsValid() {
		return "null"
	}

	if t, ok := v.Interface().(time.Time); ok {
		return t.UTC().Format(time.RFC3339)
	}

	return fmt.Sprint(v.Interface())
}
