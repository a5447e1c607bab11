// SPDX-License-Identifier: MPL-2.0

package core

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Row-level filter predicates. A row is kept only if it passes every active
// filter. The targeted row field is the filter's declared Field, falling
// back to its Key; there is no guessing across sample-data field names.

// ApplyFilters narrows rows by the dashboard's active filters. params
// overrides a filter's current value by key. Filters without a usable value
// are skipped.
func ApplyFilters(rows []Row, filters []Filter, params map[string]any) []Row {
	active := make([]Filter, 0, len(filters))
	values := make([]any, 0, len(filters))
	for _, f := range filters {
		if !f.Active {
			continue
		}
		value, ok := params[f.Key]
		if !ok {
			value = f.CurrentValue
		}
		if value == nil {
			continue
		}
		active = append(active, f)
		values = append(values, value)
	}
	if len(active) == 0 {
		return rows
	}
	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		keep := true
		for i, f := range active {
			if !matchFilter(row, f, values[i]) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, row)
		}
	}
	return out
}

func (f Filter) targetField() string {
	if f.Field != "" {
		return f.Field
	}
	return f.Key
}

func matchFilter(row Row, f Filter, value any) bool {
	field, ok := row[f.targetField()]
	if !ok {
		return false
	}
	switch f.Type {
	case FilterDateRange:
		return matchDateRange(field, value)
	case FilterIntegerRange, FilterFloatRange:
		return matchNumberRange(field, value)
	case FilterList:
		return matchList(field, value)
	case FilterBoolean:
		fb, ok1 := toBool(field)
		vb, ok2 := toBool(value)
		return ok1 && ok2 && fb == vb
	case FilterInteger, FilterFloat:
		fn, ok1 := toFloat64(field)
		vn, ok2 := toFloat64(value)
		return ok1 && ok2 && fn == vn
	case FilterDate:
		ft, ok1 := toTime(field)
		vt, ok2 := toTime(value)
		return ok1 && ok2 && ft.Equal(vt)
	default: // string: case-insensitive substring
		return strings.Contains(
			strings.ToLower(fmt.Sprintf("%v", field)),
			strings.ToLower(fmt.Sprintf("%v", value)),
		)
	}
}

// matchNumberRange checks inclusive bounds against a two-element range.
func matchNumberRange(field, value any) bool {
	bounds, ok := toPair(value)
	if !ok {
		return false
	}
	lo, ok1 := toFloat64(bounds[0])
	hi, ok2 := toFloat64(bounds[1])
	n, ok3 := toFloat64(field)
	return ok1 && ok2 && ok3 && n >= lo && n <= hi
}

func matchDateRange(field, value any) bool {
	bounds, ok := toPair(value)
	if !ok {
		return false
	}
	lo, ok1 := toTime(bounds[0])
	hi, ok2 := toTime(bounds[1])
	t, ok3 := toTime(field)
	return ok1 && ok2 && ok3 && !t.Before(lo) && !t.After(hi)
}

func matchList(field, value any) bool {
	members, ok := toSlice(value)
	if !ok {
		return false
	}
	fieldStr := fmt.Sprintf("%v", field)
	for _, member := range members {
		if fmt.Sprintf("%v", member) == fieldStr {
			return true
		}
	}
	return false
}

func toPair(value any) ([2]any, bool) {
	items, ok := toSlice(value)
	if !ok || len(items) != 2 {
		return [2]any{}, false
	}
	return [2]any{items[0], items[1]}, true
}

func toSlice(value any) ([]any, bool) {
	switch v := value.(type) {
	case []any:
		return v, true
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out, true
	case []float64:
		out := make([]any, len(v))
		for i, n := range v {
			out[i] = n
		}
		return out, true
	case []int:
		out := make([]any, len(v))
		for i, n := range v {
			out[i] = n
		}
		return out, true
	case []time.Time:
		out := make([]any, len(v))
		for i, t := range v {
			out[i] = t
		}
		return out, true
	}
	return nil, false
}

func toFloat64(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		n, err := v.Float64()
		return n, err == nil
	}
	return 0, false
}

func toBool(value any) (bool, bool) {
	b, ok := value.(bool)
	return b, ok
}

func toTime(value any) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, true
	case string:
		for _, layout := range []string{time.RFC3339, "2006-01-02"} {
			if t, err := time.Parse(layout, v); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}
