// SPDX-License-Identifier: MPL-2.0

package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func filterRows() []Row {
	return []Row{
		{"name": "Alpha", "region": "North", "value": 5.0, "active": true, "date": "2026-01-10"},
		{"name": "Beta", "region": "South", "value": 15.0, "active": false, "date": "2026-02-10"},
		{"name": "Gamma", "region": "East", "value": 25.0, "active": true, "date": "2026-03-10"},
	}
}

func TestApplyFiltersInactiveAndEmptySkipped(t *testing.T) {
	rows := filterRows()
	filters := []Filter{
		{Key: "region", Type: FilterList, Active: false, CurrentValue: []string{"North"}},
		{Key: "name", Type: FilterString, Active: true}, // no value
	}
	assert.Equal(t, rows, ApplyFilters(rows, filters, nil))
}

func TestApplyFiltersListMembership(t *testing.T) {
	filters := []Filter{
		{Key: "region", Type: FilterList, Active: true, CurrentValue: []string{"North", "East"}},
	}
	got := ApplyFilters(filterRows(), filters, nil)
	assert.Len(t, got, 2)
	assert.Equal(t, "Alpha", got[0]["name"])
	assert.Equal(t, "Gamma", got[1]["name"])
}

func TestApplyFiltersNumberRangeInclusive(t *testing.T) {
	filters := []Filter{
		{Key: "value", Type: FilterFloatRange, Active: true, CurrentValue: []float64{5, 15}},
	}
	got := ApplyFilters(filterRows(), filters, nil)
	// Both bounds are inclusive.
	assert.Len(t, got, 2)
	assert.Equal(t, "Alpha", got[0]["name"])
	assert.Equal(t, "Beta", got[1]["name"])
}

func TestApplyFiltersDateRange(t *testing.T) {
	filters := []Filter{
		{Key: "date", Type: FilterDateRange, Active: true, CurrentValue: []string{"2026-01-01", "2026-02-28"}},
	}
	got := ApplyFilters(filterRows(), filters, nil)
	assert.Len(t, got, 2)
}

func TestApplyFiltersStringSubstring(t *testing.T) {
	filters := []Filter{
		{Key: "name", Type: FilterString, Active: true, CurrentValue: "alph"},
	}
	got := ApplyFilters(filterRows(), filters, nil)
	assert.Len(t, got, 1)
	assert.Equal(t, "Alpha", got[0]["name"])
}

func TestApplyFiltersBoolean(t *testing.T) {
	filters := []Filter{
		{Key: "active", Type: FilterBoolean, Active: true, CurrentValue: true},
	}
	got := ApplyFilters(filterRows(), filters, nil)
	assert.Len(t, got, 2)
}

func TestApplyFiltersParamsOverrideCurrentValue(t *testing.T) {
	filters := []Filter{
		{Key: "region", Type: FilterList, Active: true, CurrentValue: []string{"North"}},
	}
	got := ApplyFilters(filterRows(), filters, map[string]any{"region": []any{"South"}})
	assert.Len(t, got, 1)
	assert.Equal(t, "Beta", got[0]["name"])
}

func TestFilterTargetsDeclaredField(t *testing.T) {
	// Key is the parameter name, Field the row field it targets.
	filters := []Filter{
		{Key: "r", Field: "region", Type: FilterList, Active: true, CurrentValue: []string{"East"}},
	}
	got := ApplyFilters(filterRows(), filters, nil)
	assert.Len(t, got, 1)
	assert.Equal(t, "Gamma", got[0]["name"])

	// A missing field never matches.
	missing := []Filter{
		{Key: "nope", Type: FilterString, Active: true, CurrentValue: "x"},
	}
	assert.Empty(t, ApplyFilters(filterRows(), missing, nil))
}

func TestApplyFiltersConjunction(t *testing.T) {
	filters := []Filter{
		{Key: "active", Type: FilterBoolean, Active: true, CurrentValue: true},
		{Key: "value", Type: FilterFloatRange, Active: true, CurrentValue: []float64{20, 30}},
	}
	got := ApplyFilters(filterRows(), filters, nil)
	assert.Len(t, got, 1)
	assert.Equal(t, "Gamma", got[0]["name"])
}
