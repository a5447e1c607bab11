// SPDX-License-Identifier: MPL-2.0

package core

import (
	"fmt"
	"math/rand"
)

// Synthetic datasets for the mock data source. The shape is deterministic
// per block/chart type, only the values are randomized, so renderers and
// tests can rely on the columns being present.

var (
	mockMonths   = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun"}
	mockSegments = []string{"Direct", "Referral", "Organic", "Social", "Email"}
	mockRegions  = []string{"North", "South", "East", "West"}
	mockStatuses = []string{"active", "pending", "closed"}
)

// MockRows produces a dataset for a block backed by the mock source.
func MockRows(block Block) []Row {
	switch block.Type {
	case BlockGraph:
		chartType := "bar"
		if block.Config.Graph != nil && block.Config.Graph.ChartType != "" {
			chartType = block.Config.Graph.ChartType
		}
		return mockGraphRows(chartType)
	case BlockText:
		return []Row{}
	default:
		return mockTableRows()
	}
}

func mockGraphRows(chartType string) []Row {
	switch {
	case isPieFamily(chartType):
		rows := make([]Row, 0, len(mockSegments))
		for _, name := range mockSegments {
			rows = append(rows, Row{
				"name":  name,
				"value": float64(rand.Intn(900) + 100),
			})
		}
		return rows
	case chartType == "scatter":
		rows := make([]Row, 0, 30)
		for i := 0; i < 30; i++ {
			rows = append(rows, Row{
				"x":    rand.Float64() * 100,
				"y":    rand.Float64() * 100,
				"size": float64(rand.Intn(20) + 5),
			})
		}
		return rows
	default:
		// Categorical-axis chart types: month/sales/target.
		rows := make([]Row, 0, len(mockMonths))
		for _, month := range mockMonths {
			sales := float64(rand.Intn(4000) + 1000)
			rows = append(rows, Row{
				"month":  month,
				"sales":  sales,
				"target": sales * (0.9 + rand.Float64()*0.3),
			})
		}
		return rows
	}
}

func mockTableRows() []Row {
	rows := make([]Row, 0, 8)
	for i := 0; i < 8; i++ {
		rows = append(rows, Row{
			"id":     i + 1,
			"name":   fmt.Sprintf("Item %d", i+1),
			"region": mockRegions[rand.Intn(len(mockRegions))],
			"status": mockStatuses[rand.Intn(len(mockStatuses))],
			"value":  float64(rand.Intn(10000)) / 100,
		})
	}
	return rows
}
