// SPDX-License-Identifier: MPL-2.0

package core

import "strings"

// Block config normalization. Applied when a block is opened for editing so
// documents persisted by older versions stay valid under the current schema.
// NormalizeBlock is idempotent: applying it twice equals applying it once.

var defaultPalette = []string{"#2563eb", "#16a34a", "#f59e0b", "#dc2626", "#7c3aed", "#0891b2"}

const defaultTextColor = "#111827"

func defaultTableConfig() *TableConfig {
	return &TableConfig{
		Columns:    []TableColumn{},
		Pagination: PaginationConfig{Enabled: true, PageSize: 10},
		Sorting:    SortingConfig{Enabled: true, DefaultOrder: "asc"},
		Filtering:  FilteringConfig{Enabled: false},
	}
}

func defaultGraphConfig() *GraphConfig {
	cfg := &GraphConfig{
		ChartType:  "bar",
		Legend:     LegendConfig{Show: true, Position: "bottom"},
		Colors:     append([]string{}, defaultPalette...),
		Animations: AnimationConfig{Enabled: true, Duration: 300},
	}
	seedAxisFields(cfg)
	return cfg
}

func defaultTextConfig() *TextConfig {
	return &TextConfig{
		Variables: TextVariables{},
		Style:     TextStyle{FontSize: 14, Color: defaultTextColor, Align: "left"},
	}
}

func defaultBlockConfig(blockType BlockType) BlockConfig {
	switch blockType {
	case BlockGraph:
		return BlockConfig{Graph: defaultGraphConfig()}
	case BlockText:
		return BlockConfig{Text: defaultTextConfig()}
	default:
		return BlockConfig{Table: defaultTableConfig()}
	}
}

// NormalizeBlock back-fills missing config substructures, migrates legacy
// shapes and drops config variants that don't match the block type.
func NormalizeBlock(block Block) Block {
	block.DataSource = normalizeDataSource(block.DataSource)
	switch block.Type {
	case BlockGraph:
		block.Config = BlockConfig{Graph: normalizeGraphConfig(block.Config.Graph)}
	case BlockText:
		block.Config = BlockConfig{Text: normalizeTextConfig(block.Config.Text)}
	default:
		block.Config = BlockConfig{Table: normalizeTableConfig(block.Config.Table)}
	}
	return block
}

// normalizeDataSource defaults absent sources to mock and keeps only the
// variant matching the type tag.
func normalizeDataSource(ds DataSource) DataSource {
	switch ds.Type {
	case SourceStatic:
		static := ds.Static
		if static == nil {
			static = &StaticSource{}
		}
		return DataSource{Type: SourceStatic, Static: static}
	case SourceQuery:
		query := ds.Query
		if query == nil {
			query = &QuerySource{}
		}
		return DataSource{Type: SourceQuery, Query: query}
	case SourceAPI:
		api := ds.API
		if api == nil {
			api = &APISource{Method: "GET"}
		}
		if api.Method == "" {
			api.Method = "GET"
		}
		return DataSource{Type: SourceAPI, API: api}
	default:
		return DataSource{Type: SourceMock}
	}
}

func normalizeTableConfig(cfg *TableConfig) *TableConfig {
	if cfg == nil {
		return defaultTableConfig()
	}
	if cfg.Columns == nil {
		cfg.Columns = []TableColumn{}
	}
	if cfg.Pagination.PageSize <= 0 {
		cfg.Pagination = PaginationConfig{Enabled: true, PageSize: 10}
	}
	if cfg.Sorting.DefaultOrder == "" {
		cfg.Sorting.DefaultOrder = "asc"
	}
	return cfg
}

func isPieFamily(chartType string) bool {
	return chartType == "pie" || chartType == "donut"
}

// normalizeGraphConfig backfills axis/legend/color/animation substructures
// and migrates between chart families: pie types carry nameKey/valueKey and
// no series/axes, axis types the other way around.
func normalizeGraphConfig(cfg *GraphConfig) *GraphConfig {
	if cfg == nil {
		return defaultGraphConfig()
	}
	if cfg.ChartType == "" {
		cfg.ChartType = "bar"
	}
	if cfg.Legend.Position == "" {
		cfg.Legend = LegendConfig{Show: true, Position: "bottom"}
	}
	if len(cfg.Colors) == 0 {
		cfg.Colors = append([]string{}, defaultPalette...)
	}
	for i, color := range cfg.Colors {
		cfg.Colors[i] = literalColor(color, defaultPalette[i%len(defaultPalette)])
	}
	if cfg.Animations.Duration <= 0 {
		cfg.Animations = AnimationConfig{Enabled: true, Duration: 300}
	}
	if isPieFamily(cfg.ChartType) {
		cfg.Series = nil
		cfg.XAxis = nil
		cfg.YAxis = nil
		if cfg.NameKey == "" {
			cfg.NameKey = "name"
		}
		if cfg.ValueKey == "" {
			cfg.ValueKey = "value"
		}
	} else {
		cfg.NameKey = ""
		cfg.ValueKey = ""
		seedAxisFields(cfg)
		for i := range cfg.Series {
			if cfg.Series[i].Color != "" {
				cfg.Series[i].Color = literalColor(cfg.Series[i].Color, defaultPalette[i%len(defaultPalette)])
			}
		}
	}
	return cfg
}

func seedAxisFields(cfg *GraphConfig) {
	if len(cfg.Series) == 0 {
		cfg.Series = []SeriesConfig{{Key: "value", Label: "Value"}}
	}
	if cfg.XAxis == nil {
		cfg.XAxis = &AxisConfig{Key: "category"}
	}
	if cfg.YAxis == nil {
		cfg.YAxis = &AxisConfig{Key: "value", ShowGrid: true}
	}
}

func normalizeTextConfig(cfg *TextConfig) *TextConfig {
	if cfg == nil {
		return defaultTextConfig()
	}
	if cfg.Variables == nil {
		cfg.Variables = TextVariables{}
	}
	if cfg.Style.FontSize <= 0 {
		cfg.Style.FontSize = 14
	}
	if cfg.Style.Align == "" {
		cfg.Style.Align = "left"
	}
	cfg.Style.Color = literalColor(cfg.Style.Color, defaultTextColor)
	return cfg
}

// literalColor replaces CSS variable references left behind by old theme
// switching with a literal hex value.
func literalColor(color, fallback string) string {
	color = strings.TrimSpace(color)
	if color == "" || strings.HasPrefix(color, "var(") {
		return fallback
	}
	return color
}
