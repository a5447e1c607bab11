// SPDX-License-Identifier: MPL-2.0

package core

import (
	"encoding/json"
	"sort"
	"time"
)

type BlockType string

const (
	BlockTable BlockType = "table"
	BlockGraph BlockType = "graph"
	BlockText  BlockType = "text"
)

type DataSourceType string

const (
	SourceMock   DataSourceType = "mock"
	SourceStatic DataSourceType = "static"
	SourceQuery  DataSourceType = "query"
	SourceAPI    DataSourceType = "api"
)

// Position and Size are in grid-cell units. Position components are
// non-negative, Size components are at least 1. The document model clamps
// every mutation so blocks never leave the grid.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// DimensionMode describes how a canvas dimension is sized.
// Type is one of "fixed", "screen", "auto"; Value only applies to "fixed".
type DimensionMode struct {
	Type  string `json:"type"`
	Value int    `json:"value,omitempty"`
}

type Layout struct {
	// GridSize is the rendered cell size in pixels. 0 marks legacy
	// pixel-mode documents.
	GridSize     int           `json:"gridSize"`
	Columns      int           `json:"columns"`
	Rows         int           `json:"rows"`
	Gap          int           `json:"gap"`
	CanvasWidth  DimensionMode `json:"canvasWidth"`
	CanvasHeight DimensionMode `json:"canvasHeight"`
}

// DataSource is a tagged union. Only the variant matching Type is set;
// constructors and the normalizer enforce this, so consumers never need
// presence checks on foreign variants.
type DataSource struct {
	Type   DataSourceType `json:"type"`
	Static *StaticSource  `json:"static,omitempty"`
	Query  *QuerySource   `json:"query,omitempty"`
	API    *APISource     `json:"api,omitempty"`
}

type StaticSource struct {
	StaticData string `json:"staticData"`
}

type QuerySource struct {
	QueryID         string `json:"queryId"`
	PreprocessingID string `json:"preprocessingId,omitempty"`
}

type APISource struct {
	Endpoint    string            `json:"endpoint"`
	Method      string            `json:"method"`
	Headers     map[string]string `json:"headers,omitempty"`
	BearerToken string            `json:"bearerToken,omitempty"`
}

// BlockConfig is a tagged union keyed by the owning block's Type.
type BlockConfig struct {
	Table *TableConfig `json:"table,omitempty"`
	Graph *GraphConfig `json:"graph,omitempty"`
	Text  *TextConfig  `json:"text,omitempty"`
}

type TableConfig struct {
	Columns    []TableColumn    `json:"columns"`
	Pagination PaginationConfig `json:"pagination"`
	Sorting    SortingConfig    `json:"sorting"`
	Filtering  FilteringConfig  `json:"filtering"`
}

type TableColumn struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Sortable bool   `json:"sortable"`
}

type PaginationConfig struct {
	Enabled  bool `json:"enabled"`
	PageSize int  `json:"pageSize"`
}

type SortingConfig struct {
	Enabled       bool   `json:"enabled"`
	DefaultColumn string `json:"defaultColumn,omitempty"`
	DefaultOrder  string `json:"defaultOrder,omitempty"`
}

type FilteringConfig struct {
	Enabled bool `json:"enabled"`
}

// GraphConfig carries both chart families. Axis charts (line, bar, area,
// scatter) use Series/XAxis/YAxis; pie and donut use NameKey/ValueKey.
// The normalizer clears the fields of the family that does not apply.
type GraphConfig struct {
	ChartType  string          `json:"chartType"`
	Series     []SeriesConfig  `json:"series,omitempty"`
	XAxis      *AxisConfig     `json:"xAxis,omitempty"`
	YAxis      *AxisConfig     `json:"yAxis,omitempty"`
	NameKey    string          `json:"nameKey,omitempty"`
	ValueKey   string          `json:"valueKey,omitempty"`
	Legend     LegendConfig    `json:"legend"`
	Colors     []string        `json:"colors"`
	Animations AnimationConfig `json:"animations"`
}

type SeriesConfig struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Color string `json:"color,omitempty"`
}

type AxisConfig struct {
	Key      string `json:"key"`
	Label    string `json:"label,omitempty"`
	ShowGrid bool   `json:"showGrid"`
}

type LegendConfig struct {
	Show     bool   `json:"show"`
	Position string `json:"position"`
}

type AnimationConfig struct {
	Enabled  bool `json:"enabled"`
	Duration int  `json:"duration"` // in ms
}

type TextConfig struct {
	Content   string        `json:"content"`
	Variables TextVariables `json:"variables"`
	Style     TextStyle     `json:"style"`
}

type TextVariable struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// TextVariables accepts both the current list shape and the legacy
// map shape ({"name": "value"}) that older persisted documents carry.
// Map entries are ordered by name so decoding is deterministic.
type TextVariables []TextVariable

func (v *TextVariables) UnmarshalJSON(data []byte) error {
	var list []TextVariable
	if err := json.Unmarshal(data, &list); err == nil {
		*v = list
		return nil
	}
	var legacy map[string]string
	if err := json.Unmarshal(data, &legacy); err != nil {
		return err
	}
	names := make([]string, 0, len(legacy))
	for name := range legacy {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make(TextVariables, 0, len(legacy))
	for _, name := range names {
		out = append(out, TextVariable{Name: name, Value: legacy[name]})
	}
	*v = out
	return nil
}

type TextStyle struct {
	FontSize int    `json:"fontSize"`
	Color    string `json:"color"`
	Align    string `json:"align"`
}

type Block struct {
	ID         string      `json:"id"`
	Type       BlockType   `json:"type"`
	Title      string      `json:"title"`
	Position   Position    `json:"position"`
	Size       Size        `json:"size"`
	Config     BlockConfig `json:"config"`
	DataSource DataSource  `json:"dataSource"`
}

type FilterType string

const (
	FilterString       FilterType = "string"
	FilterInteger      FilterType = "integer"
	FilterFloat        FilterType = "float"
	FilterBoolean      FilterType = "boolean"
	FilterDate         FilterType = "date"
	FilterDateRange    FilterType = "date_range"
	FilterIntegerRange FilterType = "integer_range"
	FilterFloatRange   FilterType = "float_range"
	FilterList         FilterType = "list"
)

type Filter struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name"`
	// Field is the row field the predicate targets. Empty means Key.
	Field        string     `json:"field,omitempty"`
	Type         FilterType `json:"type"`
	Active       bool       `json:"active"`
	InitialValue any        `json:"initialValue,omitempty"`
	CurrentValue any        `json:"currentValue,omitempty"`
	Options      []string   `json:"options,omitempty"`
	OptionsQuery string     `json:"optionsQuery,omitempty"`
	Min          *float64   `json:"min,omitempty"`
	Max          *float64   `json:"max,omitempty"`
}

type Dashboard struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	Description      string            `json:"description,omitempty"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
	CreatedBy        *string           `json:"createdBy,omitempty"`
	UpdatedBy        *string           `json:"updatedBy,omitempty"`
	Layout           Layout            `json:"layout"`
	Blocks           []Block           `json:"blocks"`
	Variables        map[string]string `json:"variables,omitempty"`
	Filters          []Filter          `json:"filters,omitempty"`
	Public           bool              `json:"public,omitempty"`
	PublicToggleable bool              `json:"publicToggleable,omitempty"`
}

// Editable reports whether layout mutations (drag, resize, block edits) are
// allowed on the dashboard.
func (d *Dashboard) Editable() bool {
	return !d.Public || d.PublicToggleable
}

// FindBlock returns the block with the given id, or nil.
func (d *Dashboard) FindBlock(id string) *Block {
	for i := range d.Blocks {
		if d.Blocks[i].ID == id {
			return &d.Blocks[i]
		}
	}
	return nil
}

const (
	DefaultColumns  = 20
	DefaultRows     = 15
	DefaultGridSize = 40
	DefaultGap      = 2
)

func DefaultLayout() Layout {
	return Layout{
		GridSize:     DefaultGridSize,
		Columns:      DefaultColumns,
		Rows:         DefaultRows,
		Gap:          DefaultGap,
		CanvasWidth:  DimensionMode{Type: "screen"},
		CanvasHeight: DimensionMode{Type: "auto"},
	}
}
