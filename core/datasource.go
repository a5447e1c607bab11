// SPDX-License-Identifier: MPL-2.0

package core

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"gridboard/metrics"
)

// Row is one record of block data, keyed by column name.
type Row map[string]any

type BlockData struct {
	Data     []Row         `json:"data"`
	Metadata BlockMetadata `json:"metadata"`
}

type BlockMetadata struct {
	Source          DataSourceType `json:"source"`
	Columns         []string       `json:"columns"`
	RowCount        int            `json:"rowCount"`
	ExecutionTimeMs int64          `json:"executionTimeMs,omitempty"`
	CachedAt        *time.Time     `json:"cachedAt,omitempty"`
	Warning         string         `json:"warning,omitempty"`
}

// ResolveBlockData materializes the rows behind a block's data source and
// applies the dashboard's active filters. params carries per-request filter
// values keyed by filter key.
func ResolveBlockData(app *App, ctx context.Context, dashboard *Dashboard, block Block, params map[string]any) (*BlockData, error) {
	block = NormalizeBlock(block)
	source := block.DataSource.Type
	data, err := resolveSource(app, ctx, block, params)
	if err != nil {
		metrics.BlockResolutions.WithLabelValues(string(source), "error").Inc()
		return nil, err
	}
	metrics.BlockResolutions.WithLabelValues(string(source), "ok").Inc()
	if dashboard != nil {
		data.Data = ApplyFilters(data.Data, dashboard.Filters, params)
	}
	data.Metadata.RowCount = len(data.Data)
	if len(data.Metadata.Columns) == 0 {
		data.Metadata.Columns = columnsFromRows(data.Data)
	}
	return data, nil
}

func resolveSource(app *App, ctx context.Context, block Block, params map[string]any) (*BlockData, error) {
	switch block.DataSource.Type {
	case SourceStatic:
		return resolveStatic(app, block)
	case SourceQuery:
		return resolveQuery(app, ctx, block, params)
	case SourceAPI:
		return resolveAPI(app, ctx, block)
	default:
		rows := MockRows(block)
		return &BlockData{
			Data:     rows,
			Metadata: BlockMetadata{Source: SourceMock},
		}, nil
	}
}

func resolveStatic(app *App, block Block) (*BlockData, error) {
	raw := ""
	if block.DataSource.Static != nil {
		raw = block.DataSource.Static.StaticData
	}
	rows, err := parseStaticData(raw)
	if err != nil {
		// Keep showing the last payload that parsed, if there is one.
		app.staticMu.Lock()
		good, ok := app.staticGood[block.ID]
		app.staticMu.Unlock()
		if ok {
			return &BlockData{
				Data: good,
				Metadata: BlockMetadata{
					Source:  SourceStatic,
					Warning: fmt.Sprintf("static data is invalid, showing previous data: %v", err),
				},
			}, nil
		}
		return nil, fmt.Errorf("invalid static data: %v: %w", err, ErrValidation)
	}
	app.staticMu.Lock()
	app.staticGood[block.ID] = rows
	app.staticMu.Unlock()
	return &BlockData{
		Data:     rows,
		Metadata: BlockMetadata{Source: SourceStatic},
	}, nil
}

// parseStaticData accepts a JSON array of objects or a single object.
func parseStaticData(raw string) ([]Row, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return []Row{}, nil
	}
	if strings.HasPrefix(trimmed, "[") {
		var rows []Row
		if err := json.Unmarshal([]byte(trimmed), &rows); err != nil {
			return nil, err
		}
		return rows, nil
	}
	var row Row
	if err := json.Unmarshal([]byte(trimmed), &row); err != nil {
		return nil, err
	}
	return []Row{row}, nil
}

func resolveQuery(app *App, ctx context.Context, block Block, params map[string]any) (*BlockData, error) {
	qs := block.DataSource.Query
	if qs == nil || qs.QueryID == "" {
		return nil, fmt.Errorf("query source without queryId: %w", ErrValidation)
	}
	var preprocess Preprocessor
	if qs.PreprocessingID != "" {
		fn, ok := app.preprocessors[qs.PreprocessingID]
		if !ok {
			return nil, fmt.Errorf("unknown preprocessing id %q: %w", qs.PreprocessingID, ErrValidation)
		}
		preprocess = fn
	}

	var result *QueryResult
	var cachedAt *time.Time
	if entry := app.QueryCache.Get(qs.QueryID, params); entry != nil {
		metrics.QueryCacheHits.WithLabelValues(qs.QueryID).Inc()
		result = entry.Result
		at := entry.CachedAt
		cachedAt = &at
	} else {
		metrics.QueryCacheMisses.WithLabelValues(qs.QueryID).Inc()
		fresh, err := app.QueryCache.Refresh(ctx, qs.QueryID, params, func(ctx context.Context) (*QueryResult, error) {
			return ExecuteQuery(app, ctx, qs.QueryID, params)
		})
		if err != nil {
			return nil, err
		}
		result = fresh
	}

	rows := resultToRows(result)
	if preprocess != nil {
		rows = preprocess(rows)
	}
	columns := make([]string, 0, len(result.Columns))
	for _, c := range result.Columns {
		columns = append(columns, c.Name)
	}
	return &BlockData{
		Data: rows,
		Metadata: BlockMetadata{
			Source:          SourceQuery,
			Columns:         columns,
			ExecutionTimeMs: result.ExecutionTime,
			CachedAt:        cachedAt,
		},
	}, nil
}

func resultToRows(result *QueryResult) []Row {
	rows := make([]Row, 0, len(result.Rows))
	for _, raw := range result.Rows {
		row := Row{}
		for i, c := range result.Columns {
			if i < len(raw) {
				row[c.Name] = raw[i]
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func resolveAPI(app *App, ctx context.Context, block Block) (*BlockData, error) {
	src := block.DataSource.API
	if src == nil || src.Endpoint == "" {
		return nil, fmt.Errorf("api source without endpoint: %w", ErrValidation)
	}
	method := src.Method
	if method == "" {
		method = http.MethodGet
	}
	req, err := http.NewRequestWithContext(ctx, method, src.Endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid api request: %v: %w", err, ErrValidation)
	}
	for k, v := range src.Headers {
		req.Header.Set(k, v)
	}
	if src.BearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+src.BearerToken)
	}
	res, err := app.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api request failed: %v: %w", err, ErrTransport)
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, fmt.Errorf("api returned status %d: %w", res.StatusCode, ErrTransport)
	}
	body, err := io.ReadAll(io.LimitReader(res.Body, 16<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read api response: %v: %w", err, ErrTransport)
	}
	rows, err := parseAPIResponse(body)
	if err != nil {
		return nil, fmt.Errorf("unexpected api response shape: %v: %w", err, ErrResolution)
	}
	return &BlockData{
		Data:     rows,
		Metadata: BlockMetadata{Source: SourceAPI},
	}, nil
}

// parseAPIResponse accepts a bare JSON array of objects or an envelope
// object with a "data" array.
func parseAPIResponse(body []byte) ([]Row, error) {
	var rows []Row
	if err := json.Unmarshal(body, &rows); err == nil {
		return rows, nil
	}
	var envelope struct {
		Data []Row `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, err
	}
	if envelope.Data == nil {
		return nil, fmt.Errorf("no data array in response")
	}
	return envelope.Data, nil
}

func columnsFromRows(rows []Row) []string {
	if len(rows) == 0 {
		return []string{}
	}
	columns := make([]string, 0, len(rows[0]))
	for key := range rows[0] {
		columns = append(columns, key)
	}
	sort.Strings(columns)
	return columns
}
