// SPDX-License-Identifier: MPL-2.0

package core

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticBlock(id, data string) Block {
	return Block{
		ID:   id,
		Type: BlockTable,
		DataSource: DataSource{
			Type:   SourceStatic,
			Static: &StaticSource{StaticData: data},
		},
	}
}

func TestResolveMockData(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	table, err := ResolveBlockData(app, ctx, nil, Block{ID: "b1", Type: BlockTable}, nil)
	require.NoError(t, err)
	assert.Equal(t, SourceMock, table.Metadata.Source)
	require.Len(t, table.Data, 8)
	for _, col := range []string{"id", "name", "region", "status", "value"} {
		assert.Contains(t, table.Data[0], col)
	}

	pie, err := ResolveBlockData(app, ctx, nil, Block{
		ID:     "b2",
		Type:   BlockGraph,
		Config: BlockConfig{Graph: &GraphConfig{ChartType: "donut"}},
	}, nil)
	require.NoError(t, err)
	require.NotEmpty(t, pie.Data)
	assert.Contains(t, pie.Data[0], "name")
	assert.Contains(t, pie.Data[0], "value")

	text, err := ResolveBlockData(app, ctx, nil, Block{ID: "b3", Type: BlockText}, nil)
	require.NoError(t, err)
	assert.Empty(t, text.Data)
}

func TestResolveStaticData(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	got, err := ResolveBlockData(app, ctx, nil, staticBlock("s1", `[{"a": 1}, {"a": 2}]`), nil)
	require.NoError(t, err)
	assert.Equal(t, SourceStatic, got.Metadata.Source)
	assert.Equal(t, 2, got.Metadata.RowCount)
	assert.Equal(t, []string{"a"}, got.Metadata.Columns)

	// A single object counts as a one-row dataset.
	got, err = ResolveBlockData(app, ctx, nil, staticBlock("s2", `{"a": 1}`), nil)
	require.NoError(t, err)
	assert.Len(t, got.Data, 1)

	// Empty data is an empty dataset, not an error.
	got, err = ResolveBlockData(app, ctx, nil, staticBlock("s3", ""), nil)
	require.NoError(t, err)
	assert.Empty(t, got.Data)
}

func TestResolveStaticKeepsLastGoodPayload(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	good, err := ResolveBlockData(app, ctx, nil, staticBlock("s1", `[{"a": 1}]`), nil)
	require.NoError(t, err)
	require.Len(t, good.Data, 1)

	// A broken edit keeps showing the previous payload, with a warning.
	degraded, err := ResolveBlockData(app, ctx, nil, staticBlock("s1", `[{"a": 1`), nil)
	require.NoError(t, err)
	assert.Equal(t, good.Data, degraded.Data)
	assert.NotEmpty(t, degraded.Metadata.Warning)

	// Without a prior good payload the parse error surfaces.
	_, err = ResolveBlockData(app, ctx, nil, staticBlock("fresh", `not json`), nil)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestResolveAPIData(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	var gotAuth, gotCustom string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotCustom = r.Header.Get("X-Custom")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"city": "Berlin"}, {"city": "Paris"}]`))
	}))
	defer server.Close()

	block := Block{
		ID:   "a1",
		Type: BlockTable,
		DataSource: DataSource{
			Type: SourceAPI,
			API: &APISource{
				Endpoint:    server.URL,
				Headers:     map[string]string{"X-Custom": "yes"},
				BearerToken: "tok123",
			},
		},
	}
	got, err := ResolveBlockData(app, ctx, nil, block, nil)
	require.NoError(t, err)
	assert.Equal(t, SourceAPI, got.Metadata.Source)
	assert.Len(t, got.Data, 2)
	assert.Equal(t, "Bearer tok123", gotAuth)
	assert.Equal(t, "yes", gotCustom)
}

func TestResolveAPIDataEnvelope(t *testing.T) {
	app := newTestApp(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data": [{"n": 1}], "total": 1}`))
	}))
	defer server.Close()

	block := Block{
		ID:         "a1",
		Type:       BlockTable,
		DataSource: DataSource{Type: SourceAPI, API: &APISource{Endpoint: server.URL}},
	}
	got, err := ResolveBlockData(app, context.Background(), nil, block, nil)
	require.NoError(t, err)
	assert.Len(t, got.Data, 1)
}

func TestResolveAPIErrors(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	block := Block{
		ID:         "a1",
		Type:       BlockTable,
		DataSource: DataSource{Type: SourceAPI, API: &APISource{Endpoint: server.URL}},
	}
	_, err := ResolveBlockData(app, ctx, nil, block, nil)
	assert.ErrorIs(t, err, ErrTransport)

	// Connection refused is a transport error too.
	block.DataSource.API.Endpoint = "http://127.0.0.1:1"
	_, err = ResolveBlockData(app, ctx, nil, block, nil)
	assert.ErrorIs(t, err, ErrTransport)

	// Missing endpoint never leaves the process.
	block.DataSource.API.Endpoint = ""
	_, err = ResolveBlockData(app, ctx, nil, block, nil)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestResolveQuerySourceFromCache(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	// Seed the cache so resolution never needs the analytics DB.
	_, err := app.QueryCache.Refresh(ctx, "q1", nil, func(context.Context) (*QueryResult, error) {
		return &QueryResult{
			ExecutionID: "e1",
			Columns:     []Column{{Name: "month", Type: "string"}, {Name: "total", Type: "number"}},
			Rows:        [][]any{{"Jan", 10.0}, {"Feb", 20.0}},
			RowCount:    2,
		}, nil
	})
	require.NoError(t, err)

	block := Block{
		ID:         "qb",
		Type:       BlockTable,
		DataSource: DataSource{Type: SourceQuery, Query: &QuerySource{QueryID: "q1"}},
	}
	got, err := ResolveBlockData(app, ctx, nil, block, nil)
	require.NoError(t, err)
	assert.Equal(t, SourceQuery, got.Metadata.Source)
	require.NotNil(t, got.Metadata.CachedAt)
	assert.Equal(t, []string{"month", "total"}, got.Metadata.Columns)
	require.Len(t, got.Data, 2)
	assert.Equal(t, Row{"month": "Jan", "total": 10.0}, got.Data[0])
}

func TestResolveQuerySourcePreprocessor(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	_, err := app.QueryCache.Refresh(ctx, "q1", nil, func(context.Context) (*QueryResult, error) {
		return &QueryResult{
			Columns: []Column{{Name: "n", Type: "number"}},
			Rows:    [][]any{{1.0}, {2.0}},
		}, nil
	})
	require.NoError(t, err)

	app.RegisterPreprocessor("double", func(rows []Row) []Row {
		for _, row := range rows {
			row["n"] = row["n"].(float64) * 2
		}
		return rows
	})

	block := Block{
		ID:   "qb",
		Type: BlockTable,
		DataSource: DataSource{
			Type:  SourceQuery,
			Query: &QuerySource{QueryID: "q1", PreprocessingID: "double"},
		},
	}
	got, err := ResolveBlockData(app, ctx, nil, block, nil)
	require.NoError(t, err)
	assert.Equal(t, 2.0, got.Data[0]["n"])

	// Unknown preprocessor ids are rejected, not ignored.
	block.DataSource.Query.PreprocessingID = "missing"
	_, err = ResolveBlockData(app, ctx, nil, block, nil)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestResolveAppliesDashboardFilters(t *testing.T) {
	app := newTestApp(t)
	d := &Dashboard{
		Layout: DefaultLayout(),
		Filters: []Filter{
			{Key: "a", Type: FilterInteger, Active: true, CurrentValue: 2},
		},
	}
	block := staticBlock("s1", `[{"a": 1}, {"a": 2}, {"a": 3}]`)
	got, err := ResolveBlockData(app, context.Background(), d, block, nil)
	require.NoError(t, err)
	require.Len(t, got.Data, 1)
	assert.Equal(t, 1, got.Metadata.RowCount)
}
