// SPDX-License-Identifier: MPL-2.0

package core

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nrednav/cuid2"

	"gridboard/metrics"
	"gridboard/util"
)

const QUERY_MAX_ROWS = 2000
const PREVIEW_DEFAULT_LIMIT = 10

type Query struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	SQL          string           `json:"sql"`
	IsActive     bool             `json:"isActive"`
	Public       bool             `json:"public,omitempty"`
	Parameters   []QueryParameter `json:"parameters"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
	LastExecuted *time.Time       `json:"lastExecuted,omitempty"`
}

type QueryParameter struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Default any    `json:"default,omitempty"`
}

type Column struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Nullable bool   `json:"nullable"`
}

type QueryResult struct {
	ExecutionID   string   `json:"executionId"`
	Columns       []Column `json:"columns"`
	Rows          [][]any  `json:"rows"`
	RowCount      int      `json:"rowCount"`
	ExecutionTime int64    `json:"executionTimeMs"`
	Error         string   `json:"error,omitempty"`
}

type ValidationResult struct {
	IsValid bool   `json:"isValid"`
	Error   string `json:"error,omitempty"`
}

type queryRow struct {
	ID           string     `db:"id"`
	Name         string     `db:"name"`
	SQL          string     `db:"sql"`
	IsActive     bool       `db:"is_active"`
	Public       bool       `db:"public"`
	Parameters   string     `db:"parameters"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
	LastExecuted *time.Time `db:"last_executed"`
}

func (r queryRow) toQuery(app *App) Query {
	params := []QueryParameter{}
	if r.Parameters != "" {
		if err := json.Unmarshal([]byte(r.Parameters), &params); err != nil {
			app.Logger.Error("failed to unmarshal query parameters",
				slog.String("query", r.ID), slog.Any("error", err))
		}
	}
	return Query{
		ID:           r.ID,
		Name:         r.Name,
		SQL:          r.SQL,
		IsActive:     r.IsActive,
		Public:       r.Public,
		Parameters:   params,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
		LastExecuted: r.LastExecuted,
	}
}

type QueryListResult struct {
	Queries []Query `json:"queries"`
}

func ListGlobalQueries(app *App, ctx context.Context) (QueryListResult, error) {
	rows := []queryRow{}
	err := app.Store.SelectContext(ctx, &rows,
		`SELECT * FROM queries ORDER BY created_at DESC`)
	if err != nil {
		return QueryListResult{}, fmt.Errorf("error listing queries: %w", err)
	}
	result := QueryListResult{Queries: make([]Query, 0, len(rows))}
	for _, r := range rows {
		result.Queries = append(result.Queries, r.toQuery(app))
	}
	return result, nil
}

func GetGlobalQuery(app *App, ctx context.Context, id string) (Query, error) {
	var row queryRow
	err := app.Store.GetContext(ctx, &row, `SELECT * FROM queries WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Query{}, fmt.Errorf("query %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return Query{}, fmt.Errorf("failed to get query: %w", err)
	}
	return row.toQuery(app), nil
}

type SaveQueryRequest struct {
	Name       string           `json:"name"`
	SQL        string           `json:"sql"`
	IsActive   *bool            `json:"isActive,omitempty"`
	Public     bool             `json:"public,omitempty"`
	Parameters []QueryParameter `json:"parameters,omitempty"`
}

func SaveGlobalQuery(app *App, ctx context.Context, req SaveQueryRequest) (Query, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return Query{}, fmt.Errorf("query name cannot be empty: %w", ErrValidation)
	}
	if v := ValidateQuery(req.SQL); !v.IsValid {
		return Query{}, fmt.Errorf("%s: %w", v.Error, ErrValidation)
	}
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	params := req.Parameters
	if params == nil {
		params = []QueryParameter{}
	}
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return Query{}, fmt.Errorf("failed to marshal parameters: %w", err)
	}
	now := time.Now()
	id := cuid2.Generate()
	_, err = app.Store.ExecContext(ctx,
		`INSERT INTO queries (id, name, sql, is_active, public, parameters, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id, req.Name, req.SQL, isActive, req.Public, string(paramsJSON), now, now)
	if err != nil {
		return Query{}, fmt.Errorf("failed to save query: %w", err)
	}
	publishEvent(app, ctx, ChangeEvent{Event: "create_query", QueryID: id})
	return GetGlobalQuery(app, ctx, id)
}

func UpdateGlobalQuery(app *App, ctx context.Context, id string, req SaveQueryRequest) (Query, error) {
	existing, err := GetGlobalQuery(app, ctx, id)
	if err != nil {
		return Query{}, err
	}
	if existing.Public {
		return Query{}, fmt.Errorf("public queries are immutable: %w", ErrPermission)
	}
	if req.Name != "" {
		existing.Name = strings.TrimSpace(req.Name)
	}
	if req.SQL != "" {
		if v := ValidateQuery(req.SQL); !v.IsValid {
			return Query{}, fmt.Errorf("%s: %w", v.Error, ErrValidation)
		}
		existing.SQL = req.SQL
	}
	if req.IsActive != nil {
		existing.IsActive = *req.IsActive
	}
	if req.Parameters != nil {
		existing.Parameters = req.Parameters
	}
	paramsJSON, err := json.Marshal(existing.Parameters)
	if err != nil {
		return Query{}, fmt.Errorf("failed to marshal parameters: %w", err)
	}
	_, err = app.Store.ExecContext(ctx,
		`UPDATE queries SET name = $1, sql = $2, is_active = $3, parameters = $4, updated_at = $5
		 WHERE id = $6`,
		existing.Name, existing.SQL, existing.IsActive, string(paramsJSON), time.Now(), id)
	if err != nil {
		return Query{}, fmt.Errorf("failed to update query: %w", err)
	}
	// A changed query invalidates every cached result for it.
	app.QueryCache.Invalidate(id)
	publishEvent(app, ctx, ChangeEvent{Event: "update_query", QueryID: id})
	return GetGlobalQuery(app, ctx, id)
}

func DeleteGlobalQuery(app *App, ctx context.Context, id string) error {
	existing, err := GetGlobalQuery(app, ctx, id)
	if err != nil {
		return err
	}
	if existing.Public {
		return fmt.Errorf("public queries are immutable: %w", ErrPermission)
	}
	if _, err := app.Store.ExecContext(ctx, `DELETE FROM queries WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete query: %w", err)
	}
	app.QueryCache.Invalidate(id)
	publishEvent(app, ctx, ChangeEvent{Event: "delete_query", QueryID: id})
	return nil
}

// ExecuteQuery runs the stored query against DuckDB with the given
// parameters bound as DuckDB variables, and updates lastExecuted.
func ExecuteQuery(app *App, ctx context.Context, id string, params map[string]any) (*QueryResult, error) {
	query, err := GetGlobalQuery(app, ctx, id)
	if err != nil {
		return nil, err
	}
	if !query.IsActive {
		return nil, fmt.Errorf("query %q is inactive: %w", id, ErrResolution)
	}
	result, err := runSQL(app, ctx, query.SQL, params)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if _, err := app.Store.ExecContext(ctx,
		`UPDATE queries SET last_executed = $1 WHERE id = $2`, now, id); err != nil {
		app.Logger.Error("failed to update last_executed",
			slog.String("query", id), slog.Any("error", err))
	}
	return result, nil
}

// GetQueryPreview validates and runs ad-hoc SQL wrapped in a row limit.
func GetQueryPreview(app *App, ctx context.Context, sqlText string, limit int) (*QueryResult, error) {
	if v := ValidateQuery(sqlText); !v.IsValid {
		return nil, fmt.Errorf("%s: %w", v.Error, ErrValidation)
	}
	if limit <= 0 {
		limit = PREVIEW_DEFAULT_LIMIT
	}
	wrapped := fmt.Sprintf("SELECT * FROM (%s) LIMIT %d", strings.TrimRight(strings.TrimSpace(sqlText), ";"), limit)
	return runSQL(app, ctx, wrapped, nil)
}

var forbiddenKeywords = []string{"DROP", "DELETE", "TRUNCATE", "ALTER", "CREATE", "INSERT", "UPDATE"}

var wordRegex = regexp.MustCompile(`[A-Za-z_]+`)

// ValidateQuery rejects anything that is not a plain SELECT (or WITH) and
// any statement containing DDL/DML keywords.
func ValidateQuery(sqlText string) ValidationResult {
	clean := strings.TrimSpace(util.StripSQLComments(sqlText))
	if clean == "" {
		return ValidationResult{IsValid: false, Error: "Query cannot be empty"}
	}
	upper := strings.ToUpper(clean)
	for _, word := range wordRegex.FindAllString(upper, -1) {
		for _, keyword := range forbiddenKeywords {
			if word == keyword {
				return ValidationResult{IsValid: false, Error: fmt.Sprintf("Operation %s is not allowed", keyword)}
			}
		}
	}
	if !strings.HasPrefix(upper, "SELECT") && !strings.HasPrefix(upper, "WITH") {
		return ValidationResult{IsValid: false, Error: "Only SELECT statements are allowed"}
	}
	return ValidationResult{IsValid: true}
}

// buildVarPrefix binds parameters as DuckDB variables so queries can read
// them with getvariable('name'). The cleanup statement resets them so values
// don't leak into later executions on the same connection.
func buildVarPrefix(params map[string]any) (string, string) {
	if len(params) == 0 {
		return "", ""
	}
	var prefix, cleanup strings.Builder
	for name, value := range params {
		if !variableNameRegex.MatchString(name) {
			continue
		}
		prefix.WriteString(fmt.Sprintf("SET VARIABLE %s = %s;\n", name, sqlLiteral(value)))
		cleanup.WriteString(fmt.Sprintf("RESET VARIABLE %s;\n", name))
	}
	return prefix.String(), cleanup.String()
}

var variableNameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]{0,127}$`)

func sqlLiteral(value any) string {
	switch v := value.(type) {
	case nil:
		return "NULL"
	case bool:
		if v {
			return "TRUE"
		}
		return "FALSE"
	case float64, float32, int, int32, int64:
		return fmt.Sprintf("%v", v)
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = sqlLiteral(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return "'" + util.EscapeSQLString(fmt.Sprintf("%v", v)) + "'"
	}
}

func runSQL(app *App, ctx context.Context, sqlText string, params map[string]any) (*QueryResult, error) {
	conn, err := app.Duck.Connx(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting conn: %w", err)
	}
	defer func() {
		if err := conn.Close(); err != nil {
			app.Logger.Error("error closing conn", slog.Any("error", err))
		}
	}()

	varPrefix, varCleanup := buildVarPrefix(params)
	start := time.Now()
	rows, err := conn.QueryxContext(ctx, varPrefix+strings.TrimRight(strings.TrimSpace(sqlText), ";")+";")
	if varCleanup != "" {
		if _, cleanupErr := conn.ExecContext(ctx, varCleanup); cleanupErr != nil {
			app.Logger.Error("error cleaning up query variables", slog.Any("error", cleanupErr))
		}
	}
	if err != nil {
		return nil, fmt.Errorf("error querying DB: %w", err)
	}
	defer rows.Close()

	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}
	result := &QueryResult{
		ExecutionID: uuid.NewString(),
		Columns:     make([]Column, 0, len(colTypes)),
		Rows:        [][]any{},
	}
	for rows.Next() {
		row, err := rows.SliceScan()
		if err != nil {
			return nil, err
		}
		result.Rows = append(result.Rows, row)
		if len(result.Rows) > QUERY_MAX_ROWS {
			app.Logger.Info("query result too large, truncating",
				slog.Int("maxRows", QUERY_MAX_ROWS))
			if err := rows.Close(); err != nil {
				return nil, fmt.Errorf("error closing rows while truncating: %w", err)
			}
			break
		}
	}
	for i, c := range colTypes {
		nullable, ok := c.Nullable()
		result.Columns = append(result.Columns, Column{
			Name:     c.Name(),
			Type:     mapDBType(c.DatabaseTypeName(), i, result.Rows),
			Nullable: ok && nullable,
		})
	}
	normalizeResultValues(result)
	result.RowCount = len(result.Rows)
	result.ExecutionTime = time.Since(start).Milliseconds()
	metrics.QueryDuration.Observe(time.Since(start).Seconds())
	return result, nil
}

func mapDBType(dbType string, index int, rows [][]any) string {
	switch dbType {
	case "VARCHAR", "UUID":
		return "string"
	case "BOOLEAN":
		return "boolean"
	case "TINYINT", "SMALLINT", "INTEGER", "BIGINT", "HUGEINT",
		"UTINYINT", "USMALLINT", "UINTEGER", "UBIGINT",
		"FLOAT", "DOUBLE", "DECIMAL":
		return "number"
	case "DATE":
		if onlyYears(rows, index) {
			return "year"
		}
		return "date"
	case "TIMESTAMP", "TIMESTAMP_NS", "TIMESTAMP_MS", "TIMESTAMP_S", "TIMESTAMPZ", "TIMESTAMP WITH TIME ZONE":
		return "timestamp"
	case "TIME":
		return "time"
	case "INTERVAL":
		return "duration"
	}
	return "string"
}

func onlyYears(rows [][]any, index int) bool {
	for _, row := range rows {
		t, ok := row[index].(time.Time)
		if !ok {
			return false
		}
		if t.Month() != 1 || t.Day() != 1 {
			return false
		}
	}
	return true
}

// normalizeResultValues converts driver-specific cell values into JSON-safe
// primitives: times become unix milliseconds, decimals become float64.
func normalizeResultValues(result *QueryResult) {
	for _, row := range result.Rows {
		for i, cell := range row {
			switch v := cell.(type) {
			case time.Time:
				row[i] = v.UnixMilli()
			case []uint8:
				row[i] = string(v)
			}
		}
	}
}
