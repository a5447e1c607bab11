// SPDX-License-Identifier: MPL-2.0

package core

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	CONFIG_KEY_JWT_SECRET = "jwt-secret"
	CONFIG_KV_BUCKET      = "gridboard-config"
	EVENT_SUBJECT_PREFIX  = "gridboard.events."
)

type App struct {
	Name       string
	Store      *sqlx.DB // SQLite: dashboards, queries
	Duck       *sqlx.DB // DuckDB: analytics query execution
	Logger     *slog.Logger
	LoginToken string
	JWTSecret  []byte
	JWTExp     time.Duration

	NATSConn  *nats.Conn
	JetStream jetstream.JetStream
	ConfigKV  jetstream.KeyValue

	QueryCache *QueryCache
	HTTPClient *http.Client

	preprocessors map[string]Preprocessor

	// Last successfully parsed static payload per block id. Kept so a bad
	// edit in the static JSON editor doesn't blank a rendered block.
	staticMu   sync.Mutex
	staticGood map[string][]Row
}

// Preprocessor transforms a query result's rows before they reach a block.
type Preprocessor func(rows []Row) []Row

func New(store *sqlx.DB, duck *sqlx.DB, logger *slog.Logger, loginToken string, jwtExp time.Duration) (*App, error) {
	if err := initStore(store); err != nil {
		return nil, err
	}
	return &App{
		Name:          "gridboard",
		Store:         store,
		Duck:          duck,
		Logger:        logger,
		LoginToken:    loginToken,
		JWTExp:        jwtExp,
		QueryCache:    NewQueryCache(),
		HTTPClient:    &http.Client{Timeout: 30 * time.Second},
		preprocessors: map[string]Preprocessor{},
		staticGood:    map[string][]Row{},
	}, nil
}

// Init connects the app to NATS: JetStream handle, config KV bucket, and
// the persisted JWT secret.
func (app *App) Init(nc *nats.Conn) error {
	app.NATSConn = nc
	js, err := jetstream.New(nc)
	if err != nil {
		return fmt.Errorf("failed to create jetstream: %w", err)
	}
	app.JetStream = js
	kv, err := js.CreateOrUpdateKeyValue(context.Background(), jetstream.KeyValueConfig{
		Bucket: CONFIG_KV_BUCKET,
	})
	if err != nil {
		return fmt.Errorf("failed to create config KV bucket: %w", err)
	}
	app.ConfigKV = kv
	if err := loadJWTSecret(app); err != nil {
		return fmt.Errorf("failed to load JWT secret: %w", err)
	}
	return nil
}

// RegisterPreprocessor makes a named transform available to query data
// sources via preprocessingId.
func (app *App) RegisterPreprocessor(id string, fn Preprocessor) {
	app.preprocessors[id] = fn
}

func initStore(db *sqlx.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS dashboards (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			content TEXT NOT NULL,
			public INTEGER NOT NULL DEFAULT 0,
			public_toggleable INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			created_by TEXT,
			updated_by TEXT
		)
	`)
	if err != nil {
		return fmt.Errorf("error creating dashboards table: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS queries (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			sql TEXT NOT NULL,
			is_active INTEGER NOT NULL DEFAULT 1,
			public INTEGER NOT NULL DEFAULT 0,
			parameters TEXT NOT NULL DEFAULT '[]',
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			last_executed TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("error creating queries table: %w", err)
	}
	return nil
}
