// SPDX-License-Identifier: MPL-2.0

// Package snapshots uploads daily copies of the store and the analytics
// database to S3. Snapshots are cold backups: the store is vacuumed into a
// temp file so the copy is consistent, the analytics DB is checkpointed
// first.
package snapshots

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"

	"gridboard/util"
)

const SNAPSHOT_PREFIX = "gridboard-snapshots/"

type Config struct {
	Logger      *slog.Logger
	Store       *sqlx.DB
	Duck        *sqlx.DB
	DuckPath    string // path of the DuckDB file on disk
	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3AccessKey string // optional, credential chain when empty
	S3SecretKey string // optional, credential chain when empty
	// ScheduledTime is the daily snapshot time in "HH:MM".
	ScheduledTime string
}

type Service struct {
	config   Config
	timer    *time.Timer
	stopChan chan struct{}
	enabled  bool
}

func Start(config Config) *Service {
	s := &Service{
		config:   config,
		stopChan: make(chan struct{}),
		enabled:  config.S3Bucket != "",
	}
	if !s.enabled {
		config.Logger.Info("Snapshots disabled")
		return s
	}
	if config.ScheduledTime == "" {
		s.config.ScheduledTime = "03:00"
	}
	s.scheduleNext()
	return s
}

func (s *Service) Stop() {
	if s.timer != nil {
		s.timer.Stop()
	}
	close(s.stopChan)
}

func (s *Service) scheduleNext() {
	now := time.Now()
	scheduledTime, err := time.Parse("15:04", s.config.ScheduledTime)
	if err != nil {
		s.config.Logger.Error("Invalid snapshot time format",
			slog.String("time", s.config.ScheduledTime), slog.Any("error", err))
		return
	}
	nextRun := time.Date(now.Year(), now.Month(), now.Day(),
		scheduledTime.Hour(), scheduledTime.Minute(), 0, 0, now.Location())
	if nextRun.Before(now) {
		nextRun = nextRun.Add(24 * time.Hour)
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(time.Until(nextRun), func() {
		select {
		case <-s.stopChan:
			return
		default:
		}
		if err := s.Snapshot(context.Background()); err != nil {
			s.config.Logger.Error("Snapshot failed", slog.Any("error", err))
		}
		s.scheduleNext()
	})
	s.config.Logger.Info("Next snapshot scheduled", slog.Time("next_run", nextRun))
}

// Snapshot uploads a consistent copy of both databases.
func (s *Service) Snapshot(ctx context.Context) error {
	stamp := time.Now().Format("2006-01-02_15-04-05")
	s.config.Logger.Info("Starting snapshot", slog.String("stamp", stamp))

	if err := s.snapshotStore(ctx, stamp); err != nil {
		return fmt.Errorf("store snapshot failed: %w", err)
	}
	if err := s.snapshotDuck(ctx, stamp); err != nil {
		return fmt.Errorf("analytics snapshot failed: %w", err)
	}
	s.config.Logger.Info("Snapshot uploaded", slog.String("stamp", stamp))
	return nil
}

func (s *Service) snapshotStore(ctx context.Context, stamp string) error {
	tmpPath := filepath.Join(os.TempDir(), "gridboard-store-"+util.GenerateRandomString(8)+".db")
	defer func() {
		if err := os.Remove(tmpPath); err != nil && !os.IsNotExist(err) {
			s.config.Logger.Error("Failed to remove temp snapshot file", slog.Any("error", err))
		}
	}()
	if _, err := s.config.Store.ExecContext(ctx,
		"VACUUM INTO '"+util.EscapeSQLString(tmpPath)+"'"); err != nil {
		return err
	}
	key := SNAPSHOT_PREFIX + "store-" + stamp + ".db"
	return uploadFile(ctx, s.config, tmpPath, key)
}

func (s *Service) snapshotDuck(ctx context.Context, stamp string) error {
	if s.config.DuckPath == "" {
		// In-memory analytics DB, nothing on disk to snapshot.
		return nil
	}
	if _, err := s.config.Duck.ExecContext(ctx, "CHECKPOINT;"); err != nil {
		return err
	}
	key := SNAPSHOT_PREFIX + "duckdb-" + stamp + ".db"
	return uploadFile(ctx, s.config, s.config.DuckPath, key)
}
