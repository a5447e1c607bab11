// SPDX-License-Identifier: MPL-2.0

// Package dev deploys dashboard files into the running instance on save.
// Drop a <name>.dashboard.json file into the watched directory and it gets
// created or updated in place, keyed by file path.
package dev

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/syncthing/notify"

	"gridboard/core"
)

const DASHBOARD_SUFFIX = ".dashboard.json"
const DEPLOY_TIMEOUT = 10 * time.Second

type Dev struct {
	c      chan notify.EventInfo
	app    *core.App
	logger *slog.Logger

	// file path -> dashboard id, so saves update instead of re-creating
	mu       sync.Mutex
	deployed map[string]string
	watchDir string
}

type dashboardFile struct {
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Layout      *core.Layout       `json:"layout,omitempty"`
	Blocks      []core.Block       `json:"blocks"`
	Variables   *map[string]string `json:"variables,omitempty"`
	Filters     *[]core.Filter     `json:"filters,omitempty"`
}

func Watch(app *core.App, watchDir string, logger *slog.Logger) (*Dev, error) {
	if watchDir == "" {
		return nil, fmt.Errorf("watch directory is required")
	}
	absWatchDir, err := filepath.Abs(watchDir)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	dev := &Dev{
		app:      app,
		logger:   logger.WithGroup("dev"),
		deployed: map[string]string{},
		watchDir: absWatchDir,
	}

	// Make the channel buffered to ensure no event is dropped. Notify will
	// drop an event if the receiver is not able to keep up the sending pace.
	c := make(chan notify.EventInfo, 1)
	dev.c = c
	if err := notify.Watch(path.Join(absWatchDir, "..."), c, notify.Create, notify.Write); err != nil {
		return nil, err
	}

	dev.logger.Info("Watching dashboard files in dev mode", slog.String("dir", absWatchDir))

	go func() {
		for ei := range c {
			p := ei.Path()
			if !strings.HasSuffix(p, DASHBOARD_SUFFIX) {
				continue
			}
			if err := dev.deployFile(p); err != nil {
				dev.logger.Error("failed to deploy dashboard file",
					slog.String("file", p), slog.Any("error", err))
			}
		}
	}()
	return dev, nil
}

func (dev *Dev) Stop() {
	notify.Stop(dev.c)
	close(dev.c)
}

func (dev *Dev) deployFile(p string) error {
	ctx, cancel := context.WithTimeout(context.Background(), DEPLOY_TIMEOUT)
	defer cancel()

	data, err := os.ReadFile(p)
	if err != nil {
		return err
	}
	var file dashboardFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("invalid dashboard file: %w", err)
	}
	if file.Name == "" {
		file.Name = strings.TrimSuffix(path.Base(p), DASHBOARD_SUFFIX)
	}

	dev.mu.Lock()
	id, known := dev.deployed[p]
	dev.mu.Unlock()

	if !known {
		d, err := core.CreateDashboard(dev.app, ctx, core.CreateDashboardRequest{
			Name:        file.Name,
			Description: file.Description,
			Layout:      file.Layout,
		})
		if err != nil {
			return err
		}
		id = d.ID
		dev.mu.Lock()
		dev.deployed[p] = id
		dev.mu.Unlock()
	}

	name := file.Name
	req := core.UpdateDashboardRequest{
		Name:        &name,
		Description: &file.Description,
		Layout:      file.Layout,
		Blocks:      &file.Blocks,
		Variables:   file.Variables,
		Filters:     file.Filters,
	}
	if _, err := core.UpdateDashboard(dev.app, ctx, id, req); err != nil {
		return err
	}
	dev.logger.Info("deployed dashboard file",
		slog.String("file", p), slog.String("dashboard", id))
	return nil
}
