// SPDX-License-Identifier: MPL-2.0

package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/marcboeker/go-duckdb"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	_ "modernc.org/sqlite"

	"gridboard/comms"
	"gridboard/core"
	"gridboard/dev"
	"gridboard/metrics"
	"gridboard/snapshots"
	"gridboard/util/signals"
	"gridboard/web"
)

type Config struct {
	Address        string
	Port           int
	StoreFile      string
	DuckDBFile     string
	LoginToken     string
	JWTExp         time.Duration
	TLSDomain      string
	TLSCacheDir    string
	WatchDir       string
	NatsHost       string
	NatsPort       int
	NatsToken      string
	NatsJSDir      string
	NatsJSKey      string
	NatsMaxStore   int64 // in bytes
	NatsDontListen bool
	S3Bucket       string
	S3Region       string
	S3Endpoint     string
	S3AccessKey    string
	S3SecretKey    string
	SnapshotTime   string
}

func main() {
	config := loadConfig()
	signals.HandleInterrupt(Run(config))
}

func loadConfig() Config {
	flags := ff.NewFlagSet("gridboard")
	help := flags.Bool('h', "help", "show help")
	addr := flags.StringLong("addr", "0.0.0.0", "server address")
	port := flags.Int('p', "port", 3000, "port to listen on")
	storeFile := flags.String('s', "store", "gridboard.db", "path to the SQLite store file")
	dbFile := flags.String('d', "duckdb", "", "path to duckdb file (default: use in-memory db)")
	loginToken := flags.String('t', "token", "", "token used for login (required)")
	jwtExp := flags.DurationLong("jwtexp", 15*time.Minute, "JWT expiration duration")
	tlsDomain := flags.StringLong("tls-domain", "", "domain for Let's Encrypt auto-TLS")
	tlsCacheDir := flags.StringLong("tls-cache-dir", ".tls-cache", "cache directory for TLS certificates")
	watchDir := flags.StringLong("watch", "", "directory of dashboard files to deploy on save")
	natsHost := flags.StringLong("nats-host", "0.0.0.0", "NATS server host")
	natsPort := flags.IntLong("nats-port", 4222, "NATS server port")
	natsToken := flags.StringLong("nats-token", "", "NATS authentication token")
	natsJSDir := flags.String('n', "nats-dir", "", "JetStream storage directory (default: in-memory)")
	natsJSKey := flags.StringLong("nats-js-key", "", "JetStream encryption key")
	natsMaxStore := flags.StringLong("nats-max-store", "0", "Maximum storage in bytes (0 for unlimited)")
	natsDontListen := flags.BoolLong("nats-dont-listen", "Disable NATS from listening on any port")
	s3Bucket := flags.StringLong("s3-bucket", "", "S3 bucket for snapshots (empty disables snapshots)")
	s3Region := flags.StringLong("s3-region", "", "S3 region for snapshots")
	s3Endpoint := flags.StringLong("s3-endpoint", "", "S3 endpoint for snapshots")
	s3AccessKey := flags.StringLong("s3-access-key", "", "S3 access key (default: credential chain)")
	s3SecretKey := flags.StringLong("s3-secret-key", "", "S3 secret key (default: credential chain)")
	snapshotTime := flags.StringLong("snapshot-time", "03:00", "daily snapshot time (HH:MM)")

	err := ff.Parse(flags, os.Args[1:],
		ff.WithEnvVarPrefix("GRIDBOARD"),
		ff.WithConfigFileParser(ff.PlainParser),
	)
	if err == nil && *loginToken == "" {
		err = fmt.Errorf("--token must be set")
	}
	if err != nil {
		fmt.Printf("%s\n", ffhelp.Flags(flags))
		fmt.Printf("err=%v\n", err)
		os.Exit(1)
	}
	if *help {
		fmt.Printf("%s\n", ffhelp.Flags(flags))
		os.Exit(0)
	}

	maxStore, err := strconv.ParseInt(*natsMaxStore, 10, 64)
	if err != nil {
		fmt.Printf("Invalid value for nats-max-store: %v\n", err)
		os.Exit(1)
	}

	return Config{
		Address:        *addr,
		Port:           *port,
		StoreFile:      *storeFile,
		DuckDBFile:     *dbFile,
		LoginToken:     *loginToken,
		JWTExp:         *jwtExp,
		TLSDomain:      *tlsDomain,
		TLSCacheDir:    *tlsCacheDir,
		WatchDir:       *watchDir,
		NatsHost:       *natsHost,
		NatsPort:       *natsPort,
		NatsToken:      *natsToken,
		NatsJSDir:      *natsJSDir,
		NatsJSKey:      *natsJSKey,
		NatsMaxStore:   maxStore,
		NatsDontListen: *natsDontListen,
		S3Bucket:       *s3Bucket,
		S3Region:       *s3Region,
		S3Endpoint:     *s3Endpoint,
		S3AccessKey:    *s3AccessKey,
		S3SecretKey:    *s3SecretKey,
		SnapshotTime:   *snapshotTime,
	}
}

func Run(config Config) func(context.Context) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	store, err := sqlx.Open("sqlite", config.StoreFile)
	if err != nil {
		panic(err)
	}
	fmt.Println("⇨ connected to store", config.StoreFile)

	dbConnector, err := duckdb.NewConnector(config.DuckDBFile, nil)
	if err != nil {
		panic(err)
	}
	duck := sqlx.NewDb(sql.OpenDB(dbConnector), "duckdb")
	if config.DuckDBFile != "" {
		fmt.Println("⇨ connected to duckdb", config.DuckDBFile)
	} else {
		fmt.Println("⇨ connected to in-memory duckdb")
	}

	c, err := comms.New(comms.Config{
		Logger:     logger.WithGroup("nats"),
		Host:       config.NatsHost,
		Port:       config.NatsPort,
		Token:      config.NatsToken,
		JSDir:      config.NatsJSDir,
		JSKey:      config.NatsJSKey,
		MaxStore:   config.NatsMaxStore,
		DontListen: config.NatsDontListen,
	})
	if err != nil {
		panic(err)
	}

	app, err := core.New(store, duck, logger, config.LoginToken, config.JWTExp)
	if err != nil {
		panic(err)
	}
	if err := app.Init(c.Conn); err != nil {
		panic(err)
	}

	metrics.Init()

	snapshotService := snapshots.Start(snapshots.Config{
		Logger:        logger.WithGroup("snapshots"),
		Store:         store,
		Duck:          duck,
		DuckPath:      config.DuckDBFile,
		S3Bucket:      config.S3Bucket,
		S3Region:      config.S3Region,
		S3Endpoint:    config.S3Endpoint,
		S3AccessKey:   config.S3AccessKey,
		S3SecretKey:   config.S3SecretKey,
		ScheduledTime: config.SnapshotTime,
	})

	var watcher *dev.Dev
	if config.WatchDir != "" {
		watcher, err = dev.Watch(app, config.WatchDir, logger)
		if err != nil {
			panic(err)
		}
	}

	e := web.Start(web.Config{
		Host:        config.Address,
		Port:        config.Port,
		TLSDomain:   config.TLSDomain,
		TLSCacheDir: config.TLSCacheDir,
	}, app)

	return func(ctx context.Context) {
		logger.Info("initiating shutdown...")
		logger.Info("stopping web server...")
		if err := e.Shutdown(ctx); err != nil {
			logger.ErrorContext(ctx, "error stopping server", slog.Any("error", err))
		}
		if watcher != nil {
			logger.Info("stopping dev watcher...")
			watcher.Stop()
		}
		logger.Info("stopping snapshots...")
		snapshotService.Stop()
		logger.Info("stopping NATS...")
		c.Close()
		logger.Info("closing DB connections...")
		if err := duck.Close(); err != nil {
			logger.ErrorContext(ctx, "error closing database connection", slog.Any("error", err))
		}
		if err := store.Close(); err != nil {
			logger.ErrorContext(ctx, "error closing store connection", slog.Any("error", err))
		}
	}
}
