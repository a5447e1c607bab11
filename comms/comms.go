// SPDX-License-Identifier: MPL-2.0

package comms

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
)

const CONNECT_TIMEOUT = 10 * time.Second

type Config struct {
	Logger     *slog.Logger
	Host       string
	Port       int
	Token      string
	JSDir      string
	JSKey      string
	MaxStore   int64 // in bytes
	DontListen bool
}

type Comms struct {
	Conn   *nats.Conn
	Server *server.Server
}

// New starts an embedded NATS server with JetStream enabled and connects
// an in-process client to it.
func New(config Config) (Comms, error) {
	opts := &server.Options{
		Host:                   config.Host,
		Port:                   config.Port,
		Authorization:          config.Token,
		JetStream:              true,
		JetStreamKey:           config.JSKey,
		JetStreamMaxStore:      config.MaxStore,
		DisableJetStreamBanner: true,
		DontListen:             config.DontListen,
		StoreDir:               config.JSDir,
	}
	ns, err := server.NewServer(opts)
	if err != nil {
		return Comms{}, fmt.Errorf("failed to create NATS server: %w", err)
	}
	ns.SetLoggerV2(newNATSLogger(config.Logger), false, false, false)
	go ns.Start()
	if !ns.ReadyForConnections(CONNECT_TIMEOUT) {
		return Comms{}, fmt.Errorf("NATS server not ready for connections after %s", CONNECT_TIMEOUT)
	}
	clientOpts := []nats.Option{nats.InProcessServer(ns)}
	if config.Token != "" {
		clientOpts = append(clientOpts, nats.Token(config.Token))
	}
	nc, err := nats.Connect(ns.ClientURL(), clientOpts...)
	if err != nil {
		return Comms{}, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return Comms{Conn: nc, Server: ns}, nil
}

func (c Comms) Close() {
	c.Server.Shutdown()
	c.Server.WaitForShutdown()
}
