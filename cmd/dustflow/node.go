// Copyright (C) 2023 Gobalsky Labs Limited
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"code.vegaprotocol.io/dustflow/api/rest"
	"code.vegaprotocol.io/dustflow/config"
	"code.vegaprotocol.io/dustflow/core/protocol"
	"code.vegaprotocol.io/dustflow/logging"
	"code.vegaprotocol.io/dustflow/metrics"

	"github.com/jessevdk/go-flags"
)

type NodeCmd struct {
	config.HomeFlag

	config.Config
}

var nodeCmd NodeCmd

func (cmd *NodeCmd) Execute(_ []string) error {
	log := logging.NewLoggerFromConfig(
		logging.NewDefaultConfig(),
	)
	defer log.AtExit()

	// we define this option to parse the cli args each time the config is
	// loaded. So that we can respect the cli flag precedence.
	parseFlagOpt := func(cfg *config.Config) error {
		_, err := flags.NewParser(cfg, flags.Default|flags.IgnoreUnknown).Parse()
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	home := cmd.Path()
	confWatcher, err := config.NewWatcher(ctx, log, home, config.Use(parseFlagOpt))
	if err != nil {
		return err
	}
	cfg := confWatcher.Get()

	node, err := protocol.New(ctx, log, cfg, home)
	if err != nil {
		return err
	}
	node.Watch(confWatcher)

	metrics.Start(ctx, log, cfg.Metrics)
	node.Start(ctx)

	api := rest.New(log, cfg.API, node)
	confWatcher.OnConfigUpdate(func(cfg config.Config) { api.ReloadConf(cfg.API) })
	if cfg.API.Enabled {
		go func() {
			if err := api.Start(); err != nil {
				log.Error("REST API server stopped", logging.Error(err))
				cancel()
			}
		}()
	}

	waitSig(ctx, log)

	if err := api.Stop(); err != nil {
		log.Error("error stopping REST API server", logging.Error(err))
	}
	cancel()
	<-node.Done()

	// the processor is stopped, the snapshot holds every committed transaction.
	if m, err := node.Snapshot(context.Background()); err != nil {
		log.Error("could not save the state", logging.Error(err))
	} else {
		log.Info("state saved", logging.Uint64("version", m.Version), logging.String("hash", m.Hash))
	}
	return node.Stop()
}

// waitSig will wait for a sigterm or sigint interrupt.
func waitSig(ctx context.Context, log *logging.Logger) {
	gracefulStop := make(chan os.Signal, 1)
	signal.Notify(gracefulStop, syscall.SIGTERM)
	signal.Notify(gracefulStop, syscall.SIGINT)

	select {
	case sig := <-gracefulStop:
		log.Info("Caught signal", logging.String("name", fmt.Sprintf("%+v", sig)))
	case <-ctx.Done():
		// nothing to do
	}
}

func Node(ctx context.Context, parser *flags.Parser) error {
	nodeCmd = NodeCmd{
		Config: config.NewDefaultConfig(),
	}
	cmd, err := parser.AddCommand("node", "Runs a dustflow node", "Runs a dustflow node as defined by the config files", &nodeCmd)
	if err != nil {
		return err
	}

	// Print nested groups under parent's name using `::` as the separator.
	for _, parent := range cmd.Groups() {
		for _, grp := range parent.Groups() {
			grp.ShortDescription = parent.ShortDescription + "::" + grp.ShortDescription
		}
	}
	return nil
}
