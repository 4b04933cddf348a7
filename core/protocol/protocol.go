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

package protocol

import (
	"context"

	"code.vegaprotocol.io/dustflow/config"
	"code.vegaprotocol.io/dustflow/core/broker"
	"code.vegaprotocol.io/dustflow/core/processor"
	"code.vegaprotocol.io/dustflow/core/snapshot"
	"code.vegaprotocol.io/dustflow/logging"
	"code.vegaprotocol.io/dustflow/version"
)

// Protocol is a node: the engines deployed from the genesis and the
// processor executing the transactions against them.
type Protocol struct {
	log *logging.Logger

	confWatcher     *config.Watcher
	confListenerIDs []int

	services *allServices
}

func New(
	ctx context.Context,
	log *logging.Logger,
	cfg config.Config,
	home string,
) (p *Protocol, err error) {
	defer func() {
		if err != nil {
			log.Error("unable to start protocol", logging.Error(err))
		}
	}()

	svcs, err := newServices(ctx, log, cfg, home)
	if err != nil {
		return nil, err
	}

	return &Protocol{
		log:      log,
		services: svcs,
	}, nil
}

// Watch reloads the engines configuration each time the watcher loads a new one.
func (n *Protocol) Watch(w *config.Watcher) {
	n.confWatcher = w
	n.confListenerIDs = w.OnConfigUpdateWithID(
		func(cfg config.Config) { n.services.processor.ReloadConf(cfg.Processor) },
		func(cfg config.Config) {
			n.services.processor.Exclusive(func() { n.services.reloadEngines(cfg) })
		},
	)
}

// Start will start the protocol, this means it's ready to execute
// transactions until ctx is cancelled.
func (n *Protocol) Start(ctx context.Context) {
	n.log.Info("starting protocol", logging.String("version", version.Get()))
	n.services.processor.Start(ctx)
}

// Done is closed once the protocol stopped executing transactions.
func (n *Protocol) Done() <-chan struct{} {
	return n.services.processor.Done()
}

// Stop will stop all services of the protocol.
func (n *Protocol) Stop() error {
	n.log.Info("Stopping protocol services")
	if n.confWatcher != nil {
		n.confWatcher.Unregister(n.confListenerIDs)
	}
	n.services.Stop()
	return nil
}

// Snapshot persists the state of every engine.
func (n *Protocol) Snapshot(ctx context.Context) (m *snapshot.Manifest, err error) {
	n.services.processor.Exclusive(func() {
		m, err = n.services.snapshot.Snapshot(ctx)
	})
	return m, err
}

func (n *Protocol) GetBroker() *broker.Broker {
	return n.services.broker
}

func (n *Protocol) GetProcessor() *processor.Processor {
	return n.services.processor
}
