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

package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"code.vegaprotocol.io/dustflow/core/events"
	"code.vegaprotocol.io/dustflow/core/helper"
	"code.vegaprotocol.io/dustflow/core/processor"
	"code.vegaprotocol.io/dustflow/core/types"
	vgcontext "code.vegaprotocol.io/dustflow/libs/context"
	"code.vegaprotocol.io/dustflow/libs/num"
	"code.vegaprotocol.io/dustflow/logging"
	"code.vegaprotocol.io/dustflow/metrics"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
)

// Protocol is the node the API is a surface of. Every mutating call is a
// transaction executed by the processor and returns its receipt.
//
//go:generate go run github.com/golang/mock/mockgen -destination mocks/protocol_mock.go -package mocks code.vegaprotocol.io/dustflow/api/rest Protocol
type Protocol interface {
	SetMarketConfig(ctx context.Context, caller types.Address, marketID uint64, duration time.Duration, asset types.Address) (*processor.Receipt, error)
	ChangeCollateral(ctx context.Context, caller types.Address, marketID uint64, asset types.Address) (*processor.Receipt, error)
	ChangeSettlementDuration(ctx context.Context, caller types.Address, marketID uint64, duration time.Duration) (*processor.Receipt, error)
	ChangeDustFlowFactory(ctx context.Context, caller, factory types.Address) (*processor.Receipt, error)
	ChangeQuoteAsset(ctx context.Context, caller, asset types.Address) (*processor.Receipt, error)
	TransferOwnership(ctx context.Context, caller, newOwner types.Address) (*processor.Receipt, error)
	CreateMarket(ctx context.Context, caller types.Address) (*processor.Receipt, error)
	PutTrade(ctx context.Context, caller types.Address, marketID uint64, side types.Side, amount, price *num.Uint) (*processor.Receipt, error)
	MatchTrade(ctx context.Context, caller types.Address, marketID uint64, side types.Side, amount, price *num.Uint, orderIDs []uint64) (*processor.Receipt, error)
	CancelTrade(ctx context.Context, caller types.Address, marketID, orderID uint64) (*processor.Receipt, error)
	InitializeVault(ctx context.Context, caller, asset types.Address) (*processor.Receipt, error)
	MintDust(ctx context.Context, caller types.Address, amount *num.Uint) (*processor.Receipt, error)
	Redeem(ctx context.Context, caller types.Address, amount *num.Uint) (*processor.Receipt, error)
	ClaimYield(ctx context.Context, caller types.Address) (*processor.Receipt, error)
	Approve(ctx context.Context, caller, asset, spender types.Address, amount *num.Uint) (*processor.Receipt, error)
	Transfer(ctx context.Context, caller, asset, to types.Address, amount *num.Uint) (*processor.Receipt, error)

	GovernanceInfo() (*GovernanceResponse, error)
	GetMarketConfig(marketID uint64) (types.MarketConfig, error)
	Markets() ([]types.MarketRecord, error)
	MarketSummary(marketID uint64) (*helper.MarketSummary, error)
	GetOrder(marketID, orderID uint64) (*types.Order, error)
	VaultSummary() (*helper.VaultSummary, error)
	Assets() ([]AssetResponse, error)
	Balance(asset, account types.Address) (*num.Uint, error)
	Receipt(txID string) (*processor.Receipt, bool)
	RecentEvents(filter func(events.Event) bool) []events.Event
	SubscribeEvents(ctx context.Context, evtTypes []events.Type) (<-chan []events.Event, func())
}

type Server struct {
	*httprouter.Router

	log    *logging.Logger
	cfg    Config
	proto  Protocol
	nonces *nonces
	s      *http.Server

	// done is closed on Stop so event streams do not hold the shutdown.
	done     chan struct{}
	stopOnce sync.Once
}

func New(log *logging.Logger, cfg Config, proto Protocol) *Server {
	log = log.Named(namedLogger)
	log.SetLevel(cfg.Level.Get())

	s := &Server{
		Router: httprouter.New(),
		log:    log,
		cfg:    cfg,
		proto:  proto,
		nonces: newNonces(cfg.NonceCacheSize),
		done:   make(chan struct{}),
	}

	s.GET("/api/v1/governance", s.handle("get_governance", s.GetGovernance))
	s.POST("/api/v1/governance/config", s.signed("set_market_config", s.SetMarketConfig))
	s.GET("/api/v1/governance/config/:id", s.handle("get_market_config", s.GetMarketConfig))
	s.POST("/api/v1/governance/config/:id/collateral", s.signed("change_collateral", s.ChangeCollateral))
	s.POST("/api/v1/governance/config/:id/duration", s.signed("change_settlement_duration", s.ChangeSettlementDuration))
	s.POST("/api/v1/governance/factory", s.signed("change_factory", s.ChangeDustFlowFactory))
	s.POST("/api/v1/governance/quote-asset", s.signed("change_quote_asset", s.ChangeQuoteAsset))
	s.POST("/api/v1/governance/owner", s.signed("transfer_ownership", s.TransferOwnership))
	s.POST("/api/v1/markets", s.signed("create_market", s.CreateMarket))
	s.GET("/api/v1/markets", s.handle("list_markets", s.ListMarkets))
	s.GET("/api/v1/markets/:id", s.handle("get_market", s.GetMarket))
	s.POST("/api/v1/markets/:id/orders", s.signed("put_trade", s.PutTrade))
	s.POST("/api/v1/markets/:id/match", s.signed("match_trade", s.MatchTrade))
	s.GET("/api/v1/markets/:id/orders/:order", s.handle("get_order", s.GetOrder))
	s.DELETE("/api/v1/markets/:id/orders/:order", s.signed("cancel_trade", s.CancelTrade))
	s.POST("/api/v1/vault/initialize", s.signed("initialize", s.InitializeVault))
	s.POST("/api/v1/vault/mint", s.signed("mint_dust", s.MintDust))
	s.POST("/api/v1/vault/redeem", s.signed("redeem", s.Redeem))
	s.POST("/api/v1/vault/claim", s.signed("claim_yield", s.ClaimYield))
	s.GET("/api/v1/vault", s.handle("get_vault", s.GetVault))
	s.GET("/api/v1/assets", s.handle("list_assets", s.ListAssets))
	s.POST("/api/v1/assets/:asset/approve", s.signed("approve", s.Approve))
	s.POST("/api/v1/assets/:asset/transfer", s.signed("transfer", s.Transfer))
	s.GET("/api/v1/assets/:asset/balances/:account", s.handle("get_balance", s.GetBalance))
	s.GET("/api/v1/receipts/:tx", s.handle("get_receipt", s.GetReceipt))
	s.GET("/api/v1/events", s.ListEvents)
	s.GET("/api/v1/events/stream", s.StreamEvents)
	return s
}

// ReloadConf updates the internal configuration.
func (s *Server) ReloadConf(cfg Config) {
	s.log.Info("reloading configuration")
	if s.log.GetLevel() != cfg.Level.Get() {
		s.log.Info("updating log level",
			logging.String("old", s.log.GetLevel().String()),
			logging.String("new", cfg.Level.String()),
		)
		s.log.SetLevel(cfg.Level.Get())
	}
}

// Handler returns the router wrapped with the CORS middleware.
func (s *Server) Handler() http.Handler {
	if len(s.cfg.AllowedOrigins) == 0 {
		return cors.AllowAll().Handler(s)
	}
	return cors.New(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type", SignatureHeader, AddressHeader, NonceHeader, ExpiryHeader},
	}).Handler(s)
}

func (s *Server) Start() error {
	s.s = &http.Server{
		Addr:              fmt.Sprintf("%s:%v", s.cfg.IP, s.cfg.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.log.Info("starting REST API server", logging.String("address", s.s.Addr))
	if err := s.s.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Stop() error {
	s.stopOnce.Do(func() { close(s.done) })
	if s.s == nil {
		return nil
	}
	return s.s.Shutdown(context.Background())
}

type handlerFunc func(ctx context.Context, body []byte, ps httprouter.Params) (interface{}, int, error)

// handle serves a read, the caller is not authenticated.
func (s *Server) handle(name string, h handlerFunc) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		start := time.Now()
		defer func() { metrics.APIRequestAndTimeREST(name, time.Since(start).Seconds()) }()

		data, status, err := h(r.Context(), nil, ps)
		s.reply(w, name, data, status, err)
	}
}

// signed serves a transaction, the caller is the signer of the request.
func (s *Server) signed(name string, h handlerFunc) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		start := time.Now()
		defer func() { metrics.APIRequestAndTimeREST(name, time.Since(start).Seconds()) }()

		body, err := s.readBody(r)
		if err != nil {
			writeError(w, err, http.StatusBadRequest)
			return
		}
		caller, status, err := s.authenticate(r, name, body)
		if err != nil {
			writeError(w, err, status)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), s.cfg.RequestTimeout.Get())
		defer cancel()
		ctx = vgcontext.WithCaller(ctx, caller)

		data, status, err := h(ctx, body, ps)
		s.reply(w, name, data, status, err)
	}
}

func (s *Server) reply(w http.ResponseWriter, name string, data interface{}, status int, err error) {
	if err == nil {
		writeSuccess(w, data, status)
		return
	}
	if status == 0 {
		status = statusFor(err)
	}
	herr, ok := err.(HTTPError)
	if !ok {
		herr = newError(err.Error())
	}
	if r, ok := data.(*TxResponse); ok && r != nil {
		herr.Receipt = r.Receipt
	}
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", logging.String("request", name), logging.Error(err))
	}
	writeError(w, herr, status)
}

func (s *Server) readBody(r *http.Request) ([]byte, error) {
	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, s.cfg.MaxBodySize+1))
	if err != nil {
		return nil, ErrInvalidRequest
	}
	if int64(len(body)) > s.cfg.MaxBodySize {
		return nil, ErrBodyTooLarge
	}
	return body, nil
}

func callerFrom(ctx context.Context) types.Address {
	c, _ := vgcontext.CallerFromContext(ctx)
	return types.Address(c)
}

func txResult(r *processor.Receipt, err error) (interface{}, int, error) {
	resp := &TxResponse{Receipt: r}
	if err != nil {
		return resp, 0, err
	}
	return resp, http.StatusOK, nil
}

func (s *Server) SetMarketConfig(ctx context.Context, body []byte, _ httprouter.Params) (interface{}, int, error) {
	req := SetMarketConfigRequest{}
	if err := unmarshalBody(body, &req); err != nil {
		return nil, http.StatusBadRequest, err
	}
	duration := time.Duration(req.SettlementSeconds) * time.Second
	return txResult(s.proto.SetMarketConfig(ctx, callerFrom(ctx), req.MarketID, duration, req.CollateralAsset))
}

func (s *Server) GetMarketConfig(_ context.Context, _ []byte, ps httprouter.Params) (interface{}, int, error) {
	id, err := uintParam(ps, "id")
	if err != nil {
		return nil, http.StatusBadRequest, err
	}
	cfg, err := s.proto.GetMarketConfig(id)
	if err != nil {
		return nil, 0, err
	}
	return cfg, http.StatusOK, nil
}

func (s *Server) GetGovernance(_ context.Context, _ []byte, _ httprouter.Params) (interface{}, int, error) {
	info, err := s.proto.GovernanceInfo()
	if err != nil {
		return nil, 0, err
	}
	return info, http.StatusOK, nil
}

func (s *Server) ChangeCollateral(ctx context.Context, body []byte, ps httprouter.Params) (interface{}, int, error) {
	id, err := uintParam(ps, "id")
	if err != nil {
		return nil, http.StatusBadRequest, err
	}
	req := AddressRequest{}
	if err := unmarshalBody(body, &req); err != nil {
		return nil, http.StatusBadRequest, err
	}
	return txResult(s.proto.ChangeCollateral(ctx, callerFrom(ctx), id, req.Address))
}

func (s *Server) ChangeSettlementDuration(ctx context.Context, body []byte, ps httprouter.Params) (interface{}, int, error) {
	id, err := uintParam(ps, "id")
	if err != nil {
		return nil, http.StatusBadRequest, err
	}
	req := DurationRequest{}
	if err := unmarshalBody(body, &req); err != nil {
		return nil, http.StatusBadRequest, err
	}
	duration := time.Duration(req.SettlementSeconds) * time.Second
	return txResult(s.proto.ChangeSettlementDuration(ctx, callerFrom(ctx), id, duration))
}

func (s *Server) ChangeQuoteAsset(ctx context.Context, body []byte, _ httprouter.Params) (interface{}, int, error) {
	req := AddressRequest{}
	if err := unmarshalBody(body, &req); err != nil {
		return nil, http.StatusBadRequest, err
	}
	return txResult(s.proto.ChangeQuoteAsset(ctx, callerFrom(ctx), req.Address))
}

func (s *Server) TransferOwnership(ctx context.Context, body []byte, _ httprouter.Params) (interface{}, int, error) {
	req := AddressRequest{}
	if err := unmarshalBody(body, &req); err != nil {
		return nil, http.StatusBadRequest, err
	}
	return txResult(s.proto.TransferOwnership(ctx, callerFrom(ctx), req.Address))
}

func (s *Server) ChangeDustFlowFactory(ctx context.Context, body []byte, _ httprouter.Params) (interface{}, int, error) {
	req := AddressRequest{}
	if err := unmarshalBody(body, &req); err != nil {
		return nil, http.StatusBadRequest, err
	}
	return txResult(s.proto.ChangeDustFlowFactory(ctx, callerFrom(ctx), req.Address))
}

func (s *Server) CreateMarket(ctx context.Context, _ []byte, _ httprouter.Params) (interface{}, int, error) {
	return txResult(s.proto.CreateMarket(ctx, callerFrom(ctx)))
}

func (s *Server) ListMarkets(_ context.Context, _ []byte, _ httprouter.Params) (interface{}, int, error) {
	records, err := s.proto.Markets()
	if err != nil {
		return nil, 0, err
	}
	return records, http.StatusOK, nil
}

func (s *Server) GetMarket(_ context.Context, _ []byte, ps httprouter.Params) (interface{}, int, error) {
	id, err := uintParam(ps, "id")
	if err != nil {
		return nil, http.StatusBadRequest, err
	}
	summary, err := s.proto.MarketSummary(id)
	if err != nil {
		return nil, 0, err
	}
	return summary, http.StatusOK, nil
}

func (s *Server) PutTrade(ctx context.Context, body []byte, ps httprouter.Params) (interface{}, int, error) {
	id, err := uintParam(ps, "id")
	if err != nil {
		return nil, http.StatusBadRequest, err
	}
	req := TradeRequest{}
	if err := unmarshalBody(body, &req); err != nil {
		return nil, http.StatusBadRequest, err
	}
	if req.Amount == nil || req.Price == nil {
		return nil, http.StatusBadRequest, newError("amount and price are required")
	}
	return txResult(s.proto.PutTrade(ctx, callerFrom(ctx), id, req.Side, req.Amount, req.Price))
}

func (s *Server) MatchTrade(ctx context.Context, body []byte, ps httprouter.Params) (interface{}, int, error) {
	id, err := uintParam(ps, "id")
	if err != nil {
		return nil, http.StatusBadRequest, err
	}
	req := MatchRequest{}
	if err := unmarshalBody(body, &req); err != nil {
		return nil, http.StatusBadRequest, err
	}
	if req.Amount == nil || req.Price == nil {
		return nil, http.StatusBadRequest, newError("amount and price are required")
	}
	return txResult(s.proto.MatchTrade(ctx, callerFrom(ctx), id, req.Side, req.Amount, req.Price, req.OrderIDs))
}

func (s *Server) GetOrder(_ context.Context, _ []byte, ps httprouter.Params) (interface{}, int, error) {
	id, err := uintParam(ps, "id")
	if err != nil {
		return nil, http.StatusBadRequest, err
	}
	orderID, err := uintParam(ps, "order")
	if err != nil {
		return nil, http.StatusBadRequest, err
	}
	o, err := s.proto.GetOrder(id, orderID)
	if err != nil {
		return nil, 0, err
	}
	return o, http.StatusOK, nil
}

func (s *Server) CancelTrade(ctx context.Context, _ []byte, ps httprouter.Params) (interface{}, int, error) {
	id, err := uintParam(ps, "id")
	if err != nil {
		return nil, http.StatusBadRequest, err
	}
	orderID, err := uintParam(ps, "order")
	if err != nil {
		return nil, http.StatusBadRequest, err
	}
	return txResult(s.proto.CancelTrade(ctx, callerFrom(ctx), id, orderID))
}

func (s *Server) InitializeVault(ctx context.Context, body []byte, _ httprouter.Params) (interface{}, int, error) {
	req := AddressRequest{}
	if err := unmarshalBody(body, &req); err != nil {
		return nil, http.StatusBadRequest, err
	}
	return txResult(s.proto.InitializeVault(ctx, callerFrom(ctx), req.Address))
}

func (s *Server) MintDust(ctx context.Context, body []byte, _ httprouter.Params) (interface{}, int, error) {
	req := AmountRequest{}
	if err := unmarshalBody(body, &req); err != nil {
		return nil, http.StatusBadRequest, err
	}
	if req.Amount == nil {
		return nil, http.StatusBadRequest, newError("amount is required")
	}
	return txResult(s.proto.MintDust(ctx, callerFrom(ctx), req.Amount))
}

func (s *Server) Redeem(ctx context.Context, body []byte, _ httprouter.Params) (interface{}, int, error) {
	req := AmountRequest{}
	if err := unmarshalBody(body, &req); err != nil {
		return nil, http.StatusBadRequest, err
	}
	if req.Amount == nil {
		return nil, http.StatusBadRequest, newError("amount is required")
	}
	return txResult(s.proto.Redeem(ctx, callerFrom(ctx), req.Amount))
}

func (s *Server) ClaimYield(ctx context.Context, _ []byte, _ httprouter.Params) (interface{}, int, error) {
	return txResult(s.proto.ClaimYield(ctx, callerFrom(ctx)))
}

func (s *Server) GetVault(_ context.Context, _ []byte, _ httprouter.Params) (interface{}, int, error) {
	summary, err := s.proto.VaultSummary()
	if err != nil {
		return nil, 0, err
	}
	return summary, http.StatusOK, nil
}

func (s *Server) Approve(ctx context.Context, body []byte, ps httprouter.Params) (interface{}, int, error) {
	asset, err := addressParam(ps, "asset")
	if err != nil {
		return nil, http.StatusBadRequest, err
	}
	req := ApproveRequest{}
	if err := unmarshalBody(body, &req); err != nil {
		return nil, http.StatusBadRequest, err
	}
	if req.Amount == nil {
		return nil, http.StatusBadRequest, newError("amount is required")
	}
	return txResult(s.proto.Approve(ctx, callerFrom(ctx), asset, req.Spender, req.Amount))
}

func (s *Server) Transfer(ctx context.Context, body []byte, ps httprouter.Params) (interface{}, int, error) {
	asset, err := addressParam(ps, "asset")
	if err != nil {
		return nil, http.StatusBadRequest, err
	}
	req := TransferRequest{}
	if err := unmarshalBody(body, &req); err != nil {
		return nil, http.StatusBadRequest, err
	}
	if req.Amount == nil {
		return nil, http.StatusBadRequest, newError("amount is required")
	}
	return txResult(s.proto.Transfer(ctx, callerFrom(ctx), asset, req.To, req.Amount))
}

func (s *Server) ListAssets(_ context.Context, _ []byte, _ httprouter.Params) (interface{}, int, error) {
	list, err := s.proto.Assets()
	if err != nil {
		return nil, 0, err
	}
	return list, http.StatusOK, nil
}

func (s *Server) GetBalance(_ context.Context, _ []byte, ps httprouter.Params) (interface{}, int, error) {
	asset, err := addressParam(ps, "asset")
	if err != nil {
		return nil, http.StatusBadRequest, err
	}
	account, err := addressParam(ps, "account")
	if err != nil {
		return nil, http.StatusBadRequest, err
	}
	bal, err := s.proto.Balance(asset, account)
	if err != nil {
		return nil, http.StatusNotFound, err
	}
	return BalanceResponse{Asset: asset, Account: account, Balance: bal}, http.StatusOK, nil
}

func (s *Server) GetReceipt(_ context.Context, _ []byte, ps httprouter.Params) (interface{}, int, error) {
	r, ok := s.proto.Receipt(ps.ByName("tx"))
	if !ok {
		return nil, http.StatusNotFound, ErrNotFound
	}
	return r, http.StatusOK, nil
}

func uintParam(ps httprouter.Params, name string) (uint64, error) {
	v, err := strconv.ParseUint(ps.ByName(name), 10, 64)
	if err != nil {
		return 0, newError(fmt.Sprintf("invalid %s", name))
	}
	return v, nil
}

func addressParam(ps httprouter.Params, name string) (types.Address, error) {
	a, err := types.AddressFromString(ps.ByName(name))
	if err != nil {
		return types.Address{}, newError(fmt.Sprintf("invalid %s", name))
	}
	return a, nil
}

func unmarshalBody(body []byte, into interface{}) error {
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, into); err != nil {
		return ErrInvalidRequest
	}
	return nil
}

func writeError(w http.ResponseWriter, e error, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	buf, _ := json.Marshal(e)
	w.Write(buf)
}

func writeSuccess(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	buf, _ := json.Marshal(data)
	w.Write(buf)
}
