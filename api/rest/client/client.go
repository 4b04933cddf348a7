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

package client

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"code.vegaprotocol.io/dustflow/api/rest"
	"code.vegaprotocol.io/dustflow/core/helper"
	"code.vegaprotocol.io/dustflow/core/processor"
	"code.vegaprotocol.io/dustflow/core/types"
	vgcrypto "code.vegaprotocol.io/dustflow/libs/crypto"
	"code.vegaprotocol.io/dustflow/libs/num"

	"github.com/cenkalti/backoff/v4"
	uuid "github.com/satori/go.uuid"
)

const (
	// use default address of the REST API
	defaultAddress = "http://127.0.0.1:3008"
	defaultRetries = 5
	// how long a signed request stays valid
	defaultExpiry = 30 * time.Second
)

// Error is a non 2xx answer of the API.
type Error struct {
	Status  int
	Message string
	Receipt *processor.Receipt
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

type Client struct {
	clt     *http.Client
	base    *url.URL
	key     *ecdsa.PrivateKey
	retries uint64
	chainID string
	expiry  time.Duration
}

type Option func(c *Client)

// WithRetries sets how many times a request failing at the transport
// level is retried.
func WithRetries(n uint64) Option {
	return func(c *Client) {
		c.retries = n
	}
}

// WithChainID sets the chain id of the node the transactions are signed for.
func WithChainID(id string) Option {
	return func(c *Client) {
		c.chainID = id
	}
}

func WithHTTPClient(clt *http.Client) Option {
	return func(c *Client) {
		c.clt = clt
	}
}

// New creates a client of the API at addr, the key signs the transactions
// and can be nil for a read only client.
func New(addr string, key *ecdsa.PrivateKey, opts ...Option) (*Client, error) {
	base, err := url.Parse(addr)
	if err != nil {
		return nil, err
	}
	c := &Client{
		clt:     &http.Client{Timeout: 30 * time.Second},
		base:    base,
		key:     key,
		retries: defaultRetries,
		chainID: rest.DefaultChainID,
		expiry:  defaultExpiry,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

func NewDefault(key *ecdsa.PrivateKey) (*Client, error) {
	return New(defaultAddress, key)
}

// Address is the caller identity of the transactions sent by this client.
func (c *Client) Address() types.Address {
	if c.key == nil {
		return types.ZeroAddress
	}
	return vgcrypto.KeyAddress(c.key)
}

func (c *Client) SetMarketConfig(ctx context.Context, marketID uint64, duration time.Duration, asset types.Address) (*processor.Receipt, error) {
	req := rest.SetMarketConfigRequest{
		MarketID:          marketID,
		SettlementSeconds: uint64(duration / time.Second),
		CollateralAsset:   asset,
	}
	return c.tx(ctx, http.MethodPost, "/api/v1/governance/config", req)
}

func (c *Client) GetMarketConfig(ctx context.Context, marketID uint64) (types.MarketConfig, error) {
	cfg := types.MarketConfig{}
	err := c.get(ctx, fmt.Sprintf("/api/v1/governance/config/%d", marketID), &cfg)
	return cfg, err
}

func (c *Client) ChangeCollateral(ctx context.Context, marketID uint64, asset types.Address) (*processor.Receipt, error) {
	return c.tx(ctx, http.MethodPost, fmt.Sprintf("/api/v1/governance/config/%d/collateral", marketID), rest.AddressRequest{Address: asset})
}

func (c *Client) ChangeSettlementDuration(ctx context.Context, marketID uint64, duration time.Duration) (*processor.Receipt, error) {
	req := rest.DurationRequest{SettlementSeconds: uint64(duration / time.Second)}
	return c.tx(ctx, http.MethodPost, fmt.Sprintf("/api/v1/governance/config/%d/duration", marketID), req)
}

func (c *Client) ChangeQuoteAsset(ctx context.Context, asset types.Address) (*processor.Receipt, error) {
	return c.tx(ctx, http.MethodPost, "/api/v1/governance/quote-asset", rest.AddressRequest{Address: asset})
}

func (c *Client) TransferOwnership(ctx context.Context, newOwner types.Address) (*processor.Receipt, error) {
	return c.tx(ctx, http.MethodPost, "/api/v1/governance/owner", rest.AddressRequest{Address: newOwner})
}

func (c *Client) Governance(ctx context.Context) (*rest.GovernanceResponse, error) {
	out := &rest.GovernanceResponse{}
	if err := c.get(ctx, "/api/v1/governance", out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ChangeDustFlowFactory(ctx context.Context, factory types.Address) (*processor.Receipt, error) {
	return c.tx(ctx, http.MethodPost, "/api/v1/governance/factory", rest.AddressRequest{Address: factory})
}

func (c *Client) CreateMarket(ctx context.Context) (*processor.Receipt, error) {
	return c.tx(ctx, http.MethodPost, "/api/v1/markets", struct{}{})
}

func (c *Client) Markets(ctx context.Context) ([]types.MarketRecord, error) {
	out := []types.MarketRecord{}
	err := c.get(ctx, "/api/v1/markets", &out)
	return out, err
}

func (c *Client) MarketSummary(ctx context.Context, marketID uint64) (*helper.MarketSummary, error) {
	out := &helper.MarketSummary{}
	if err := c.get(ctx, fmt.Sprintf("/api/v1/markets/%d", marketID), out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) PutTrade(ctx context.Context, marketID uint64, side types.Side, amount, price *num.Uint) (*processor.Receipt, error) {
	req := rest.TradeRequest{Side: side, Amount: amount, Price: price}
	return c.tx(ctx, http.MethodPost, fmt.Sprintf("/api/v1/markets/%d/orders", marketID), req)
}

func (c *Client) MatchTrade(ctx context.Context, marketID uint64, side types.Side, amount, price *num.Uint, orderIDs []uint64) (*processor.Receipt, error) {
	req := rest.MatchRequest{Side: side, Amount: amount, Price: price, OrderIDs: orderIDs}
	return c.tx(ctx, http.MethodPost, fmt.Sprintf("/api/v1/markets/%d/match", marketID), req)
}

func (c *Client) GetOrder(ctx context.Context, marketID, orderID uint64) (*types.Order, error) {
	out := &types.Order{}
	if err := c.get(ctx, fmt.Sprintf("/api/v1/markets/%d/orders/%d", marketID, orderID), out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CancelTrade(ctx context.Context, marketID, orderID uint64) (*processor.Receipt, error) {
	return c.tx(ctx, http.MethodDelete, fmt.Sprintf("/api/v1/markets/%d/orders/%d", marketID, orderID), struct{}{})
}

func (c *Client) InitializeVault(ctx context.Context, asset types.Address) (*processor.Receipt, error) {
	return c.tx(ctx, http.MethodPost, "/api/v1/vault/initialize", rest.AddressRequest{Address: asset})
}

func (c *Client) MintDust(ctx context.Context, amount *num.Uint) (*processor.Receipt, error) {
	return c.tx(ctx, http.MethodPost, "/api/v1/vault/mint", rest.AmountRequest{Amount: amount})
}

func (c *Client) Redeem(ctx context.Context, amount *num.Uint) (*processor.Receipt, error) {
	return c.tx(ctx, http.MethodPost, "/api/v1/vault/redeem", rest.AmountRequest{Amount: amount})
}

func (c *Client) ClaimYield(ctx context.Context) (*processor.Receipt, error) {
	return c.tx(ctx, http.MethodPost, "/api/v1/vault/claim", struct{}{})
}

func (c *Client) VaultSummary(ctx context.Context) (*helper.VaultSummary, error) {
	out := &helper.VaultSummary{}
	if err := c.get(ctx, "/api/v1/vault", out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Approve(ctx context.Context, asset, spender types.Address, amount *num.Uint) (*processor.Receipt, error) {
	req := rest.ApproveRequest{Spender: spender, Amount: amount}
	return c.tx(ctx, http.MethodPost, fmt.Sprintf("/api/v1/assets/%s/approve", asset.Hex()), req)
}

func (c *Client) Transfer(ctx context.Context, asset, to types.Address, amount *num.Uint) (*processor.Receipt, error) {
	req := rest.TransferRequest{To: to, Amount: amount}
	return c.tx(ctx, http.MethodPost, fmt.Sprintf("/api/v1/assets/%s/transfer", asset.Hex()), req)
}

func (c *Client) Assets(ctx context.Context) ([]rest.AssetResponse, error) {
	out := []rest.AssetResponse{}
	err := c.get(ctx, "/api/v1/assets", &out)
	return out, err
}

func (c *Client) Balance(ctx context.Context, asset, account types.Address) (*num.Uint, error) {
	out := rest.BalanceResponse{}
	if err := c.get(ctx, fmt.Sprintf("/api/v1/assets/%s/balances/%s", asset.Hex(), account.Hex()), &out); err != nil {
		return nil, err
	}
	return out.Balance, nil
}

func (c *Client) Receipt(ctx context.Context, txID string) (*processor.Receipt, error) {
	out := &processor.Receipt{}
	if err := c.get(ctx, "/api/v1/receipts/"+txID, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Events returns up to limit of the latest events the node kept, of the
// types given or all of them.
func (c *Client) Events(ctx context.Context, limit int, evtTypes ...string) ([]rest.EventResponse, error) {
	q := url.Values{}
	for _, t := range evtTypes {
		q.Add("type", t)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	p := "/api/v1/events"
	if len(q) > 0 {
		p += "?" + q.Encode()
	}
	out := []rest.EventResponse{}
	if err := c.get(ctx, p, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) tx(ctx context.Context, method, p string, body interface{}) (*processor.Receipt, error) {
	if c.key == nil {
		return nil, fmt.Errorf("a key is required to send transactions")
	}
	jbytes, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	nonce := uuid.NewV4().String()
	expiry := time.Now().Add(c.expiry).Unix()
	u := c.endpoint(p)
	sig, err := vgcrypto.Sign(c.key, rest.SigningPayload(c.chainID, method, u.Path, nonce, expiry, jbytes))
	if err != nil {
		return nil, err
	}
	headers := map[string]string{
		rest.SignatureHeader: sig,
		rest.AddressHeader:   c.Address().Hex(),
		rest.NonceHeader:     nonce,
		rest.ExpiryHeader:    strconv.FormatInt(expiry, 10),
	}
	out := rest.TxResponse{}
	err = c.do(ctx, method, p, jbytes, headers, &out)
	var apiErr *Error
	if err != nil && asError(err, &apiErr) {
		return apiErr.Receipt, err
	}
	return out.Receipt, err
}

func (c *Client) get(ctx context.Context, p string, out interface{}) error {
	return c.do(ctx, http.MethodGet, p, nil, nil, out)
}

// do sends the request, only transport failures are retried: an answer
// from the API, successful or not, is final.
func (c *Client) do(ctx context.Context, method, p string, body []byte, headers map[string]string, out interface{}) error {
	u := c.endpoint(p)

	var (
		status  int
		resbody []byte
	)
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, method, u.String(), bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Add("Content-Type", "application/json")
		for k, v := range headers {
			req.Header.Add(k, v)
		}
		res, err := c.clt.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return err
		}
		defer res.Body.Close()
		resbody, err = io.ReadAll(res.Body)
		if err != nil {
			return err
		}
		status = res.StatusCode
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.retries), ctx,
	)
	if err := backoff.Retry(op, policy); err != nil {
		return err
	}

	if status < 200 || status > 299 {
		herr := rest.HTTPError{}
		if err := json.Unmarshal(resbody, &herr); err != nil {
			return &Error{Status: status, Message: string(resbody)}
		}
		return &Error{Status: status, Message: herr.ErrorStr, Receipt: herr.Receipt}
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(resbody, out)
}

func (c *Client) endpoint(p string) url.URL {
	u := *c.base
	if i := strings.IndexByte(p, '?'); i >= 0 {
		u.RawQuery = p[i+1:]
		p = p[:i]
	}
	u.Path = path.Join(u.Path, p)
	return u
}

func asError(err error, target **Error) bool {
	e, ok := err.(*Error)
	if ok {
		*target = e
	}
	return ok
}
