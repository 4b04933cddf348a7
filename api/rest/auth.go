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
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"code.vegaprotocol.io/dustflow/core/types"
	vgcrypto "code.vegaprotocol.io/dustflow/libs/crypto"
	"code.vegaprotocol.io/dustflow/logging"

	lru "github.com/hashicorp/golang-lru/v2"
)

// SigningPayload is the message a transaction request is signed over. It
// binds the signature to one node, one endpoint and one body.
func SigningPayload(chainID, method, path, nonce string, expiry int64, body []byte) []byte {
	buf := bytes.Buffer{}
	fmt.Fprintf(&buf, "%s\n%s %s\n%s\n%d\n", chainID, method, path, nonce, expiry)
	buf.Write(body)
	return buf.Bytes()
}

// nonces remembers the nonces of accepted requests until they expire.
// Only expired entries are ever evicted.
type nonces struct {
	mu    sync.Mutex
	size  int
	seen  *lru.Cache[string, time.Time]
	nowFn func() time.Time
}

func newNonces(size int) *nonces {
	if size <= 0 {
		size = 1
	}
	// use keeps the cache below size, it never evicts by itself.
	seen, _ := lru.New[string, time.Time](size)
	return &nonces{
		size:  size,
		seen:  seen,
		nowFn: time.Now,
	}
}

func (n *nonces) use(nonce string, expiry time.Time) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.seen.Contains(nonce) {
		return ErrNonceReplayed
	}
	now := n.nowFn()
	for n.seen.Len() >= n.size {
		_, exp, ok := n.seen.GetOldest()
		if !ok || !exp.Before(now) {
			return ErrTooManyRequests
		}
		n.seen.RemoveOldest()
	}
	n.seen.Add(nonce, expiry)
	return nil
}

// authenticate returns the signer of the request.
func (s *Server) authenticate(r *http.Request, name string, body []byte) (types.Address, int, error) {
	sig := r.Header.Get(SignatureHeader)
	if len(sig) == 0 {
		return types.ZeroAddress, http.StatusUnauthorized, ErrMissingSignature
	}
	claimed, err := types.AddressFromString(r.Header.Get(AddressHeader))
	if err != nil {
		return types.ZeroAddress, http.StatusUnauthorized, ErrInvalidSignature
	}
	nonce, rawExpiry := r.Header.Get(NonceHeader), r.Header.Get(ExpiryHeader)
	if len(nonce) == 0 || len(rawExpiry) == 0 {
		return types.ZeroAddress, http.StatusUnauthorized, ErrMissingNonce
	}
	secs, err := strconv.ParseInt(rawExpiry, 10, 64)
	if err != nil {
		return types.ZeroAddress, http.StatusUnauthorized, ErrMissingNonce
	}
	expiry := time.Unix(secs, 0)
	now := s.nonces.nowFn()
	if expiry.Before(now) || expiry.After(now.Add(s.cfg.SignatureWindow.Get())) {
		return types.ZeroAddress, http.StatusUnauthorized, ErrRequestExpired
	}

	payload := SigningPayload(s.cfg.ChainID, r.Method, r.URL.Path, nonce, secs, body)
	signer, err := vgcrypto.RecoverSigner(payload, sig)
	if err != nil || signer != claimed {
		s.log.Debug("invalid signature",
			logging.String("request", name),
			logging.Address("claimed", claimed),
			logging.Error(err),
		)
		return types.ZeroAddress, http.StatusUnauthorized, ErrInvalidSignature
	}
	// the nonce is only recorded once the signature is known to be valid.
	if err := s.nonces.use(signer.Hex()+"/"+nonce, expiry); err != nil {
		status := http.StatusUnauthorized
		if err == ErrTooManyRequests {
			status = http.StatusServiceUnavailable
		}
		return types.ZeroAddress, status, err
	}
	return types.Address(signer), 0, nil
}
