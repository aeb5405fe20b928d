// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	v1 "github.com/powledger/ledger/business/web/v1"
	"github.com/powledger/ledger/foundation/blockchain/database"
	"github.com/powledger/ledger/foundation/blockchain/state"
	"github.com/powledger/ledger/foundation/events"
	"github.com/powledger/ledger/foundation/nameservice"
	"github.com/powledger/ledger/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of ledger endpoints.
type Handlers struct {
	Log       *zap.SugaredLogger
	State     *state.State
	NS        *nameservice.NameService
	WS        websocket.Upgrader
	Evts      *events.Events
	MinerName string
}

// CheckOrigin returns a websocket origin check that accepts requests without
// an Origin header and requests from one of the allowed origins.
func CheckOrigin(origins []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, allowed := range origins {
			if allowed == "*" || strings.EqualFold(allowed, origin) {
				return true
			}
		}
		return false
	}
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	// The upgrade wrote the response.
	v.StatusCode = http.StatusSwitchingProtocols

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return nil
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// SubmitTransaction admits a new transaction into the pending pool.
func (h Handlers) SubmitTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var req submitTx
	if err := web.Decode(r, &req); err != nil {
		return v1.NewRequestError(err, http.StatusBadRequest)
	}

	dbTx := database.NewTx(req.Sender, req.Receiver, req.Amount)

	h.Log.Infow("submit tran", "traceid", v.TraceID, "id", dbTx.ID, "sender", dbTx.Sender, "receiver", dbTx.Receiver, "amount", dbTx.Amount)
	if err := h.State.SubmitTransaction(dbTx); err != nil {
		return v1.NewRequestError(err, http.StatusBadRequest)
	}

	return web.Respond(ctx, w, toTx(h.NS, dbTx), http.StatusCreated)
}

// MineBlock seals the pending transactions into a new block. The reward goes
// to the miner in the request or the node's miner when none is provided.
func (h Handlers) MineBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var req mineReq
	if err := web.Decode(r, &req); err != nil && !errors.Is(err, io.EOF) {
		return v1.NewRequestError(err, http.StatusBadRequest)
	}

	miner := req.Miner
	if miner == "" {
		miner = h.MinerName
	}

	h.Log.Infow("mine block", "traceid", v.TraceID, "miner", miner)

	dbBlock, err := h.State.MineNewBlock(miner)
	if err != nil {
		if state.IsStorageError(err) {
			return v1.NewRequestError(fmt.Errorf("block %d mined but not saved: %w", dbBlock.Index, err), http.StatusInternalServerError)
		}
		return err
	}

	return web.Respond(ctx, w, toBlock(h.NS, dbBlock), http.StatusOK)
}

// Blocks returns every block in the chain.
func (h Handlers) Blocks(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	dbBlocks := h.State.RetrieveChain()

	blocks := make([]block, len(dbBlocks))
	for i, dbBlock := range dbBlocks {
		blocks[i] = toBlock(h.NS, dbBlock)
	}

	return web.Respond(ctx, w, blocks, http.StatusOK)
}

// Block returns the block at the specified index.
func (h Handlers) Block(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	index, err := blockIndex(r)
	if err != nil {
		return err
	}

	dbBlock, err := h.State.QueryBlock(index)
	if err != nil {
		if errors.Is(err, state.ErrBlockNotFound) {
			return v1.NewRequestError(err, http.StatusNotFound)
		}
		return err
	}

	return web.Respond(ctx, w, toBlock(h.NS, dbBlock), http.StatusOK)
}

// AuditBlock checks the proof of work of the block at the specified index.
func (h Handlers) AuditBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	index, err := blockIndex(r)
	if err != nil {
		return err
	}

	ok, err := h.State.AuditBlock(index)
	if err != nil {
		if errors.Is(err, state.ErrBlockNotFound) {
			return v1.NewRequestError(err, http.StatusNotFound)
		}
		return err
	}

	return web.Respond(ctx, w, audit{Index: index, Valid: ok}, http.StatusOK)
}

// Mempool returns the set of uncommitted transactions.
func (h Handlers) Mempool(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, toTrans(h.NS, h.State.RetrieveMempool()), http.StatusOK)
}

// Transactions returns the confirmed transactions, optionally only those
// involving the identity in the path.
func (h Handlers) Transactions(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	identity := web.Param(r, "identity")
	return web.Respond(ctx, w, toTrans(h.NS, h.State.QueryTransactions(identity)), http.StatusOK)
}

// Balance returns the spendable balance for the identity.
func (h Handlers) Balance(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	identity := web.Param(r, "identity")

	bal := balance{
		Identity: identity,
		Name:     name(h.NS, identity),
		Balance:  h.State.QueryBalance(identity),
	}

	return web.Respond(ctx, w, bal, http.StatusOK)
}

// Valid reports whether the chain passes validation.
func (h Handlers) Valid(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, valid{Valid: h.State.IsValid()}, http.StatusOK)
}

// Status returns a summary of the ledger.
func (h Handlers) Status(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.Status(), http.StatusOK)
}

// =============================================================================

func blockIndex(r *http.Request) (uint64, error) {
	index, err := strconv.ParseUint(web.Param(r, "index"), 10, 64)
	if err != nil {
		return 0, v1.NewRequestError(fmt.Errorf("invalid block index: %w", err), http.StatusBadRequest)
	}
	return index, nil
}
