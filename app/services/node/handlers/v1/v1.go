// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/powledger/ledger/app/services/node/handlers/v1/public"
	"github.com/powledger/ledger/foundation/blockchain/state"
	"github.com/powledger/ledger/foundation/events"
	"github.com/powledger/ledger/foundation/nameservice"
	"github.com/powledger/ledger/foundation/web"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log       *zap.SugaredLogger
	State     *state.State
	NS        *nameservice.NameService
	Evts      *events.Events
	MinerName string
	Origins   []string
}

// Routes binds all the version 1 routes.
func Routes(app *web.App, cfg Config) {
	pbl := public.Handlers{
		Log:       cfg.Log,
		State:     cfg.State,
		NS:        cfg.NS,
		WS:        websocket.Upgrader{CheckOrigin: public.CheckOrigin(cfg.Origins)},
		Evts:      cfg.Evts,
		MinerName: cfg.MinerName,
	}

	app.Handle(http.MethodGet, version, "/events", pbl.Events)
	app.Handle(http.MethodGet, version, "/blocks", pbl.Blocks)
	app.Handle(http.MethodGet, version, "/blocks/:index", pbl.Block)
	app.Handle(http.MethodGet, version, "/blocks/:index/audit", pbl.AuditBlock)
	app.Handle(http.MethodPost, version, "/tx/submit", pbl.SubmitTransaction)
	app.Handle(http.MethodGet, version, "/tx/uncommitted/list", pbl.Mempool)
	app.Handle(http.MethodGet, version, "/tx/list", pbl.Transactions)
	app.Handle(http.MethodGet, version, "/tx/list/:identity", pbl.Transactions)
	app.Handle(http.MethodPost, version, "/mining/mine", pbl.MineBlock)
	app.Handle(http.MethodGet, version, "/balances/:identity", pbl.Balance)
	app.Handle(http.MethodGet, version, "/chain/valid", pbl.Valid)
	app.Handle(http.MethodGet, version, "/chain/status", pbl.Status)
}
