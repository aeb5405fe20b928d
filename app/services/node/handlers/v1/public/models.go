package public

import (
	"time"

	"github.com/powledger/ledger/foundation/blockchain/database"
	"github.com/powledger/ledger/foundation/nameservice"
)

// submitTx is the payload for submitting a transaction.
type submitTx struct {
	Sender   string `json:"sender" validate:"omitempty,max=128"`
	Receiver string `json:"receiver" validate:"omitempty,max=128"`
	Amount   uint64 `json:"amount"`
}

// mineReq is the optional payload for mining a block.
type mineReq struct {
	Miner string `json:"miner" validate:"omitempty,max=128"`
}

type tx struct {
	ID           string    `json:"id"`
	Sender       string    `json:"sender"`
	SenderName   string    `json:"sender_name,omitempty"`
	Receiver     string    `json:"receiver"`
	ReceiverName string    `json:"receiver_name,omitempty"`
	Amount       uint64    `json:"amount"`
	TimeStamp    time.Time `json:"timestamp"`
	Signature    string    `json:"signature"`
}

type block struct {
	Index        uint64    `json:"index"`
	TimeStamp    time.Time `json:"timestamp"`
	PrevHash     string    `json:"previous_hash"`
	Hash         string    `json:"hash"`
	Nonce        uint64    `json:"nonce"`
	Transactions []tx      `json:"transactions"`
}

type balance struct {
	Identity string `json:"identity"`
	Name     string `json:"name,omitempty"`
	Balance  uint64 `json:"balance"`
}

type audit struct {
	Index uint64 `json:"index"`
	Valid bool   `json:"valid"`
}

type valid struct {
	Valid bool `json:"valid"`
}

// =============================================================================

// name returns the display name only when it differs from the identity.
func name(ns *nameservice.NameService, identity string) string {
	if n := ns.Lookup(identity); n != identity {
		return n
	}
	return ""
}

func toTx(ns *nameservice.NameService, dbTx database.Tx) tx {
	return tx{
		ID:           dbTx.ID,
		Sender:       dbTx.Sender,
		SenderName:   name(ns, dbTx.Sender),
		Receiver:     dbTx.Receiver,
		ReceiverName: name(ns, dbTx.Receiver),
		Amount:       dbTx.Amount,
		TimeStamp:    dbTx.TimeStamp,
		Signature:    dbTx.Signature,
	}
}

func toTrans(ns *nameservice.NameService, dbTrans []database.Tx) []tx {
	trans := make([]tx, len(dbTrans))
	for i, dbTx := range dbTrans {
		trans[i] = toTx(ns, dbTx)
	}
	return trans
}

func toBlock(ns *nameservice.NameService, dbBlock database.Block) block {
	return block{
		Index:        dbBlock.Index,
		TimeStamp:    dbBlock.TimeStamp,
		PrevHash:     dbBlock.PrevHash,
		Hash:         dbBlock.Hash,
		Nonce:        dbBlock.Nonce,
		Transactions: toTrans(ns, dbBlock.Trans),
	}
}
