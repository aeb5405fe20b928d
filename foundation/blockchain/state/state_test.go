package state_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/powledger/ledger/foundation/blockchain/database"
	"github.com/powledger/ledger/foundation/blockchain/state"
	"github.com/powledger/ledger/foundation/blockchain/storage/memory"
	"github.com/powledger/ledger/foundation/logger"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func ifErrFailNow(t *testing.T, err error) {
	if err != nil {
		t.Error(err)
		t.FailNow()
	}
}

func newState(t *testing.T, difficulty uint, reward uint64, storage state.Storage) *state.State {
	log, err := logger.New("TEST")
	ifErrFailNow(t, err)
	t.Cleanup(func() { log.Sync() })

	ev := func(v string, args ...any) {
		log.Infow(fmt.Sprintf(v, args...), "traceid", "00000000-0000-0000-0000-000000000000")
	}

	st, err := state.New(state.Config{
		Difficulty:   difficulty,
		MiningReward: reward,
		Storage:      storage,
		EvHandler:    ev,
	})
	ifErrFailNow(t, err)

	return st
}

func restore(t *testing.T, snapshot database.Snapshot) *state.State {
	st, err := state.New(state.Config{Snapshot: &snapshot})
	ifErrFailNow(t, err)

	return st
}

// =============================================================================

func Test_GenesisIsValid(t *testing.T) {
	t.Log("Given the need to start with a valid genesis only ledger.")
	{
		for _, difficulty := range []uint{0, 1, 2, 5, 64} {
			st := newState(t, difficulty, 100, nil)

			chain := st.RetrieveChain()
			if len(chain) != 1 || chain[0].Index != 0 || chain[0].PrevHash != "0" || len(chain[0].Trans) != 0 {
				t.Fatalf("\t%s\tShould start with only the genesis block at difficulty %d.", failed, difficulty)
			}

			if !st.IsValid() {
				t.Fatalf("\t%s\tShould be valid at difficulty %d.", failed, difficulty)
			}
			t.Logf("\t%s\tShould be valid at difficulty %d.", success, difficulty)
		}
	}
}

func Test_Scenarios(t *testing.T) {
	t.Log("Given the need to admit transactions and mine blocks.")
	{
		st := newState(t, 1, 100, nil)

		t.Logf("\tTest 0:\tWhen nobody has a balance.")
		{
			err := st.SubmitTransaction(database.NewTx("alice", "bob", 50))
			ve := state.GetValidationError(err)
			if ve == nil || ve.Reason != state.ReasonInsufficientFunds || ve.Balance != 0 || ve.Amount != 50 {
				t.Fatalf("\t%s\tTest 0:\tShould reject alice for insufficient funds: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould reject alice for insufficient funds.", success)

			if n := len(st.RetrieveMempool()); n != 0 {
				t.Fatalf("\t%s\tTest 0:\tShould leave the pending pool empty, got %d.", failed, n)
			}
			t.Logf("\t%s\tTest 0:\tShould leave the pending pool empty.", success)

			block, err := st.MineNewBlock("miner")
			ifErrFailNow(t, err)

			if len(block.Trans) != 1 || !block.Trans[0].IsReward() || block.Trans[0].Receiver != "miner" || block.Trans[0].Amount != 100 {
				t.Fatalf("\t%s\tTest 0:\tShould mine a block with only the reward: %+v", failed, block.Trans)
			}
			t.Logf("\t%s\tTest 0:\tShould mine a block with only the reward.", success)

			if bal := st.QueryBalance("miner"); bal != 100 {
				t.Fatalf("\t%s\tTest 0:\tShould credit the miner 100, got %d.", failed, bal)
			}
			t.Logf("\t%s\tTest 0:\tShould credit the miner 100.", success)
		}

		t.Logf("\tTest 1:\tWhen the miner sends part of the reward.")
		{
			transfer := database.NewTx("miner", "bob", 40)
			if err := st.SubmitTransaction(transfer); err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould admit the transfer: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould admit the transfer.", success)

			if bal := st.QueryBalance("miner"); bal != 60 {
				t.Fatalf("\t%s\tTest 1:\tShould subtract the pending debit, got %d exp 60.", failed, bal)
			}
			t.Logf("\t%s\tTest 1:\tShould subtract the pending debit.", success)

			if bal := st.QueryBalance("bob"); bal != 0 {
				t.Fatalf("\t%s\tTest 1:\tShould not count the pending credit, got %d exp 0.", failed, bal)
			}
			t.Logf("\t%s\tTest 1:\tShould not count the pending credit.", success)

			block, err := st.MineNewBlock("miner2")
			ifErrFailNow(t, err)

			if len(block.Trans) != 2 || block.Trans[0].ID != transfer.ID || !block.Trans[1].IsReward() || block.Trans[1].Receiver != "miner2" {
				t.Fatalf("\t%s\tTest 1:\tShould mine the transfer followed by the reward: %+v", failed, block.Trans)
			}
			t.Logf("\t%s\tTest 1:\tShould mine the transfer followed by the reward.", success)

			exp := map[string]uint64{"miner": 60, "bob": 40, "miner2": 100}
			for identity, amount := range exp {
				if bal := st.QueryBalance(identity); bal != amount {
					t.Fatalf("\t%s\tTest 1:\tShould have balance %d for %s, got %d.", failed, amount, identity, bal)
				}
				t.Logf("\t%s\tTest 1:\tShould have balance %d for %s.", success, amount, identity)
			}

			if !st.IsValid() {
				t.Fatalf("\t%s\tTest 1:\tShould still be a valid chain.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould still be a valid chain.", success)
		}
	}
}

func Test_Validation(t *testing.T) {
	type table struct {
		name   string
		tx     database.Tx
		reason state.Reason
	}

	tt := []table{
		{name: "nosender", tx: database.NewTx("", "bob", 10), reason: state.ReasonMissingParty},
		{name: "noreceiver", tx: database.NewTx("miner", "", 10), reason: state.ReasonMissingParty},
		{name: "zeroamount", tx: database.NewTx("miner", "bob", 0), reason: state.ReasonInvalidAmount},
		{name: "overspend", tx: database.NewTx("miner", "bob", 101), reason: state.ReasonInsufficientFunds},
	}

	t.Log("Given the need to reject malformed and unaffordable transactions.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen handling a %s transaction.", testID, tst.name)
			{
				f := func(t *testing.T) {
					st := newState(t, 1, 100, nil)
					_, err := st.MineNewBlock("miner")
					ifErrFailNow(t, err)

					err = st.SubmitTransaction(tst.tx)
					if !state.IsValidationError(err) {
						t.Fatalf("\t%s\tTest %d:\tShould get a validation error: %v", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould get a validation error: %v", success, testID, err)

					if ve := state.GetValidationError(err); ve.Reason != tst.reason {
						t.Fatalf("\t%s\tTest %d:\tShould get reason %s, got %s.", failed, testID, tst.reason, ve.Reason)
					}
					t.Logf("\t%s\tTest %d:\tShould get reason %s.", success, testID, tst.reason)

					if n := len(st.RetrieveMempool()); n != 0 {
						t.Fatalf("\t%s\tTest %d:\tShould leave the pending pool unchanged, got %d.", failed, testID, n)
					}
					t.Logf("\t%s\tTest %d:\tShould leave the pending pool unchanged.", success, testID)
				}

				t.Run(tst.name, f)
			}
		}
	}
}

func Test_PendingOverspend(t *testing.T) {
	t.Log("Given the need to stop a batch of pending transactions from overspending.")
	{
		st := newState(t, 1, 100, nil)
		_, err := st.MineNewBlock("miner")
		ifErrFailNow(t, err)

		if err := st.SubmitTransaction(database.NewTx("miner", "bob", 60)); err != nil {
			t.Fatalf("\t%s\tShould admit the first transfer: %v", failed, err)
		}
		t.Logf("\t%s\tShould admit the first transfer.", success)

		err = st.SubmitTransaction(database.NewTx("miner", "ed", 50))
		if ve := state.GetValidationError(err); ve == nil || ve.Reason != state.ReasonInsufficientFunds || ve.Balance != 40 {
			t.Fatalf("\t%s\tShould reject the second transfer against the remaining 40: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject the second transfer against the remaining 40.", success)

		if err := st.SubmitTransaction(database.NewTx("miner", "ed", 40)); err != nil {
			t.Fatalf("\t%s\tShould admit a transfer of the remaining 40: %v", failed, err)
		}
		t.Logf("\t%s\tShould admit a transfer of the remaining 40.", success)

		if bal := st.QueryBalance("miner"); bal != 0 {
			t.Fatalf("\t%s\tShould have nothing left to spend, got %d.", failed, bal)
		}
		t.Logf("\t%s\tShould have nothing left to spend.", success)

		if n := len(st.RetrieveMempool()); n != 2 {
			t.Fatalf("\t%s\tShould have two pending transactions, got %d.", failed, n)
		}
		t.Logf("\t%s\tShould have two pending transactions.", success)
	}
}

func Test_ChainIntegrity(t *testing.T) {
	const blocks = 5
	const reward = 50

	t.Log("Given the need to keep the chain linked and value conserved.")
	{
		st := newState(t, 2, reward, nil)
		identities := []string{"bill", "pavel", "ed", "miner"}

		for i := 0; i < blocks; i++ {
			miner := identities[i%len(identities)]
			for j, sender := range identities {
				amount := st.QueryBalance(sender) / 2
				if amount == 0 {
					continue
				}
				receiver := identities[(j+1)%len(identities)]
				if err := st.SubmitTransaction(database.NewTx(sender, receiver, amount)); err != nil {
					t.Fatalf("\t%s\tShould admit an affordable transfer: %v", failed, err)
				}
			}

			_, err := st.MineNewBlock(miner)
			ifErrFailNow(t, err)
		}

		chain := st.RetrieveChain()
		for i := 1; i < len(chain); i++ {
			if chain[i].Hash != chain[i].Fingerprint() {
				t.Fatalf("\t%s\tShould have a recomputable hash for block %d.", failed, i)
			}
			if chain[i].PrevHash != chain[i-1].Hash {
				t.Fatalf("\t%s\tShould link block %d to its parent.", failed, i)
			}
			if chain[i].Index != uint64(i) {
				t.Fatalf("\t%s\tShould number block %d by its position.", failed, i)
			}
		}
		t.Logf("\t%s\tShould have every block hashed and linked.", success)

		if !st.IsValid() {
			t.Fatalf("\t%s\tShould be a valid chain.", failed)
		}
		t.Logf("\t%s\tShould be a valid chain.", success)

		var total uint64
		for _, identity := range identities {
			total += st.QueryBalance(identity)
		}
		if total != blocks*reward {
			t.Fatalf("\t%s\tShould conserve value, got %d exp %d.", failed, total, blocks*reward)
		}
		t.Logf("\t%s\tShould conserve value.", success)

		if n := len(st.QueryTransactions("")); n < blocks {
			t.Fatalf("\t%s\tShould return every confirmed transaction, got %d.", failed, n)
		}
		for _, tx := range st.QueryTransactions("bill") {
			if tx.Sender != "bill" && tx.Receiver != "bill" {
				t.Fatalf("\t%s\tShould only return transactions for bill: %s", failed, tx)
			}
		}
		t.Logf("\t%s\tShould query confirmed transactions.", success)
	}
}

func Test_TamperDetection(t *testing.T) {
	t.Log("Given the need to detect a tampered historical block.")
	{
		st := newState(t, 1, 100, nil)
		_, err := st.MineNewBlock("miner")
		ifErrFailNow(t, err)
		ifErrFailNow(t, st.SubmitTransaction(database.NewTx("miner", "bob", 40)))
		_, err = st.MineNewBlock("miner")
		ifErrFailNow(t, err)

		snapshot := st.Snapshot()
		snapshot.Chain[1].Trans[0].Amount = 1_000_000

		tampered := restore(t, snapshot)
		if tampered.IsValid() {
			t.Fatalf("\t%s\tShould detect the changed amount.", failed)
		}
		t.Logf("\t%s\tShould detect the changed amount.", success)

		ok, err := tampered.AuditBlock(1)
		ifErrFailNow(t, err)
		if ok {
			t.Fatalf("\t%s\tShould fail the audit of the tampered block.", failed)
		}
		t.Logf("\t%s\tShould fail the audit of the tampered block.", success)

		ok, err = tampered.AuditBlock(2)
		ifErrFailNow(t, err)
		if !ok {
			t.Fatalf("\t%s\tShould pass the audit of an untouched block.", failed)
		}
		t.Logf("\t%s\tShould pass the audit of an untouched block.", success)

		if _, err := tampered.AuditBlock(3); !errors.Is(err, state.ErrBlockNotFound) {
			t.Fatalf("\t%s\tShould not audit a block past the end of the chain: %v", failed, err)
		}
		t.Logf("\t%s\tShould not audit a block past the end of the chain.", success)

		if !st.IsValid() {
			t.Fatalf("\t%s\tShould leave the original ledger untouched.", failed)
		}
		t.Logf("\t%s\tShould leave the original ledger untouched.", success)
	}
}

func Test_CurrentDifficulty(t *testing.T) {
	t.Log("Given the need to check the chain against the current difficulty.")
	{
		st := newState(t, 1, 100, nil)
		_, err := st.MineNewBlock("miner")
		ifErrFailNow(t, err)

		snapshot := st.Snapshot()

		snapshot.Difficulty = 64
		if restore(t, snapshot).IsValid() {
			t.Fatalf("\t%s\tShould be invalid after the difficulty is raised.", failed)
		}
		t.Logf("\t%s\tShould be invalid after the difficulty is raised.", success)

		snapshot.Difficulty = 0
		if !restore(t, snapshot).IsValid() {
			t.Fatalf("\t%s\tShould be valid after the difficulty is lowered.", failed)
		}
		t.Logf("\t%s\tShould be valid after the difficulty is lowered.", success)
	}
}

func Test_Storage(t *testing.T) {
	t.Log("Given the need to save the ledger after mining.")
	{
		storage := memory.New()
		st := newState(t, 1, 100, storage)

		t.Logf("\tTest 0:\tWhen storage is working.")
		{
			_, err := st.MineNewBlock("miner")
			ifErrFailNow(t, err)
			ifErrFailNow(t, st.SubmitTransaction(database.NewTx("miner", "bob", 25)))

			if storage.Saves() != 1 {
				t.Fatalf("\t%s\tTest 0:\tShould save once per mined block, got %d.", failed, storage.Saves())
			}
			t.Logf("\t%s\tTest 0:\tShould save once per mined block.", success)

			saved, err := storage.Read()
			ifErrFailNow(t, err)

			restored := restore(t, saved)
			if err := sameSnapshot(restored.Snapshot(), saved); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould restore an identical ledger: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould restore an identical ledger.", success)

			if err := sameSnapshot(restore(t, st.Snapshot()).Snapshot(), st.Snapshot()); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould round trip pending transactions: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould round trip pending transactions.", success)
		}

		t.Logf("\tTest 1:\tWhen storage is failing.")
		{
			storage.FailWith(errors.New("disk full"))

			block, err := st.MineNewBlock("miner")
			if !state.IsStorageError(err) {
				t.Fatalf("\t%s\tTest 1:\tShould get a storage error: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould get a storage error: %v", success, err)

			status := st.Status()
			if status.Blocks != 3 || status.LatestHash != block.Hash || status.Pending != 0 {
				t.Fatalf("\t%s\tTest 1:\tShould keep the mined block in memory: %+v", failed, status)
			}
			t.Logf("\t%s\tTest 1:\tShould keep the mined block in memory.", success)

			if !st.IsValid() || st.QueryBalance("bob") != 25 {
				t.Fatalf("\t%s\tTest 1:\tShould leave the ledger consistent.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould leave the ledger consistent.", success)

			storage.FailWith(nil)
			_, err = st.MineNewBlock("miner")
			ifErrFailNow(t, err)

			if storage.Saves() != 2 {
				t.Fatalf("\t%s\tTest 1:\tShould save again once storage recovers, got %d.", failed, storage.Saves())
			}
			t.Logf("\t%s\tTest 1:\tShould save again once storage recovers.", success)
		}
	}
}

func Test_Restore(t *testing.T) {
	t.Log("Given the need to reject a snapshot without a genesis block.")
	{
		if _, err := state.New(state.Config{Snapshot: &database.Snapshot{}}); err == nil {
			t.Fatalf("\t%s\tShould reject an empty chain.", failed)
		}
		t.Logf("\t%s\tShould reject an empty chain.", success)

		snapshot := database.NewSnapshot(1, 100)
		snapshot.Chain[0].PrevHash = "abc"
		if _, err := state.New(state.Config{Snapshot: &snapshot}); err == nil {
			t.Fatalf("\t%s\tShould reject a chain that doesn't start with genesis.", failed)
		}
		t.Logf("\t%s\tShould reject a chain that doesn't start with genesis.", success)
	}
}

// =============================================================================

// sameSnapshot compares two snapshots field by field.
func sameSnapshot(got, exp database.Snapshot) error {
	if got.Difficulty != exp.Difficulty || got.MiningReward != exp.MiningReward {
		return fmt.Errorf("settings differ, got %d/%d, exp %d/%d", got.Difficulty, got.MiningReward, exp.Difficulty, exp.MiningReward)
	}

	if len(got.Chain) != len(exp.Chain) {
		return fmt.Errorf("chain length differs, got %d, exp %d", len(got.Chain), len(exp.Chain))
	}

	for i := range got.Chain {
		g, e := got.Chain[i], exp.Chain[i]
		if g.Index != e.Index || g.Hash != e.Hash || g.PrevHash != e.PrevHash || g.Nonce != e.Nonce || !g.TimeStamp.Equal(e.TimeStamp) {
			return fmt.Errorf("block %d differs", i)
		}
		if err := sameTrans(g.Trans, e.Trans); err != nil {
			return fmt.Errorf("block %d: %w", i, err)
		}
	}

	return sameTrans(got.Pending, exp.Pending)
}

// sameTrans compares two sets of transactions field by field.
func sameTrans(got, exp []database.Tx) error {
	if len(got) != len(exp) {
		return fmt.Errorf("transaction count differs, got %d, exp %d", len(got), len(exp))
	}

	for i := range got {
		g, e := got[i], exp[i]
		if g.ID != e.ID || g.Sender != e.Sender || g.Receiver != e.Receiver || g.Amount != e.Amount || g.Signature != e.Signature || !g.TimeStamp.Equal(e.TimeStamp) {
			return fmt.Errorf("transaction %d differs", i)
		}
	}

	return nil
}
