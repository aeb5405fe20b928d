// This program performs administrative tasks against a ledger snapshot.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/ardanlabs/conf/v3"
	"github.com/powledger/ledger/app/tooling/admin/commands"
	"github.com/powledger/ledger/foundation/blockchain/state"
	"github.com/powledger/ledger/foundation/blockchain/storage/disk"
	"github.com/powledger/ledger/foundation/logger"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("ADMIN")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		if !errors.Is(err, commands.ErrHelp) {
			log.Errorw("admin", "ERROR", err)
		}
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {
	cfg := struct {
		conf.Version
		Args   conf.Args
		Ledger struct {
			SnapshotPath string `conf:"default:zblock/blockchain.json"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "ledger snapshot administration",
		},
	}

	const prefix = "LEDGER"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	ev := func(v string, args ...any) {
		log.Debugw(fmt.Sprintf(v, args...))
	}

	store, err := disk.New(cfg.Ledger.SnapshotPath, ev)
	if err != nil {
		return err
	}

	snapshot, err := store.Read()
	if err != nil {
		return fmt.Errorf("reading snapshot %s: %w", store.Path(), err)
	}

	st, err := state.New(state.Config{
		Snapshot:  &snapshot,
		EvHandler: ev,
	})
	if err != nil {
		return err
	}

	return processCommands(cfg.Args, st)
}

// processCommands handles the execution of the commands specified on
// the command line.
func processCommands(args conf.Args, st *state.State) error {
	switch args.Num(0) {
	case "bals":
		if err := commands.Balances(os.Stdout, st, args.Num(1)); err != nil {
			return fmt.Errorf("getting balances: %w", err)
		}
	case "trans":
		if err := commands.Transactions(os.Stdout, st, args.Num(1)); err != nil {
			return fmt.Errorf("getting transactions: %w", err)
		}
	case "valid":
		if err := commands.Valid(os.Stdout, st); err != nil {
			return fmt.Errorf("validating chain: %w", err)
		}
	default:
		fmt.Println("bals [identity]: show the balance of every identity, or just one")
		fmt.Println("trans [identity]: show the confirmed transactions, or those of one identity")
		fmt.Println("valid: audit every block and validate the chain")
		fmt.Println("provide a command to get more help.")
		return commands.ErrHelp
	}

	return nil
}
