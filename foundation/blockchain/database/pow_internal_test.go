package database

import (
	"strings"
	"testing"
)

func Test_POWDegrades(t *testing.T) {
	type table struct {
		name        string
		difficulty  uint
		maxAttempts uint64
	}

	tt := []table{
		{name: "single", difficulty: 64, maxAttempts: 1},
		{name: "budget", difficulty: 8, maxAttempts: 1000},
	}

	t.Log("Given the need to always finish a proof of work search.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen the budget is %d attempts at difficulty %d.", testID, tst.maxAttempts, tst.difficulty)
			{
				f := func(t *testing.T) {
					block := NewBlock(1, []Tx{NewRewardTx("miner", 100)}, Genesis().Hash)

					// The requested prefix won't be found within the budget.
					pow := NewProofOfWork(block, tst.difficulty)
					pow.maxAttempts = tst.maxAttempts

					result := pow.Run(nil)

					if !result.Degraded() || result.Requested != tst.difficulty || result.Achieved < 1 {
						t.Fatalf("\t✗\tTest %d:\tShould solve at a reduced difficulty: %+v", testID, result)
					}
					t.Logf("\t✓\tTest %d:\tShould solve at a reduced difficulty: achieved[%d].", testID, result.Achieved)

					// One character is dropped per unsuccessful attempt after the
					// budget, so a longer prefix can only be hit on the way down.
					lowest := tst.maxAttempts + uint64(tst.difficulty) - 1
					switch {
					case result.Achieved == 1 && result.Attempts < lowest:
						t.Fatalf("\t✗\tTest %d:\tShould reach a single character target after %d attempts: %+v", testID, lowest, result)
					case result.Achieved > 1 && result.Attempts != tst.maxAttempts+uint64(tst.difficulty-result.Achieved):
						t.Fatalf("\t✗\tTest %d:\tShould lower the target on every attempt after the budget: %+v", testID, result)
					}
					t.Logf("\t✓\tTest %d:\tShould lower the target on every attempt after the budget: attempts[%d].", testID, result.Attempts)

					if result.Attempts > lowest+400 {
						t.Fatalf("\t✗\tTest %d:\tShould finish soon after the budget runs out: attempts[%d].", testID, result.Attempts)
					}
					t.Logf("\t✓\tTest %d:\tShould finish soon after the budget runs out.", testID)

					if !strings.HasPrefix(result.Hash, pow.Target()) || uint(len(pow.Target())) != result.Achieved {
						t.Fatalf("\t✗\tTest %d:\tShould match the lowered target: target[%s] hash[%s]", testID, pow.Target(), result.Hash)
					}
					t.Logf("\t✓\tTest %d:\tShould match the lowered target.", testID)

					if !pow.Validate() {
						t.Fatalf("\t✗\tTest %d:\tShould validate against the lowered target.", testID)
					}
					t.Logf("\t✓\tTest %d:\tShould validate against the lowered target.", testID)
				}

				t.Run(tst.name, f)
			}
		}
	}
}
