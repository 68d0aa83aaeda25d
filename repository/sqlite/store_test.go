package sqlite

import (
	"testing"

	"barrierbet/repository/testutil"
)

func TestStoreContract(t *testing.T) {
	t.Parallel()

	testutil.RunStoreContract(t, func(t *testing.T) testutil.Stores {
		db := testutil.SetupSQLiteDatabase(t)
		return testutil.Stores{
			Users:    NewUserStore(db),
			Sessions: NewGameSessionStore(db),
			History:  NewBalanceHistoryStore(db),
		}
	})
}
