package contract

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/fastprodman/wagerledger/internal/infra/pgtestutil"
	"github.com/fastprodman/wagerledger/internal/ledger"
	"github.com/fastprodman/wagerledger/internal/repos/contract"
)

func TestContract_InsertGetUpdate(t *testing.T) {
	t.Parallel()

	db := pgtestutil.NewTestDB(t)

	repo := New(db)
	ctx := t.Context()

	_, err := repo.Get(ctx)
	if !errors.Is(err, contract.ErrNotInitialized) {
		t.Fatalf("empty table: want ErrNotInitialized, got %v", err)
	}

	inTx := func(fn func(tx *sql.Tx) error) error {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			t.Fatalf("begin tx: %v", err)
		}
		defer tx.Rollback()

		err = fn(tx)
		if err != nil {
			return err
		}

		return tx.Commit()
	}

	meta := ledger.Meta{Owner: "owner.near", NftAccount: "nft.near"}

	err = inTx(func(tx *sql.Tx) error { return repo.Insert(tx, meta) })
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	err = inTx(func(tx *sql.Tx) error { return repo.Insert(tx, meta) })
	if !errors.Is(err, contract.ErrAlreadyInitialized) {
		t.Fatalf("second insert: want ErrAlreadyInitialized, got %v", err)
	}

	meta.Panicked = true
	meta.Owner = "dao.near"

	err = inTx(func(tx *sql.Tx) error { return repo.Update(tx, meta) })
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := repo.Get(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	if got != meta {
		t.Fatalf("meta: want %+v, got %+v", meta, got)
	}
}

func TestContract_UpdateBeforeInit(t *testing.T) {
	t.Parallel()

	db := pgtestutil.NewTestDB(t)

	tx, err := db.BeginTx(t.Context(), nil)
	if err != nil {
		t.Fatalf("begin tx: %v", err)
	}
	defer tx.Rollback()

	err = New(db).Update(tx, ledger.Meta{Owner: "owner.near"})
	if !errors.Is(err, contract.ErrNotInitialized) {
		t.Fatalf("want ErrNotInitialized, got %v", err)
	}
}
