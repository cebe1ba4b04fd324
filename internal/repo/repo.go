package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type Repo struct {
	dx *sqlx.DB
}

func NewRepo(dx *sqlx.DB) *Repo {
	return &Repo{
		dx: dx,
	}
}

func (r *Repo) WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.dx.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			err = errors.Join(err, fmt.Errorf("rolling back transaction: %v", rerr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}
