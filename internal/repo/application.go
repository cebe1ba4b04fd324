package repo

import (
	"context"

	"github.com/updateserve/omaha-backend/internal/model"
	"github.com/updateserve/omaha-backend/internal/pkg/errs"

	"github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
)

type Application struct {
	*Repo
}

func NewApplication(db *Repo) *Application {
	return &Application{
		Repo: db,
	}
}

const mysqlDuplicateEntry = 1062

func (r *Application) CreateApplication(ctx context.Context, app *model.Application) error {
	_, err := r.dx.ExecContext(ctx,
		`INSERT INTO applications (id, name) VALUES (?, ?)`,
		model.NormalizeAppID(app.ID), app.Name)
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
		return errs.ErrAppAlreadyExists.Wrap(err)
	}
	return errors.Wrap(err, "create application")
}

func (r *Application) ExistsApplication(ctx context.Context, id string) (bool, error) {
	var n int
	err := r.dx.GetContext(ctx, &n,
		`SELECT COUNT(1) FROM applications WHERE id = ?`, model.NormalizeAppID(id))
	if err != nil {
		return false, errors.Wrap(err, "check application exists")
	}
	return n > 0, nil
}
