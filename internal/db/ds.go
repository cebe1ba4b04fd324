package db

import (
	"fmt"
	"time"

	"github.com/updateserve/omaha-backend/internal/config"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

const driverName = "mysql"

func NewDataSource() (*sqlx.DB, error) {
	var (
		conf = config.GConfig
	)
	dsn := fmt.Sprintf(
		"%s:%s@tcp(%s:%s)/%s?parseTime=True",
		conf.Database.Username,
		conf.Database.Password,
		conf.Database.Host,
		conf.Database.Port,
		conf.Database.Name,
	)

	dx, err := sqlx.Connect(driverName, dsn)
	if err != nil {
		return nil, err
	}

	dx.SetMaxOpenConns(64)
	dx.SetMaxIdleConns(8)
	dx.SetConnMaxLifetime(time.Hour)

	return dx, nil
}
