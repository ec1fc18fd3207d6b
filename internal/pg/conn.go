package pg

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	"github.com/pkg/errors"
)

// Pool bounds the connections ApplyDDL runs on. Zero values fall back to DefaultPool.
type Pool struct {
	MaxOpen     int
	MaxIdle     int
	MaxLifetime time.Duration
	PingTimeout time.Duration
}

func DefaultPool() Pool {
	return Pool{
		MaxOpen:     4,
		MaxIdle:     2,
		MaxLifetime: 30 * time.Minute,
		PingTimeout: 5 * time.Second,
	}
}

func (p Pool) withDefaults() Pool {
	d := DefaultPool()
	if p.MaxOpen <= 0 {
		p.MaxOpen = d.MaxOpen
	}
	if p.MaxIdle <= 0 {
		p.MaxIdle = d.MaxIdle
	}
	if p.MaxIdle > p.MaxOpen {
		p.MaxIdle = p.MaxOpen
	}
	if p.MaxLifetime <= 0 {
		p.MaxLifetime = d.MaxLifetime
	}
	if p.PingTimeout <= 0 {
		p.PingTimeout = d.PingTimeout
	}
	return p
}

// Open connects through the pgx stdlib driver and pings the server before returning.
func Open(ctx context.Context, url string, pool Pool) (*sql.DB, error) {
	pool = pool.withDefaults()
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, errors.Wrap(err, "open postgres")
	}
	db.SetMaxOpenConns(pool.MaxOpen)
	db.SetMaxIdleConns(pool.MaxIdle)
	db.SetConnMaxLifetime(pool.MaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, pool.PingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(err, "ping postgres (timeout %s)", pool.PingTimeout)
	}
	return db, nil
}
