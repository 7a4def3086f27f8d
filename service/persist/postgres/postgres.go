package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	_ "github.com/lib/pq"

	"github.com/gdblog/go-blog/env"
	"github.com/gdblog/go-blog/service/logger"
	"github.com/gdblog/go-blog/service/persist"
)

type connectionParams struct {
	user     string
	password string
	dbname   string
	host     string
	port     int
}

type ConnectionOption func(params *connectionParams)

func WithUser(user string) ConnectionOption {
	return func(p *connectionParams) { p.user = user }
}

func WithPassword(password string) ConnectionOption {
	return func(p *connectionParams) { p.password = password }
}

func WithDBName(dbname string) ConnectionOption {
	return func(p *connectionParams) { p.dbname = dbname }
}

func WithHost(host string) ConnectionOption {
	return func(p *connectionParams) { p.host = host }
}

func WithPort(port int) ConnectionOption {
	return func(p *connectionParams) { p.port = port }
}

func newConnectionParams(opts ...ConnectionOption) connectionParams {
	params := connectionParams{
		user:     env.GetString("POSTGRES_USER"),
		password: env.GetString("POSTGRES_PASSWORD"),
		dbname:   env.GetString("POSTGRES_DB"),
		host:     env.GetString("POSTGRES_HOST"),
		port:     env.GetInt("POSTGRES_PORT"),
	}
	for _, opt := range opts {
		opt(&params)
	}
	return params
}

func (p connectionParams) dsn() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable", p.user, p.password, p.host, p.port, p.dbname)
}

// MustCreateClient opens a database/sql client backed by lib/pq and panics if it can't be reached
func MustCreateClient(opts ...ConnectionOption) *sql.DB {
	params := newConnectionParams(opts...)
	logger.For(nil).Infof("connecting to postgres at %s:%d", params.host, params.port)

	db, err := sql.Open("postgres", params.dsn())
	checkNoErr(err)

	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	checkNoErr(db.PingContext(ctx))

	return db
}

// NewPgxClient opens a pgx connection pool and panics if it can't be reached
func NewPgxClient(opts ...ConnectionOption) *pgxpool.Pool {
	params := newConnectionParams(opts...)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	config, err := pgxpool.ParseConfig(params.dsn())
	checkNoErr(err)
	config.MaxConns = 50

	pool, err := pgxpool.ConnectConfig(ctx, config)
	checkNoErr(err)
	checkNoErr(pool.Ping(ctx))

	return pool
}

type Repositories struct {
	db                     *sql.DB
	pool                   *pgxpool.Pool
	CommentRepository      *CommentRepository
	NotificationRepository *NotificationRepository
	UserRepository         *UserRepository
	PostRepository         *PostRepository
}

func NewRepositories(pq *sql.DB, pgx *pgxpool.Pool) *Repositories {
	return &Repositories{
		db:                     pq,
		pool:                   pgx,
		CommentRepository:      NewCommentRepository(pq),
		NotificationRepository: NewNotificationRepository(pgx),
		UserRepository:         NewUserRepository(pq),
		PostRepository:         NewPostRepository(pq),
	}
}

func (r *Repositories) Close() {
	if err := r.db.Close(); err != nil {
		logger.For(nil).Errorf("failed to close postgres client: %s", err)
	}
	r.pool.Close()
}

func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return persist.ErrPersistence{Op: op, Err: err}
}

func checkNoErr(err error) {
	if err != nil {
		panic(err)
	}
}
