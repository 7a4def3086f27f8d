package docker

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/ory/dockertest"
)

const (
	postgresImage   = "postgres"
	postgresVersion = "14"
)

func newPool() (*dockertest.Pool, error) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		return nil, err
	}
	pool.MaxWait = 2 * time.Minute
	return pool, nil
}

// StartPostgres starts a throwaway postgres container and waits until it accepts connections
func StartPostgres() (*dockertest.Resource, error) {
	pool, err := newPool()
	if err != nil {
		return nil, err
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: postgresImage,
		Tag:        postgresVersion,
		Env: []string{
			"POSTGRES_USER=postgres",
			"POSTGRES_PASSWORD=postgres",
			"POSTGRES_DB=postgres",
		},
	})
	if err != nil {
		return nil, err
	}

	err = pool.Retry(func() error {
		dsn := fmt.Sprintf("postgres://postgres:postgres@%s/postgres?sslmode=disable", resource.GetHostPort("5432/tcp"))
		db, err := sql.Open("postgres", dsn)
		if err != nil {
			return err
		}
		defer db.Close()
		return db.Ping()
	})
	if err != nil {
		resource.Close()
		return nil, err
	}

	return resource, nil
}
