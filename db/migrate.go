package migrate

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	gomigrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/gdblog/go-blog/service/logger"
)

// RunMigrations applies every pending up migration in dir. Relative directories are resolved
// against the current directory first and then against each parent, so tests can pass a path
// relative to the repository root.
func RunMigrations(client *sql.DB, dir string) error {
	resolved, err := resolveDir(dir)
	if err != nil {
		return err
	}

	driver, err := postgres.WithInstance(client, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := gomigrate.NewWithDatabaseInstance("file://"+resolved, "postgres", driver)
	if err != nil {
		return err
	}

	err = m.Up()
	if errors.Is(err, gomigrate.ErrNoChange) {
		logger.For(nil).Info("no migrations to apply")
		return nil
	}
	return err
}

func resolveDir(dir string) (string, error) {
	if filepath.IsAbs(dir) {
		return dir, nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for cur := wd; ; cur = filepath.Dir(cur) {
		candidate := filepath.Join(cur, dir)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, nil
		}
		if filepath.Dir(cur) == cur {
			break
		}
	}

	return "", fmt.Errorf("migrations directory %s not found from %s", dir, wd)
}
