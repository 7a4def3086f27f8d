package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"github.com/gdblog/go-blog/service/persist"
)

// Credential columns are deliberately absent from every select in this file.
const userColumns = `id, user_account, COALESCE(user_name, ''), COALESCE(user_avatar, ''), COALESCE(user_profile, ''), user_role, created_at, updated_at`

// UserRepository represents a user repository in the postgres database
type UserRepository struct {
	db           *sql.DB
	getByIDStmt  *sql.Stmt
	getByIDsStmt *sql.Stmt
}

// NewUserRepository creates a new postgres repository for reading users
func NewUserRepository(db *sql.DB) *UserRepository {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	getByIDStmt, err := db.PrepareContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 AND is_deleted = 0;`)
	checkNoErr(err)

	getByIDsStmt, err := db.PrepareContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ANY($1) AND is_deleted = 0;`)
	checkNoErr(err)

	return &UserRepository{
		db:           db,
		getByIDStmt:  getByIDStmt,
		getByIDsStmt: getByIDsStmt,
	}
}

// GetByID gets the user with the given ID
func (u *UserRepository) GetByID(pCtx context.Context, pID persist.DBID) (persist.User, error) {
	user, err := scanUser(u.getByIDStmt.QueryRowContext(pCtx, pID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persist.User{}, persist.ErrUserNotFound{UserID: pID}
		}
		return persist.User{}, wrapErr("get user", err)
	}
	return user, nil
}

// GetByIDs gets all the users with the given IDs in a single query. Missing users are omitted.
func (u *UserRepository) GetByIDs(pCtx context.Context, pIDs []persist.DBID) ([]persist.User, error) {
	results := make([]persist.User, 0, len(pIDs))
	if len(pIDs) == 0 {
		return results, nil
	}

	rows, err := u.getByIDsStmt.QueryContext(pCtx, pq.Array(persist.DBIDList(pIDs).Int64s()))
	if err != nil {
		return nil, wrapErr("get users", err)
	}
	defer rows.Close()

	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, wrapErr("scan user", err)
		}
		results = append(results, user)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapErr("scan user", err)
	}

	return results, nil
}

func scanUser(row rowScanner) (persist.User, error) {
	var user persist.User
	err := row.Scan(&user.ID, &user.UserAccount, &user.UserName, &user.UserAvatar, &user.UserProfile, &user.UserRole, &user.CreatedAt, &user.UpdatedAt)
	return user, err
}
