package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/go-sql-driver/mysql"
	"github.com/mattn/go-sqlite3"

	"github.com/JulianRp2177/api-task-manager/internal/models"
)

// SQLUserRepo はMySQL/SQLiteのusersテーブルを扱います。
type SQLUserRepo struct {
	DB *sql.DB
}

// NewSQLUserRepo は新しいSQLUserRepoインスタンスを作成します。
func NewSQLUserRepo(db *sql.DB) *SQLUserRepo {
	return &SQLUserRepo{DB: db}
}

// Create は新しいユーザーをデータベースに挿入します。
func (r *SQLUserRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	query := "INSERT INTO users (email, hashed_password, is_active) VALUES (?, ?, ?)"
	result, err := r.DB.ExecContext(ctx, query, u.Email, u.HashedPassword, u.IsActive)
	if err != nil {
		if isDuplicateKey(err) {
			return nil, ErrDuplicateEmail
		}
		log.Printf("Failed to insert user: %v", err)
		return nil, fmt.Errorf("could not insert user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("could not get last insert ID: %w", err)
	}

	created := *u
	created.ID = int(id)
	return &created, nil
}

// FindByEmail はメールアドレスでユーザーを検索します。
func (r *SQLUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := "SELECT id, email, hashed_password, is_active FROM users WHERE email = ?"
	var u models.User
	err := r.DB.QueryRowContext(ctx, query, email).Scan(&u.ID, &u.Email, &u.HashedPassword, &u.IsActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		log.Printf("Failed to query user by email: %v", err)
		return nil, fmt.Errorf("could not query user: %w", err)
	}
	return &u, nil
}

// isDuplicateKey はユニーク制約違反かどうかを判定します。
func isDuplicateKey(err error) bool {
	// MySQLの重複エントリーエラーコード1062
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return true
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return true
	}
	return false
}
