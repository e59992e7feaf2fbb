package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/hongminglow/cabot-property-api/internal/models"
	"github.com/hongminglow/cabot-property-api/internal/storage"
)

const userColumns = `id, username, email, password_hash, first_name, last_name, organization, phone, role, is_active, created_at`

// FindActiveByLoginName fetches the active user whose username or email
// matches loginName, ignoring case.
func (s *Store) FindActiveByLoginName(ctx context.Context, loginName string) (models.User, error) {
	const query = `
	SELECT ` + userColumns + `
	FROM users
	WHERE (lower(username) = lower($1) OR lower(email) = lower($1))
	  AND is_active = TRUE
	LIMIT 1;
	`
	row := s.db.QueryRowContext(ctx, query, strings.TrimSpace(loginName))
	return scanUser(row)
}

// CreateUser inserts a new user row. A login name must resolve to one
// principal, so the username may not equal any existing email and the email
// may not equal any existing username; such collisions return
// ErrAlreadyExists like the unique indexes do.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	const query = `
	INSERT INTO users (username, email, password_hash, first_name, last_name, organization, phone, role, is_active)
	SELECT $1::text, $2::text, $3::text, $4::text, $5::text, $6::text, $7::text, $8::text, $9::boolean
	WHERE NOT EXISTS (
		SELECT 1 FROM users WHERE lower(email) = lower($1) OR lower(username) = lower($2)
	)
	RETURNING ` + userColumns + `;
	`
	row := s.db.QueryRowContext(ctx, query,
		user.Username, user.Email, user.PasswordHash, user.FirstName, user.LastName,
		user.Organization, user.Phone, string(user.Role), user.Active,
	)
	created, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.Is(err, storage.ErrNotFound) || (errors.As(err, &pgErr) && pgErr.Code == "23505") {
			return models.User{}, storage.ErrAlreadyExists
		}
		return models.User{}, err
	}
	return created, nil
}

func scanUser(row *sql.Row) (models.User, error) {
	var user models.User
	var role string
	if err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.FirstName,
		&user.LastName, &user.Organization, &user.Phone, &role, &user.Active, &user.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, storage.ErrNotFound
		}
		return models.User{}, err
	}
	user.Role = models.Role(role)
	return user, nil
}
