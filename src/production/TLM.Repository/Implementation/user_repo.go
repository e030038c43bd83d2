package implementation

import (
	"context"
	"database/sql"
	"time"

	tlmmodels "gitlab.com/radixsense/tlm.sensor_server/src/production/TLM.Models"
	interfaces "gitlab.com/radixsense/tlm.sensor_server/src/production/TLM.Repository/Interfaces"
)

type SQLUserRepository struct {
	db     *sql.DB
	driver string
}

func NewSQLUserRepository(db *sql.DB, driver string) *SQLUserRepository {
	return &SQLUserRepository{db: db, driver: driver}
}

func (r *SQLUserRepository) Create(ctx context.Context, user *tlmmodels.User) (*tlmmodels.User, error) {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	if r.driver == "postgres" {
		query := rebind(r.driver, `
			INSERT INTO users (name, email, password, created_at)
			VALUES (?, ?, ?, ?) RETURNING id
		`)
		err := r.db.QueryRowContext(ctx, query,
			user.Name, user.Email, user.Password, user.CreatedAt).Scan(&user.ID)
		if err != nil {
			return nil, classifyError(err)
		}
		return user, nil
	}

	query := `
		INSERT INTO users (name, email, password, created_at)
		VALUES (?, ?, ?, ?)
	`
	result, err := r.db.ExecContext(ctx, query,
		user.Name, user.Email, user.Password, user.CreatedAt)
	if err != nil {
		return nil, classifyError(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	user.ID = id

	return user, nil
}

func (r *SQLUserRepository) GetByEmail(ctx context.Context, email string) (*tlmmodels.User, error) {
	query := rebind(r.driver, `SELECT id, name, email, password, created_at FROM users WHERE email = ?`)

	var user tlmmodels.User
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID, &user.Name, &user.Email, &user.Password, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, interfaces.ErrNotFound
		}
		return nil, err
	}

	return &user, nil
}

func (r *SQLUserRepository) GetByID(ctx context.Context, id int64) (*tlmmodels.User, error) {
	query := rebind(r.driver, `SELECT id, name, email, password, created_at FROM users WHERE id = ?`)

	var user tlmmodels.User
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID, &user.Name, &user.Email, &user.Password, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, interfaces.ErrNotFound
		}
		return nil, err
	}

	return &user, nil
}
