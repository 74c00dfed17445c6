package implementation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	database "gitlab.com/maplesense1/phm.server/src/production/PHM.Database"
	auth_models "gitlab.com/maplesense1/phm.server/src/production/PHM.Models/auth"
)

const accountColumns = `agronomist_id, username, password, full_name,
	COALESCE(specialization, ''), COALESCE(phone, ''), COALESCE(email, ''), role`

type SQLAccountRepository struct {
	gw *database.Gateway
}

func NewSQLAccountRepository(gw *database.Gateway) *SQLAccountRepository {
	return &SQLAccountRepository{gw: gw}
}

func (r *SQLAccountRepository) Create(ctx context.Context, account *auth_models.Account) (*auth_models.Account, error) {
	if account.Role == "" {
		account.Role = auth_models.RoleFromUsername(account.Username)
	}

	query := `
		INSERT INTO agronomists (username, password, full_name, specialization, phone, email, role)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING agronomist_id
	`

	id, err := r.gw.Insert(ctx, query, account.Username, account.Password, account.FullName,
		account.Specialization, account.Phone, account.Email, string(account.Role))
	if err != nil {
		return nil, fmt.Errorf("create account %s: %w", account.Username, err)
	}

	account.AgronomistID = id
	return account, nil
}

func (r *SQLAccountRepository) CreateIfAbsent(ctx context.Context, account *auth_models.Account) (bool, error) {
	if account.Role == "" {
		account.Role = auth_models.RoleFromUsername(account.Username)
	}

	query := `
		INSERT INTO agronomists (username, password, full_name, specialization, phone, email, role)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (username) DO NOTHING
	`

	n, err := r.gw.Exec(ctx, query, account.Username, account.Password, account.FullName,
		account.Specialization, account.Phone, account.Email, string(account.Role))
	if err != nil {
		return false, fmt.Errorf("ensure account %s: %w", account.Username, err)
	}
	return n > 0, nil
}

func (r *SQLAccountRepository) GetByID(ctx context.Context, agronomistID int64) (*auth_models.Account, error) {
	return r.getOne(ctx, `SELECT `+accountColumns+` FROM agronomists WHERE agronomist_id = $1`, agronomistID)
}

func (r *SQLAccountRepository) GetByUsername(ctx context.Context, username string) (*auth_models.Account, error) {
	return r.getOne(ctx, `SELECT `+accountColumns+` FROM agronomists WHERE username = $1`, username)
}

func (r *SQLAccountRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.gw.QueryRow(ctx, `SELECT COUNT(*) FROM agronomists`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count accounts: %w", err)
	}
	return n, nil
}

func (r *SQLAccountRepository) getOne(ctx context.Context, query string, arg any) (*auth_models.Account, error) {
	var (
		account auth_models.Account
		role    string
	)

	err := r.gw.QueryRow(ctx, query, arg).Scan(&account.AgronomistID, &account.Username, &account.Password,
		&account.FullName, &account.Specialization, &account.Phone, &account.Email, &role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get account: %w", err)
	}

	account.Role = auth_models.Role(role)
	return &account, nil
}
