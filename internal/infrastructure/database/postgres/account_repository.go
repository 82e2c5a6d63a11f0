package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront-identity/internal/domain/account"
	"storefront-identity/internal/infrastructure/database/postgres/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const uniqueViolation = "23505"

// AccountRepository implements account.Repository on Postgres
type AccountRepository struct {
	db *DB
}

func NewAccountRepository(db *DB) account.Repository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Insert(ctx context.Context, a *account.Account) error {
	now := time.Now().UTC()
	a.ID = uuid.NewString()
	a.CreatedAt = now
	a.UpdatedAt = now

	dbModel := toAccountModel(a)
	if err := r.db.DB.WithContext(ctx).Create(dbModel).Error; err != nil {
		if isUniqueViolation(err) {
			return account.ErrAccountExists
		}
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

func (r *AccountRepository) FindByID(ctx context.Context, id string) (*account.Account, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, account.ErrAccountNotFound
	}
	return r.findOne(ctx, "id = ?", id)
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*account.Account, error) {
	return r.findOne(ctx, "email = ?", email)
}

func (r *AccountRepository) FindByResetToken(ctx context.Context, token string, notExpiredAsOf time.Time) (*account.Account, error) {
	return r.findOne(ctx, "reset_token = ? AND reset_expires > ?", token, notExpiredAsOf)
}

func (r *AccountRepository) findOne(ctx context.Context, query string, args ...interface{}) (*account.Account, error) {
	var dbModel models.AccountModel
	err := r.db.DB.WithContext(ctx).Where(query, args...).First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, account.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return toAccountEntity(&dbModel), nil
}

func (r *AccountRepository) List(ctx context.Context) ([]*account.Account, error) {
	var dbModels []models.AccountModel
	if err := r.db.DB.WithContext(ctx).Order("created_at").Find(&dbModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	accounts := make([]*account.Account, len(dbModels))
	for i := range dbModels {
		accounts[i] = toAccountEntity(&dbModels[i])
	}

	return accounts, nil
}

func (r *AccountRepository) UpdateByID(ctx context.Context, id string, patch account.Patch) (*account.Account, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, account.ErrAccountNotFound
	}
	if patch.IsEmpty() {
		return r.FindByID(ctx, id)
	}

	updates := patchColumns(patch)
	updates["updated_at"] = time.Now().UTC()

	var dbModel models.AccountModel
	result := r.db.DB.WithContext(ctx).
		Model(&dbModel).
		Clauses(clause.Returning{}).
		Where("id = ?", id).
		Updates(updates)

	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return nil, account.ErrAccountExists
		}
		return nil, fmt.Errorf("failed to update account: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, account.ErrAccountNotFound
	}

	return toAccountEntity(&dbModel), nil
}

func (r *AccountRepository) DeleteByID(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return account.ErrAccountNotFound
	}

	result := r.db.DB.WithContext(ctx).Delete(&models.AccountModel{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete account: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return account.ErrAccountNotFound
	}

	return nil
}

func (r *AccountRepository) SetResetToken(ctx context.Context, id, token string, expiresAt time.Time) error {
	result := r.db.DB.WithContext(ctx).
		Model(&models.AccountModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"reset_token":   token,
			"reset_expires": expiresAt,
			"updated_at":    time.Now().UTC(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to store reset token: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return account.ErrAccountNotFound
	}

	return nil
}

func (r *AccountRepository) ConsumeResetToken(ctx context.Context, token string, now time.Time, passwordHash string) (*account.Account, error) {
	var dbModel models.AccountModel
	result := r.db.DB.WithContext(ctx).
		Model(&dbModel).
		Clauses(clause.Returning{}).
		Where("reset_token = ? AND reset_expires > ?", token, now).
		Updates(map[string]interface{}{
			"password_hash": passwordHash,
			"reset_token":   nil,
			"reset_expires": nil,
			"updated_at":    now,
		})

	if result.Error != nil {
		return nil, fmt.Errorf("failed to consume reset token: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, account.ErrResetTokenInvalid
	}

	return toAccountEntity(&dbModel), nil
}

func (r *AccountRepository) ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.DB.WithContext(ctx).
		Model(&models.AccountModel{}).
		Where("reset_expires <= ?", now).
		Updates(map[string]interface{}{
			"reset_token":   nil,
			"reset_expires": nil,
		})

	if result.Error != nil {
		return 0, fmt.Errorf("failed to clear expired reset tokens: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *AccountRepository) Health(ctx context.Context) error {
	return r.db.Health(ctx)
}

func patchColumns(p account.Patch) map[string]interface{} {
	updates := make(map[string]interface{})
	if p.FirstName != nil {
		updates["first_name"] = *p.FirstName
	}
	if p.LastName != nil {
		updates["last_name"] = *p.LastName
	}
	if p.Name != nil {
		updates["name"] = *p.Name
	}
	if p.Email != nil {
		updates["email"] = *p.Email
	}
	if p.Phone != nil {
		updates["phone"] = *p.Phone
	}
	if p.PasswordHash != nil {
		updates["password_hash"] = *p.PasswordHash
	}
	if p.IsAdmin != nil {
		updates["is_admin"] = *p.IsAdmin
	}
	return updates
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}
	return strings.Contains(strings.ToLower(err.Error()), "duplicate key")
}

// Helper functions to convert between domain entities and database models

func toAccountModel(a *account.Account) *models.AccountModel {
	m := &models.AccountModel{
		ID:           a.ID,
		FirstName:    a.FirstName,
		LastName:     a.LastName,
		Name:         a.Name,
		Email:        a.Email,
		Phone:        a.Phone,
		PasswordHash: a.PasswordHash,
		IsAdmin:      a.IsAdmin,
		ResetExpires: a.ResetExpires,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
	if a.ResetToken != "" {
		token := a.ResetToken
		m.ResetToken = &token
	}
	return m
}

func toAccountEntity(m *models.AccountModel) *account.Account {
	a := &account.Account{
		ID:           m.ID,
		FirstName:    m.FirstName,
		LastName:     m.LastName,
		Name:         m.Name,
		Email:        m.Email,
		Phone:        m.Phone,
		PasswordHash: m.PasswordHash,
		IsAdmin:      m.IsAdmin,
		ResetExpires: m.ResetExpires,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
	if m.ResetToken != nil {
		a.ResetToken = *m.ResetToken
	}
	return a
}
