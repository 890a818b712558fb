package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Conte777/operator-service/internal/domain/account/deps"
	"github.com/Conte777/operator-service/internal/domain/account/entities"
	accounterrors "github.com/Conte777/operator-service/internal/domain/account/errors"
)

// Repository implements deps.AccountRepository using PostgreSQL
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new PostgreSQL account repository
func NewRepository(db *gorm.DB) deps.AccountRepository {
	return &Repository{db: db}
}

// CreateOperator inserts a new operator and fills its generated fields
func (r *Repository) CreateOperator(ctx context.Context, operator *entities.Operator) error {
	model := &entities.OperatorModel{
		ID:   uuid.NewString(),
		Name: operator.Name,
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create operator: %w", err)
	}

	*operator = *model.ToEntity()
	return nil
}

// GetOperator loads an operator by id
func (r *Repository) GetOperator(ctx context.Context, id string) (*entities.Operator, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, accounterrors.ErrOperatorNotFound
	}

	var model entities.OperatorModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, accounterrors.ErrOperatorNotFound
		}
		return nil, fmt.Errorf("failed to get operator: %w", err)
	}

	return model.ToEntity(), nil
}

// ListOperators returns all operators in creation order
func (r *Repository) ListOperators(ctx context.Context) ([]*entities.Operator, error) {
	var models []entities.OperatorModel
	if err := r.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list operators: %w", err)
	}

	operators := make([]*entities.Operator, 0, len(models))
	for i := range models {
		operators = append(operators, models[i].ToEntity())
	}
	return operators, nil
}

// CreateAccount inserts a pending account; a taken phone number yields ErrPhoneTaken
func (r *Repository) CreateAccount(ctx context.Context, account *entities.Account) error {
	model := entities.AccountModelFromEntity(account)
	model.ID = uuid.NewString()
	model.IsAuthenticated = false
	model.SessionData = sql.NullString{}
	model.LastActive = sql.NullTime{}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		switch {
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return accounterrors.ErrPhoneTaken
		case errors.Is(err, gorm.ErrForeignKeyViolated):
			return accounterrors.ErrOperatorNotFound
		}
		return fmt.Errorf("failed to create account: %w", err)
	}

	*account = *model.ToEntity()
	return nil
}

// GetAccount loads an account by id
func (r *Repository) GetAccount(ctx context.Context, id string) (*entities.Account, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, accounterrors.ErrAccountNotFound
	}

	return r.first(ctx, r.db.Where("id = ?", id))
}

// GetByOperatorAndPhone loads the operator's account with the given phone number
func (r *Repository) GetByOperatorAndPhone(ctx context.Context, operatorID, phone string) (*entities.Account, error) {
	if _, err := uuid.Parse(operatorID); err != nil {
		return nil, accounterrors.ErrAccountNotFound
	}

	return r.first(ctx, r.db.Where("operator_id = ? AND phone_number = ?", operatorID, phone))
}

func (r *Repository) first(ctx context.Context, query *gorm.DB) (*entities.Account, error) {
	var model entities.AccountModel
	if err := query.WithContext(ctx).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, accounterrors.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return model.ToEntity(), nil
}

// ListByOperator returns the operator's accounts in creation order
func (r *Repository) ListByOperator(ctx context.Context, operatorID string, onlyAuthenticated bool) ([]*entities.Account, error) {
	if _, err := uuid.Parse(operatorID); err != nil {
		return []*entities.Account{}, nil
	}

	query := r.db.WithContext(ctx).Where("operator_id = ?", operatorID)
	if onlyAuthenticated {
		query = query.Where("is_authenticated = ?", true)
	}

	var models []entities.AccountModel
	if err := query.Order("created_at ASC, id ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	accounts := make([]*entities.Account, 0, len(models))
	for i := range models {
		accounts = append(accounts, models[i].ToEntity())
	}
	return accounts, nil
}

// MarkAuthenticated records a completed login
func (r *Repository) MarkAuthenticated(ctx context.Context, accountID string, sessionData *string, at time.Time) error {
	session := sql.NullString{}
	if sessionData != nil {
		session = sql.NullString{String: *sessionData, Valid: true}
	}

	result := r.db.WithContext(ctx).
		Model(&entities.AccountModel{}).
		Where("id = ?", accountID).
		Updates(map[string]interface{}{
			"is_authenticated": true,
			"session_data":     session,
			"last_active":      at,
			"updated_at":       at,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to mark account authenticated: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return accounterrors.ErrAccountNotFound
	}

	return nil
}

// DeleteAccount removes an account record
func (r *Repository) DeleteAccount(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&entities.AccountModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete account: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return accounterrors.ErrAccountNotFound
	}

	return nil
}
