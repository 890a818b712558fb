package entities

import (
	"database/sql"
	"time"
)

// OperatorModel is a GORM model for operators table
type OperatorModel struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"size:255;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (OperatorModel) TableName() string {
	return "operators"
}

// ToEntity converts DB model to domain entity
func (m *OperatorModel) ToEntity() *Operator {
	return &Operator{
		ID:        m.ID,
		Name:      m.Name,
		CreatedAt: m.CreatedAt,
	}
}

// AccountModel is a GORM model for telegram_accounts table
type AccountModel struct {
	ID              string         `gorm:"type:uuid;primaryKey"`
	OperatorID      string         `gorm:"type:uuid;not null;index"`
	PhoneNumber     string         `gorm:"size:32;not null;uniqueIndex"`
	AccountName     string         `gorm:"size:255;not null;default:''"`
	IsAuthenticated bool           `gorm:"not null;default:false"`
	SessionData     sql.NullString `gorm:"type:text"`
	LastActive      sql.NullTime
	CreatedAt       time.Time `gorm:"autoCreateTime"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime"`
}

func (AccountModel) TableName() string {
	return "telegram_accounts"
}

// ToEntity converts DB model to domain entity
func (m *AccountModel) ToEntity() *Account {
	account := &Account{
		ID:              m.ID,
		OperatorID:      m.OperatorID,
		PhoneNumber:     m.PhoneNumber,
		Name:            m.AccountName,
		IsAuthenticated: m.IsAuthenticated,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
	if m.SessionData.Valid {
		data := m.SessionData.String
		account.SessionData = &data
	}
	if m.LastActive.Valid {
		at := m.LastActive.Time
		account.LastActive = &at
	}
	return account
}

// AccountModelFromEntity converts a domain entity to its DB model
func AccountModelFromEntity(a *Account) *AccountModel {
	m := &AccountModel{
		ID:              a.ID,
		OperatorID:      a.OperatorID,
		PhoneNumber:     a.PhoneNumber,
		AccountName:     a.Name,
		IsAuthenticated: a.IsAuthenticated,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
	if a.SessionData != nil {
		m.SessionData = sql.NullString{String: *a.SessionData, Valid: true}
	}
	if a.LastActive != nil {
		m.LastActive = sql.NullTime{Time: *a.LastActive, Valid: true}
	}
	return m
}
