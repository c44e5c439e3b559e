package repository

import (
	"context"

	"gorm.io/gorm"
)

// TxRepositories are repositories bound to one open transaction.
type TxRepositories struct {
	Equipment EquipmentRepository
	History   HistoryRepository
}

type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(repos TxRepositories) error) error
}

type transactor struct {
	db *gorm.DB
}

func NewTransactor(db *gorm.DB) Transactor {
	return &transactor{db: db}
}

// WithinTransaction commits when fn returns nil and rolls back otherwise.
func (t *transactor) WithinTransaction(ctx context.Context, fn func(repos TxRepositories) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(TxRepositories{
			Equipment: NewEquipmentRepository(tx),
			History:   NewHistoryRepository(tx),
		})
	})
}
