package repo

import (
	"errors"

	"gorm.io/gorm"
)

// ErrStockConflict is returned from the order transaction when a line's
// per-size stock no longer covers the requested quantity.
var ErrStockConflict = errors.New("insufficient stock")

type GormRepo struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *GormRepo {
	return &GormRepo{DB: db}
}
