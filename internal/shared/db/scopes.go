// Package db provides database utilities including transaction management and query scopes.
package db

import (
	"gorm.io/gorm"
)

// ActiveAccounts keeps rows that can still sign in: active and never soft-deleted.
//
//	db.Model(&models.AccountModel{}).Scopes(db.ActiveAccounts()).Find(&rows)
func ActiveAccounts() func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("is_active = ?", true).Where("deleted_at IS NULL")
	}
}

// Paginate applies offset and limit for a 1-based page.
func Paginate(page, pageSize int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if page < 1 {
			page = 1
		}
		if pageSize < 1 {
			return db
		}
		return db.Offset((page - 1) * pageSize).Limit(pageSize)
	}
}
