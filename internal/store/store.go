package store

import (
	"errors"

	"github.com/calvinwijaya/blackjack-advisor/internal/table"
)

var ErrGameNotFound = errors.New("game not found")

// Store defines the interface for live session storage
type Store interface {
	// SaveTable registers a running table
	SaveTable(t *table.Table) error

	// GetTable retrieves a table by game ID
	GetTable(id string) (*table.Table, error)

	// DeleteTable removes a table and returns it so the caller can close it
	DeleteTable(id string) (*table.Table, error)

	// GetAllTables returns every live table, oldest first
	GetAllTables() ([]*table.Table, error)
}
