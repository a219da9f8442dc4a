package api

import (
	"github.com/ssargent/rowdb/pkg/store"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Bind        string
	Port        int
	APIKey      string   // Empty disables authentication
	CORSOrigins []string // Defaults to "*"
}

// IRecordStore defines the record store operations the API exposes
type IRecordStore interface {
	Insert(table string, values []string) (int64, error)
	Update(table string, values []string, id int64) (bool, error)
	Select(table string, id int64) ([]string, bool, error)
	Tables() ([]store.TableInfo, error)
	Stats() (*store.StoreStats, error)
}
