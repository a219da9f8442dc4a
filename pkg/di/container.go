// Package di provides dependency injection container
package di

import (
	"github.com/ssargent/rowdb/pkg/api" //nolint:depguard
	"github.com/ssargent/rowdb/pkg/store"
)

// StoreFactory opens record stores
type StoreFactory interface {
	// OpenStore creates a record store and runs startup recovery
	OpenStore(config store.RecordStoreConfig) (*store.RecordStore, *store.RecoveryResult, error)
}

// DefaultStoreFactory opens file-backed record stores
type DefaultStoreFactory struct{}

// OpenStore creates a record store and runs startup recovery
func (DefaultStoreFactory) OpenStore(config store.RecordStoreConfig) (*store.RecordStore, *store.RecoveryResult, error) {
	s := store.NewRecordStore(config)
	recovery, err := s.Open()
	if err != nil {
		return nil, nil, err
	}
	return s, recovery, nil
}

// Container holds all the dependencies for the application
type Container struct {
	storeFactory  StoreFactory
	serverFactory api.ServerFactory
}

// NewContainer creates a new dependency injection container
func NewContainer() *Container {
	return &Container{
		storeFactory:  DefaultStoreFactory{},
		serverFactory: api.NewServerFactory(),
	}
}

// GetStoreFactory returns the store factory
func (c *Container) GetStoreFactory() StoreFactory {
	return c.storeFactory
}

// GetServerFactory returns the server factory
func (c *Container) GetServerFactory() api.ServerFactory {
	return c.serverFactory
}

// SetStoreFactory allows overriding the store factory (for testing)
func (c *Container) SetStoreFactory(factory StoreFactory) {
	c.storeFactory = factory
}

// SetServerFactory allows overriding the server factory (for testing)
func (c *Container) SetServerFactory(factory api.ServerFactory) {
	c.serverFactory = factory
}
