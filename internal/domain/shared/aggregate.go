package shared

import (
	"github.com/google/uuid"
)

// AggregateRoot is implemented by every aggregate persisted with optimistic locking
type AggregateRoot interface {
	GetID() uuid.UUID
	GetVersion() int
	IncrementVersion()
	AddDomainEvent(event DomainEvent)
	GetDomainEvents() []DomainEvent
	ClearDomainEvents()
}

// BaseAggregateRoot provides version and pending events for aggregate roots
type BaseAggregateRoot struct {
	TenantEntity
	Version      int
	domainEvents []DomainEvent
}

// GetVersion returns the aggregate version for optimistic locking
func (a *BaseAggregateRoot) GetVersion() int {
	return a.Version
}

// IncrementVersion bumps the version once a change has been stored.
// Repositories call it after the optimistic lock check succeeds.
func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
}

// AddDomainEvent adds a domain event to be published
func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.domainEvents = append(a.domainEvents, event)
}

// GetDomainEvents returns all pending domain events
func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent {
	return a.domainEvents
}

// ClearDomainEvents clears the pending domain events
func (a *BaseAggregateRoot) ClearDomainEvents() {
	a.domainEvents = nil
}

// NewBaseAggregateRoot creates a new tenant-scoped aggregate root at version 1
func NewBaseAggregateRoot(tenantID uuid.UUID) BaseAggregateRoot {
	return BaseAggregateRoot{
		TenantEntity: NewTenantEntity(tenantID),
		Version:      1,
		domainEvents: make([]DomainEvent, 0),
	}
}
