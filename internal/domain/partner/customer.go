package partner

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/invoiceflow/backend/internal/domain/shared"
)

// Customer represents the receiving party of an invoice. Like vendors,
// customers are deduplicated by exact name and never updated after creation.
type Customer struct {
	shared.BaseEntity
	Name    string `gorm:"type:varchar(255);not null;index"`
	Address *string
}

// TableName returns the table name for GORM
func (Customer) TableName() string {
	return "customers"
}

// NewCustomer creates a new customer with the required name
func NewCustomer(name string) (*Customer, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
	}
	return &Customer{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
	}, nil
}

// CustomerRepository defines persistence operations for customers
type CustomerRepository interface {
	// FindByName returns the first customer whose name matches exactly,
	// or shared.ErrNotFound.
	FindByName(ctx context.Context, name string) (*Customer, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)
	Create(ctx context.Context, customer *Customer) error
}
