package partner

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/invoiceflow/backend/internal/domain/shared"
)

// Vendor represents the issuing party of an invoice.
//
// Vendors are deduplicated by exact name match at ingestion time: the first
// sighting of a name creates the row and later sightings reuse it unchanged.
// Name uniqueness is best-effort; variants that differ in whitespace or case
// are deliberately kept as separate vendors.
type Vendor struct {
	shared.BaseEntity
	Name        string `gorm:"type:varchar(255);not null;index"`
	TaxID       *string
	Address     *string
	PartyNumber *string
}

// TableName returns the table name for GORM
func (Vendor) TableName() string {
	return "vendors"
}

// NewVendor creates a new vendor with the required name
func NewVendor(name string) (*Vendor, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_VENDOR_NAME", "Vendor name cannot be empty")
	}
	return &Vendor{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
	}, nil
}

// VendorRepository defines persistence operations for vendors
type VendorRepository interface {
	// FindByName returns the first vendor whose name matches exactly,
	// or shared.ErrNotFound.
	FindByName(ctx context.Context, name string) (*Vendor, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Vendor, error)
	// FindNamesByIDs resolves vendor display names for a set of IDs.
	FindNamesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
	Create(ctx context.Context, vendor *Vendor) error
}
