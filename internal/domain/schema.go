package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// SchemaVersion is written into the "v" field of every persisted record.
// Records without a version are treated as version 0 and upgraded on read.
const SchemaVersion = 1

var ErrUnsupportedSchema = errors.New("unsupported record schema version")

// DefaultTaxRate applies when a product or line item carries no rate.
var DefaultTaxRate = decimal.RequireFromString("0.21")

func init() {
	// amounts travel as JSON numbers, matching the stored records of earlier clients
	decimal.MarshalJSONWithoutQuotes = true
}

// upgradeVersion moves a version-0 record to the current version and rejects
// anything written by a newer schema.
func upgradeVersion(v *int) error {
	switch {
	case *v > SchemaVersion:
		return fmt.Errorf("%w: %d", ErrUnsupportedSchema, *v)
	case *v < 0:
		return fmt.Errorf("%w: %d", ErrUnsupportedSchema, *v)
	}
	*v = SchemaVersion
	return nil
}
