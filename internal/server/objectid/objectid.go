// Package objectid converts external string identifiers to and from the
// document store's native 12-byte id. Every storage backend uses the same
// representation, so ids look alike regardless of the driver in use.
package objectid

import (
	"fmt"

	"github.com/dmitrijs2005/taxportal/internal/common"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ID is the native identifier, rendered externally as 24 lowercase hex chars.
type ID = primitive.ObjectID

// IsValid reports whether s is a 24-character hex object id.
func IsValid(s string) bool {
	return primitive.IsValidObjectID(s)
}

// Parse converts s to an ID. Malformed input yields common.ErrorInvalidIdentifier.
func Parse(s string) (ID, error) {
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", common.ErrorInvalidIdentifier, s)
	}
	return id, nil
}

// New returns a fresh identifier.
func New() ID {
	return primitive.NewObjectID()
}

// NewHex returns a fresh identifier in its string form.
func NewHex() string {
	return primitive.NewObjectID().Hex()
}
