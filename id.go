package dge

import (
	"fmt"

	"github.com/google/uuid"
)

// idPrefix prefixes every record identifier.
const idPrefix = "DGE-"

// idNamespace is the UUID namespace of derived identifiers.
var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/etnz/dge/records"))

// NewID returns a new record identifier.
//
// Identifiers are UUIDv7 based: they sort in creation order and do not
// collide for records created in the same second.
func NewID() (string, error) {
	u, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("cannot generate record id: %w", err)
	}
	return idPrefix + u.String(), nil
}

// derivedID returns the identifier of a persisted record that has none.
//
// It depends only on the record's position in the collection and its content:
// a file loaded twice gives the same identifiers until it is rewritten with
// them.
func derivedID(index int, raw []byte) string {
	name := fmt.Appendf(nil, "%d:", index)
	return idPrefix + uuid.NewSHA1(idNamespace, append(name, raw...)).String()
}
