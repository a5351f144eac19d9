package sim

import "fmt"

// PrototypeID names a spawnable prop template.
type PrototypeID string

const (
	PrototypeBox      PrototypeID = "box"
	PrototypeSphere   PrototypeID = "sphere"
	PrototypeCylinder PrototypeID = "cylinder"
)

// Prototype describes one entry in the prop catalog. Only its identity
// matters server-side; geometry and materials live on the client.
type Prototype struct {
	ID PrototypeID `json:"id"`
}

// KnownPrototype reports whether the given ID names a built-in template.
func KnownPrototype(id PrototypeID) bool {
	switch id {
	case PrototypeBox, PrototypeSphere, PrototypeCylinder:
		return true
	default:
		return false
	}
}

// Catalog is the fixed ordered set of prototypes a holder can select from.
// Index arithmetic wraps modulo the catalog size.
type Catalog struct {
	entries []Prototype
}

// NewCatalog builds a catalog from the given prototype IDs. Unknown IDs are
// rejected so a misconfigured catalog surfaces at startup rather than on the
// first spawn.
func NewCatalog(ids []PrototypeID) (*Catalog, error) {
	entries := make([]Prototype, 0, len(ids))
	for _, id := range ids {
		if !KnownPrototype(id) {
			return nil, fmt.Errorf("sim: unknown prototype %q", id)
		}
		entries = append(entries, Prototype{ID: id})
	}
	return &Catalog{entries: entries}, nil
}

// DefaultCatalog returns the built-in three-entry catalog used when no
// catalog is configured.
func DefaultCatalog() *Catalog {
	return &Catalog{entries: []Prototype{
		{ID: PrototypeBox},
		{ID: PrototypeSphere},
		{ID: PrototypeCylinder},
	}}
}

// Len reports the number of catalog entries.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// At returns the prototype at the given index, if one exists.
func (c *Catalog) At(index int) (Prototype, bool) {
	if c == nil || index < 0 || index >= len(c.entries) {
		return Prototype{}, false
	}
	return c.entries[index], true
}

// Next returns the index that follows the given one, wrapping at the end.
func (c *Catalog) Next(index int) int {
	if c.Len() == 0 {
		return 0
	}
	return (index + 1) % c.Len()
}

// Previous returns the index that precedes the given one, wrapping at zero.
func (c *Catalog) Previous(index int) int {
	if c.Len() == 0 {
		return 0
	}
	return (index - 1 + c.Len()) % c.Len()
}

// IDs returns the ordered prototype IDs, for snapshots and diagnostics.
func (c *Catalog) IDs() []PrototypeID {
	if c == nil {
		return nil
	}
	ids := make([]PrototypeID, len(c.entries))
	for i, entry := range c.entries {
		ids[i] = entry.ID
	}
	return ids
}
