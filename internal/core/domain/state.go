package domain

// Attributes is the subset of an entity's attribute map that is consumed.
// A nil FriendlyName means the attribute was absent.
type Attributes struct {
	FriendlyName *string `json:"friendly_name,omitempty"`
}

// StateEntry is one entity in the host platform's state registry.
type StateEntry struct {
	EntityID   string     `json:"entity_id"`
	Attributes Attributes `json:"attributes"`
}

// Registry is a read-only, order-preserving view of the host state registry.
type Registry struct {
	entries []StateEntry
}

// NewRegistry copies entries so later mutation by the caller is not observed.
func NewRegistry(entries []StateEntry) *Registry {
	cp := make([]StateEntry, len(entries))
	copy(cp, entries)
	return &Registry{entries: cp}
}

// Entries returns the entries in registry iteration order. Safe on a nil Registry.
func (r *Registry) Entries() []StateEntry {
	if r == nil {
		return nil
	}
	return r.entries
}

func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.entries)
}

// StringPtr is a helper for building Attributes literals.
func StringPtr(s string) *string {
	return &s
}
