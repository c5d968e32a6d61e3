package homeassistant

import (
	"encoding/json"
	"fmt"

	"bambu.printjobs/internal/core/domain"
)

// rawState mirrors only the fields of a /api/states element that are read.
// Attributes stays raw so a malformed map degrades instead of failing the list.
type rawState struct {
	EntityID   *string         `json:"entity_id"`
	Attributes json.RawMessage `json:"attributes"`
}

// decodeStates parses a /api/states body. Elements that are not objects or
// have no string entity_id are dropped; unusable attributes read as empty.
func decodeStates(body []byte) (*domain.Registry, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(body, &elems); err != nil {
		return nil, fmt.Errorf("failed to decode states: %w", err)
	}

	entries := make([]domain.StateEntry, 0, len(elems))
	for _, elem := range elems {
		var raw rawState
		if err := json.Unmarshal(elem, &raw); err != nil {
			continue
		}
		if raw.EntityID == nil || *raw.EntityID == "" {
			continue
		}
		entries = append(entries, domain.StateEntry{
			EntityID:   *raw.EntityID,
			Attributes: decodeAttributes(raw.Attributes),
		})
	}

	return domain.NewRegistry(entries), nil
}

func decodeAttributes(data json.RawMessage) domain.Attributes {
	var attrs map[string]json.RawMessage
	if len(data) == 0 || json.Unmarshal(data, &attrs) != nil {
		return domain.Attributes{}
	}

	var out domain.Attributes
	if v, ok := attrs["friendly_name"]; ok {
		var name string
		if json.Unmarshal(v, &name) == nil {
			out.FriendlyName = &name
		}
	}
	return out
}
