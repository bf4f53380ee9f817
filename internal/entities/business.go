package entities

import (
	"encoding/json"
	"fmt"
	"time"
)

// MetadataPermissionsKey is the metadata key holding the permission override sub-map
const MetadataPermissionsKey = "permissions"

// Business represents a player-owned business with a treasury and an associated job
type Business struct {
	ID        int64          // Business identifier
	Name      string         // Display name
	Owner     string         // Citizen ID of the owner
	JobName   string         // Job this business is bound to (e.g., "police")
	Funds     int64          // Treasury balance in minor currency units, never negative
	Metadata  map[string]any // Open key/value map, see MetadataPermissionsKey
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks if the business is valid for creation
func (b *Business) Validate() error {
	if b.Name == "" {
		return fmt.Errorf("%w: business name is required", ErrInvalidInput)
	}
	if b.Owner == "" {
		return fmt.Errorf("%w: business owner is required", ErrInvalidInput)
	}
	if b.JobName == "" {
		return fmt.Errorf("%w: business job name is required", ErrInvalidInput)
	}
	if b.Funds < 0 {
		return fmt.Errorf("%w: business funds cannot be negative", ErrInvalidInput)
	}
	return nil
}

// IsOwner reports whether citizenID is the recorded owner
func (b *Business) IsOwner(citizenID string) bool {
	return citizenID != "" && b.Owner == citizenID
}

// PermissionOverrides returns the raw permission override sub-map, or nil
func (b *Business) PermissionOverrides() map[string]any {
	if b.Metadata == nil {
		return nil
	}
	raw, ok := b.Metadata[MetadataPermissionsKey].(map[string]any)
	if !ok {
		return nil
	}
	return raw
}

// MarshalMetadata serializes the metadata map to JSON for storage
func (b *Business) MarshalMetadata() ([]byte, error) {
	if b.Metadata == nil {
		return []byte("{}"), nil
	}
	data, err := json.Marshal(b.Metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal business metadata: %w", err)
	}
	return data, nil
}

// UnmarshalMetadata deserializes stored JSON into the metadata map
func (b *Business) UnmarshalMetadata(data []byte) error {
	b.Metadata = map[string]any{}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, &b.Metadata); err != nil {
		return fmt.Errorf("failed to unmarshal business metadata: %w", err)
	}
	return nil
}

// Clone returns a deep copy of the business
func (b *Business) Clone() *Business {
	if b == nil {
		return nil
	}
	out := *b
	out.Metadata = cloneMap(b.Metadata)
	return &out
}

func cloneMap(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	default:
		return v
	}
}
