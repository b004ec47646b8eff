package utils

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateEntityID creates a short, human-readable entity ID.
// Format: {kind}-{typeID}-{8charHexUUID}
//
// Example:
//   - Input: kind="bld", typeID="house"
//   - Output: "bld-house-a3f8e2b1"
//
// An empty typeID is omitted: "bld-a3f8e2b1".
func GenerateEntityID(kind, typeID string) string {
	parts := make([]string, 0, 3)
	if kind != "" {
		parts = append(parts, kind)
	}
	if typeID = sanitize(typeID); typeID != "" {
		parts = append(parts, typeID)
	}
	parts = append(parts, generateShortUUID())
	return strings.Join(parts, "-")
}

// sanitize lowercases the type id and replaces whitespace with underscores
func sanitize(typeID string) string {
	return strings.Join(strings.Fields(strings.ToLower(typeID)), "_")
}

// generateShortUUID creates an 8-character hex string from a UUID.
func generateShortUUID() string {
	id := uuid.New()
	return strings.ReplaceAll(id.String(), "-", "")[:8]
}
