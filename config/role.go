package config

import (
	"fmt"
	"strings"

	"documerge-backend/models"
)

// ParseRole reads a role name as sent by the auth gateway or given on the
// command line. An empty value is a drafter.
func ParseRole(value string) (models.Role, error) {
	role := models.Role(strings.ToLower(strings.TrimSpace(value)))
	if role == "" {
		return models.RoleDrafter, nil
	}
	if !role.Valid() {
		return "", fmt.Errorf("unknown role %q", value)
	}
	return role, nil
}
