package utils

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// GenerateID returns a prefixed uuid-derived identifier, e.g. "b-1f3a...".
func GenerateID(prefix string) string {
	return prefix + "-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:20]
}

// ParsePagination reads page/limit query values with sane defaults.
func ParsePagination(pageStr, limitStr string) (page, limit int) {
	page = 1
	limit = 20

	if pageStr != "" {
		if parsed, err := strconv.Atoi(pageStr); err == nil && parsed > 0 {
			page = parsed
		}
	}
	if limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}
	return page, limit
}

func Contains(slice []string, value string) bool {
	for _, v := range slice {
		if v == value {
			return true
		}
	}
	return false
}
