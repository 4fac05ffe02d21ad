package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ParseUUIDs parses every id and reports the first invalid one.
func ParseUUIDs(raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q: %w", s, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// HumanNumber builds identifiers such as ORD-20260105-1A2B3C4D.
func HumanNumber(prefix string, at time.Time, id uuid.UUID, length int) string {
	short := strings.ToUpper(strings.ReplaceAll(id.String(), "-", ""))
	if length > len(short) {
		length = len(short)
	}
	return fmt.Sprintf("%s-%s-%s", prefix, at.UTC().Format("20060102"), short[:length])
}
