package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateOrderNumber returns ORD-<YYYYMMDD>-<4 random characters>. The
// suffix comes from a fresh random UUID on every call; collisions are
// possible but rare.
func GenerateOrderNumber(at time.Time) string {
	suffix := strings.ToUpper(uuid.NewString()[:4])
	return "ORD-" + at.Format("20060102") + "-" + suffix
}
