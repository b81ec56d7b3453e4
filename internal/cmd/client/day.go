package client

import (
	"strings"
	"time"

	"github.com/blizx/zenith/internal/domain"
)

// currentDay returns the local calendar day in planner format.
func currentDay() string {
	return time.Now().Format(domain.DateLayout)
}

// parseDay validates a planner day string.
func parseDay(value string) (time.Time, error) {
	return time.Parse(domain.DateLayout, value)
}

// parseCategory maps a lowercase command argument to a category.
func parseCategory(value string) (domain.Category, bool) {
	for _, category := range domain.Categories() {
		if strings.EqualFold(string(category), value) {
			return category, true
		}
	}
	return "", false
}
