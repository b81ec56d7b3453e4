package domain

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/blizx/zenith/internal/platform/errors"
	"github.com/blizx/zenith/internal/platform/id"
)

// SubCategory is the focus-board tier a priority item belongs to.
type SubCategory string

const (
	SubCategoryMustDo   SubCategory = "Must Do"
	SubCategoryShouldDo SubCategory = "Should Do"
	SubCategoryBacklog  SubCategory = "Backlog"
)

// SubCategories lists all valid tiers in board order.
func SubCategories() []SubCategory {
	return []SubCategory{SubCategoryMustDo, SubCategoryShouldDo, SubCategoryBacklog}
}

// Valid reports whether the sub-category is one of the known tiers.
func (s SubCategory) Valid() bool {
	switch s {
	case SubCategoryMustDo, SubCategoryShouldDo, SubCategoryBacklog:
		return true
	}
	return false
}

var (
	// ErrPriorityEmptyText indicates a missing priority text.
	ErrPriorityEmptyText = apperrors.New(apperrors.CodePriorityEmptyText, "priority text is required")
	// ErrPriorityInvalidCategory indicates an unknown category value.
	ErrPriorityInvalidCategory = apperrors.New(apperrors.CodePriorityInvalidCategory, "priority category is not recognized")
	// ErrPriorityInvalidSubCategory indicates an unknown sub-category value.
	ErrPriorityInvalidSubCategory = apperrors.New(apperrors.CodePriorityInvalidSubCategory, "priority sub-category is not recognized")
)

// PriorityItem is a focus-board entry scoped to a (category, sub-category) pair.
type PriorityItem struct {
	ID          string      `json:"id"`
	UserID      string      `json:"user_id"`
	Text        string      `json:"text"`
	Category    Category    `json:"category"`
	SubCategory SubCategory `json:"sub_category"`
	Completed   bool        `json:"completed"`
	CreatedAt   time.Time   `json:"created_at"`
}

// CreatePriorityItemInput describes the metadata needed to create a priority item.
type CreatePriorityItemInput struct {
	UserID      string
	Text        string
	Category    Category
	SubCategory SubCategory
}

// NormalizeCreatePriorityItemInput trims strings and validates enums.
func NormalizeCreatePriorityItemInput(input CreatePriorityItemInput) (CreatePriorityItemInput, error) {
	input.UserID = strings.TrimSpace(input.UserID)
	input.Text = strings.TrimSpace(input.Text)

	if input.Text == "" {
		return CreatePriorityItemInput{}, ErrPriorityEmptyText
	}
	if !input.Category.Valid() {
		return CreatePriorityItemInput{}, ErrPriorityInvalidCategory
	}
	if !input.SubCategory.Valid() {
		return CreatePriorityItemInput{}, ErrPriorityInvalidSubCategory
	}
	return input, nil
}

// CreatePriorityItem builds a priority item with a generated identifier and
// creation time. New items start incomplete.
func CreatePriorityItem(input CreatePriorityItemInput, now func() time.Time, idGenerator func() (string, error)) (PriorityItem, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	normalized, err := NormalizeCreatePriorityItemInput(input)
	if err != nil {
		return PriorityItem{}, err
	}

	itemID, err := idGenerator()
	if err != nil {
		return PriorityItem{}, fmt.Errorf("generate priority item id: %w", err)
	}

	return PriorityItem{
		ID:          itemID,
		UserID:      normalized.UserID,
		Text:        normalized.Text,
		Category:    normalized.Category,
		SubCategory: normalized.SubCategory,
		Completed:   false,
		CreatedAt:   now().UTC(),
	}, nil
}
