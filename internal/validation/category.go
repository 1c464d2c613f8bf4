package validation

import (
	"regexp"
	"strings"

	"github.com/digibook/digibook/internal/model"
)

var hexColorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// CategoryResult is the outcome of category validation.
type CategoryResult struct {
	Sanitized model.Category
	Errors    []Issue
	OK        bool
}

// ValidateCategory trims the name and rejects duplicates against the
// existing set, compared case-insensitively.
func ValidateCategory(input model.Category, existing []model.Category) CategoryResult {
	var errs []Issue

	sanitized := input
	sanitized.Name = strings.TrimSpace(input.Name)
	if sanitized.Name == "" {
		errs = append(errs, issuef(CodeEmptyName, "category name cannot be empty"))
	}

	lowered := strings.ToLower(sanitized.Name)
	for _, cat := range existing {
		if cat.ID != input.ID && strings.ToLower(cat.Name) == lowered && lowered != "" {
			errs = append(errs, issuef(CodeDuplicateName, "category %q already exists", cat.Name))
			break
		}
	}

	if sanitized.Color != "" && !hexColorPattern.MatchString(sanitized.Color) {
		errs = append(errs, issuef(CodeInvalidColor, "color %q is not a hex color", sanitized.Color))
	}

	return CategoryResult{Sanitized: sanitized, Errors: errs, OK: len(errs) == 0}
}
