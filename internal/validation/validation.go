// Package validation provides input validation for report configuration.
package validation

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/xtxerr/nmonreport/internal/constants"
)

// =============================================================================
// Name Validation
// =============================================================================

// NameRules defines the validation rules for names.
type NameRules struct {
	MinLength    int
	MaxLength    int
	AllowDots    bool
	AllowHyphens bool
	AllowUnders  bool
}

// TagRules returns the rules for record-kind tags such as CPU_ALL or DISKREAD.
func TagRules() NameRules {
	return NameRules{
		MinLength:    1,
		MaxLength:    64,
		AllowDots:    false,
		AllowHyphens: true,
		AllowUnders:  true,
	}
}

// IsHidden reports whether a directory entry is hidden. Host directories
// are otherwise named freely, spaces and punctuation included.
func IsHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// ValidateName validates a name according to the given rules.
func ValidateName(name string, rules NameRules) error {
	if len(name) < rules.MinLength {
		return fmt.Errorf("name too short: minimum %d characters required", rules.MinLength)
	}
	if len(name) > rules.MaxLength {
		return fmt.Errorf("name too long: maximum %d characters allowed", rules.MaxLength)
	}

	if name == "." || name == ".." {
		return fmt.Errorf("name cannot be '.' or '..'")
	}

	if strings.HasPrefix(name, ".") {
		return fmt.Errorf("name cannot start with '.'")
	}

	for i, r := range name {
		if r < 32 || r == 127 {
			return fmt.Errorf("name cannot contain control characters at position %d", i)
		}
		if r == '/' || r == '\\' {
			return fmt.Errorf("name cannot contain path separators at position %d", i)
		}
		if !isAllowedNameChar(r, rules) {
			return fmt.Errorf("invalid character '%c' at position %d", r, i)
		}
	}

	return nil
}

func isAllowedNameChar(r rune, rules NameRules) bool {
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		return true
	}
	switch r {
	case '.':
		return rules.AllowDots
	case '-':
		return rules.AllowHyphens
	case '_':
		return rules.AllowUnders
	}
	return false
}

// =============================================================================
// Tag Validation
// =============================================================================

// ValidateTag validates a metric tag selected for reporting. Structural
// record kinds (host info, markers, config dumps) never carry metrics.
func ValidateTag(tag string) error {
	if err := ValidateName(tag, TagRules()); err != nil {
		return fmt.Errorf("tag %q: %w", tag, err)
	}
	switch tag {
	case constants.TagHostInfo, constants.TagMarker, constants.TagConfigDump:
		return fmt.Errorf("tag %q is a structural record, not a metric", tag)
	}
	return nil
}

// ValidateTags validates every tag and rejects duplicates.
func ValidateTags(tags []string) error {
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		if err := ValidateTag(tag); err != nil {
			return err
		}
		if _, dup := seen[tag]; dup {
			return fmt.Errorf("tag %q listed twice", tag)
		}
		seen[tag] = struct{}{}
	}
	return nil
}

// =============================================================================
// Filter Validation
// =============================================================================

// ValidateHourWindow checks 0 <= start < end <= 24.
func ValidateHourWindow(start, end int) error {
	if start < 0 || start > 23 {
		return fmt.Errorf("start hour %d out of range [0, 23]", start)
	}
	if end < 1 || end > 24 {
		return fmt.Errorf("end hour %d out of range [1, 24]", end)
	}
	if start >= end {
		return fmt.Errorf("start hour %d must be before end hour %d", start, end)
	}
	return nil
}

// ValidateDateFilter rejects filters that can never match a date field.
func ValidateDateFilter(filter string) error {
	if strings.Contains(filter, constants.FieldDelimiter) {
		return fmt.Errorf("date filter cannot contain %q", constants.FieldDelimiter)
	}
	for i, r := range filter {
		if r < 32 || r == 127 {
			return fmt.Errorf("date filter cannot contain control characters at position %d", i)
		}
	}
	return nil
}

// =============================================================================
// File Mask Validation
// =============================================================================

// MaskPattern returns the glob matching capture files for mask.
func MaskPattern(mask string) string {
	return "*" + mask + "*" + constants.FileExtension
}

// ValidateMask validates a file name mask. The mask is embedded in a glob,
// so it cannot contain path separators and must leave the glob well-formed.
func ValidateMask(mask string) error {
	if strings.ContainsAny(mask, "/\\") {
		return fmt.Errorf("mask cannot contain path separators")
	}
	if _, err := filepath.Match(MaskPattern(mask), ""); err != nil {
		return fmt.Errorf("mask %q: %w", mask, err)
	}
	return nil
}
