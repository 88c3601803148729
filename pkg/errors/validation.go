package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// maxNameLength bounds net, class, layer and reference designator names.
const maxNameLength = 128

// ValidateName validates an identifier used for nets, net classes, layers and
// component references. kind is used only for the error message.
//
// The rules are intentionally conservative:
//   - No empty names
//   - No control characters or whitespace at either end
//   - Maximum length of 128 characters
func ValidateName(kind, name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "%s name cannot be empty", kind)
	}

	if len(name) > maxNameLength {
		return New(ErrCodeInvalidInput, "%s name too long (max %d characters)", kind, maxNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "%s name contains invalid control characters", kind)
		}
	}

	if strings.TrimSpace(name) != name {
		return New(ErrCodeInvalidInput, "%s name %q has leading or trailing whitespace", kind, name)
	}

	return nil
}

// refRegex matches reference designators such as "R1", "U12" or "J1A".
var refRegex = regexp.MustCompile(`^[A-Za-z_#]+[A-Za-z0-9_]*$`)

// ValidateRef validates a component reference designator.
func ValidateRef(ref string) error {
	if err := ValidateName("component", ref); err != nil {
		return err
	}

	if !refRegex.MatchString(ref) {
		return New(ErrCodeInvalidInput, "invalid reference designator: %q", ref)
	}

	return nil
}

// ValidatePinNumber validates a pin number or name on a component.
// Pin numbers may not contain '.', which separates the reference from the
// pin in the "R1.2" notation.
func ValidatePinNumber(pin string) error {
	if err := ValidateName("pin", pin); err != nil {
		return err
	}

	if strings.ContainsAny(pin, ". ") {
		return New(ErrCodeInvalidInput, "pin number %q cannot contain '.' or spaces", pin)
	}

	return nil
}

// ValidatePath validates a relative file path supplied by a remote caller.
// It prevents path traversal and rejects absolute or Windows-style paths.
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}
