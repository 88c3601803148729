// Package store persists DRC exclusions outside the design file.
//
// Exclusions are audit records: who accepted which violation and why. A
// design file can carry them inline, but teams that share a design usually
// keep them in a store instead:
//   - file: JSON files under ~/.config/copper/exclusions, for the CLI
//   - mongo: a MongoDB collection, for a shared server
//
// Records are grouped by design key, normally the design name, and keyed
// within a design by violation fingerprint. Saving an existing fingerprint
// replaces the record.
//
// # Usage
//
//	st, err := store.NewFileStore("")
//	if err != nil {
//	    return err
//	}
//	list, err := st.Load(ctx, "divider")
//	excl := drc.NewExclusions(list...)
package store

import (
	"context"
	"errors"
	"regexp"

	"github.com/matzehuels/copper/pkg/drc"
	cerrors "github.com/matzehuels/copper/pkg/errors"
)

// ErrNotFound is returned when deleting an exclusion that does not exist.
var ErrNotFound = errors.New("not found")

// Store is the interface for exclusion storage backends.
type Store interface {
	// Load returns the exclusions of a design sorted by fingerprint. An
	// unknown design has none.
	Load(ctx context.Context, design string) ([]drc.Exclusion, error)

	// Save adds or replaces one exclusion.
	Save(ctx context.Context, design string, x drc.Exclusion) error

	// Delete removes one exclusion by fingerprint.
	Delete(ctx context.Context, design, fingerprint string) error

	// Close releases backend resources.
	Close() error
}

// Sync loads a design's exclusions into a fresh set.
func Sync(ctx context.Context, s Store, design string) (*drc.Exclusions, error) {
	list, err := s.Load(ctx, design)
	if err != nil {
		return nil, err
	}
	return drc.NewExclusions(list...), nil
}

// designRegex matches design keys. Keys become file names, so separators
// and dots at the start are not allowed.
var designRegex = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_.-]*$`)

func validateDesign(design string) error {
	if err := cerrors.ValidateName("design", design); err != nil {
		return err
	}
	if !designRegex.MatchString(design) {
		return cerrors.New(cerrors.ErrCodeInvalidInput, "invalid design key: %q", design)
	}
	return nil
}

func validate(design string, x drc.Exclusion) error {
	if err := validateDesign(design); err != nil {
		return err
	}
	if x.Fingerprint == "" {
		return cerrors.New(cerrors.ErrCodeInvalidInput, "exclusion needs a fingerprint")
	}
	return nil
}
