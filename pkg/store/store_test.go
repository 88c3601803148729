package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/matzehuels/copper/pkg/drc"
	cerrors "github.com/matzehuels/copper/pkg/errors"
)

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore error: %v", err)
	}
	defer s.Close()

	list, err := s.Load(ctx, "divider")
	if err != nil || len(list) != 0 {
		t.Fatalf("Load of unknown design = %v, %v", list, err)
	}

	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	b := drc.Exclusion{Fingerprint: "trace_clearance:trace:2|trace:3", Rule: drc.RuleTraceClearance, Author: "ana", Created: created}
	a := drc.Exclusion{Fingerprint: "courtyard_overlap:component:R1|component:R2", Rule: drc.RuleCourtyardOverlap}
	for _, x := range []drc.Exclusion{b, a} {
		if err := s.Save(ctx, "divider", x); err != nil {
			t.Fatalf("Save error: %v", err)
		}
	}

	list, err = s.Load(ctx, "divider")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if len(list) != 2 || list[0].Fingerprint != a.Fingerprint {
		t.Fatalf("Load should return sorted exclusions, got %+v", list)
	}
	if !list[1].Created.Equal(created) || list[1].Author != "ana" {
		t.Errorf("Audit fields should survive, got %+v", list[1])
	}

	// Saving the same fingerprint replaces the record.
	a.Note = "reviewed"
	if err := s.Save(ctx, "divider", a); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	excl, err := Sync(ctx, s, "divider")
	if err != nil {
		t.Fatalf("Sync error: %v", err)
	}
	if excl.Len() != 2 || excl.List()[0].Note != "reviewed" {
		t.Errorf("Save should replace by fingerprint, got %+v", excl.List())
	}

	if err := s.Delete(ctx, "divider", b.Fingerprint); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if err := s.Delete(ctx, "divider", b.Fingerprint); !errors.Is(err, ErrNotFound) {
		t.Errorf("Second delete should be ErrNotFound, got %v", err)
	}

	if other, _ := s.Load(ctx, "other"); len(other) != 0 {
		t.Errorf("Designs should be isolated, got %+v", other)
	}
}

func TestFileStoreValidates(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore error: %v", err)
	}

	if err := s.Save(ctx, "divider", drc.Exclusion{}); !cerrors.Is(err, cerrors.ErrCodeInvalidInput) {
		t.Errorf("Save without fingerprint should fail, got %v", err)
	}
	if _, err := s.Load(ctx, "../escape"); err == nil {
		t.Error("Load should reject path-like design keys")
	}
}

func TestNewMongoStoreRequiresURI(t *testing.T) {
	if _, err := NewMongoStore(context.Background(), MongoConfig{}); err == nil {
		t.Error("NewMongoStore should reject an empty URI")
	}
}
