package types

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Typed failures surfaced by repos and services. Handlers translate them to
// HTTP statuses; nothing below is ever swallowed or silently defaulted.

type NotFoundError struct {
	Resource string
	Ref      string
}

func (e *NotFoundError) Error() string {
	if e.Ref == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Ref)
}

type DuplicateNameError struct {
	Collection string
	Name       string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("entity %q already exists in collection %q", e.Name, e.Collection)
}

type SelfLoopError struct {
	EntityID uuid.UUID
}

func (e *SelfLoopError) Error() string {
	return fmt.Sprintf("relationship source and target are the same entity (%s)", e.EntityID)
}

type AmbiguousReferenceError struct {
	Ref     string
	Matches int
}

func (e *AmbiguousReferenceError) Error() string {
	return fmt.Sprintf("version reference %q is ambiguous (%d digests match)", e.Ref, e.Matches)
}

type ConcurrentModificationError struct {
	EntityID uuid.UUID
	Attempts int
}

func (e *ConcurrentModificationError) Error() string {
	return fmt.Sprintf("entity %s was modified concurrently (%d attempts exhausted)", e.EntityID, e.Attempts)
}

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsDuplicateName(err error) bool {
	var target *DuplicateNameError
	return errors.As(err, &target)
}

func IsSelfLoop(err error) bool {
	var target *SelfLoopError
	return errors.As(err, &target)
}

func IsAmbiguousReference(err error) bool {
	var target *AmbiguousReferenceError
	return errors.As(err, &target)
}

func IsConcurrentModification(err error) bool {
	var target *ConcurrentModificationError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}
