package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/rbarroso/acolyte-scheduler/internal/store"
)

// Ledger orchestrates seat admission. The store enforces the capacity
// and uniqueness invariants; this layer trims input, collapses the
// precise denial causes into the single outward ErrEnrollmentDenied,
// and keeps connectivity failures distinguishable from denials.
type Ledger struct {
	store store.Ledger
	log   *zap.Logger
}

// NewLedger constructs a Ledger service.
func NewLedger(s store.Ledger, log *zap.Logger) *Ledger {
	return &Ledger{store: s, log: log}
}

// IsEnrolled reports whether the volunteer holds a seat in the mass.
func (l *Ledger) IsEnrolled(ctx context.Context, massID, name string) (bool, error) {
	return l.store.IsEnrolled(ctx, massID, strings.TrimSpace(name))
}

// Enroll claims a seat. Any admission failure — unknown mass, full
// mass, or duplicate enrollment — comes back as ErrEnrollmentDenied;
// the precise cause is logged here and nowhere else. Storage errors
// propagate unchanged.
func (l *Ledger) Enroll(ctx context.Context, massID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("volunteer name is required")
	}

	err := l.store.Enroll(ctx, massID, name)
	if err == nil {
		return nil
	}
	if errors.Is(err, store.ErrNotFound) ||
		errors.Is(err, store.ErrMassFull) ||
		errors.Is(err, store.ErrAlreadyEnrolled) {
		l.log.Info("enrollment denied",
			zap.String("mass_id", massID),
			zap.String("volunteer", name),
			zap.Error(err),
		)
		return ErrEnrollmentDenied
	}
	return fmt.Errorf("enroll: %w", err)
}

// Withdraw releases the volunteer's seat if held and reports whether a
// removal occurred. Two racing withdrawals may both report true or one
// may report false; either outcome is acceptable.
func (l *Ledger) Withdraw(ctx context.Context, massID, name string) (bool, error) {
	return l.store.Withdraw(ctx, massID, strings.TrimSpace(name))
}

// AdminRemove is Withdraw under its correction-flow name: operators use
// it against past masses to retroactively edit who gets credit. The
// semantics are identical; the caller decides which surface is exposed
// where.
func (l *Ledger) AdminRemove(ctx context.Context, massID, name string) (bool, error) {
	return l.Withdraw(ctx, massID, name)
}

// ListEnrolled returns the enrolled names for a mass, ascending.
func (l *Ledger) ListEnrolled(ctx context.Context, massID string) ([]string, error) {
	return l.store.ListEnrolled(ctx, massID)
}
