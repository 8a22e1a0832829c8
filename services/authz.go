package services

import (
	"context"
	"errors"

	"civicfix/database"
	"civicfix/models"
)

type DecisionKind int

const (
	Authorized DecisionKind = iota
	Forbidden
	Unauthenticated
)

// Decision is the outcome of an authorization predicate.
type Decision struct {
	Kind   DecisionKind
	Reason string
}

func Allow() Decision { return Decision{Kind: Authorized} }

func Deny(reason string) Decision { return Decision{Kind: Forbidden, Reason: reason} }

func NoIdentity() Decision {
	return Decision{Kind: Unauthenticated, Reason: "Unauthorized access"}
}

func (d Decision) Allowed() bool { return d.Kind == Authorized }

func (d Decision) Err() error {
	switch d.Kind {
	case Authorized:
		return nil
	case Unauthenticated:
		return ErrUnauthenticated
	default:
		return &ForbiddenError{Reason: d.Reason}
	}
}

// ForbiddenError carries the client-facing reason; it matches ErrForbidden.
type ForbiddenError struct {
	Reason string
}

func (e *ForbiddenError) Error() string { return e.Reason }

func (e *ForbiddenError) Is(target error) bool { return target == ErrForbidden }

func RequireSelf(caller Caller, email string) Decision {
	if caller.Email == "" {
		return NoIdentity()
	}
	if caller.Email != email {
		return Deny("Forbidden access")
	}
	return Allow()
}

func RequireOwner(caller Caller, issue models.Issue) Decision {
	if caller.Email == "" {
		return NoIdentity()
	}
	if issue.Email != caller.Email {
		return Deny("You can only modify your own issues")
	}
	return Allow()
}

func RequireNotOwner(caller Caller, issue models.Issue) Decision {
	if caller.Email == "" {
		return NoIdentity()
	}
	if issue.Email == caller.Email {
		return Deny("You cannot upvote your own issue")
	}
	return Allow()
}

func RequireAdmin(user models.User) Decision {
	if !user.IsAdmin() {
		return Deny("Admin access required")
	}
	return Allow()
}

// AuthorizeAdmin looks up the caller's stored role.
func (s *Service) AuthorizeAdmin(ctx context.Context, caller Caller) (Decision, error) {
	if caller.Email == "" {
		return NoIdentity(), nil
	}
	user, err := s.store.FindUser(ctx, caller.Email)
	if errors.Is(err, db.ErrNotFound) {
		return Deny("Admin access required"), nil
	}
	if err != nil {
		return Decision{}, err
	}
	return RequireAdmin(user), nil
}

func (s *Service) authorizeSelfOrAdmin(ctx context.Context, caller Caller, email string) (Decision, error) {
	if d := RequireSelf(caller, email); d.Kind != Forbidden {
		return d, nil
	}
	d, err := s.AuthorizeAdmin(ctx, caller)
	if err != nil || d.Allowed() {
		return d, err
	}
	return Deny("Forbidden access"), nil
}
