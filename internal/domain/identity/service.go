package identity

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hms/hms/internal/domain/audit"
	"github.com/hms/hms/internal/platform/apperr"
	"github.com/hms/hms/internal/platform/auth"
)

type Service struct {
	repo   Repository
	issuer *auth.TokenIssuer
	audit  audit.Recorder
}

func NewService(repo Repository, issuer *auth.TokenIssuer, recorder audit.Recorder) *Service {
	return &Service{repo: repo, issuer: issuer, audit: recorder}
}

// ResolveIdentity implements auth.IdentityResolver for the gate middleware.
func (s *Service) ResolveIdentity(ctx context.Context, id uuid.UUID) (*auth.Identity, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return u.Identity(), nil
}

// Register creates a staff account. Unauthenticated callers always get
// general_staff; only an admin may assign another role.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return nil, apperr.Validation("username, email and password are required")
	}

	actor := auth.IdentityFromContext(ctx)
	role := auth.RoleGeneralStaff
	if in.Role != "" {
		if !auth.ValidRole(in.Role) {
			return nil, apperr.Validation("unknown role: %s", in.Role)
		}
		if actor == nil || actor.Role != auth.RoleAdmin {
			// Role requests from non-admins are pinned, not rejected.
			role = auth.RoleGeneralStaff
		} else {
			role = auth.Role(in.Role)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	actorID, actorName := audit.Actor(actor)
	resID, resType := audit.Ref(audit.ResourceUser, user.ID)
	_ = s.audit.Record(ctx, audit.Entry{
		UserID:     actorID,
		Username:   actorName,
		ActionType: audit.ActionUserRegister,
		Details: fmt.Sprintf("New user registered: %s (%s) with role %s",
			user.Username, user.Email, user.Role),
		ResourceID:   resID,
		ResourceType: resType,
	})

	return user, nil
}

// Login verifies credentials and issues a signed session token. Failed
// attempts are audited too.
func (s *Service) Login(ctx context.Context, email, password string) (*User, string, error) {
	if email == "" || password == "" {
		return nil, "", apperr.Validation("email and password are required")
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		_ = s.audit.Record(ctx, audit.Entry{
			Username:   email,
			ActionType: audit.ActionUserLogin,
			Details:    fmt.Sprintf("Failed login attempt for email: %s", email),
		})
		return nil, "", apperr.Authentication("invalid credentials")
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		resID, resType := audit.Ref(audit.ResourceUser, user.ID)
		uid := user.ID
		_ = s.audit.Record(ctx, audit.Entry{
			UserID:       &uid,
			Username:     user.Username,
			ActionType:   audit.ActionUserLogin,
			Details:      fmt.Sprintf("Failed login attempt for user: %s (incorrect password)", user.Username),
			ResourceID:   resID,
			ResourceType: resType,
		})
		return nil, "", apperr.Authentication("invalid credentials")
	}

	token, err := s.issuer.Issue(user.ID, user.Role)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}

	resID, resType := audit.Ref(audit.ResourceUser, user.ID)
	uid := user.ID
	_ = s.audit.Record(ctx, audit.Entry{
		UserID:       &uid,
		Username:     user.Username,
		ActionType:   audit.ActionUserLogin,
		Details:      fmt.Sprintf("User logged in: %s (%s)", user.Username, user.Email),
		ResourceID:   resID,
		ResourceType: resType,
	})

	return user, token, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*User, error) {
	return s.repo.List(ctx)
}

// Update applies a partial patch. Role changes require an admin actor; a new
// password is re-hashed here.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	actor := auth.IdentityFromContext(ctx)

	if in.Username != nil && *in.Username != "" {
		user.Username = *in.Username
	}
	if in.Email != nil && *in.Email != "" {
		user.Email = *in.Email
	}
	if in.Role != nil && *in.Role != "" {
		if actor == nil || actor.Role != auth.RoleAdmin {
			return nil, apperr.Authorization("only admins may change roles")
		}
		if !auth.ValidRole(*in.Role) {
			return nil, apperr.Validation("unknown role: %s", *in.Role)
		}
		user.Role = auth.Role(*in.Role)
	}
	if in.Password != nil && *in.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	actorID, actorName := audit.Actor(actor)
	resID, resType := audit.Ref(audit.ResourceUser, user.ID)
	_ = s.audit.Record(ctx, audit.Entry{
		UserID:       actorID,
		Username:     actorName,
		ActionType:   audit.ActionUserUpdate,
		Details:      fmt.Sprintf("Updated user %s (role %s)", user.Username, user.Role),
		ResourceID:   resID,
		ResourceType: resType,
	})

	return user, nil
}

// Delete removes a user. The audit entry keeps the username so the trail
// stays readable after the record is gone.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	actorID, actorName := audit.Actor(auth.IdentityFromContext(ctx))
	resID, resType := audit.Ref(audit.ResourceUser, id)
	_ = s.audit.Record(ctx, audit.Entry{
		UserID:       actorID,
		Username:     actorName,
		ActionType:   audit.ActionUserDelete,
		Details:      fmt.Sprintf("Deleted user %s (%s)", user.Username, user.Email),
		ResourceID:   resID,
		ResourceType: resType,
	})
	return nil
}
