package users

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Accounts implements the account lifecycle over a repository manager and
// a token service. Authorization decisions never trust cached state: every
// check re-reads the record inside the call that needs it.
type Accounts struct {
	repo      RepositoryManager
	tokens    TokenService
	logger    Logger
	useHashid bool
}

var _ AccountService = (*Accounts)(nil)

// NewAccounts creates the account service.
func NewAccounts(repo RepositoryManager, tokens TokenService) *Accounts {
	return &Accounts{
		repo:   repo,
		tokens: tokens,
		logger: defLogger{},
	}
}

func (s *Accounts) WithLogger(logger Logger) *Accounts {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithHashid derives new account IDs from the registration email.
func (s *Accounts) WithHashid(enabled bool) *Accounts {
	s.useHashid = enabled
	return s
}

// Login verifies credentials and issues a token. An unknown email, a
// deactivated account, and a wrong password all report the same error so
// the response never leaks which accounts exist.
func (s *Accounts) Login(ctx context.Context, email, password string) (*UserRecord, string, error) {
	user, err := s.repo.Users().GetByEmail(ctx, email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			s.logger.Debug("Login lookup found no account for %s", email)
			return nil, "", ErrInvalidCredentials
		}
		s.logger.Error("Login lookup failed for %s: %v", email, err)
		return nil, "", WrapInternal(err, "failed to fetch user")
	}

	if !user.Active {
		s.logger.Debug("Login blocked, account %s is inactive", user.ID)
		return nil, "", ErrInvalidCredentials
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		s.logger.Debug("Login password mismatch for %s", user.ID)
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID.String())
	if err != nil {
		return nil, "", WrapInternal(err, "failed to issue token")
	}

	return NewUserRecord(user), token, nil
}

// Register creates an active account with the default role and returns the
// sanitized record along with a token for the new session.
func (s *Accounts) Register(ctx context.Context, username, email, password string) (*UserRecord, error) {
	var created *User

	handler := NewRegisterUserHandler(s.repo)
	err := handler.Execute(ctx, RegisterUserMessage{
		Username:  username,
		Email:     email,
		Password:  password,
		UseHashid: s.useHashid,
		OnResponse: func(u *User) {
			created = u
		},
	})

	if err != nil {
		return nil, err
	}

	if created == nil {
		return nil, goerrors.New("registration returned no record", goerrors.CategoryInternal)
	}

	return NewUserRecord(created), nil
}

// GetByID returns the sanitized record for an active account.
func (s *Accounts) GetByID(ctx context.Context, id string) (*UserRecord, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid user id").
			WithTextCode("INVALID_USER_ID")
	}

	user, err := s.repo.Users().FindByID(ctx, uid, true)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, WrapInternal(err, "failed to fetch user")
	}

	return NewUserRecord(user), nil
}

// List returns every active account.
func (s *Accounts) List(ctx context.Context) ([]*UserRecord, error) {
	users, err := s.repo.Users().ListActive(ctx)
	if err != nil {
		return nil, WrapInternal(err, "failed to list users")
	}

	records := make([]*UserRecord, 0, len(users))
	for _, u := range users {
		records = append(records, NewUserRecord(u))
	}

	return records, nil
}

// Update applies a partial update to an active account. Zero-value fields
// are left untouched; a new password is re-hashed before it is stored.
func (s *Accounts) Update(ctx context.Context, id string, input UpdateUserInput) (*UserRecord, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid user id").
			WithTextCode("INVALID_USER_ID")
	}

	var updated *User

	err = s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		current, err := s.repo.Users().FindByIDTx(ctx, tx, uid, true)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return ErrUserNotFound
			}
			return WrapInternal(err, "failed to fetch user")
		}

		record := &User{ID: current.ID}
		record.Username = input.Username
		record.Email = input.Email

		if input.Password != "" {
			hash, err := HashPassword(input.Password)
			if err != nil {
				return err
			}
			record.PasswordHash = hash
		}

		updated, err = s.repo.Users().UpdateTx(ctx, tx, record,
			repository.UpdateByID(current.ID.String()),
		)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not update user")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return nil, richErr
		}
		return nil, WrapInternal(err, "user update transaction failed")
	}

	return NewUserRecord(updated), nil
}

// Deactivate soft-deletes an account. The record stays in the store but
// disappears from every read path; deactivating an already inactive or
// unknown account reports not found.
func (s *Accounts) Deactivate(ctx context.Context, id string) (*UserRecord, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid user id").
			WithTextCode("INVALID_USER_ID")
	}

	user, err := s.repo.Users().Deactivate(ctx, uid)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, WrapInternal(err, "failed to deactivate user")
	}

	return NewUserRecord(user), nil
}

// AuthStatus reissues a token for an authenticated account.
func (s *Accounts) AuthStatus(ctx context.Context, record *UserRecord) (*AuthStatusRecord, error) {
	if record == nil {
		return nil, ErrTokenNotValid
	}

	token, err := s.tokens.Issue(record.ID.String())
	if err != nil {
		return nil, WrapInternal(err, "failed to issue token")
	}

	return &AuthStatusRecord{
		Email:    record.Email,
		Username: record.Username,
		Token:    token,
	}, nil
}

// Authenticate resolves an Authorization header into the account it names.
func (s *Accounts) Authenticate(ctx context.Context, authorization string) (*UserRecord, error) {
	raw, err := BearerFromHeader(authorization)
	if err != nil {
		return nil, err
	}

	claims, err := s.tokens.Validate(raw)
	if err != nil {
		return nil, err
	}

	return s.ResolveAccount(ctx, claims.UserID())
}

// ResolveAccount maps a token payload identifier onto a live account.
// A missing record means the token no longer names anyone; an inactive
// record is reported distinctly so the caller knows the account exists
// but is blocked.
func (s *Accounts) ResolveAccount(ctx context.Context, id string) (*UserRecord, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrTokenNotValid
	}

	user, err := s.repo.Users().FindByID(ctx, uid, false)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrTokenNotValid
		}
		return nil, WrapInternal(err, "failed to resolve account")
	}

	if !user.Active {
		return nil, ErrUserInactive
	}

	return NewUserRecord(user), nil
}
