package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/chirp/internal/common"
	"github.com/dmitrijs2005/chirp/internal/dbx"
	"github.com/dmitrijs2005/chirp/internal/models"
	"github.com/dmitrijs2005/chirp/internal/session"
	"github.com/dmitrijs2005/chirp/internal/verification"
)

type RegisterInput struct {
	Username string `json:"username" validate:"required,max=64"`
	Email    string `json:"email" validate:"required,max=255,email"`
	Password string `json:"password" validate:"required"`
	Confirm  string `json:"confirm" validate:"required,eqfield=Password"`
}

// RegistrationResult is the new, sanitized user plus the activation mail
// outcome.
type RegistrationResult struct {
	User *models.User
	Notice
}

type LoginResult struct {
	User    *models.User
	Session session.Session
}

type ResetPasswordInput struct {
	Email    string `json:"email" validate:"required,max=255,email"`
	Code     string `json:"code" validate:"required"`
	Password string `json:"password" validate:"required"`
	Confirm  string `json:"confirm" validate:"required,eqfield=Password"`
}

type ChangePasswordInput struct {
	Current  string `json:"current" validate:"required"`
	Password string `json:"password" validate:"required"`
	Confirm  string `json:"confirm" validate:"required,eqfield=Password"`
}

// AccountService handles everything about a user's own account.
type AccountService struct {
	base

	dummyOnce sync.Once
	dummyHash string
}

func NewAccountService(deps Dependencies) *AccountService {
	return &AccountService{base: base{deps}}
}

// Register creates an inactive user and a pending activation code in one
// transaction, then mails the code. A failed mail is reported as a warning
// and the account stays registered.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*RegistrationResult, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := checkInput(in); err != nil {
		return nil, err
	}

	if err := s.checkAvailable(ctx, in.Username, in.Email, ""); err != nil {
		return nil, err
	}

	cred, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return nil, s.hashError(ctx, err)
	}

	now := s.Clock.Now()
	user := &models.User{
		ID:           uuid.NewString(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: cred.Hash,
		Salt:         cred.Salt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	var code verification.Code
	err = dbx.WithTx(ctx, s.DB, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.Repos.Users(tx).Create(ctx, user); err != nil {
			return err
		}
		var err error
		code, err = s.Codes.Bind(tx).Issue(ctx, user.ID, models.PurposeActivation)
		return err
	})
	if err != nil {
		return nil, s.fail(ctx, "register", err)
	}

	s.Logger.Info(ctx, "user registered", "user_id", user.ID)

	res := &RegistrationResult{User: user.Sanitized(), Notice: Notice{ExpiresAt: code.ExpiresAt}}
	if err := s.Mailer.SendActivation(ctx, user.Email, code.Value, code.ExpiresAt); err != nil {
		res.Warning = s.mailWarning(ctx, "activation", err)
	}
	return res, nil
}

// checkAvailable reports ErrUsernameTaken or ErrEmailTaken. Empty values
// are skipped; exceptID lets a user keep their own name or address.
func (s *AccountService) checkAvailable(ctx context.Context, username, email, exceptID string) error {
	repo := s.Repos.Users(s.DB)

	if username != "" {
		taken, err := repo.UsernameTaken(ctx, username, exceptID)
		if err != nil {
			return s.fail(ctx, "username check", err)
		}
		if taken {
			return common.ErrUsernameTaken
		}
	}

	if email != "" {
		taken, err := repo.EmailTaken(ctx, email, exceptID)
		if err != nil {
			return s.fail(ctx, "email check", err)
		}
		if taken {
			return common.ErrEmailTaken
		}
	}
	return nil
}

func (s *AccountService) UsernameExists(ctx context.Context, username string) (bool, error) {
	taken, err := s.Repos.Users(s.DB).UsernameTaken(ctx, strings.TrimSpace(username), "")
	if err != nil {
		return false, s.fail(ctx, "username check", err)
	}
	return taken, nil
}

func (s *AccountService) EmailExists(ctx context.Context, email string) (bool, error) {
	taken, err := s.Repos.Users(s.DB).EmailTaken(ctx, strings.TrimSpace(email), "")
	if err != nil {
		return false, s.fail(ctx, "email check", err)
	}
	return taken, nil
}

// Authenticate checks username and password and returns the user without
// credential fields. Every failure, including storage errors and unknown
// usernames, comes back as common.ErrInvalidCredentials.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.Repos.Users(s.DB).GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			s.Logger.Error(ctx, "user lookup failed", "error", err)
		}
		// spend the same bcrypt time as a real check
		_, _ = s.Hasher.Verify(password, s.dummy())
		return nil, common.ErrInvalidCredentials
	}

	ok, err := s.Hasher.Verify(password, user.PasswordHash)
	if err != nil {
		s.Logger.Error(ctx, "stored credential is unusable", "user_id", user.ID, "error", err)
		return nil, common.ErrInvalidCredentials
	}
	if !ok {
		return nil, common.ErrInvalidCredentials
	}
	if s.Hasher.NeedsRehash(user.PasswordHash) {
		s.rehash(ctx, user.ID, password)
	}
	return user.Sanitized(), nil
}

// rehash stores password again at the configured cost. Failures only cost
// the upgrade, so they are logged and dropped.
func (s *AccountService) rehash(ctx context.Context, userID, password string) {
	cred, err := s.Hasher.Hash(password)
	if err == nil {
		err = s.Repos.Users(s.DB).UpdateCredential(ctx, userID, cred.Hash, cred.Salt, s.Clock.Now())
	}
	if err != nil {
		s.Logger.Warn(ctx, "credential upgrade failed", "user_id", userID, "error", err)
		return
	}
	s.Logger.Info(ctx, "credential upgraded", "user_id", userID)
}

// dummy returns a throwaway hash at the configured cost.
func (s *AccountService) dummy() string {
	s.dummyOnce.Do(func() {
		pw, err := common.RandomString(24, common.Alphanumeric)
		if err != nil {
			pw = "chirp"
		}
		if cred, err := s.Hasher.Hash(pw); err == nil {
			s.dummyHash = cred.Hash
		}
	})
	return s.dummyHash
}

// Login authenticates and starts a session.
func (s *AccountService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}
	sess := s.Sessions.Login(user.Identity())
	s.Logger.Info(ctx, "user logged in", "user_id", user.ID, "session_id", sess.ID)
	return &LoginResult{User: user, Session: sess}, nil
}

func (s *AccountService) Logout(ctx context.Context) {
	if id := s.Sessions.SessionID(); id != "" {
		s.Logger.Info(ctx, "user logged out", "session_id", id)
	}
	s.Sessions.Logout()
}

// ActivateAccount checks the activation code of username and marks the
// account active. A welcome mail follows; its failure is only a warning.
func (s *AccountService) ActivateAccount(ctx context.Context, username, code string) (*Notice, error) {
	user, err := s.Repos.Users(s.DB).GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidCode
		}
		return nil, s.fail(ctx, "activation lookup", err)
	}

	if err := s.redeem(ctx, user.ID, models.PurposeActivation, code); err != nil {
		return nil, err
	}
	s.Logger.Info(ctx, "account activated", "user_id", user.ID)

	notice := &Notice{}
	if err := s.Mailer.SendWelcome(ctx, user.Email, user.Username); err != nil {
		notice.Warning = s.mailWarning(ctx, "welcome", err)
	}
	return notice, nil
}

// ResendActivation issues a fresh activation code for an inactive account.
// Unknown and already active usernames succeed without sending anything.
func (s *AccountService) ResendActivation(ctx context.Context, username string) (*Notice, error) {
	user, err := s.Repos.Users(s.DB).GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return &Notice{}, nil
		}
		return nil, s.fail(ctx, "activation lookup", err)
	}
	if user.IsActive {
		return &Notice{}, nil
	}

	code, err := s.Codes.Issue(ctx, user.ID, models.PurposeActivation)
	if err != nil {
		return nil, s.fail(ctx, "activation reissue", err)
	}

	notice := &Notice{ExpiresAt: code.ExpiresAt}
	if err := s.Mailer.SendActivation(ctx, user.Email, code.Value, code.ExpiresAt); err != nil {
		notice.Warning = s.mailWarning(ctx, "activation", err)
	}
	return notice, nil
}

// RequestPasswordReset mails a reset code to email. The result does not
// depend on whether the address is registered; delivery problems are
// logged only.
func (s *AccountService) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if err := checkVar("email", email, emailRules); err != nil {
		return err
	}

	user, err := s.Repos.Users(s.DB).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.Logger.Info(ctx, "password reset requested for unknown address")
			return nil
		}
		return s.fail(ctx, "reset lookup", err)
	}

	code, err := s.Codes.Issue(ctx, user.ID, models.PurposePasswordReset)
	if err != nil {
		return s.fail(ctx, "reset issue", err)
	}

	if err := s.Mailer.SendPasswordReset(ctx, user.Email, code.Value, code.ExpiresAt); err != nil {
		_ = s.mailWarning(ctx, "password_reset", err)
	}
	return nil
}

// ResetPassword checks the reset code and stores the new credential. The
// new hash and the consumed code are written in one transaction.
func (s *AccountService) ResetPassword(ctx context.Context, in ResetPasswordInput) error {
	in.Email = strings.TrimSpace(in.Email)
	in.Code = strings.TrimSpace(in.Code)
	if err := checkInput(in); err != nil {
		return err
	}

	user, err := s.Repos.Users(s.DB).GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrInvalidCode
		}
		return s.fail(ctx, "reset lookup", err)
	}

	ok, err := s.Codes.Validate(ctx, user.ID, models.PurposePasswordReset, in.Code)
	if err != nil {
		return s.fail(ctx, "reset validate", err)
	}
	if !ok {
		return common.ErrInvalidCode
	}

	cred, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return s.hashError(ctx, err)
	}

	err = dbx.WithTx(ctx, s.DB, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.Repos.Users(tx).UpdateCredential(ctx, user.ID, cred.Hash, cred.Salt, s.Clock.Now()); err != nil {
			return err
		}
		return s.Codes.Bind(tx).Consume(ctx, user.ID, models.PurposePasswordReset)
	})
	if err != nil {
		return s.fail(ctx, "password reset", err)
	}

	s.Logger.Info(ctx, "password reset", "user_id", user.ID)
	return nil
}

// RequestEmailVerification issues a verification code for the logged in
// user's address and mails it. The address counts as unverified until the
// code is redeemed.
func (s *AccountService) RequestEmailVerification(ctx context.Context) (*Notice, error) {
	user, err := s.me(ctx)
	if err != nil {
		return nil, err
	}

	code, err := s.Codes.Issue(ctx, user.ID, models.PurposeEmailVerification)
	if err != nil {
		return nil, s.fail(ctx, "verification issue", err)
	}

	notice := &Notice{ExpiresAt: code.ExpiresAt}
	if err := s.Mailer.SendVerification(ctx, user.Email, code.Value, code.ExpiresAt); err != nil {
		notice.Warning = s.mailWarning(ctx, "verification", err)
	}
	return notice, nil
}

func (s *AccountService) VerifyEmail(ctx context.Context, code string) error {
	id, err := s.currentUser()
	if err != nil {
		return err
	}
	if err := s.redeem(ctx, id.UserID, models.PurposeEmailVerification, code); err != nil {
		return err
	}
	s.Logger.Info(ctx, "email verified", "user_id", id.UserID)
	return nil
}

// redeem validates code and consumes it on success.
func (s *AccountService) redeem(ctx context.Context, userID string, purpose models.Purpose, code string) error {
	ok, err := s.Codes.Validate(ctx, userID, purpose, strings.TrimSpace(code))
	if err != nil {
		return s.fail(ctx, purpose.String()+" validate", err)
	}
	if !ok {
		return common.ErrInvalidCode
	}
	if err := s.Codes.Consume(ctx, userID, purpose); err != nil {
		return s.fail(ctx, purpose.String()+" consume", err)
	}
	return nil
}

// ChangePassword replaces the logged in user's password after checking the
// current one.
func (s *AccountService) ChangePassword(ctx context.Context, in ChangePasswordInput) error {
	if err := checkInput(in); err != nil {
		return err
	}

	user, err := s.me(ctx)
	if err != nil {
		return err
	}
	if err := s.checkPassword(ctx, user, in.Current); err != nil {
		return err
	}

	cred, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return s.hashError(ctx, err)
	}
	if err := s.Repos.Users(s.DB).UpdateCredential(ctx, user.ID, cred.Hash, cred.Salt, s.Clock.Now()); err != nil {
		return s.fail(ctx, "password change", err)
	}

	s.Logger.Info(ctx, "password changed", "user_id", user.ID)
	return nil
}

// ChangeUsername renames the logged in user and updates the session.
func (s *AccountService) ChangeUsername(ctx context.Context, username string) error {
	username = strings.TrimSpace(username)
	if err := checkVar("username", username, usernameRules); err != nil {
		return err
	}

	id, err := s.currentUser()
	if err != nil {
		return err
	}
	if err := s.checkAvailable(ctx, username, "", id.UserID); err != nil {
		return err
	}

	if err := s.Repos.Users(s.DB).UpdateUsername(ctx, id.UserID, username, s.Clock.Now()); err != nil {
		return s.fail(ctx, "username change", err)
	}
	s.Sessions.UpdateDisplayName(username)
	return nil
}

// ChangeEmail stores a new address for the logged in user. The address is
// unverified afterwards and any pending verification code is dropped.
func (s *AccountService) ChangeEmail(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if err := checkVar("email", email, emailRules); err != nil {
		return err
	}

	id, err := s.currentUser()
	if err != nil {
		return err
	}
	if err := s.checkAvailable(ctx, "", email, id.UserID); err != nil {
		return err
	}

	if err := s.Repos.Users(s.DB).UpdateEmail(ctx, id.UserID, email, s.Clock.Now()); err != nil {
		return s.fail(ctx, "email change", err)
	}
	return nil
}

// DeleteAccount removes the logged in user and everything attached to
// them, then logs out. The deletes run in a fixed order inside one
// transaction so no foreign key cascade is needed.
func (s *AccountService) DeleteAccount(ctx context.Context, password string) error {
	user, err := s.me(ctx)
	if err != nil {
		return err
	}
	if err := s.checkPassword(ctx, user, password); err != nil {
		return err
	}

	err = dbx.WithTx(ctx, s.DB, nil, func(ctx context.Context, tx dbx.DBTX) error {
		steps := []func(context.Context, string) error{
			s.Repos.Likes(tx).DeleteByUser,
			s.Repos.Comments(tx).DeleteByUser,
			s.Repos.Follows(tx).DeleteByUser,
			s.Repos.Likes(tx).DeleteOnPostsOf,
			s.Repos.Comments(tx).DeleteOnPostsOf,
			s.Repos.Posts(tx).DeleteByUser,
			s.Repos.Users(tx).Delete,
		}
		for _, step := range steps {
			if err := step(ctx, user.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return s.fail(ctx, "account deletion", err)
	}

	s.Logger.Info(ctx, "account deleted", "user_id", user.ID)
	s.Sessions.Logout()
	return nil
}

// Profile returns the sanitized user with id userID.
func (s *AccountService) Profile(ctx context.Context, userID string) (*models.User, error) {
	if err := checkVar("user_id", userID, idRules); err != nil {
		return nil, err
	}
	user, err := s.Repos.Users(s.DB).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUnknownUser
		}
		return nil, s.fail(ctx, "profile lookup", err)
	}
	return user.Sanitized(), nil
}

func (s *AccountService) ProfileByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.Repos.Users(s.DB).GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUnknownUser
		}
		return nil, s.fail(ctx, "profile lookup", err)
	}
	return user.Sanitized(), nil
}

// Me returns the logged in user's sanitized profile.
func (s *AccountService) Me(ctx context.Context) (*models.User, error) {
	user, err := s.me(ctx)
	if err != nil {
		return nil, err
	}
	return user.Sanitized(), nil
}

// me loads the full row of the logged in user, credentials included.
func (s *AccountService) me(ctx context.Context) (*models.User, error) {
	id, err := s.currentUser()
	if err != nil {
		return nil, err
	}
	user, err := s.Repos.Users(s.DB).GetByID(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// the row went away under us, the session is stale
			s.Sessions.Logout()
			return nil, common.ErrNotLoggedIn
		}
		return nil, s.fail(ctx, "user lookup", err)
	}
	return user, nil
}

// checkPassword is the re-authentication step before sensitive changes.
// A malformed stored hash surfaces as a configuration error here.
func (s *AccountService) checkPassword(ctx context.Context, user *models.User, password string) error {
	ok, err := s.Hasher.Verify(password, user.PasswordHash)
	if err != nil {
		s.Logger.Error(ctx, "stored credential is unusable", "user_id", user.ID, "error", err)
		return err
	}
	if !ok {
		return common.ErrInvalidCredentials
	}
	return nil
}

func (s *AccountService) hashError(ctx context.Context, err error) error {
	if common.Kind(err) != nil {
		return err
	}
	s.Logger.Error(ctx, "password hashing failed", "error", err)
	return &common.Failure{Kind: common.ErrConfiguration, Cause: err}
}
