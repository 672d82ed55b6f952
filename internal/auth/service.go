package auth

import (
	"log/slog"
	"time"

	"github.com/massiben/rh-backend/internal"
	"github.com/massiben/rh-backend/internal/datastore"
)

// Service performs authentication against the users and sessions collections
// of the injected store.
type Service struct {
	store  *datastore.Store
	tokens TokenGenerator
	logger *slog.Logger
}

func NewService(store *datastore.Store, tokens TokenGenerator, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		tokens: tokens,
		logger: logger,
	}
}

// Login scans users for an exact email+password match. Passwords are stored
// and compared in clear, reproducing the backend this replaces; the weakness
// is documented, not fixed, because fixtures depend on it.
func (s *Service) Login(dto LoginDTO) (*LoginResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	user, ok := s.store.FindBy(usersCollection, func(rec datastore.Record) bool {
		email, _ := rec["email"].(string)
		password, _ := rec["password"].(string)
		return email == dto.Email && password == dto.Password
	})
	if !ok {
		s.logger.Warn("login failed", "email", dto.Email)
		return nil, internal.ErrInvalidCredentials
	}

	now := time.Now()
	accessToken := s.tokens.Generate()
	refreshToken := s.tokens.Generate()

	s.store.Insert(sessionsCollection, datastore.Record{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"userId":        user.ID(),
		"expiresAt":     float64(now.Add(sessionTTL).UnixMilli()),
		"updatedAt":     float64(now.UnixMilli()),
	})

	s.logger.Info("user logged in", "user_id", user.ID())

	return &LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         Projection(user),
		Role:         AdminRole,
		FullName:     fullName(user),
	}, nil
}

// Refresh rotates both tokens of the session matching the refresh token. The
// session record is overwritten in place, so the previous access token stops
// resolving immediately: at most one valid pair per session.
func (s *Service) Refresh(dto RefreshTokenDTO) (*TokenPair, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	accessToken := s.tokens.Generate()
	refreshToken := s.tokens.Generate()

	_, ok := s.store.UpdateWhere(sessionsCollection,
		func(rec datastore.Record) bool {
			current, _ := rec["refresh_token"].(string)
			return current == dto.RefreshToken
		},
		func(rec datastore.Record) {
			rec["access_token"] = accessToken
			rec["refresh_token"] = refreshToken
			rec["updatedAt"] = float64(time.Now().UnixMilli())
		})
	if !ok {
		return nil, internal.ErrInvalidRefreshToken
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// WhoAmI resolves a bearer token to its user. Session existence is the only
// check: expiresAt is written at login but deliberately never read here,
// matching the original backend (see DESIGN.md).
func (s *Service) WhoAmI(accessToken string) (*WhoAmI, error) {
	if accessToken == "" {
		return nil, internal.ErrMissingToken
	}

	session, ok := s.store.FindBy(sessionsCollection, func(rec datastore.Record) bool {
		current, _ := rec["access_token"].(string)
		return current == accessToken
	})
	if !ok {
		return nil, internal.ErrInvalidToken
	}

	user, ok := s.store.FindBy(usersCollection, func(rec datastore.Record) bool {
		return datastore.IDEqual(rec.ID(), session["userId"])
	})
	if !ok {
		return nil, internal.ErrUserNotFound
	}

	return &WhoAmI{
		User: Projection(user),
		Role: firstRole(user),
	}, nil
}
