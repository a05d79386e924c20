package users

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophgate/internal/common"
	"github.com/dmitrijs2005/gophgate/internal/cryptox"
	"github.com/dmitrijs2005/gophgate/internal/server/auth"
	"github.com/dmitrijs2005/gophgate/internal/server/config"
	"github.com/dmitrijs2005/gophgate/internal/server/refreshtokens"
	"github.com/google/uuid"
)

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type Service struct {
	repo                         Repository
	refreshTokenRepo             refreshtokens.Repository
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	knownClient                  func(string) bool
	now                          func() time.Time
}

func NewService(repo Repository, refreshTokenRepo refreshtokens.Repository, cfg *config.Config) *Service {
	return &Service{
		repo:                         repo,
		refreshTokenRepo:             refreshTokenRepo,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		knownClient:                  cfg.KnownClient,
		now:                          time.Now,
	}
}

func (s *Service) generateAccessToken(userID, clientID string) (string, error) {
	return auth.GenerateToken(userID, clientID, s.jwtSecret, s.accessTokenValidityDuration)
}

func (s *Service) generateRefreshToken() (string, error) {
	token, err := common.MakeRandHexString(32)
	if err != nil {
		return "", err
	}
	return token, nil
}

func (s *Service) checkVerifier(verifier []byte, verifierCandidate []byte) bool {
	return subtle.ConstantTimeCompare(verifier, verifierCandidate) == 1
}

// Login checks the password and issues an access/refresh pair for clientID.
func (s *Service) Login(ctx context.Context, userName string, password []byte, clientID string) (*TokenPair, error) {
	if !s.knownClient(clientID) {
		return nil, common.ErrUnknownClient
	}

	user, err := s.repo.GetUserByLogin(ctx, userName)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	if !s.checkVerifier(user.Verifier, cryptox.DeriveKey(password, user.Salt)) {
		return nil, common.ErrorUnauthorized
	}

	accessToken, err := s.generateAccessToken(user.ID, clientID)
	if err != nil {
		return nil, common.ErrorInternal
	}

	refreshToken, err := s.generateRefreshToken()
	if err != nil {
		return nil, common.ErrorInternal
	}

	err = s.refreshTokenRepo.Create(ctx, &refreshtokens.RefreshToken{
		ID:       uuid.NewString(),
		UserID:   user.ID,
		ClientID: clientID,
		Token:    refreshToken,
		Expires:  s.now().Add(s.refreshTokenValidityDuration),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Refresh issues a new access token for a stored, unexpired refresh token
// that belongs to clientID. The refresh token itself is not rotated.
func (s *Service) Refresh(ctx context.Context, refreshToken, clientID string) (string, error) {
	if !s.knownClient(clientID) {
		return "", common.ErrUnknownClient
	}

	rt, err := s.refreshTokenRepo.Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrInvalidToken
		}
		return "", common.ErrorInternal
	}

	if rt.ClientID != clientID {
		return "", common.ErrUnknownClient
	}

	if rt.Expired(s.now()) {
		_ = s.refreshTokenRepo.Delete(ctx, refreshToken)
		return "", common.ErrRefreshTokenExpired
	}

	accessToken, err := s.generateAccessToken(rt.UserID, clientID)
	if err != nil {
		return "", common.ErrorInternal
	}
	return accessToken, nil
}

// Logout revokes refreshToken. Unknown tokens are ignored.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if err := s.refreshTokenRepo.Delete(ctx, refreshToken); err != nil {
		return fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}
	return nil
}

// Authenticate validates an access token and returns its user id.
func (s *Service) Authenticate(accessToken string) (string, error) {
	return auth.GetUserIDFromToken(accessToken, s.jwtSecret)
}

// PurgeExpired removes refresh tokens that are past their expiry.
func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	return s.refreshTokenRepo.DeleteExpired(ctx, s.now())
}
