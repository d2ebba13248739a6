package sunweg

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// Authenticate logs in with the configured credentials and stores the
// returned token. It returns false without a request when credentials are
// missing, and false when SunWEG rejects them.
func (s *service) Authenticate(ctx context.Context) (bool, error) {
	if s.username == "" || s.password == "" {
		return false, nil
	}

	var res loginResponse
	err := s.post(ctx, loginPath, loginRequest{
		Username:   s.username,
		Password:   s.password,
		RememberMe: true,
	}, &res, false)
	if err != nil {
		return false, err
	}
	if !res.Success {
		s.logger.Warn("sunweg login rejected", zap.String("message", res.Message))
		return false, nil
	}
	s.token = res.Token

	if exp, ok := s.TokenExpiry(); ok {
		s.logger.Info("authenticated", zap.Time("token_expiry", exp))
	} else {
		s.logger.Info("authenticated")
	}
	return true, nil
}

func (s *service) SetToken(token string) {
	s.token = token
}

// SetCredentials replaces the username and password used by Authenticate.
func (s *service) SetCredentials(username, password string) {
	s.username = username
	s.password = password
}

// TokenExpiry reads the exp claim of the held token. The signature is not
// verified; false means there is no token or it is not a JWT carrying exp.
func (s *service) TokenExpiry() (time.Time, bool) {
	if s.token == "" {
		return time.Time{}, false
	}
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(s.token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
