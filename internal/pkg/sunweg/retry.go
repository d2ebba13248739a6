package sunweg

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// withRetry runs fn, and when SunWEG rejects the token it re-authenticates
// and runs fn once more. If the second attempt is rejected too the zero
// value is returned without an error.
func withRetry[T any](ctx context.Context, s *service, operation string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	for attempt := 0; attempt < 2; attempt++ {
		res, err := fn(ctx)
		if err == nil {
			return res, nil
		}
		if !errors.Is(err, ErrAuthentication) {
			return zero, err
		}
		if attempt > 0 {
			s.logger.Warn("still unauthorized after re-authentication", zap.String("operation", operation), zap.Error(err))
			break
		}
		s.logger.Debug("token rejected, re-authenticating", zap.String("operation", operation))
		if _, err := s.Authenticate(ctx); err != nil {
			return zero, err
		}
	}
	return zero, nil
}
