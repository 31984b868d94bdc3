package analyzer

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/lazypower/halflife/internal/logging"
)

// MaxImageBytes caps the payload forwarded to a provider.
const MaxImageBytes = 10 << 20

// Fallback wraps a provider so that callers always get an estimate. Any
// failure, timeout or throttled call yields DefaultEstimate instead of an
// error. A nil inner analyzer means analysis is not configured.
type Fallback struct {
	inner   Analyzer
	timeout time.Duration
	limiter *rate.Limiter
	logger  *zap.Logger
}

// WithFallback wraps inner. perMinute <= 0 disables throttling.
func WithFallback(inner Analyzer, timeout time.Duration, perMinute int, logger *zap.Logger) *Fallback {
	f := &Fallback{
		inner:   inner,
		timeout: timeout,
		logger:  logging.OrNop(logger),
	}
	if perMinute > 0 {
		f.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
	}
	return f
}

// Configured reports whether a real provider sits behind the wrapper.
func (f *Fallback) Configured() bool {
	return f.inner != nil
}

// Analyze never returns an error.
func (f *Fallback) Analyze(ctx context.Context, image []byte, mediaType string) (*Estimate, error) {
	if f.inner == nil {
		return DefaultEstimate("Image analysis is not configured."), nil
	}
	if len(image) == 0 {
		return DefaultEstimate("The image was empty."), nil
	}
	if len(image) > MaxImageBytes {
		return DefaultEstimate("The image was too large to analyze."), nil
	}
	if !strings.HasPrefix(mediaType, "image/") {
		mediaType = "image/jpeg"
	}
	if f.limiter != nil && !f.limiter.Allow() {
		f.logger.Warn("analyzer throttled")
		return DefaultEstimate("Too many scans in a short time."), nil
	}

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	start := time.Now()
	est, err := f.inner.Analyze(ctx, image, mediaType)
	if err != nil {
		reason := "Could not reach the image analysis service."
		if errors.Is(err, context.DeadlineExceeded) {
			reason = "The image analysis service took too long to answer."
		}
		f.logger.Warn("analyzer failed, using fallback estimate",
			zap.Error(err),
			zap.Duration("elapsed", time.Since(start)),
		)
		return DefaultEstimate(reason), nil
	}

	f.logger.Info("image analyzed",
		zap.String("drink", est.DrinkName),
		zap.Float64("estimated_mg", est.EstimatedMg),
		zap.String("confidence", string(est.Confidence)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return est, nil
}
