package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/taskhive/auth-service/internal/codegen"
	"github.com/taskhive/auth-service/internal/domain"
	"github.com/taskhive/auth-service/internal/metrics"
	"github.com/taskhive/auth-service/internal/repo"
)

// maxAllocateAttempts bounds the insert-and-retry loop. 4-digit codes give
// 10k values per display name, so collisions are expected for popular names;
// ten misses in a row means the name is effectively saturated.
const maxAllocateAttempts = 10

// Allocator assigns a fresh short code to a candidate account and commits it
// under the store's (display_name, short_code) unique index. Checking
// availability first and then inserting would race with concurrent signups,
// so it inserts optimistically and retries on that specific duplicate only.
type Allocator struct {
	accounts AccountRepository
}

func NewAllocator(accounts AccountRepository) *Allocator {
	return &Allocator{accounts: accounts}
}

// Allocate calls build with a freshly generated short code and saves the
// result. On a (display_name, short_code) duplicate it regenerates and
// rebuilds from scratch; a candidate that already went through a failed
// insert must not be reused. Any other save error is terminal.
func (al *Allocator) Allocate(ctx context.Context, build func(shortCode string) *domain.Account) (*domain.Account, error) {
	for attempt := 1; attempt <= maxAllocateAttempts; attempt++ {
		code, err := codegen.FourDigitCode()
		if err != nil {
			return nil, fmt.Errorf("generate short code: %w", err)
		}
		saved, err := al.accounts.SaveAccount(ctx, build(code))
		if err == nil {
			return saved, nil
		}
		if errors.Is(err, repo.ErrDuplicateEmail) {
			// Lost a race with a concurrent signup for the same email.
			return nil, ErrEmailTaken
		}
		if !errors.Is(err, repo.ErrDuplicateNameCode) {
			return nil, fmt.Errorf("%w: save account: %v", ErrRegistrationFailed, err)
		}
		metrics.AllocatorRetries.Inc()
	}
	return nil, fmt.Errorf("%w: short code space exhausted after %d attempts",
		ErrRegistrationFailed, maxAllocateAttempts)
}
