package slug

import (
	"context"
	"strconv"

	"github.com/dmitrijs2005/cmskeeper/internal/common"
	"github.com/google/uuid"
)

// fallbackLength is the length of the random base used when a name has no
// letters or digits that survive Make.
const fallbackLength = 8

// ExistsFunc reports whether a slug is already taken.
type ExistsFunc func(ctx context.Context, slug string) (bool, error)

// Resolve returns Make(name) if it is free, otherwise the first free
// "<base>-<n>" for n in 1..maxAttempts. It fails with
// common.ErrTooManySlugAttempts when every candidate is taken, and returns
// lookup errors as is. A name that makes an empty slug (only punctuation,
// or a script without a Latin form) gets a random hex base instead.
//
// The check is not atomic with the insert that follows; the unique index
// on the slug column is what actually prevents duplicates.
func Resolve(ctx context.Context, name string, exists ExistsFunc, maxAttempts int) (string, error) {
	base := Make(name)
	if base == "" {
		base = uuid.NewString()[:fallbackLength]
	}

	taken, err := exists(ctx, base)
	if err != nil {
		return "", err
	}
	if !taken {
		return base, nil
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		candidate := base + "-" + strconv.Itoa(attempt)

		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}

	return "", common.ErrTooManySlugAttempts
}
