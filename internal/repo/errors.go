package repo

import (
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
)

// Unique index names. The duplicate-key mapping below matches on these, so
// they must stay in sync with EnsureIndexes.
const (
	idxNameCode         = "uq_display_name_short_code"
	idxEmail            = "uq_email"
	idxLoginID          = "uq_login_id"
	idxCredAccount      = "uq_credential_account"
	idxProviderExternal = "uq_provider_external"
	idxAccountProvider  = "uq_account_provider"
)

// Tagged duplicate-key results. The allocator retries only on
// ErrDuplicateNameCode; every other violation is terminal for the operation
// that hit it.
var (
	ErrDuplicateNameCode = errors.New("repo: display name and short code already taken")
	ErrDuplicateEmail    = errors.New("repo: email already registered")
	ErrDuplicateLoginID  = errors.New("repo: login id already registered")
	ErrDuplicateLink     = errors.New("repo: provider link already exists")
	ErrNotFound          = errors.New("repo: not found")
)

// mapDuplicate translates a mongo duplicate-key error into the tagged
// sentinel for the violated index. Non-duplicate errors pass through.
func mapDuplicate(err error) error {
	if err == nil || !mongo.IsDuplicateKeyError(err) {
		return err
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, idxNameCode):
		return ErrDuplicateNameCode
	case strings.Contains(msg, idxEmail):
		return ErrDuplicateEmail
	case strings.Contains(msg, idxLoginID), strings.Contains(msg, idxCredAccount):
		return ErrDuplicateLoginID
	case strings.Contains(msg, idxProviderExternal), strings.Contains(msg, idxAccountProvider):
		return ErrDuplicateLink
	}
	return err
}
