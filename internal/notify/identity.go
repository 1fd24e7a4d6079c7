package notify

import (
	"context"

	"thriveup/internal/common"
)

// StaticIdentity is an Identity fixed at construction, used by the daemon
// (one local user per process) and by tests. Interactive consumers plug in
// their auth collaborator instead.
type StaticIdentity string

func (s StaticIdentity) CurrentUserID(ctx context.Context) (string, error) {
	if s == "" {
		return "", common.ErrNotAuthenticated
	}
	return string(s), nil
}
