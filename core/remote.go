package core

import (
	"context"
	"strings"

	"github.com/huangsam/fwchore/internal/contract"
	"github.com/huangsam/fwchore/schema"
)

// CheckRemoteSync classifies the relationship between the local repository and
// its remote using a dry-run fetch. An unreachable remote is a distinct state
// rather than an error: chores keep running offline.
func CheckRemoteSync(ctx context.Context, git contract.GitClient, repoRoot string) schema.RemoteSyncState {
	out, reachable := git.FetchDryRun(ctx, repoRoot)
	if !reachable {
		return schema.RemoteUnreachable
	}
	if strings.TrimSpace(out) != "" {
		return schema.RemoteAhead
	}
	return schema.RemoteInSync
}
