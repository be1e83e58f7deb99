package main

import (
	"context"

	"github.com/aatumaykin/webui-janitor/internal/cleanup"
	"github.com/aatumaykin/webui-janitor/internal/constants"
)

// chatsCmd represents the chats command
var chatsCmd = newJobCmd(
	cleanup.JobChats,
	"Delete chats older than the retention window",
	`Delete chats that are not archived and were last updated more than
retention_days ago, together with the file records and uploads attached to
their messages. Runs live unless --test Y is given.`,
	constants.DefaultChatsTestMode,
	true,
	func(ctx context.Context, r *cleanup.Runner) (cleanup.Stats, error) {
		return r.CleanupChats(ctx)
	},
)
