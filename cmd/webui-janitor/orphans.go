package main

import (
	"context"

	"github.com/aatumaykin/webui-janitor/internal/cleanup"
	"github.com/aatumaykin/webui-janitor/internal/constants"
)

// orphansCmd represents the orphans command
var orphansCmd = newJobCmd(
	cleanup.JobOrphans,
	"Remove file records and uploads nothing refers to",
	`Delete file records that no chat message references and uploads whose
name matches no file or document record. Names are compared after Unicode
NFC normalization, trimming and lowercasing. Runs in test mode unless
--test N is given.`,
	constants.DefaultOrphansTestMode,
	false,
	func(ctx context.Context, r *cleanup.Runner) (cleanup.Stats, error) {
		return r.CleanupOrphans(ctx)
	},
)
