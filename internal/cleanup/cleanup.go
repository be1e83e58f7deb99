// Package cleanup implements the housekeeping jobs: age-based chat cleanup
// and orphan reconciliation.
//
// Each job runs inside one database transaction. Physical files are not
// removed while the transaction is open: they are collected into a sweep plan
// and removed only after a successful commit. A failed commit therefore never
// leaves a row pointing at a deleted file; a failed removal after commit
// leaves an unreferenced file that the next orphan run picks up.
package cleanup

import (
	"context"
	"errors"
	"io/fs"
	"time"

	"github.com/aatumaykin/webui-janitor/internal/logger"
	"github.com/aatumaykin/webui-janitor/internal/store"
	"github.com/aatumaykin/webui-janitor/internal/uploads"
)

type jobFunc func(ctx context.Context, tx *store.Tx, plan *sweepPlan, stats *Stats) error

// run executes body inside a transaction and sweeps the planned files.
func (r *Runner) run(ctx context.Context, job string, body jobFunc) (stats Stats, err error) {
	startTime := time.Now()
	stats = Stats{Job: job, DryRun: r.config.DryRun}

	r.logger.Info("starting cleanup",
		logger.Field{Key: "mode", Value: r.Mode()},
		logger.Field{Key: "started_at", Value: r.now().Format("2006-01-02T15:04:05")},
		logger.Field{Key: "database", Value: r.db.Path()},
		logger.Field{Key: "uploads_dir", Value: r.uploads.Path()})

	defer func() {
		stats.Duration = time.Since(startTime)
		r.logger.Info("cleanup complete",
			logger.Field{Key: "success", Value: err == nil},
			logger.Field{Key: "duration_ms", Value: stats.Duration.Milliseconds()})
	}()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.logger.Error("failed to begin transaction", err)
		return stats, err
	}

	plan := newSweepPlan()
	if err := body(ctx, tx, plan, &stats); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			r.logger.Error("failed to rollback transaction", rbErr)
		}
		if !r.config.DryRun {
			stats.ChatsDeleted = 0
			stats.FileRecordsDeleted = 0
		}
		r.logger.Error("cleanup aborted, row changes rolled back", err)
		return stats, err
	}

	if r.config.DryRun {
		if err := tx.Rollback(); err != nil {
			r.logger.Error("failed to rollback transaction", err)
		}
		r.logger.Info("test mode: rolled back any changes")
	} else {
		if err := tx.Commit(); err != nil {
			stats.ChatsDeleted = 0
			stats.FileRecordsDeleted = 0
			r.logger.Error("failed to commit changes, no files were removed", err)
			return stats, err
		}
		r.logger.Info("live mode: changes committed to the database")
	}

	r.sweep(plan, &stats)
	return stats, nil
}

// collectFileIDs returns the distinct file ids referenced by chats. Chats
// whose payload cannot be parsed are logged and skipped.
func (r *Runner) collectFileIDs(chats []store.Chat, stats *Stats) []string {
	var ids []string
	seen := make(map[string]bool)

	for _, chat := range chats {
		chatIDs, err := ExtractFileIDs(chat.Payload)
		if err != nil {
			stats.MalformedChats++
			r.logger.Error("failed to parse chat JSON", err,
				logger.Field{Key: "chat_id", Value: chat.ID})
			continue
		}
		for _, id := range chatIDs {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}

	return ids
}

// sweepPlan is the ordered set of uploads to remove after commit.
type sweepPlan struct {
	names []string
	seen  map[string]bool
}

func newSweepPlan() *sweepPlan {
	return &sweepPlan{seen: make(map[string]bool)}
}

// add plans name for removal and reports whether it was not planned yet.
func (p *sweepPlan) add(name string) bool {
	if p.seen[name] {
		return false
	}
	p.seen[name] = true
	p.names = append(p.names, name)
	return true
}

// drop removes name from the plan and reports whether it was planned.
func (p *sweepPlan) drop(name string) bool {
	if !p.seen[name] {
		return false
	}
	delete(p.seen, name)
	for i, n := range p.names {
		if n == name {
			p.names = append(p.names[:i], p.names[i+1:]...)
			break
		}
	}
	return true
}

func (p *sweepPlan) len() int {
	return len(p.names)
}

// sweep removes the planned files, or logs them in dry-run mode. Failures
// are logged and counted; the sweep continues with the next file.
func (r *Runner) sweep(plan *sweepPlan, stats *Stats) {
	if plan.len() == 0 {
		return
	}

	if r.config.DryRun {
		r.logger.Info("would delete files from uploads directory",
			logger.Field{Key: "count", Value: plan.len()})
	} else {
		r.logger.Info("deleting files from uploads directory",
			logger.Field{Key: "count", Value: plan.len()})
	}

	for _, name := range plan.names {
		path, err := r.uploads.Join(name)
		if err != nil {
			stats.Errors++
			r.logger.Error("refusing to delete file", err,
				logger.Field{Key: "filename", Value: name})
			continue
		}

		info, err := r.uploads.Stat(name)
		if errors.Is(err, fs.ErrNotExist) {
			stats.FilesMissing++
			r.logger.Warn("file does not exist",
				logger.Field{Key: "path", Value: path})
			continue
		}
		if err != nil {
			stats.Errors++
			r.logger.Error("failed to stat file", err,
				logger.Field{Key: "path", Value: path})
			continue
		}

		if r.config.DryRun {
			stats.FilesDeleted++
			stats.BytesFreed += info.Size()
			r.logger.Info("would delete file",
				logger.Field{Key: "path", Value: path},
				logger.Field{Key: "size_bytes", Value: info.Size()})
			continue
		}

		if err := r.uploads.Remove(name); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				stats.FilesMissing++
				r.logger.Warn("file does not exist",
					logger.Field{Key: "path", Value: path})
				continue
			}
			stats.Errors++
			r.logger.Error("error deleting file", err,
				logger.Field{Key: "path", Value: path})
			continue
		}

		stats.FilesDeleted++
		stats.BytesFreed += info.Size()
		r.logger.Info("deleted file",
			logger.Field{Key: "path", Value: path},
			logger.Field{Key: "size_bytes", Value: info.Size()})
	}
}

// listUploads lists the uploads directory. A listing failure is logged and
// treated as an empty directory.
func (r *Runner) listUploads(stats *Stats) uploads.Listing {
	listing, err := r.uploads.List()
	if err != nil {
		stats.Errors++
		r.logger.Error("error listing files in uploads directory", err,
			logger.Field{Key: "path", Value: r.uploads.Path()})
		return uploads.Listing{}
	}

	for _, name := range listing.Excluded {
		r.logger.Debug("upload excluded by pattern",
			logger.Field{Key: "filename", Value: name})
	}
	for _, name := range listing.Skipped {
		r.logger.Debug("skipping non-regular entry in uploads directory",
			logger.Field{Key: "filename", Value: name})
	}

	return listing
}
