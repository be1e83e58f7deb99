package cleanup

import (
	"context"
	"fmt"
	"time"

	"github.com/aatumaykin/webui-janitor/internal/logger"
	"github.com/aatumaykin/webui-janitor/internal/store"
)

// CleanupChats deletes chats that are not archived and were last updated
// before the retention window, together with the file rows and uploads
// attached to their messages.
func (r *Runner) CleanupChats(ctx context.Context) (Stats, error) {
	return r.run(ctx, JobChats, r.cleanupChats)
}

func (r *Runner) cleanupChats(ctx context.Context, tx *store.Tx, plan *sweepPlan, stats *Stats) error {
	if err := tx.RequireTables(ctx, store.TableChat, store.TableFile); err != nil {
		return err
	}

	retention := time.Duration(r.config.RetentionDays) * 24 * time.Hour
	threshold := r.now().Add(-retention).Unix()
	r.logger.Debug("selecting stale chats",
		logger.Field{Key: "retention_days", Value: r.config.RetentionDays},
		logger.Field{Key: "threshold", Value: threshold})

	chats, err := tx.StaleChats(ctx, threshold)
	if err != nil {
		return err
	}
	stats.ChatsScanned = len(chats)

	if len(chats) == 0 {
		r.logger.Info("no chats to delete")
		return nil
	}

	chatIDs := make([]string, 0, len(chats))
	for _, chat := range chats {
		chatIDs = append(chatIDs, chat.ID)
	}
	r.logger.Info("found chats to delete",
		logger.Field{Key: "count", Value: len(chatIDs)},
		logger.Field{Key: "chat_ids", Value: chatIDs})

	fileIDs := r.collectFileIDs(chats, stats)
	stats.ReferencedFileIDs = len(fileIDs)

	if len(fileIDs) > 0 {
		files, err := tx.FilesByID(ctx, fileIDs)
		if err != nil {
			return err
		}
		r.deleteChatFiles(ctx, tx, fileIDs, files, plan, stats)
	}

	if r.config.DryRun {
		stats.ChatsDeleted = len(chatIDs)
		r.logger.Info("would delete chats from the database",
			logger.Field{Key: "count", Value: len(chatIDs)},
			logger.Field{Key: "chat_ids", Value: chatIDs})
		return nil
	}

	n, err := tx.DeleteChats(ctx, chatIDs)
	if err != nil {
		return fmt.Errorf("failed to delete chats: %w", err)
	}
	stats.ChatsDeleted = int(n)
	r.logger.Info("deleted chats from the database",
		logger.Field{Key: "count", Value: n})

	return nil
}

// deleteChatFiles removes the file rows referenced by stale chats and plans
// their uploads for removal. A failed delete is logged and the chats are
// still removed.
func (r *Runner) deleteChatFiles(ctx context.Context, tx *store.Tx, fileIDs []string, files []store.File, plan *sweepPlan, stats *Stats) {
	byID := make(map[string]store.File, len(files))
	for _, f := range files {
		byID[f.ID] = f
	}

	var existing, filenames []string
	for _, id := range fileIDs {
		f, ok := byID[id]
		if !ok {
			stats.UnresolvedFileIDs++
			r.logger.Warn("file id not found in file table",
				logger.Field{Key: "file_id", Value: id})
			continue
		}
		existing = append(existing, id)
		if f.Filename == "" {
			stats.UnresolvedFileIDs++
			r.logger.Warn("no filename found for file id",
				logger.Field{Key: "file_id", Value: id})
			continue
		}
		filenames = append(filenames, f.Filename)
	}
	stats.FileRecords = len(existing)

	if len(existing) == 0 {
		return
	}

	if r.config.DryRun {
		r.logger.Info("would delete file records from file table",
			logger.Field{Key: "count", Value: len(existing)})
		for _, id := range existing {
			r.logger.Info("would delete file record",
				logger.Field{Key: "file_id", Value: id})
		}
		stats.FileRecordsDeleted = len(existing)
	} else {
		n, err := tx.DeleteFiles(ctx, existing)
		if err != nil {
			stats.Errors++
			r.logger.Error("failed to delete file records", err,
				logger.Field{Key: "file_ids", Value: existing})
			return
		}
		for _, id := range existing {
			r.logger.Info("deleted file record",
				logger.Field{Key: "file_id", Value: id})
		}
		stats.FileRecordsDeleted = int(n)
	}

	for _, name := range filenames {
		plan.add(name)
	}
}
