package cleanup

import (
	"context"
	"sort"

	"github.com/aatumaykin/webui-janitor/internal/logger"
	"github.com/aatumaykin/webui-janitor/internal/reconcile"
	"github.com/aatumaykin/webui-janitor/internal/store"
)

// CleanupOrphans removes file rows that no chat message references and
// uploads that no file or document row names.
func (r *Runner) CleanupOrphans(ctx context.Context) (Stats, error) {
	return r.run(ctx, JobOrphans, r.cleanupOrphans)
}

func (r *Runner) cleanupOrphans(ctx context.Context, tx *store.Tx, plan *sweepPlan, stats *Stats) error {
	if err := tx.RequireTables(ctx, store.TableChat, store.TableFile, store.TableDocument); err != nil {
		return err
	}

	chats, err := tx.Chats(ctx)
	if err != nil {
		return err
	}
	stats.ChatsScanned = len(chats)

	referenced := r.collectFileIDs(chats, stats)
	stats.ReferencedFileIDs = len(referenced)
	r.logger.Info("total file ids referenced in chats",
		logger.Field{Key: "count", Value: len(referenced)})

	files, err := tx.Files(ctx)
	if err != nil {
		return err
	}
	stats.FileRecords = len(files)
	r.logger.Info("total file ids in file table",
		logger.Field{Key: "count", Value: len(files)})

	removed, err := r.deleteOrphanRecords(ctx, tx, referenced, files, plan, stats)
	if err != nil {
		return err
	}

	r.logger.Info("checking for orphaned files in uploads directory")

	var names []string
	for _, f := range files {
		if !removed[f.ID] && f.Filename != "" {
			names = append(names, f.Filename)
		}
	}
	documents, err := tx.DocumentFilenames(ctx)
	if err != nil {
		return err
	}
	names = append(names, documents...)
	r.keepReferenced(plan, names, stats)

	listing := r.listUploads(stats)
	stats.UploadsListed = len(listing.Files)

	res := reconcile.Orphans(names, listing.Files, reconcile.Normalize)
	r.logger.Info("total filenames referenced in file and document tables",
		logger.Field{Key: "count", Value: res.Referenced})
	r.logger.Debug("referenced filenames", logger.Field{Key: "filenames", Value: names})
	r.logger.Info("total files in uploads directory",
		logger.Field{Key: "count", Value: len(listing.Files)})
	r.logger.Debug("files in uploads directory", logger.Field{Key: "filenames", Value: listing.Files})

	keys := make([]string, 0, len(res.Collisions))
	for key := range res.Collisions {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		r.logger.Warn("several uploads share one normalized name",
			logger.Field{Key: "normalized", Value: key},
			logger.Field{Key: "filenames", Value: res.Collisions[key]})
	}

	stats.OrphanUploads = len(res.Orphans)
	r.logger.Info("orphaned files in uploads directory",
		logger.Field{Key: "count", Value: len(res.Orphans)})
	r.logger.Debug("orphaned files", logger.Field{Key: "filenames", Value: res.Orphans})

	for _, name := range res.Orphans {
		r.logger.Info("file is not referenced in the file or document tables and will be considered for deletion",
			logger.Field{Key: "filename", Value: name})
		if !plan.add(name) {
			r.logger.Debug("file already planned for deletion",
				logger.Field{Key: "filename", Value: name})
		}
	}

	return nil
}

// keepReferenced drops planned uploads whose normalized name is still used
// by a surviving file row or a document row.
func (r *Runner) keepReferenced(plan *sweepPlan, referenced []string, stats *Stats) {
	if plan.len() == 0 {
		return
	}

	keys := make(map[string]bool, len(referenced))
	for _, name := range referenced {
		keys[reconcile.Normalize(name)] = true
	}

	for _, name := range append([]string(nil), plan.names...) {
		if !keys[reconcile.Normalize(name)] {
			continue
		}
		plan.drop(name)
		stats.FilesKept++
		r.logger.Info("file still referenced, keeping",
			logger.Field{Key: "filename", Value: name})
	}
}

// deleteOrphanRecords deletes the file rows whose id no chat references and
// plans their uploads for removal. It returns the ids of the removed rows.
// A row that fails to delete is logged and keeps its upload.
func (r *Runner) deleteOrphanRecords(ctx context.Context, tx *store.Tx, referenced []string, files []store.File, plan *sweepPlan, stats *Stats) (map[string]bool, error) {
	ids := make([]string, 0, len(files))
	byID := make(map[string]string, len(files))
	for _, f := range files {
		ids = append(ids, f.ID)
		byID[f.ID] = f.Filename
	}

	res := reconcile.Orphans(referenced, ids, reconcile.Identity)
	stats.OrphanFileRecords = len(res.Orphans)
	r.logger.Info("orphaned file ids in file table",
		logger.Field{Key: "count", Value: len(res.Orphans)})

	removed := make(map[string]bool, len(res.Orphans))
	for _, id := range res.Orphans {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		filename := byID[id]
		r.logger.Info("file is not referenced in any chat and will be considered for deletion",
			logger.Field{Key: "file_id", Value: id},
			logger.Field{Key: "filename", Value: filename})

		if r.config.DryRun {
			r.logger.Info("would delete file record",
				logger.Field{Key: "file_id", Value: id})
		} else {
			if _, err := tx.DeleteFiles(ctx, []string{id}); err != nil {
				stats.Errors++
				r.logger.Error("failed to delete file record", err,
					logger.Field{Key: "file_id", Value: id})
				continue
			}
			r.logger.Info("deleted file record",
				logger.Field{Key: "file_id", Value: id})
		}
		stats.FileRecordsDeleted++
		removed[id] = true

		if filename == "" {
			stats.UnresolvedFileIDs++
			r.logger.Warn("no filename found for file id",
				logger.Field{Key: "file_id", Value: id})
			continue
		}
		plan.add(filename)
	}

	return removed, nil
}
