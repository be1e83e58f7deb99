package cleanup

import (
	"time"

	"github.com/aatumaykin/webui-janitor/internal/logger"
	"github.com/aatumaykin/webui-janitor/internal/store"
	"github.com/aatumaykin/webui-janitor/internal/uploads"
)

// Job names.
const (
	JobChats   = "chats"
	JobOrphans = "orphans"
)

// Stats holds statistics about a cleanup run. In dry-run mode the deletion
// counters report what would have been deleted.
type Stats struct {
	Job    string `yaml:"job"`
	DryRun bool   `yaml:"dry_run"`

	// Chat payloads
	ChatsScanned      int `yaml:"chats_scanned"`
	ChatsDeleted      int `yaml:"chats_deleted"`
	MalformedChats    int `yaml:"malformed_chats"`
	ReferencedFileIDs int `yaml:"referenced_file_ids"`

	// File table
	FileRecords        int `yaml:"file_records"`
	OrphanFileRecords  int `yaml:"orphan_file_records"`
	FileRecordsDeleted int `yaml:"file_records_deleted"`
	UnresolvedFileIDs  int `yaml:"unresolved_file_ids"` // ids without a row or a filename

	// Uploads directory
	UploadsListed int   `yaml:"uploads_listed"`
	OrphanUploads int   `yaml:"orphan_uploads"`
	FilesDeleted  int   `yaml:"files_deleted"`
	FilesMissing  int   `yaml:"files_missing"`
	FilesKept     int   `yaml:"files_kept"` // still named by another row
	BytesFreed    int64 `yaml:"bytes_freed"`

	Errors   int           `yaml:"errors"` // per-item failures that did not abort the run
	Duration time.Duration `yaml:"duration"`
}

// Config holds configuration for cleanup operations.
type Config struct {
	RetentionDays int  // chats not updated for this many days are deleted
	DryRun        bool // read and log only
}

// Runner executes cleanup jobs against one database and uploads directory.
type Runner struct {
	config  Config
	db      *store.Store
	uploads *uploads.Dir
	logger  *logger.Logger
	now     func() time.Time
}

// NewRunner creates a new cleanup runner.
func NewRunner(config Config, db *store.Store, dir *uploads.Dir, log *logger.Logger) *Runner {
	return &Runner{
		config:  config,
		db:      db,
		uploads: dir,
		logger:  log,
		now:     time.Now,
	}
}

// Mode returns the label used in logs and metrics.
func (r *Runner) Mode() string {
	if r.config.DryRun {
		return "TEST"
	}
	return "LIVE"
}
