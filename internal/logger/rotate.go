package logger

import (
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/natefinch/lumberjack.v2"
)

// timeNow is replaced in tests.
var timeNow = time.Now

// rotateIfDue rotates the log file when a boundary of the cron schedule lies
// between the last write to the file and now. The job runs once and exits, so
// rotation is checked on open instead of by a background ticker.
func rotateIfDue(file *lumberjack.Logger, schedule string, now time.Time) (bool, error) {
	sched, err := cron.ParseStandard(schedule)
	if err != nil {
		return false, fmt.Errorf("invalid log rotate schedule %q: %w", schedule, err)
	}

	info, err := os.Stat(file.Filename)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat log file %s: %w", file.Filename, err)
	}
	if info.Size() == 0 {
		return false, nil
	}

	if now.Before(sched.Next(info.ModTime())) {
		return false, nil
	}

	if err := file.Rotate(); err != nil {
		return false, fmt.Errorf("failed to rotate log file %s: %w", file.Filename, err)
	}
	return true, nil
}
