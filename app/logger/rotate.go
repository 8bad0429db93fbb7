package logger

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	maxLogSizeMB   = 5
	maxLogBackups  = 3
	dailyLogLayout = "2006-01-02"
)

// DailyWriter writes to <dir>/YYYY-MM-DD.log and moves to a new file when
// the date changes. Each day's file is size-capped and rotated by lumberjack.
type DailyWriter struct {
	mu  sync.Mutex
	dir string
	now func() time.Time
	day string
	out *lumberjack.Logger
}

func NewDailyWriter(dir string, now func() time.Time) (*DailyWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DailyWriter{dir: dir, now: now}, nil
}

func (w *DailyWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	day := w.now().Format(dailyLogLayout)
	if w.out == nil || day != w.day {
		if w.out != nil {
			_ = w.out.Close()
		}
		w.out = &lumberjack.Logger{
			Filename:   filepath.Join(w.dir, day+".log"),
			MaxSize:    maxLogSizeMB,
			MaxBackups: maxLogBackups,
		}
		w.day = day
	}
	return w.out.Write(p)
}

func (w *DailyWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.out == nil {
		return nil
	}
	err := w.out.Close()
	w.out = nil
	return err
}
