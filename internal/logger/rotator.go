package logger

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sync"
)

const megabyte = 1 << 20

// rotator appends to a log file and, once it outgrows its limit, shifts it
// to path.1, path.1 to path.2 and so on up to keep backups.
type rotator struct {
	path  string
	limit int64 // bytes; <= 0 never rotates
	keep  int
	// errs receives rotation failures, which never fail a Write.
	errs io.Writer

	mu   sync.Mutex
	file *os.File
	size int64
}

func newRotator(cfg Config, errs io.Writer) (*rotator, error) {
	r := &rotator{
		path:  cfg.File,
		limit: int64(cfg.MaxSizeMB) * megabyte,
		keep:  max(cfg.MaxBackups, 0),
		errs:  errs,
	}
	if err := r.open(os.O_APPEND); err != nil {
		return nil, err
	}
	return r, nil
}

// open (re)opens path with the extra flag (O_APPEND or O_TRUNC) and picks up
// its current size.
func (r *rotator) open(flag int) error {
	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_WRONLY|flag, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("stat log file: %w", err)
	}
	r.file, r.size = f, info.Size()
	return nil
}

func (r *rotator) full(next int) bool {
	return r.limit > 0 && r.size > 0 && r.size+int64(next) > r.limit
}

// Write lands p whole; an entry larger than the limit gets a file to itself.
func (r *rotator) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		if err := r.open(os.O_APPEND); err != nil {
			return 0, err
		}
	}
	if r.full(len(p)) {
		if err := r.rotate(); err != nil {
			fmt.Fprintf(r.errs, "log rotation failed: %v\n", err)
			if r.file == nil {
				return 0, err
			}
		}
	}

	n, err := r.file.Write(p)
	r.size += int64(n)
	return n, err
}

// rotate shifts backups and starts an empty file. If the shift fails the
// current file is reopened for append so no entries are lost.
func (r *rotator) rotate() error {
	closeErr := r.file.Close()
	r.file = nil

	shiftErr := errors.Join(closeErr, r.shift())
	flag := os.O_TRUNC
	if shiftErr != nil {
		flag = os.O_APPEND
	}
	return errors.Join(shiftErr, r.open(flag))
}

func (r *rotator) shift() error {
	if r.keep == 0 {
		return nil
	}
	var errs []error
	for i := r.keep; i >= 1; i-- {
		from := r.path
		if i > 1 {
			from = fmt.Sprintf("%s.%d", r.path, i-1)
		}
		err := os.Rename(from, fmt.Sprintf("%s.%d", r.path, i))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (r *rotator) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}
