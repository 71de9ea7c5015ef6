package utils

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// Swappable so tests can simulate EXDEV and transient failures.
var renameFunc = os.Rename

// MoveFile renames src to dst, falling back to copy+remove when they live on
// different filesystems. dst must not exist.
func MoveFile(src, dst string) error {
	if _, err := os.Lstat(dst); err == nil {
		return fmt.Errorf("move %q: destination %q: %w", src, dst, os.ErrExist)
	}
	err := renameFunc(src, dst)
	if err == nil {
		return nil
	}
	if !isEXDEV(err) {
		return err
	}
	return copyThenRemove(src, dst)
}

func copyThenRemove(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = io.Copy(tmp, in); err != nil {
		return err
	}
	if err = tmp.Chmod(info.Mode().Perm()); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Rename(tmpName, dst); err != nil {
		return err
	}
	return os.Remove(src)
}

// MoveWithRetry tries MoveFile up to attempts times, sleeping delay between
// failures to ride out files still locked by another process.
func MoveWithRetry(ctx context.Context, src, dst string, attempts int, delay time.Duration, sleep func(context.Context, time.Duration) error) error {
	if attempts <= 0 {
		attempts = 1
	}
	if sleep == nil {
		sleep = SleepContext
	}
	logger := zerolog.Ctx(ctx)

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		logger.Info().Str("destination", dst).Int("attempt", attempt).Msg("Moving file")
		if err = MoveFile(src, dst); err == nil {
			return nil
		}
		if attempt < attempts {
			logger.Warn().Err(err).Dur("delay", delay).Msg("Could not move file, retrying")
			if serr := sleep(ctx, delay); serr != nil {
				return serr
			}
		}
	}
	return fmt.Errorf("move %q to %q failed after %d attempts: %w", src, dst, attempts, err)
}
