package recordstore

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// writeFileAtomic writes through a temp file in the target directory and
// renames it into place, so readers see either the old or the new file.
func writeFileAtomic(path string, write func(w io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmpFile, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	bw := bufio.NewWriter(tmpFile)
	if err := write(bw); err != nil {
		tmpFile.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("writing %s: %w", tmpPath, err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("syncing %s: %w", tmpPath, err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming temp file to %s: %w", path, err)
	}

	success = true
	return nil
}

func seqPath(path string) string {
	return path + ".seq"
}

var errCorruptSeq = errors.New("corrupt id sequence")

// readSeq returns 0 when the sidecar does not exist.
func readSeq(path string) (uint, error) {
	data, err := os.ReadFile(seqPath(path))
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading id sequence: %w", err)
	}
	n, err := strconv.ParseUint(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w %q: %w", errCorruptSeq, strings.TrimSpace(string(data)), err)
	}
	return uint(n), nil
}

func writeSeq(path string, seq uint) error {
	return writeFileAtomic(seqPath(path), func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "%d\n", seq)
		return err
	})
}
