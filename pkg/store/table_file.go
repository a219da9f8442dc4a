package store

import (
	"bufio"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ssargent/rowdb/pkg/codec"
)

// appendLine appends one record line to the table file, creating it if absent.
// It returns the number of bytes that reached the file.
func appendLine(path, line string) (int, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, filePerm)
	if err != nil {
		return 0, err
	}

	n, err := file.WriteString(line + codec.LineTerminator)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	return n, err
}

// scanLines calls fn for each line of the file until fn returns false
func scanLines(path string, fn func(lineNo int, line string) bool) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), codec.MaxLineSize)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if !fn(lineNo, scanner.Text()) {
			return nil
		}
	}
	return scanner.Err()
}

// readLines loads every non-blank line of the file
func readLines(path string) ([]string, error) {
	var lines []string
	err := scanLines(path, func(_ int, line string) bool {
		if line != "" {
			lines = append(lines, line)
		}
		return true
	})
	return lines, err
}

// writeLines replaces the file contents with lines.
// The new contents are written to a sibling temp file and renamed over the
// original, so the table file is never observed half written.
func writeLines(path string, lines []string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer func() {
		if tmpPath != "" {
			_ = os.Remove(tmpPath)
		}
	}()

	writer := bufio.NewWriter(tmp)
	for _, line := range lines {
		if _, err := writer.WriteString(line); err != nil {
			tmp.Close()
			return err
		}
		if _, err := writer.WriteString(codec.LineTerminator); err != nil {
			tmp.Close()
			return err
		}
	}
	if err := writer.Flush(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(filePerm); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return err
	}
	tmpPath = ""
	return nil
}

// scanMaxID returns the highest id in a table file and the number of records.
// An empty file yields -1.
func scanMaxID(c *codec.RecordCodec, path string) (int64, int64, error) {
	maxID := noRecords
	var count int64
	var parseErr error

	err := scanLines(path, func(lineNo int, line string) bool {
		if line == "" {
			return true
		}
		id, err := c.ParseID(line)
		if err != nil {
			parseErr = newError(KindCorruptRecovery, err, "%s:%d", path, lineNo)
			return false
		}
		count++
		if id > maxID {
			maxID = id
		}
		return true
	})
	if err != nil {
		return 0, 0, newError(KindIO, err, "failed to read table file %s", path)
	}
	if parseErr != nil {
		return 0, 0, parseErr
	}
	return maxID, count, nil
}

func fileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}
