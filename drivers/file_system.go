package drivers

import (
	"bufio"
	"os"

	"github.com/pkg/errors"
)

// FileSystem is everything the logger needs from the disk: listing the
// sensor directory, reading device files and appending to the log.
type FileSystem interface {
	ReadDirNames(dir string) ([]string, error)
	ReadLines(path string) ([]string, error)
	AppendLine(path string, line string) error
}

type OsFS struct{}

// ReadDirNames returns entry names in the order the directory yields them.
func (OsFS) ReadDirNames(dir string) ([]string, error) {
	f, err := os.Open(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open dir %s", dir)
	}
	defer f.Close()

	names, err := f.Readdirnames(-1)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list dir %s", dir)
	}
	return names, nil
}

func (OsFS) ReadLines(path string) (lines []string, err error) {
	f, err := os.Open(path)
	if err != nil {
		err = errors.Wrapf(err, "failed to open %s", path)
		return
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err = sc.Err(); err != nil {
		err = errors.Wrapf(err, "failed reading %s", path)
		lines = nil
	}
	return
}

// AppendLine opens path for appending, writes line and a newline, and closes
// the file again. Nothing is kept open between calls.
func (OsFS) AppendLine(path string, line string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, os.FileMode(0644))
	if err != nil {
		return errors.Wrapf(err, "failed to open %s for appending", path)
	}

	_, err = f.WriteString(line + "\n")
	closeErr := f.Close()
	if err != nil {
		return errors.Wrapf(err, "failed to write to %s", path)
	}
	if closeErr != nil {
		return errors.Wrapf(closeErr, "failed to close %s", path)
	}
	return nil
}
