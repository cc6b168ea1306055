package drivers

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// MockFS is a scripted in-memory FileSystem. Every file holds a queue of
// contents: each read consumes one, and the last one is served forever.
type MockFS struct {
	mu       sync.Mutex
	dirs     map[string][]string
	files    map[string][]string
	failures map[string]error
	reads    map[string]int
	appended map[string][]string

	writeTo io.Writer
}

func NewMockFS() *MockFS {
	return &MockFS{
		dirs:     make(map[string][]string),
		files:    make(map[string][]string),
		failures: make(map[string]error),
		reads:    make(map[string]int),
		appended: make(map[string][]string),
	}
}

func (mf *MockFS) SetDir(dir string, names ...string) {
	mf.mu.Lock()
	defer mf.mu.Unlock()
	mf.dirs[dir] = append([]string{}, names...)
}

// SetFile replaces the queue of contents served for path.
func (mf *MockFS) SetFile(path string, contents ...string) {
	mf.mu.Lock()
	defer mf.mu.Unlock()
	mf.files[path] = append([]string{}, contents...)
	delete(mf.failures, path)
}

// PushFile queues more contents behind whatever path still has to serve.
func (mf *MockFS) PushFile(path string, contents ...string) {
	mf.mu.Lock()
	defer mf.mu.Unlock()
	mf.files[path] = append(mf.files[path], contents...)
}

func (mf *MockFS) FailFile(path string, err error) {
	mf.mu.Lock()
	defer mf.mu.Unlock()
	mf.failures[path] = err
}

func (mf *MockFS) Reads(path string) int {
	mf.mu.Lock()
	defer mf.mu.Unlock()
	return mf.reads[path]
}

func (mf *MockFS) Appended(path string) []string {
	mf.mu.Lock()
	defer mf.mu.Unlock()
	return append([]string{}, mf.appended[path]...)
}

// MonitorReads prints every served read to writer.
func (mf *MockFS) MonitorReads(writer io.Writer) {
	mf.mu.Lock()
	defer mf.mu.Unlock()
	mf.writeTo = writer
}

func (mf *MockFS) ReadDirNames(dir string) ([]string, error) {
	mf.mu.Lock()
	defer mf.mu.Unlock()

	names, found := mf.dirs[dir]
	if !found {
		return nil, errors.Wrapf(os.ErrNotExist, "mock dir %s", dir)
	}
	return append([]string{}, names...), nil
}

func (mf *MockFS) ReadLines(path string) ([]string, error) {
	mf.mu.Lock()
	defer mf.mu.Unlock()

	mf.reads[path]++
	if err, failing := mf.failures[path]; failing {
		return nil, errors.Wrapf(err, "mock file %s", path)
	}
	queue, found := mf.files[path]
	if !found || len(queue) == 0 {
		return nil, errors.Wrapf(os.ErrNotExist, "mock file %s", path)
	}

	content := queue[0]
	if len(queue) > 1 {
		mf.files[path] = queue[1:]
	}
	if mf.writeTo != nil {
		fmt.Fprintf(mf.writeTo, "[%s] read %q\n", path, content)
	}

	content = strings.TrimSuffix(content, "\n")
	if content == "" {
		return nil, nil
	}
	return strings.Split(content, "\n"), nil
}

func (mf *MockFS) AppendLine(path string, line string) error {
	mf.mu.Lock()
	defer mf.mu.Unlock()

	if err, failing := mf.failures[path]; failing {
		return errors.Wrapf(err, "mock file %s", path)
	}
	mf.appended[path] = append(mf.appended[path], line)
	return nil
}
