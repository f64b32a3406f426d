// SPDX-License-Identifier: MIT
package logfile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// Timestamp layout embedded in file names.
const nameLayout = "20060102_150405"

// maxSuffix bounds the search for a free name within one second.
const maxSuffix = 1000

// Namer builds log file paths of the form <Dir>/<Base>_<YYYYMMDD_HHMMSS>.<Ext>.
type Namer struct {
	Dir  string
	Base string
	Ext  string
}

// Name returns the path for a file opened at t (UTC).
func (n Namer) Name(t time.Time) string {
	return n.path(t, 0)
}

// Unique returns the first path for t that does not exist yet, appending
// _1, _2, ... to the timestamp when needed.
func (n Namer) Unique(t time.Time) (string, error) {
	for i := range maxSuffix {
		p := n.path(t, i)
		_, err := os.Stat(p)
		if errors.Is(err, fs.ErrNotExist) {
			return p, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", fmt.Errorf("no free log file name for %s", n.Name(t))
}

func (n Namer) path(t time.Time, suffix int) string {
	name := n.Base + "_" + t.UTC().Format(nameLayout)
	if suffix > 0 {
		name += fmt.Sprintf("_%d", suffix)
	}
	if n.Ext != "" {
		name += "." + n.Ext
	}
	return filepath.Join(n.Dir, name)
}
