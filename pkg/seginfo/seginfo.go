// Package seginfo names and discovers segment files on disk.
//
// Filename format: <id>.log, where id is a nonzero, strictly increasing
// uint32 printed in decimal with no padding (1.log, 2.log, 17.log, ...).
// There is no prefix and no timestamp component: segment identity is the
// id alone, and ordering is numeric, not lexicographic, since ids are not
// zero-padded.
package seginfo

import (
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/iamNilotpal/ignite/pkg/filesys"
)

// Extension is the fixed suffix every segment file carries.
const Extension = ".log"

// Name returns the filename for segment id.
func Name(id uint32) string {
	return strconv.FormatUint(uint64(id), 10) + Extension
}

// Path returns the full path to segment id under dataDir.
func Path(dataDir string, id uint32) string {
	return filepath.Join(dataDir, Name(id))
}

// ParseID extracts the numeric segment id from a filename (not a full
// path). It returns false if the name isn't a well-formed "<id>.log".
func ParseID(name string) (uint32, bool) {
	if !strings.HasSuffix(name, Extension) {
		return 0, false
	}

	idStr := strings.TrimSuffix(name, Extension)
	if idStr == "" {
		return 0, false
	}

	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}

	return uint32(id), true
}

// Discover scans dataDir for segment files and returns their ids sorted in
// ascending numeric order. This ordering is what callers must replay in:
// for a directory that just survived a crash mid-compaction, the
// compaction output segment has the highest id among the files still
// present and must be replayed last so its entries win over the stale
// pre-compaction entries that precede it.
func Discover(dataDir string) ([]uint32, error) {
	matches, err := filesys.ReadDir(filepath.Join(dataDir, "*"+Extension))
	if err != nil {
		return nil, err
	}

	ids := make([]uint32, 0, len(matches))
	for _, m := range matches {
		if id, ok := ParseID(filepath.Base(m)); ok {
			ids = append(ids, id)
		}
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}
