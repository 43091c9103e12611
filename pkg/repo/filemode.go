package repo

import (
	"io/fs"

	"github.com/odvcencio/wyag/pkg/object"
)

// modeFromFileInfo maps a worktree entry to its tree mode. ok is false for
// entries that cannot be stored (sockets, devices, pipes).
func modeFromFileInfo(info fs.FileInfo) (mode string, ok bool) {
	m := info.Mode()
	switch {
	case m&fs.ModeSymlink != 0:
		return object.TreeModeSymlink, true
	case m.IsDir():
		return object.TreeModeDir, true
	case !m.IsRegular():
		return "", false
	case m&0o111 != 0:
		return object.TreeModeExecutable, true
	default:
		return object.TreeModeFile, true
	}
}

// filePermFromMode returns the permission bits used when checking out a
// regular file entry.
func filePermFromMode(mode string) fs.FileMode {
	if mode == object.TreeModeExecutable {
		return 0o755
	}
	return 0o644
}
