package launcher

import (
	"os"
	"path/filepath"
)

// ShimName is the file name of the interception library.
const ShimName = "libv4l2tracer.so"

// LibTracerPath is the installed library directory, set at build time:
//
//	go build -ldflags "-X github.com/UtsavBalar1231/v4l-utils/internal/launcher.LibTracerPath=/usr/lib/libv4l2tracer"
var LibTracerPath = "/usr/local/lib/libv4l2tracer"

// ResolveShim returns the path of the interception library.
//
// An explicitly configured directory wins. Otherwise the library is looked
// up relative to the executable: next to it in .libs for an uninstalled
// build tree, or in ../lib/libv4l2tracer for an installed prefix. When the
// executable path is unknown the build-time LibTracerPath is used.
func ResolveShim(configured, executable string) string {
	if configured != "" {
		return filepath.Join(configured, ShimName)
	}
	if executable == "" {
		return filepath.Join(LibTracerPath, ShimName)
	}

	if resolved, err := filepath.EvalSymlinks(executable); err == nil {
		executable = resolved
	}
	dir := filepath.Dir(executable)

	candidates := []string{
		filepath.Join(dir, ".libs"),
		filepath.Join(dir, "..", "lib", "libv4l2tracer"),
	}
	for _, candidate := range candidates {
		if isDir(candidate) {
			return filepath.Join(filepath.Clean(candidate), ShimName)
		}
	}
	return filepath.Join(LibTracerPath, ShimName)
}

// Executable returns the path of the running tool, or "" if it cannot be
// determined.
func Executable() string {
	if exe, err := os.Executable(); err == nil {
		return exe
	}
	if len(os.Args) > 0 && filepath.IsAbs(os.Args[0]) {
		return os.Args[0]
	}
	return ""
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
