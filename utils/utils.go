package utils

import (
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

var moduleSourceDir string

func init() {
	_, file, _, _ := runtime.Caller(0)
	// compatible solution to get this module's source directory across operating systems
	moduleSourceDir = sourceDir(file)
}

func sourceDir(file string) string {
	dir := filepath.Dir(file)
	dir = filepath.Dir(dir)

	s := filepath.Dir(dir)
	if filepath.Base(s) != "estore" {
		s = dir
	}
	return filepath.ToSlash(s) + "/"
}

// FileWithLineNum return the file name and line number of the current file
func FileWithLineNum() string {
	// the second caller usually from within this module, so set i start from 2
	for i := 2; i < 15; i++ {
		_, file, line, ok := runtime.Caller(i)
		if ok && (!strings.HasPrefix(file, moduleSourceDir) || strings.HasSuffix(file, "_test.go")) {
			return file + ":" + strconv.FormatInt(int64(line), 10)
		}
	}

	return ""
}

// CallerFrame returns the runtime.Frame of the first caller outside this
// module, for loggers (slog) that want a PC rather than a formatted string.
func CallerFrame() runtime.Frame {
	for i := 2; i < 15; i++ {
		pc, file, _, ok := runtime.Caller(i)
		if ok && (!strings.HasPrefix(file, moduleSourceDir) || strings.HasSuffix(file, "_test.go")) {
			frames := runtime.CallersFrames([]uintptr{pc})
			frame, _ := frames.Next()
			return frame
		}
	}
	return runtime.Frame{}
}

