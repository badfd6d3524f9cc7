package builder

import (
	"regexp"
	"strings"
)

// maxDetailLines bounds how much compiler output Explain repeats.
const maxDetailLines = 5

var (
	missingHeaderRe = regexp.MustCompile(`fatal error: (simulant/[^:\s]+): No such file`)
	compilerMsgRe   = regexp.MustCompile(`^(\S+?):(\d+):\d+: (error|fatal error): (.*)$`)
)

// Explain turns raw CMake or compiler output into a short message with a
// suggested fix. Unknown output yields its first error lines.
func Explain(output string) string {
	switch {
	case missingHeaderRe.MatchString(output):
		m := missingHeaderRe.FindStringSubmatch(output)
		return "Engine header " + m[1] + " not found. Run 'simulant update' to download the engine, or build with --use-global-simulant."
	case strings.Contains(output, "CMakeCache.txt") && strings.Contains(output, "does not match"):
		return "The build directory was configured for another source tree. Build again with --rebuild."
	case strings.Contains(output, "No CMAKE_CXX_COMPILER could be found"):
		return "No C++ compiler found. Install a compiler toolchain (gcc, clang or mingw64)."
	case strings.Contains(output, "cannot find -lsimulant"):
		return "The engine library is missing. Run 'simulant update'."
	}

	return errorDetail(output)
}

// errorDetail keeps the lines that name a problem, short enough to read.
func errorDetail(output string) string {
	var relevant []string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if m := compilerMsgRe.FindStringSubmatch(line); m != nil {
			relevant = append(relevant, m[1]+":"+m[2]+": "+m[4])
			continue
		}
		if strings.HasPrefix(line, "CMake Error") || strings.HasPrefix(line, "make: ***") {
			relevant = append(relevant, line)
		}
	}

	if len(relevant) > maxDetailLines {
		relevant = append(relevant[:maxDetailLines], "... (run with --verbose for full output)")
	}
	return strings.Join(relevant, "\n")
}
