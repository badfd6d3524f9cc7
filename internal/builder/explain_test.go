package builder

import (
	"strings"
	"testing"
)

func TestExplain(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   string
	}{
		{
			name:   "missing engine header",
			output: "sources/main.cpp:1:10: fatal error: simulant/simulant.h: No such file or directory\n",
			want:   "Engine header simulant/simulant.h not found",
		},
		{
			name:   "stale cache",
			output: "CMake Error: The current CMakeCache.txt directory /a/CMakeCache.txt is different.\nsource \"/a\" does not match the source \"/b\"",
			want:   "--rebuild",
		},
		{
			name:   "no compiler",
			output: "CMake Error at CMakeLists.txt:2 (project):\n  No CMAKE_CXX_COMPILER could be found.",
			want:   "No C++ compiler found",
		},
		{
			name:   "missing library",
			output: "/usr/bin/ld: cannot find -lsimulant",
			want:   "simulant update",
		},
		{
			name:   "compiler errors",
			output: "[ 50%] Building CXX object\n/simulant/sources/scenes/game.cpp:12:5: error: 'foo' was not declared in this scope\nmake: *** [all] Error 2\n",
			want:   "/simulant/sources/scenes/game.cpp:12: 'foo' was not declared in this scope\nmake: *** [all] Error 2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Explain(tt.output)
			if !strings.Contains(got, tt.want) {
				t.Errorf("expected %q to contain %q", got, tt.want)
			}
		})
	}
}

func TestExplain_TruncatesDetail(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 8; i++ {
		b.WriteString("a.cpp:1:1: error: bad\n")
	}

	lines := strings.Split(Explain(b.String()), "\n")
	if len(lines) != maxDetailLines+1 {
		t.Fatalf("expected %d lines, got %d: %v", maxDetailLines+1, len(lines), lines)
	}
	if !strings.Contains(lines[maxDetailLines], "--verbose") {
		t.Errorf("expected a verbose hint, got %q", lines[maxDetailLines])
	}
}
