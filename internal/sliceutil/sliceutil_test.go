package sliceutil

import (
	"path"
	"reflect"
	"strings"
	"testing"
)

func TestFilter(t *testing.T) {
	t.Parallel()

	cleanTool := func(p string) (string, bool) {
		return path.Clean(p), strings.TrimSpace(p) != ""
	}

	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{
			name:  "keeps probe order",
			input: []string{"/usr/bin/kdesudo", "/usr/bin/pkexec"},
			want:  []string{"/usr/bin/kdesudo", "/usr/bin/pkexec"},
		},
		{
			name:  "drops duplicates after cleaning",
			input: []string{"/usr/bin/pkexec", "/usr/bin//pkexec", "/usr/local/../bin/pkexec"},
			want:  []string{"/usr/bin/pkexec"},
		},
		{
			name:  "drops blanks",
			input: []string{"", "  ", "/usr/bin/pkexec"},
			want:  []string{"/usr/bin/pkexec"},
		},
		{
			name:  "empty input",
			input: []string{},
			want:  []string{},
		},
	}

	for _, tt := range tests {
		tc := tt
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := Filter(tc.input, cleanTool); !reflect.DeepEqual(got, tc.want) {
				t.Errorf("Filter() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestFilterTransforms(t *testing.T) {
	t.Parallel()

	input := []string{"PATH=/bin", "HOME=/root", "PATH=/usr/bin", "broken"}
	keys := Filter(input, func(kv string) (string, bool) {
		k, _, ok := strings.Cut(kv, "=")
		return k, ok
	})

	if want := []string{"PATH", "HOME"}; !reflect.DeepEqual(keys, want) {
		t.Errorf("Filter() = %v, want %v", keys, want)
	}
}
