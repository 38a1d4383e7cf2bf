package plugin

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestResolvePaths(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		prefix string
		base   string
		want   ReportPaths
	}{
		{
			name: "Flat",
			key:  "mod1",
			base: "out",
			want: ReportPaths{
				OutputFolder: "out",
				Filename:     filepath.Join("out", "mod1.xml"),
				ClassName:    "mod1",
				ModuleName:   "mod1",
			},
		},
		{
			name:   "FlatWithPrefix",
			key:    "login",
			prefix: "CHROME_",
			base:   "out",
			want: ReportPaths{
				OutputFolder: "out",
				Filename:     filepath.Join("out", "CHROME_login.xml"),
				ClassName:    "login",
				ModuleName:   "login",
			},
		},
		{
			name: "Nested",
			key:  "suiteA/moduleB",
			base: "out",
			want: ReportPaths{
				OutputFolder:       filepath.Join("out", "suiteA"),
				Filename:           filepath.Join("out", "suiteA", "moduleB.xml"),
				ClassName:          "suiteA.moduleB",
				ModuleName:         "moduleB",
				ShouldCreateFolder: true,
			},
		},
		{
			name:   "DeeplyNested",
			key:    "a/b/c",
			prefix: "FF_",
			base:   filepath.Join("reports", "ui"),
			want: ReportPaths{
				OutputFolder:       filepath.Join("reports", "ui", "a", "b"),
				Filename:           filepath.Join("reports", "ui", "a", "b", "FF_c.xml"),
				ClassName:          "a.b.c",
				ModuleName:         "c",
				ShouldCreateFolder: true,
			},
		},
		{
			name: "SurplusSeparators",
			key:  "/suite//login",
			base: "out",
			want: ReportPaths{
				OutputFolder:       filepath.Join("out", "suite"),
				Filename:           filepath.Join("out", "suite", "login.xml"),
				ClassName:          "suite.login",
				ModuleName:         "login",
				ShouldCreateFolder: true,
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ResolvePaths(tc.key, tc.prefix, tc.base)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("ResolvePaths() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
