package plugin

import (
	"path/filepath"
	"strings"
)

// ReportPaths is where a module's report goes.
type ReportPaths struct {
	OutputFolder       string
	Filename           string
	ClassName          string
	ModuleName         string
	ShouldCreateFolder bool
}

// ResolvePaths derives the output location of a module from its key. A
// nested key such as "suite/login" is written to <base>/suite/ with the
// dotted class name "suite.login".
func ResolvePaths(moduleKey, reportPrefix, baseOutputFolder string) ReportPaths {
	var parts []string
	for _, p := range strings.Split(filepath.ToSlash(moduleKey), "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}

	var moduleName string
	if n := len(parts); n > 0 {
		moduleName = parts[n-1]
		parts = parts[:n-1]
	}

	paths := ReportPaths{
		OutputFolder: baseOutputFolder,
		ClassName:    moduleName,
		ModuleName:   moduleName,
	}
	if len(parts) > 0 {
		paths.OutputFolder = filepath.Join(baseOutputFolder, filepath.Join(parts...))
		paths.ClassName = strings.Join(parts, ".") + "." + moduleName
		paths.ShouldCreateFolder = true
	}
	paths.Filename = filepath.Join(paths.OutputFolder, reportPrefix+moduleName+".xml")
	return paths
}
