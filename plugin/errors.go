package plugin

import "fmt"

// TemplateLoadError is returned when the report template cannot be read.
// It aborts the whole run.
type TemplateLoadError struct {
	Path string
	Err  error
}

func (e *TemplateLoadError) Error() string {
	return fmt.Sprintf("failed to load template %s: %v", e.Path, e.Err)
}

func (e *TemplateLoadError) Unwrap() error { return e.Err }

// DirectoryCreateError is returned when a module's output folder cannot be created.
type DirectoryCreateError struct {
	Dir string
	Err error
}

func (e *DirectoryCreateError) Error() string {
	return fmt.Sprintf("failed to create report folder %s: %v", e.Dir, e.Err)
}

func (e *DirectoryCreateError) Unwrap() error { return e.Err }

// FileWriteError is returned when a report file cannot be written.
type FileWriteError struct {
	Filename string
	Err      error
}

func (e *FileWriteError) Error() string {
	return fmt.Sprintf("failed to write report file %s: %v", e.Filename, e.Err)
}

func (e *FileWriteError) Unwrap() error { return e.Err }

// PostProcessingError describes a failed post-processing job. It is only
// ever logged.
type PostProcessingError struct {
	Job    string
	Arg    string
	Stderr string
	Err    error
}

func (e *PostProcessingError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("post-processing job %s(%s) failed: %v: %s", e.Job, e.Arg, e.Err, e.Stderr)
	}
	return fmt.Sprintf("post-processing job %s(%s) failed: %v", e.Job, e.Arg, e.Err)
}

func (e *PostProcessingError) Unwrap() error { return e.Err }
