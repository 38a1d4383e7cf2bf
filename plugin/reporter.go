package plugin

import (
	"context"
	_ "embed"
	"os"
	"strings"
	"sync/atomic"
	"text/template"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

//go:embed templates/testng.xml.tmpl
var defaultTemplate string

// Options configures a Reporter.
type Options struct {
	OutputFolder string
	// TemplatePath is read once; empty selects the embedded TestNG template.
	TemplatePath string
	// TargetURL must already be normalized, see NormalizeURL.
	TargetURL    string
	Title        string
	AnalyticsTag string
	Filter       StackFilter
	Orchestrator *Orchestrator
}

// Reporter writes one TestNG report per module of a results bundle.
type Reporter struct {
	opts     Options
	template *templateCell
}

// NewReporter returns a reporter. The template is loaded on the first Write
// and reused by every later one.
func NewReporter(opts Options) *Reporter {
	if opts.Filter == nil {
		opts.Filter = NewStackFilter()
	}
	if opts.Orchestrator == nil {
		opts.Orchestrator = NewOrchestrator(nil, nil, 0)
	}
	return &Reporter{
		opts:     opts,
		template: newTemplateCell(opts.TemplatePath),
	}
}

// Write renders and persists every module concurrently, launching
// post-processing for each report written. It returns the first template,
// folder or write failure once all modules are done; post-processing jobs
// may still be running when it returns.
func (r *Reporter) Write(ctx context.Context, bundle *ResultsBundle) error {
	tmpl, err := r.template.load()
	if err != nil {
		logrus.WithError(err).Error("Error loading report template")
		return err
	}
	if bundle == nil {
		return nil
	}

	systemErr := strings.Join(bundle.ErrMessages, "\n")

	var g errgroup.Group
	for key, module := range bundle.Modules {
		key, module := key, module
		g.Go(func() error {
			return r.writeModule(ctx, key, module, tmpl, systemErr)
		})
	}
	return g.Wait()
}

func (r *Reporter) writeModule(ctx context.Context, key string, module *ModuleResult, tmpl *template.Template, systemErr string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if module == nil {
		module = &ModuleResult{}
	}

	r.opts.Filter.Sanitize(module)

	paths := ResolvePaths(key, module.ReportPrefix, r.opts.OutputFolder)
	rendered, err := Render(tmpl, RenderContext{
		Module:       module,
		ModuleName:   paths.ModuleName,
		ClassName:    paths.ClassName,
		SystemErr:    systemErr,
		Title:        r.opts.Title,
		URL:          r.opts.TargetURL,
		AnalyticsTag: r.opts.AnalyticsTag,
	})
	if err != nil {
		logrus.WithField("Module", key).WithError(err).Error("Error rendering report")
		return err
	}

	if err := writeReportFile(paths.Filename, rendered, paths.ShouldCreateFolder, paths.OutputFolder); err != nil {
		logrus.WithField("Module", key).WithError(err).Error("Error writing report")
		return err
	}
	logrus.Infof("Wrote report file to: %s.", paths.Filename)

	if results, err := summarizeReport(paths.Filename, rendered); err == nil {
		logrus.Infof("Report %s: Total: %d | Failures: %d | Skips: %d | Duration: %.2f ms",
			paths.Filename, results.Total, results.Failures, results.Skipped, results.DurationMS)
	}

	r.opts.Orchestrator.Launch(paths.Filename, r.opts.TargetURL)
	return nil
}

// Wait blocks until the post-processing jobs launched so far have finished.
func (r *Reporter) Wait() {
	r.opts.Orchestrator.Wait()
}

// templateCell holds the parsed report template once it has been loaded
// successfully. Concurrent first loads share a single read; a failed load
// is not cached.
type templateCell struct {
	path  string
	read  func(string) ([]byte, error)
	value atomic.Pointer[template.Template]
	group singleflight.Group
}

func newTemplateCell(path string) *templateCell {
	return &templateCell{path: path, read: os.ReadFile}
}

func (c *templateCell) load() (*template.Template, error) {
	if t := c.value.Load(); t != nil {
		return t, nil
	}
	v, err, _ := c.group.Do("template", func() (interface{}, error) {
		if t := c.value.Load(); t != nil {
			return t, nil
		}
		text := defaultTemplate
		if c.path != "" {
			b, err := c.read(c.path)
			if err != nil {
				return nil, &TemplateLoadError{Path: c.path, Err: err}
			}
			text = string(b)
		}
		t, err := ParseTemplate(text)
		if err != nil {
			return nil, &TemplateLoadError{Path: c.path, Err: err}
		}
		c.value.CompareAndSwap(nil, t)
		return c.value.Load(), nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*template.Template), nil
}

// NormalizeURL prefixes a bare host with https:// and a trailing slash.
// URLs that already carry an http(s) scheme are returned unchanged.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	lower := strings.ToLower(raw)
	if strings.HasPrefix(lower, "https://") || strings.HasPrefix(lower, "http://") {
		return raw
	}
	return "https://" + raw + "/"
}
