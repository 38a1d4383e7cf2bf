package plugin

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Args represents the plugin's configurable arguments.
type Args struct {
	ResultsFilePattern  string        `envconfig:"PLUGIN_RESULTS_FILE_PATTERN"`
	OutputFolder        string        `envconfig:"PLUGIN_OUTPUT_FOLDER" default:"tests_output"`
	Template            string        `envconfig:"PLUGIN_TEMPLATE"`
	URL                 string        `envconfig:"PLUGIN_URL"`
	Title               string        `envconfig:"PLUGIN_TITLE"`
	GoogleAnalyticsTag  string        `envconfig:"PLUGIN_GOOGLE_ANALYTICS_TAG"`
	Interpreter         string        `envconfig:"PLUGIN_INTERPRETER" default:"php"`
	ConversionScript    string        `envconfig:"PLUGIN_CONVERSION_SCRIPT"`
	ValidationScript    string        `envconfig:"PLUGIN_VALIDATION_SCRIPT"`
	AccessibilityScript string        `envconfig:"PLUGIN_ACCESSIBILITY_SCRIPT"`
	WhoisScript         string        `envconfig:"PLUGIN_WHOIS_SCRIPT"`
	JobTimeout          time.Duration `envconfig:"PLUGIN_JOB_TIMEOUT" default:"5m"`
	StackFilter         []string      `envconfig:"PLUGIN_STACK_FILTER"`
	FailIfNoResults     bool          `envconfig:"PLUGIN_FAIL_IF_NO_RESULTS"`
	Level               string        `envconfig:"PLUGIN_LOG_LEVEL"`
}

// ValidateInputs ensures the user inputs meet the plugin requirements.
func ValidateInputs(args Args) error {
	if args.ResultsFilePattern == "" {
		return errors.New("missing required parameter: ResultsFilePattern. Please specify the pattern to locate the test results files")
	}
	if args.OutputFolder == "" {
		return errors.New("missing required parameter: OutputFolder. Please specify where reports are written")
	}
	if args.JobTimeout < 0 {
		return errors.New("JobTimeout must be non-negative")
	}
	hasScript := args.ConversionScript != "" || args.ValidationScript != "" ||
		args.AccessibilityScript != "" || args.WhoisScript != ""
	if hasScript && args.Interpreter == "" {
		return errors.New("missing required parameter: Interpreter. Post-processing scripts need an interpreter")
	}
	return nil
}

// Exec writes a TestNG report for every module of every results file
// matching the pattern, then waits for the post-processing jobs it started.
func Exec(ctx context.Context, args Args) error {
	files, err := locateFiles(args.ResultsFilePattern)
	if err != nil {
		logrus.WithError(err).Error("Error locating files")
		if errors.Is(err, errNoResults) && !args.FailIfNoResults {
			logrus.Warn("No test results files found, continuing execution as FailIfNoResults is false")
			return nil
		}
		return errors.Wrap(err, "failed to locate files")
	}

	if err := os.MkdirAll(args.OutputFolder, 0o755); err != nil {
		logrus.WithError(err).WithField("Folder", args.OutputFolder).Error("Error creating output folder")
		return errors.Wrap(err, "failed to create output folder")
	}

	targetURL := NormalizeURL(args.URL)
	reporter := NewReporter(Options{
		OutputFolder: args.OutputFolder,
		TemplatePath: args.Template,
		TargetURL:    targetURL,
		Title:        args.Title,
		AnalyticsTag: args.GoogleAnalyticsTag,
		Filter:       NewStackFilter(args.StackFilter...),
		Orchestrator: NewOrchestrator(
			ExecRunner{},
			DefaultJobs(args.Interpreter, args.ConversionScript, args.ValidationScript, args.AccessibilityScript, args.WhoisScript),
			args.JobTimeout,
		),
	})
	defer reporter.Wait()

	logrus.Info("Writing custom report file")
	for _, file := range files {
		bundle, err := loadBundle(file)
		if err != nil {
			logrus.WithField("File", file).WithError(err).Error("Error reading results")
			return err
		}
		if err := reporter.Write(ctx, bundle); err != nil {
			return errors.Wrapf(err, "failed to write reports for %s", file)
		}
	}
	return nil
}

var errNoResults = errors.New("no files found matching the results file pattern")

// locateFiles identifies files matching the given pattern.
func locateFiles(pattern string) ([]string, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		logrus.WithError(err).WithField("Pattern", pattern).Error("Error occurred while searching for files")
		return nil, errors.Wrap(err, "failed to search for files")
	}
	if len(matches) == 0 {
		return nil, errNoResults
	}
	return matches, nil
}

// loadBundle reads a results bundle. Files ending in .yml or .yaml are
// decoded as YAML, anything else as JSON.
func loadBundle(filename string) (*ResultsBundle, error) {
	logrus.Infof("Processing file: %s", filename)

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read file")
	}

	var bundle ResultsBundle
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yml", ".yaml":
		err = yaml.Unmarshal(data, &bundle)
	default:
		err = json.Unmarshal(data, &bundle)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse results")
	}
	return &bundle, nil
}
