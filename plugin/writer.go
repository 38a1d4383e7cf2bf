package plugin

import (
	"encoding/xml"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
)

// writeReportFile persists a rendered report, creating its folder first
// when the module key was nested.
func writeReportFile(filename, rendered string, shouldCreateFolder bool, outputFolder string) error {
	if shouldCreateFolder {
		if err := os.MkdirAll(outputFolder, 0o755); err != nil {
			return &DirectoryCreateError{Dir: outputFolder, Err: err}
		}
	}
	if err := os.WriteFile(filename, []byte(rendered), 0o644); err != nil {
		return &FileWriteError{Filename: filename, Err: err}
	}
	return nil
}

// summarizeReport parses a rendered report back and logs its suites.
func summarizeReport(filename, rendered string) (Results, error) {
	var report TestNGReport
	if err := xml.Unmarshal([]byte(rendered), &report); err != nil {
		logrus.WithError(err).WithField("File", filename).Debug("Rendered report is not TestNG XML, skipping summary")
		return Results{}, err
	}
	return logTestNGReportDetails(filename, report), nil
}

// logTestNGReportDetails logs the details of a TestNG report and returns the aggregated results.
func logTestNGReportDetails(filename string, report TestNGReport) Results {
	var results Results
	for _, suite := range report.Suites {
		suiteTests, suiteFailures, suiteSkipped := 0, 0, 0
		for _, class := range suite.Classes {
			for _, test := range class.Tests {
				if test.IsConfig {
					continue
				}
				suiteTests++
				switch test.Status {
				case "FAIL":
					suiteFailures++
				case "SKIP":
					suiteSkipped++
				}
			}
		}
		duration, _ := strconv.ParseFloat(suite.Duration, 64)

		results.Total += suiteTests
		results.Failures += suiteFailures
		results.Skipped += suiteSkipped
		results.DurationMS += duration

		logrus.WithFields(logrus.Fields{
			"File":     filename,
			"Suite":    suite.Name,
			"Tests":    suiteTests,
			"Failures": suiteFailures,
			"Skips":    suiteSkipped,
		}).Debugf("Suite duration: %.2f ms", duration)
	}
	return results
}
