package plugin

import "encoding/xml"

// ResultsBundle is the test runner output handed to the reporter.
type ResultsBundle struct {
	Modules     map[string]*ModuleResult `json:"modules" yaml:"modules"`
	ErrMessages []string                 `json:"errmessages" yaml:"errmessages"`
}

// ModuleResult is the outcome of a single test file.
type ModuleResult struct {
	Completed    map[string]*TestCase `json:"completed" yaml:"completed"`
	Failed       int                  `json:"failed" yaml:"failed"`
	Passed       int                  `json:"passed" yaml:"passed"`
	Errors       int                  `json:"errors" yaml:"errors"`
	Tests        int                  `json:"tests" yaml:"tests"`
	Skipped      []string             `json:"skipped" yaml:"skipped"`
	Time         string               `json:"time" yaml:"time"`
	Timestamp    string               `json:"timestamp" yaml:"timestamp"`
	StackTrace   string               `json:"stackTrace" yaml:"stackTrace"`
	Message      string               `json:"message" yaml:"message"`
	ReportPrefix string               `json:"reportPrefix" yaml:"reportPrefix"`
	ErrMessages  []string             `json:"errmessages" yaml:"errmessages"`
}

// TestCase is one named test within a module.
type TestCase struct {
	Assertions []*Assertion `json:"assertions" yaml:"assertions"`
	Failed     int          `json:"failed" yaml:"failed"`
	Passed     int          `json:"passed" yaml:"passed"`
	Errors     int          `json:"errors" yaml:"errors"`
	Skipped    int          `json:"skipped" yaml:"skipped"`
	Time       string       `json:"time" yaml:"time"`
	StackTrace string       `json:"stackTrace" yaml:"stackTrace"`
	Message    string       `json:"message" yaml:"message"`
}

// Assertion is one checked condition within a test case.
type Assertion struct {
	Message     string   `json:"message" yaml:"message"`
	FullMsg     string   `json:"fullMsg" yaml:"fullMsg"`
	StackTrace  string   `json:"stackTrace" yaml:"stackTrace"`
	Screenshots []string `json:"screenshots" yaml:"screenshots"`
	// Failure is false for a passing assertion, or the failure text.
	Failure any `json:"failure" yaml:"failure"`
}

// IsFailure reports whether the assertion failed.
func (a *Assertion) IsFailure() bool {
	if a == nil {
		return false
	}
	switch f := a.Failure.(type) {
	case nil:
		return false
	case bool:
		return f
	case string:
		return f != ""
	default:
		return true
	}
}

// TestNGReport represents the structure of a TestNG XML report.
type TestNGReport struct {
	XMLName xml.Name `xml:"testng-results"`
	Suites  []Suite  `xml:"suite"`
}

// Suite represents a TestNG suite.
type Suite struct {
	Name     string  `xml:"name,attr"`
	Duration string  `xml:"duration-ms,attr"`
	Groups   []Group `xml:"groups>group"`
	Classes  []Class `xml:"test>class"`
}

// Group represents a TestNG group.
type Group struct {
	Name    string   `xml:"name,attr"`
	Methods []Method `xml:"method"`
}

// Method represents a method belonging to a group.
type Method struct {
	Name      string `xml:"name,attr"`
	Signature string `xml:"signature,attr"`
	ClassName string `xml:"class,attr"`
}

// Class represents a TestNG class.
type Class struct {
	Name  string `xml:"name,attr"`
	Tests []Test `xml:"test-method"`
}

// Test represents a TestNG test or configuration method.
type Test struct {
	Name        string `xml:"name,attr"`
	Status      string `xml:"status,attr"`
	DurationMS  string `xml:"duration-ms,attr"`
	IsConfig    bool   `xml:"is-config,attr"`
	Description string `xml:"description,attr"`
	Message     string `xml:"exception>message"`
	Exception   string `xml:"exception>full-stacktrace"`
}

// Results holds the counts of a rendered report.
type Results struct {
	Total      int
	Failures   int
	Skipped    int
	DurationMS float64
}
