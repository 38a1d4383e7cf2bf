package plugin

import "strings"

// defaultStackFilter lists substrings of frames that belong to the test
// runner or the node runtime rather than the test under report.
var defaultStackFilter = []string{
	"node_modules",
	"(node.js:",
	"(timers.js:",
	"(events.js:",
	"(util.js:",
	"(net.js:",
	"(internal/process/",
	"internal/modules/cjs/",
	"internal/timers.js",
	"_stream_readable.js:",
	"new Promise (<anonymous>)",
}

// StackFilter drops stack frames containing any of its substrings.
type StackFilter []string

// NewStackFilter returns the default filter extended with extra substrings.
func NewStackFilter(extra ...string) StackFilter {
	f := make(StackFilter, 0, len(defaultStackFilter)+len(extra))
	f = append(f, defaultStackFilter...)
	for _, s := range extra {
		if s = strings.TrimSpace(s); s != "" {
			f = append(f, s)
		}
	}
	return f
}

// Apply filters lines and joins the survivors with newlines.
func (f StackFilter) Apply(lines []string) string {
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if f.matches(line) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

func (f StackFilter) matches(line string) bool {
	for _, marker := range f {
		if strings.Contains(line, marker) {
			return true
		}
	}
	return false
}

// Sanitize cleans the stack traces of a module in place. Assertion traces
// are filtered; a failing module or test case additionally has the first
// line of its trace promoted to Message. Each module is owned by a single
// pipeline branch, so no other goroutine observes the mutation.
func (f StackFilter) Sanitize(module *ModuleResult) {
	if module == nil {
		return
	}

	for _, testcase := range module.Completed {
		if testcase == nil {
			continue
		}
		for _, assertion := range testcase.Assertions {
			if assertion != nil && assertion.StackTrace != "" {
				assertion.StackTrace = f.Apply(splitLines(assertion.StackTrace))
			}
		}
		if testcase.Failed > 0 && testcase.StackTrace != "" {
			testcase.Message, testcase.StackTrace = f.promote(testcase.StackTrace)
		}
	}

	if module.Failed > 0 && module.StackTrace != "" {
		module.Message, module.StackTrace = f.promote(module.StackTrace)
	}
}

// promote splits a raw trace into its summary line and the filtered rest.
func (f StackFilter) promote(trace string) (message, stack string) {
	lines := splitLines(trace)
	return lines[0], f.Apply(lines[1:])
}

func splitLines(s string) []string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
