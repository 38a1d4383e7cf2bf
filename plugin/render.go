package plugin

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// RenderContext is the data a report template is executed against.
type RenderContext struct {
	Module       *ModuleResult
	ModuleName   string
	ClassName    string
	SystemErr    string
	Title        string
	URL          string
	AnalyticsTag string
}

// ParseTemplate parses report template text with the sprig and report
// helper functions available.
func ParseTemplate(text string) (*template.Template, error) {
	funcMap := sprig.TxtFuncMap()
	funcMap["xml"] = escapeXML
	funcMap["millis"] = millis
	funcMap["failureMessage"] = failureMessage
	funcMap["failureStack"] = failureStack

	t, err := template.New("testng").Funcs(funcMap).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse report template: %w", err)
	}
	return t, nil
}

// Render executes tmpl against ctx and strips characters XML does not allow.
func Render(tmpl *template.Template, ctx RenderContext) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, ctx); err != nil {
		return "", fmt.Errorf("render report for %s: %w", ctx.ModuleName, err)
	}
	return StripControlChars(buf.String()), nil
}

// StripControlChars removes every rune outside the XML 1.0 Char production.
func StripControlChars(s string) string {
	return strings.Map(func(r rune) rune {
		if isXMLChar(r) {
			return r
		}
		return -1
	}, s)
}

func isXMLChar(r rune) bool {
	switch {
	case r == 0x09 || r == 0x0A || r == 0x0D:
		return true
	case r >= 0x20 && r <= 0xD7FF:
		return true
	case r >= 0xE000 && r <= 0xFFFD:
		return true
	case r >= 0x10000 && r <= 0x10FFFF:
		return true
	}
	return false
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	// xml.EscapeText only fails when the writer does.
	_ = xml.EscapeText(&buf, []byte(StripControlChars(s)))
	return buf.String()
}

// millis converts a duration in seconds, as reported by the runner, to
// whole milliseconds.
func millis(seconds string) string {
	f, err := strconv.ParseFloat(strings.TrimSpace(seconds), 64)
	if err != nil {
		return "0"
	}
	return strconv.FormatInt(int64(f*1000+0.5), 10)
}

func firstFailure(tc *TestCase) *Assertion {
	if tc == nil {
		return nil
	}
	for _, a := range tc.Assertions {
		if a != nil && a.IsFailure() {
			return a
		}
	}
	return nil
}

func failureMessage(tc *TestCase) string {
	if a := firstFailure(tc); a != nil {
		return a.Message
	}
	return ""
}

func failureStack(tc *TestCase) string {
	if a := firstFailure(tc); a != nil {
		return a.StackTrace
	}
	return ""
}
