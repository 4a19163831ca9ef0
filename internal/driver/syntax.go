package driver

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

// SyntaxChecker reports whether a JavaScript source parses.
type SyntaxChecker interface {
	Check(name, src string) error
}

// ESBuildChecker checks syntax by running an esbuild transform and
// discarding the output.
type ESBuildChecker struct{}

// Check returns an error describing the first parse errors in src.
func (ESBuildChecker) Check(name, src string) error {
	result := api.Transform(src, api.TransformOptions{
		Loader:     loaderFor(name),
		Sourcefile: name,
		LogLevel:   api.LogLevelSilent,
	})
	if len(result.Errors) == 0 {
		return nil
	}

	var msgs []string
	for i, e := range result.Errors {
		if i == 3 {
			msgs = append(msgs, fmt.Sprintf("(%d more)", len(result.Errors)-i))
			break
		}
		if e.Location != nil {
			msgs = append(msgs, fmt.Sprintf("%d:%d: %s", e.Location.Line, e.Location.Column+1, e.Text))
		} else {
			msgs = append(msgs, e.Text)
		}
	}
	return fmt.Errorf("syntax error in %s: %s", name, strings.Join(msgs, "; "))
}

func loaderFor(name string) api.Loader {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".ts", ".mts", ".cts":
		return api.LoaderTS
	case ".jsx":
		return api.LoaderJSX
	case ".tsx":
		return api.LoaderTSX
	default:
		return api.LoaderJS
	}
}

// NopChecker accepts every source.
type NopChecker struct{}

// Check always returns nil.
func (NopChecker) Check(string, string) error { return nil }
