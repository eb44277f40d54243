package ui

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/temirov/gits/internal/repos/filesystem"
)

const (
	headingStylePlainConstant            = "plain"
	headingStyleRuleConstant             = "rule"
	currentDirectoryLabelConstant        = "./"
	currentDirectoryRelativePathConstant = "."
	unsupportedHeadingStyleMessage       = "unsupported heading style"
	unsupportedValueTemplateConstant     = "%w: %q"
)

// HeadingStyle selects how target headings are decorated.
type HeadingStyle string

// Supported heading styles.
const (
	HeadingStylePlain HeadingStyle = HeadingStyle(headingStylePlainConstant)
	HeadingStyleRule  HeadingStyle = HeadingStyle(headingStyleRuleConstant)
)

// ErrUnsupportedHeadingStyle indicates an unknown heading style value.
var ErrUnsupportedHeadingStyle = errors.New(unsupportedHeadingStyleMessage)

// HeadingStyleChoices lists the accepted heading style values.
func HeadingStyleChoices() []string {
	return []string{headingStylePlainConstant, headingStyleRuleConstant}
}

// ParseHeadingStyle converts user input into a HeadingStyle.
func ParseHeadingStyle(rawValue string) (HeadingStyle, error) {
	switch HeadingStyle(strings.ToLower(strings.TrimSpace(rawValue))) {
	case HeadingStylePlain:
		return HeadingStylePlain, nil
	case HeadingStyleRule:
		return HeadingStyleRule, nil
	default:
		return "", fmt.Errorf(unsupportedValueTemplateConstant, ErrUnsupportedHeadingStyle, rawValue)
	}
}

// PathResolver canonicalizes paths for absolute headings.
type PathResolver interface {
	Abs(path string) (string, error)
	EvalSymlinks(path string) (string, error)
}

// HeadingFormatter renders the label printed for a target.
type HeadingFormatter struct {
	pathResolver PathResolver
}

// NewHeadingFormatter constructs a HeadingFormatter; a nil resolver uses the operating system.
func NewHeadingFormatter(pathResolver PathResolver) HeadingFormatter {
	if pathResolver == nil {
		pathResolver = filesystem.OSFileSystem{}
	}
	return HeadingFormatter{pathResolver: pathResolver}
}

// Label renders targetPath either as its canonical absolute path or relative to resolutionRoot.
// Every label ends with a path separator; the resolution root itself renders as "./".
func (formatter HeadingFormatter) Label(targetPath string, resolutionRoot string, absolute bool) string {
	if absolute {
		return withTrailingSeparator(formatter.canonicalize(targetPath))
	}

	relativePath, relativeError := filepath.Rel(resolutionRoot, targetPath)
	if relativeError != nil {
		return withTrailingSeparator(targetPath)
	}
	if len(relativePath) == 0 || relativePath == currentDirectoryRelativePathConstant {
		return currentDirectoryLabelConstant
	}
	return withTrailingSeparator(relativePath)
}

func (formatter HeadingFormatter) canonicalize(targetPath string) string {
	pathResolver := formatter.pathResolver
	if pathResolver == nil {
		pathResolver = filesystem.OSFileSystem{}
	}
	absolutePath, absoluteError := pathResolver.Abs(targetPath)
	if absoluteError != nil {
		return targetPath
	}
	canonicalPath, canonicalError := pathResolver.EvalSymlinks(absolutePath)
	if canonicalError != nil {
		return targetPath
	}
	return canonicalPath
}

func withTrailingSeparator(path string) string {
	return path + string(filepath.Separator)
}

// HeadingPolicy decides whether headings are printed for a run.
type HeadingPolicy struct {
	IncludeAncestors bool
	AbsolutePaths    bool
	ExplicitRoot     bool
	Suppressed       bool
}

// Enabled reports whether headings are printed for targetCount targets.
// A bare single-repository run stays silent so its output matches running git directly.
func (policy HeadingPolicy) Enabled(targetCount int) bool {
	if policy.Suppressed {
		return false
	}
	return targetCount > 1 || policy.IncludeAncestors || policy.AbsolutePaths || policy.ExplicitRoot
}
