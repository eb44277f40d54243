package ui_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gits/internal/ui"
)

const (
	testWorkspaceRootConstant = "/workspace"
)

type stubPathResolver struct {
	absolutePaths  map[string]string
	canonicalPaths map[string]string
}

func (resolver stubPathResolver) Abs(path string) (string, error) {
	if absolutePath, exists := resolver.absolutePaths[path]; exists {
		return absolutePath, nil
	}
	return "", errors.New("no absolute path")
}

func (resolver stubPathResolver) EvalSymlinks(path string) (string, error) {
	if canonicalPath, exists := resolver.canonicalPaths[path]; exists {
		return canonicalPath, nil
	}
	return "", errors.New("no canonical path")
}

func TestHeadingFormatterRelativeLabels(testInstance *testing.T) {
	testCases := []struct {
		name          string
		targetPath    string
		rootPath      string
		expectedLabel string
	}{
		{name: "target_equals_root", targetPath: testWorkspaceRootConstant, rootPath: testWorkspaceRootConstant, expectedLabel: "./"},
		{name: "direct_child", targetPath: "/workspace/a", rootPath: testWorkspaceRootConstant, expectedLabel: "a/"},
		{name: "grouped_child", targetPath: "/workspace/b/c", rootPath: testWorkspaceRootConstant, expectedLabel: "b/c/"},
		{name: "ancestor_of_root", targetPath: "/", rootPath: "/workspace/a", expectedLabel: "../../"},
		{name: "unrelatable_paths_fall_back_to_raw", targetPath: "/workspace/a", rootPath: "relative/root", expectedLabel: "/workspace/a/"},
	}

	formatter := ui.NewHeadingFormatter(stubPathResolver{})
	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedLabel, formatter.Label(testCase.targetPath, testCase.rootPath, false))
		})
	}
}

func TestHeadingFormatterCurrentDirectoryIndicatorIsExclusive(testInstance *testing.T) {
	formatter := ui.NewHeadingFormatter(stubPathResolver{})
	targets := []string{"/workspace", "/workspace/a", "/workspace/b/c", "/"}

	indicatorCount := 0
	for _, target := range targets {
		if formatter.Label(target, testWorkspaceRootConstant, false) == "./" {
			indicatorCount++
			require.Equal(testInstance, testWorkspaceRootConstant, target)
		}
	}
	require.Equal(testInstance, 1, indicatorCount)
}

func TestHeadingFormatterAbsoluteLabels(testInstance *testing.T) {
	resolver := stubPathResolver{
		absolutePaths: map[string]string{
			"a":       "/workspace/a",
			"missing": "/workspace/missing",
		},
		canonicalPaths: map[string]string{
			"/workspace/a": "/private/workspace/a",
		},
	}
	formatter := ui.NewHeadingFormatter(resolver)

	testCases := []struct {
		name          string
		targetPath    string
		expectedLabel string
	}{
		{name: "canonicalized", targetPath: "a", expectedLabel: "/private/workspace/a/"},
		{name: "canonicalization_failure_uses_raw_path", targetPath: "missing", expectedLabel: "missing/"},
		{name: "absolute_failure_uses_raw_path", targetPath: "unknown", expectedLabel: "unknown/"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedLabel, formatter.Label(testCase.targetPath, testWorkspaceRootConstant, true))
		})
	}
}

func TestHeadingFormatterResolvesSymlinksOnDisk(testInstance *testing.T) {
	workspaceRoot, evalError := filepath.EvalSymlinks(testInstance.TempDir())
	require.NoError(testInstance, evalError)

	repositoryPath := filepath.Join(workspaceRoot, "repository")
	require.NoError(testInstance, os.Mkdir(repositoryPath, 0o755))
	linkPath := filepath.Join(workspaceRoot, "link")
	require.NoError(testInstance, os.Symlink(repositoryPath, linkPath))

	formatter := ui.NewHeadingFormatter(nil)
	require.Equal(testInstance, repositoryPath+string(filepath.Separator), formatter.Label(linkPath, workspaceRoot, true))
}

func TestHeadingPolicyEnabled(testInstance *testing.T) {
	testCases := []struct {
		name        string
		policy      ui.HeadingPolicy
		targetCount int
		expected    bool
	}{
		{name: "single_target_without_flags", policy: ui.HeadingPolicy{}, targetCount: 1, expected: false},
		{name: "no_targets_without_flags", policy: ui.HeadingPolicy{}, targetCount: 0, expected: false},
		{name: "multiple_targets", policy: ui.HeadingPolicy{}, targetCount: 2, expected: true},
		{name: "ancestors_requested", policy: ui.HeadingPolicy{IncludeAncestors: true}, targetCount: 1, expected: true},
		{name: "absolute_paths", policy: ui.HeadingPolicy{AbsolutePaths: true}, targetCount: 1, expected: true},
		{name: "explicit_root", policy: ui.HeadingPolicy{ExplicitRoot: true}, targetCount: 1, expected: true},
		{name: "suppressed_overrides_everything", policy: ui.HeadingPolicy{IncludeAncestors: true, AbsolutePaths: true, ExplicitRoot: true, Suppressed: true}, targetCount: 5, expected: false},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expected, testCase.policy.Enabled(testCase.targetCount))
		})
	}
}

func TestParseHeadingStyle(testInstance *testing.T) {
	style, parseError := ui.ParseHeadingStyle(" Rule ")
	require.NoError(testInstance, parseError)
	require.Equal(testInstance, ui.HeadingStyleRule, style)

	style, parseError = ui.ParseHeadingStyle("plain")
	require.NoError(testInstance, parseError)
	require.Equal(testInstance, ui.HeadingStylePlain, style)

	_, parseError = ui.ParseHeadingStyle("fancy")
	require.ErrorIs(testInstance, parseError, ui.ErrUnsupportedHeadingStyle)
	require.Contains(testInstance, parseError.Error(), "fancy")
}
