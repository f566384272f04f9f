package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"boyl/internal/platform"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type env struct {
	dataDir string
	work    string
}

func setupEnv(t *testing.T) env {
	t.Helper()
	root := t.TempDir()
	t.Setenv("HOME", root)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(root, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(root, "data"))
	t.Setenv(platform.ConfigEnv, filepath.Join(root, "config.toml"))
	t.Setenv(platform.DataDirEnv, filepath.Join(root, "boyl"))
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")

	work := filepath.Join(root, "work")
	require.NoError(t, os.MkdirAll(work, 0o755))
	return env{dataDir: filepath.Join(root, "boyl"), work: work}
}

func runCLI(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func writeProject(t *testing.T, dir string) {
	t.Helper()
	files := map[string]string{
		"README.md":       "# hello\n",
		"src/main.go":     "package main\n",
		"src/lib/util.go": "package lib\n",
	}
	for rel, body := range files {
		p := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	}
}

func TestVersion(t *testing.T) {
	setupEnv(t)
	code, out, _ := runCLI(t, "", "version")
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "boyl "+version+"\n", out)
}

func TestXoxo_WrapsCredits(t *testing.T) {
	setupEnv(t)
	code, out, _ := runCLI(t, "", "xoxo")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, "https://github.com/mikeevmm/boyl")
	for _, line := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
		assert.LessOrEqual(t, len([]rune(line)), 72, "line too wide: %q", line)
	}
}

func TestPaths(t *testing.T) {
	e := setupEnv(t)
	code, out, _ := runCLI(t, "", "paths")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, filepath.Join(e.dataDir, "registry.json"))
	assert.Contains(t, out, filepath.Join(e.dataDir, "templates"))
}

func TestList_Empty(t *testing.T) {
	setupEnv(t)
	code, out, _ := runCLI(t, "", "list")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, "No templates yet")
}

func TestMakeNewDelete_RoundTrip(t *testing.T) {
	e := setupEnv(t)
	src := filepath.Join(e.work, "proj")
	writeProject(t, src)

	code, out, errOut := runCLI(t, "", "make", "Go Proj", "--all", "-l", src, "-d", "a go project")
	require.Equal(t, exitOK, code, "stderr: %s", errOut)
	assert.Contains(t, out, "New template")

	stored := filepath.Join(e.dataDir, "templates", "go-proj")
	assert.FileExists(t, filepath.Join(stored, "src", "lib", "util.go"))
	assert.FileExists(t, filepath.Join(e.dataDir, "registry.json"))

	code, out, _ = runCLI(t, "", "list")
	require.Equal(t, exitOK, code)
	assert.Contains(t, out, "Go Proj")
	assert.Contains(t, out, "a go project")

	dest := filepath.Join(e.work, "out")
	code, _, errOut = runCLI(t, "", "new", "go proj", "-l", dest, "-n", "fresh")
	require.Equal(t, exitOK, code, "stderr: %s", errOut)
	body, err := os.ReadFile(filepath.Join(dest, "fresh", "src", "main.go"))
	require.NoError(t, err)
	assert.Equal(t, "package main\n", string(body))

	// A non-empty destination is refused.
	code, _, errOut = runCLI(t, "", "new", "go proj", "-l", dest, "-n", "fresh")
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, errOut, "not empty")

	code, _, errOut = runCLI(t, "", "delete", "GO PROJ", "-y")
	require.Equal(t, exitOK, code, "stderr: %s", errOut)
	assert.NoDirExists(t, stored)

	code, out, _ = runCLI(t, "", "list")
	require.Equal(t, exitOK, code)
	assert.Contains(t, out, "No templates yet")
}

func TestMake_RefusesDuplicateName(t *testing.T) {
	e := setupEnv(t)
	src := filepath.Join(e.work, "proj")
	writeProject(t, src)

	code, _, _ := runCLI(t, "", "make", "dup", "--all", "-l", src)
	require.Equal(t, exitOK, code)
	code, _, errOut := runCLI(t, "", "make", "DUP", "--all", "-l", src)
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, errOut, "already a template")
}

func TestMake_DefaultsNameToDirectory(t *testing.T) {
	e := setupEnv(t)
	src := filepath.Join(e.work, "starter")
	writeProject(t, src)

	code, out, errOut := runCLI(t, "", "make", "--all", "-l", src)
	require.Equal(t, exitOK, code, "stderr: %s", errOut)
	assert.Contains(t, out, "boyl new starter")
}

func TestMake_LeftoverDirectoryDeclined(t *testing.T) {
	e := setupEnv(t)
	src := filepath.Join(e.work, "proj")
	writeProject(t, src)
	leftover := filepath.Join(e.dataDir, "templates", "proj")
	require.NoError(t, os.MkdirAll(leftover, 0o755))

	code, out, _ := runCLI(t, "n\n", "make", "proj", "--all", "-l", src)
	assert.Equal(t, exitAborted, code)
	assert.Contains(t, out, "already exists")
	assert.NoFileExists(t, filepath.Join(leftover, "README.md"))
}

func TestMake_LeftoverDirectoryReplaced(t *testing.T) {
	e := setupEnv(t)
	src := filepath.Join(e.work, "proj")
	writeProject(t, src)
	leftover := filepath.Join(e.dataDir, "templates", "proj")
	require.NoError(t, os.MkdirAll(leftover, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(leftover, "stale.txt"), []byte("x"), 0o644))

	code, _, errOut := runCLI(t, "y\n", "make", "proj", "--all", "-l", src)
	require.Equal(t, exitOK, code, "stderr: %s", errOut)
	assert.NoFileExists(t, filepath.Join(leftover, "stale.txt"))
	assert.FileExists(t, filepath.Join(leftover, "README.md"))
}

func TestNew_UnknownTemplate(t *testing.T) {
	setupEnv(t)
	code, _, errOut := runCLI(t, "", "new", "ghost")
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, errOut, "ghost does not exist")
}

func TestDelete_Declined(t *testing.T) {
	e := setupEnv(t)
	src := filepath.Join(e.work, "proj")
	writeProject(t, src)
	code, _, _ := runCLI(t, "", "make", "keep", "--all", "-l", src)
	require.Equal(t, exitOK, code)

	code, out, _ := runCLI(t, "no\n", "delete", "keep")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, "Nothing deleted")
	assert.DirExists(t, filepath.Join(e.dataDir, "templates", "keep"))
}

func TestBadConfigFails(t *testing.T) {
	setupEnv(t)
	require.NoError(t, os.WriteFile(os.Getenv(platform.ConfigEnv), []byte("[copy]\nworkers = 0\n"), 0o644))
	code, _, errOut := runCLI(t, "", "list")
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, errOut, "copy.workers")
}

func TestMake_SkipsOwnTemplateDirectory(t *testing.T) {
	e := setupEnv(t)
	writeProject(t, e.work)
	home := filepath.Dir(e.work)

	code, _, errOut := runCLI(t, "", "make", "home", "--all", "-l", home)
	require.Equal(t, exitOK, code, "stderr: %s", errOut)

	stored := filepath.Join(e.dataDir, "templates", "home")
	assert.FileExists(t, filepath.Join(stored, "work", "src", "main.go"))
	assert.NoDirExists(t, filepath.Join(stored, "boyl", "templates", "home"))
}

func TestMake_RefusesSourceInsideTemplateDirectory(t *testing.T) {
	e := setupEnv(t)
	inside := filepath.Join(e.dataDir, "templates", "proj", "sub")
	writeProject(t, inside)

	code, _, errOut := runCLI(t, "", "make", "proj", "--all", "-l", inside)
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, errOut, "inside the template directory")
	assert.FileExists(t, filepath.Join(inside, "README.md"))
}

func TestWithin(t *testing.T) {
	root := filepath.FromSlash("/data/boyl")
	assert.True(t, within(root, root))
	assert.True(t, within(filepath.Join(root, "templates", "x"), root))
	assert.False(t, within(filepath.FromSlash("/data/boyl-other"), root))
	assert.False(t, within(filepath.FromSlash("/data"), root))
}
