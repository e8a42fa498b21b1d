package terminal

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/GriffinCanCode/TermOS/backend/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestResolver(t *testing.T) *Resolver {
	t.Helper()
	r := NewResolver(logging.NewNop(), "claude", time.Second)
	// Keep tests hermetic: no real login shell invocation.
	r.snapshotFn = func(ctx context.Context, shell string) (map[string]string, error) {
		return nil, nil
	}
	return r
}

func envMap(env []string) map[string]string {
	out := make(map[string]string)
	for _, kv := range env {
		if i := strings.IndexByte(kv, '='); i > 0 {
			out[kv[:i]] = kv[i+1:]
		}
	}
	return out
}

func TestResolveShellOverrideWins(t *testing.T) {
	r := newTestResolver(t)

	cmd := r.Resolve(KindInteractive, "linux", "/opt/custom/fish", "")
	assert.Equal(t, "/opt/custom/fish", cmd.Path)
	assert.Empty(t, cmd.Args)
}

func TestResolveShellFromEnvironment(t *testing.T) {
	t.Setenv("SHELL", "/bin/fakeshell")
	r := newTestResolver(t)

	cmd := r.Resolve(KindInteractive, "linux", "", "")
	assert.Equal(t, "/bin/fakeshell", cmd.Path)
}

func TestResolveShellFallbackChain(t *testing.T) {
	t.Setenv("SHELL", "")
	r := newTestResolver(t)

	cmd := r.Resolve(KindInteractive, "linux", "", "")
	// The chain always terminates in a POSIX shell.
	assert.True(t, strings.HasSuffix(cmd.Path, "sh"), "got %q", cmd.Path)
}

func TestResolveWindowsLegacyShell(t *testing.T) {
	// On a non-Windows host none of the modern install paths exist, so
	// resolution lands on the legacy shell with policy bypass args.
	r := newTestResolver(t)

	cmd := r.Resolve(KindInteractive, "windows", "", "")
	assert.Equal(t, "powershell.exe", cmd.Path)
	assert.Equal(t, []string{"-ExecutionPolicy", "Bypass", "-NoLogo"}, cmd.Args)
}

func TestShellStartupArgs(t *testing.T) {
	assert.Equal(t, []string{"-ExecutionPolicy", "Bypass", "-NoLogo"},
		shellStartupArgs(`C:\Program Files\PowerShell\7\pwsh.exe`))
	assert.Nil(t, shellStartupArgs("/bin/zsh"))
	assert.Nil(t, shellStartupArgs("/bin/bash"))
}

func TestResolveAgentFromKnownPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	binDir := filepath.Join(home, ".local", "bin")
	require.NoError(t, os.MkdirAll(binDir, 0o755))
	agentPath := filepath.Join(binDir, "claude")
	require.NoError(t, os.WriteFile(agentPath, []byte("#!/bin/sh\n"), 0o755))

	r := newTestResolver(t)
	cmd := r.Resolve(KindAgent, "linux", "", "")
	assert.Equal(t, agentPath, cmd.Path)
}

func TestResolveAgentVersionDirsNewestFirst(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	versions := filepath.Join(home, ".local", "share", "claude", "versions")
	for _, v := range []string{"1.0.2", "1.0.10", "1.2.0"} {
		require.NoError(t, os.MkdirAll(filepath.Join(versions, v, "bin"), 0o755))
	}
	// Only the newest (by descending name order) carries the binary.
	want := filepath.Join(versions, "1.2.0", "bin", "claude")
	require.NoError(t, os.WriteFile(want, []byte("#!/bin/sh\n"), 0o755))

	r := newTestResolver(t)
	cmd := r.Resolve(KindAgent, "linux", "", "")
	assert.Equal(t, want, cmd.Path)
}

func TestResolveAgentFallsBackToBareName(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("PATH", home) // empty dir, no hit

	r := newTestResolver(t)
	cmd := r.Resolve(KindAgent, "linux", "", "definitely-not-installed")
	assert.Equal(t, "definitely-not-installed", cmd.Path)
}

func TestResolveAgentVariantOverridesDefault(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	binDir := filepath.Join(home, ".local", "bin")
	require.NoError(t, os.MkdirAll(binDir, 0o755))
	want := filepath.Join(binDir, "codex")
	require.NoError(t, os.WriteFile(want, []byte("#!/bin/sh\n"), 0o755))

	r := newTestResolver(t)
	cmd := r.Resolve(KindAgent, "linux", "", "codex")
	assert.Equal(t, want, cmd.Path)
}

func TestEnvForcesUTF8Locale(t *testing.T) {
	r := newTestResolver(t)

	cmd := r.Resolve(KindInteractive, "linux", "/bin/sh", "")
	env := envMap(cmd.Env)
	assert.Equal(t, "en_US.UTF-8", env["LANG"])
	assert.Equal(t, "en_US.UTF-8", env["LC_ALL"])
}

func TestEnvAugmentsPath(t *testing.T) {
	t.Setenv("PATH", "/bin")
	r := newTestResolver(t)

	cmd := r.Resolve(KindInteractive, "linux", "/bin/sh", "")
	env := envMap(cmd.Env)
	assert.Contains(t, strings.Split(env["PATH"], string(os.PathListSeparator)), "/usr/local/bin")
	assert.Contains(t, strings.Split(env["PATH"], string(os.PathListSeparator)), "/bin")
}

func TestEnvSnapshotLowerPriorityThanProcessEnv(t *testing.T) {
	t.Setenv("RESOLVER_TEST_VAR", "from-process")

	r := NewResolver(logging.NewNop(), "claude", time.Second)
	r.snapshotFn = func(ctx context.Context, shell string) (map[string]string, error) {
		return map[string]string{
			"RESOLVER_TEST_VAR":  "from-login-shell",
			"RESOLVER_TEST_ONLY": "login-only",
		}, nil
	}

	cmd := r.Resolve(KindInteractive, "linux", "/bin/sh", "")
	env := envMap(cmd.Env)
	assert.Equal(t, "from-process", env["RESOLVER_TEST_VAR"])
	assert.Equal(t, "login-only", env["RESOLVER_TEST_ONLY"])
}

func TestEnvSnapshotTimeoutDegradesGracefully(t *testing.T) {
	r := NewResolver(logging.NewNop(), "claude", 10*time.Millisecond)
	r.snapshotFn = func(ctx context.Context, shell string) (map[string]string, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	start := time.Now()
	cmd := r.Resolve(KindInteractive, "linux", "/bin/sh", "")
	assert.Less(t, time.Since(start), time.Second)

	env := envMap(cmd.Env)
	assert.Equal(t, "en_US.UTF-8", env["LANG"])
}

func TestEnvSnapshotComputedOnce(t *testing.T) {
	calls := 0
	r := NewResolver(logging.NewNop(), "claude", time.Second)
	r.snapshotFn = func(ctx context.Context, shell string) (map[string]string, error) {
		calls++
		return map[string]string{}, nil
	}

	r.Resolve(KindInteractive, "linux", "/bin/sh", "")
	r.Resolve(KindAgent, "linux", "", "")
	assert.Equal(t, 1, calls)
}

func TestVersionDirsNewestFirst(t *testing.T) {
	dir := t.TempDir()
	for _, v := range []string{"0.9.0", "1.1.0", "1.0.0"} {
		require.NoError(t, os.Mkdir(filepath.Join(dir, v), 0o755))
	}

	got := versionDirsNewestFirst(dir)
	require.Len(t, got, 3)
	assert.Equal(t, filepath.Join(dir, "1.1.0"), got[0])
	assert.Equal(t, filepath.Join(dir, "0.9.0"), got[2])

	assert.Nil(t, versionDirsNewestFirst(filepath.Join(dir, "missing")))
}
