package terminal

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/GriffinCanCode/TermOS/backend/internal/logging"
	"go.uber.org/zap"
)

// Resolver turns a session kind into a concrete executable invocation with a
// merged environment. Resolution never fails hard: a miss degrades to a bare
// name for PATH lookup with a warning.
type Resolver struct {
	log             *logging.Logger
	snapshotTimeout time.Duration
	agentBinary     string

	// login-shell environment snapshot, computed once and cached
	snapOnce sync.Once
	snapEnv  map[string]string

	// overridable in tests
	snapshotFn func(ctx context.Context, shell string) (map[string]string, error)
}

// NewResolver creates a resolver. agentBinary names the default agent
// executable; snapshotTimeout bounds the login-shell environment probe.
func NewResolver(log *logging.Logger, agentBinary string, snapshotTimeout time.Duration) *Resolver {
	if snapshotTimeout <= 0 {
		snapshotTimeout = 5 * time.Second
	}
	if agentBinary == "" {
		agentBinary = "claude"
	}
	r := &Resolver{
		log:             log,
		snapshotTimeout: snapshotTimeout,
		agentBinary:     agentBinary,
	}
	r.snapshotFn = r.runLoginShellEnv
	return r
}

// Resolve returns the executable invocation for the requested session kind on
// the given platform (a GOOS value). override forces the interactive shell;
// agentVariant overrides the agent binary name.
func (r *Resolver) Resolve(kind SessionKind, platform, override, agentVariant string) Command {
	env := r.buildEnv(platform)

	if kind == KindAgent {
		name := agentVariant
		if name == "" {
			name = r.agentBinary
		}
		path := r.resolveAgent(platform, name)
		return Command{Path: path, Env: env}
	}

	shell := r.resolveShell(platform, override)
	return Command{Path: shell, Args: shellStartupArgs(shell), Env: env}
}

// Ordered list of modern shell install paths probed on Windows before
// falling back to the legacy shell.
var windowsShellPaths = []string{
	`C:\Program Files\PowerShell\7\pwsh.exe`,
	`C:\Program Files\PowerShell\7-preview\pwsh.exe`,
	`C:\Program Files (x86)\PowerShell\7\pwsh.exe`,
}

const windowsLegacyShell = "powershell.exe"

func (r *Resolver) resolveShell(platform, override string) string {
	if override != "" {
		return override
	}

	if platform == "windows" {
		for _, p := range windowsShellPaths {
			if fileExists(p) {
				return p
			}
		}
		return windowsLegacyShell
	}

	if shell := os.Getenv("SHELL"); shell != "" {
		return shell
	}

	var fallbacks []string
	if platform == "darwin" {
		fallbacks = []string{"/bin/zsh", "/bin/bash", "/bin/sh"}
	} else {
		fallbacks = []string{"/bin/bash", "/bin/sh"}
	}
	for _, p := range fallbacks {
		if fileExists(p) {
			return p
		}
	}
	// POSIX guarantees a shell here.
	return "/bin/sh"
}

// shellStartupArgs returns extra arguments certain shells need: PowerShell
// variants get a relaxed execution policy and banner suppression.
func shellStartupArgs(shell string) []string {
	base := strings.ToLower(filepath.Base(shell))
	switch base {
	case "pwsh.exe", "pwsh", "powershell.exe", "powershell":
		return []string{"-ExecutionPolicy", "Bypass", "-NoLogo"}
	}
	return nil
}

// resolveAgent scans well-known install locations for the named agent binary.
// First hit wins; a miss degrades to the bare name for PATH lookup.
func (r *Resolver) resolveAgent(platform, name string) string {
	for _, candidate := range r.agentCandidates(platform, name) {
		if fileExists(candidate) {
			return candidate
		}
	}
	if path, err := exec.LookPath(name); err == nil {
		return path
	}
	r.log.Warn("agent binary not found at known paths, deferring to PATH",
		zap.String("binary", name))
	return name
}

func (r *Resolver) agentCandidates(platform, name string) []string {
	home, _ := os.UserHomeDir()

	if platform == "windows" {
		var out []string
		if appData := os.Getenv("APPDATA"); appData != "" {
			out = append(out, filepath.Join(appData, "npm", name+".cmd"))
		}
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			out = append(out, filepath.Join(localAppData, "Programs", name, name+".exe"))
		}
		return out
	}

	var out []string
	if home != "" {
		out = append(out, filepath.Join(home, "."+name, "local", name))
		out = append(out, filepath.Join(home, ".local", "bin", name))

		// Per-version install dirs from user-local package managers,
		// newest first.
		for _, versionsDir := range []string{
			filepath.Join(home, ".local", "share", name, "versions"),
			filepath.Join(home, ".nvm", "versions", "node"),
		} {
			for _, dir := range versionDirsNewestFirst(versionsDir) {
				out = append(out, filepath.Join(dir, "bin", name))
			}
		}
	}
	if platform == "darwin" {
		out = append(out, filepath.Join("/opt/homebrew/bin", name))
	}
	out = append(out, filepath.Join("/usr/local/bin", name))
	return out
}

// versionDirsNewestFirst lists subdirectories of dir sorted descending, so
// the newest version sorts first.
func versionDirsNewestFirst(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = filepath.Join(dir, n)
	}
	return out
}

// buildEnv merges, in increasing priority: the login-shell snapshot, the
// current process environment, forced UTF-8 locale variables, and a PATH
// augmented with package-manager bin directories.
func (r *Resolver) buildEnv(platform string) []string {
	merged := make(map[string]string)

	for k, v := range r.loginShellEnv(platform) {
		merged[k] = v
	}
	for _, kv := range os.Environ() {
		if i := strings.IndexByte(kv, '='); i > 0 {
			merged[kv[:i]] = kv[i+1:]
		}
	}

	merged["LANG"] = "en_US.UTF-8"
	merged["LC_ALL"] = "en_US.UTF-8"
	merged["PATH"] = augmentPath(merged["PATH"], platform)

	out := make([]string, 0, len(merged))
	for k, v := range merged {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}

// augmentPath appends OS package-manager bin directories missing from path.
func augmentPath(path, platform string) string {
	if platform == "windows" {
		return path
	}
	extra := []string{"/usr/local/bin"}
	if platform == "darwin" {
		extra = append(extra, "/opt/homebrew/bin")
	}
	if home, err := os.UserHomeDir(); err == nil {
		extra = append(extra,
			filepath.Join(home, ".local", "bin"),
			filepath.Join(home, ".npm-global", "bin"),
		)
	}

	present := make(map[string]bool)
	for _, dir := range filepath.SplitList(path) {
		present[dir] = true
	}
	for _, dir := range extra {
		if !present[dir] {
			if path != "" {
				path += string(os.PathListSeparator)
			}
			path += dir
		}
	}
	return path
}

// loginShellEnv returns the cached login-shell environment snapshot. GUI
// launched processes do not inherit profile exports, so the snapshot is
// obtained by invoking the user's shell non-interactively, bounded by a hard
// timeout. Failure or timeout contributes nothing.
func (r *Resolver) loginShellEnv(platform string) map[string]string {
	r.snapOnce.Do(func() {
		if platform == "windows" {
			return
		}
		shell := os.Getenv("SHELL")
		if shell == "" {
			shell = "/bin/sh"
		}

		ctx, cancel := context.WithTimeout(context.Background(), r.snapshotTimeout)
		defer cancel()

		env, err := r.snapshotFn(ctx, shell)
		if err != nil {
			r.log.Debug("login-shell environment snapshot unavailable",
				zap.String("shell", shell), zap.Error(err))
			return
		}
		r.snapEnv = env
	})
	return r.snapEnv
}

func (r *Resolver) runLoginShellEnv(ctx context.Context, shell string) (map[string]string, error) {
	out, err := exec.CommandContext(ctx, shell, "-l", "-c", "env").Output()
	if err != nil {
		return nil, err
	}
	env := make(map[string]string)
	for _, line := range strings.Split(string(out), "\n") {
		if i := strings.IndexByte(line, '='); i > 0 {
			env[line[:i]] = line[i+1:]
		}
	}
	return env, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
