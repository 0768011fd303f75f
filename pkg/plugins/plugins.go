package plugins

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"argware/pkg/argparse"
	"argware/pkg/argware"
	"argware/pkg/commands"
	"argware/pkg/logging"
)

// ArgsKey holds the arguments forwarded to a plugin.
const ArgsKey = "plugin_args"

const (
	defaultSeparator   = "-"
	defaultWait        = 5 * time.Second
	defaultConcurrency = 8
)

// Plugin is an executable exposed as a command.
type Plugin struct {
	// Name is the command path, "db migrate" for tool-db-migrate.
	Name        string `json:"name"`
	Path        string `json:"path"`
	Description string `json:"description,omitempty"`
}

// Options configures plugin discovery and dispatch.
type Options struct {
	// Prefix selects executables: with prefix "tool", tool-db-migrate
	// becomes the command "db migrate".
	Prefix string
	// Separator splits executable names into command segments. Defaults to "-".
	Separator string
	// SearchPaths are scanned in order, the first executable of a name wins.
	// Defaults to $PATH.
	SearchPaths []string
	// Self is the base name of the running program, never exposed as a plugin.
	Self string
	// Wait bounds each --help probe. Defaults to 5s.
	Wait time.Duration
	// Concurrency bounds the number of parallel probes. Defaults to 8.
	Concurrency int

	// Cache stores discovery results in CacheDir. Safe to delete at any time.
	Cache bool
	// CacheName distinguishes the cache files of different programs.
	CacheName string
	// CacheDir defaults to os.TempDir().
	CacheDir string

	Runner  Runner
	Signals SignalSource
	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer
}

// Middleware discovers prefixed executables and registers them as commands
// of a command tree. The tree dispatches them.
type Middleware struct {
	argware.BaseMiddleware

	tree       *commands.Tree
	opts       Options
	plugins    []Plugin
	configured bool
}

// New creates a plugin middleware registering its commands on tree.
func New(tree *commands.Tree, opts Options) *Middleware {
	if opts.Separator == "" {
		opts.Separator = defaultSeparator
	}
	if opts.SearchPaths == nil {
		opts.SearchPaths = filepath.SplitList(os.Getenv("PATH"))
	}
	if opts.Wait <= 0 {
		opts.Wait = defaultWait
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	if opts.CacheDir == "" {
		opts.CacheDir = os.TempDir()
	}
	if opts.CacheName == "" {
		opts.CacheName = opts.Prefix
	}
	if opts.Runner == nil {
		opts.Runner = ExecRunner{}
	}
	if opts.Signals == nil {
		opts.Signals = OSSignals{}
	}
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	return &Middleware{tree: tree, opts: opts}
}

// Plugins returns the plugins registered by Configure.
func (m *Middleware) Plugins() []Plugin {
	return append([]Plugin(nil), m.plugins...)
}

// Configure discovers plugins, adds them to the tree and configures the tree
// on p. Plugins whose name clashes with an existing command are skipped.
func (m *Middleware) Configure(p *argware.Parser) error {
	if m.configured {
		return nil
	}
	m.configured = true

	found, err := m.Discover(context.Background())
	if err != nil {
		return err
	}

	for _, plugin := range found {
		if m.clashes(plugin.Name) {
			logging.Debug("Plugins", "Skipping plugin %s: command %q already exists", plugin.Path, plugin.Name)
			continue
		}
		m.plugins = append(m.plugins, plugin)
		m.tree.AddCommand(m.command(plugin))
	}
	logging.Debug("Plugins", "Registered %d plugins with prefix %s", len(m.plugins), m.opts.Prefix)

	return m.tree.Configure(p)
}

// clashes reports whether name is a registered command or a parent of one.
func (m *Middleware) clashes(name string) bool {
	for _, cmd := range m.tree.Commands() {
		if cmd.Name == name || strings.HasPrefix(cmd.Name, name+" ") || strings.HasPrefix(name, cmd.Name+" ") {
			return true
		}
	}
	return false
}

func (m *Middleware) command(plugin Plugin) *commands.Command {
	return commands.NewCommand(plugin.Name, m.handler(plugin), argparse.Argument{
		Flags: []string{"args"},
		Dest:  ArgsKey,
		NArgs: argparse.NArgsRemainder,
	}).WithOptions(argparse.Options{
		Help:               plugin.Description,
		Description:        plugin.Description,
		DisableFlagParsing: true,
	})
}

func (m *Middleware) handler(plugin Plugin) commands.HandlerFunc {
	return func(ctx context.Context, ns argware.Namespace) error {
		signals, stop := m.opts.Signals.Notify()
		defer stop()

		logging.Debug("Plugins", "Running %s", plugin.Path)
		code, err := m.opts.Runner.Run(ctx, Cmd{
			Path:   plugin.Path,
			Args:   ns.GetStrings(ArgsKey),
			Stdin:  m.opts.Stdin,
			Stdout: m.opts.Stdout,
			Stderr: m.opts.Stderr,
		}, signals)
		if err != nil {
			return fmt.Errorf("failed to run %s: %w", plugin.Path, err)
		}
		if code != 0 {
			return &ExitError{Command: plugin.Name, Code: code}
		}
		return nil
	}
}

// Discover scans the search paths for plugins and probes their
// descriptions. The result is sorted by name.
func (m *Middleware) Discover(ctx context.Context) ([]Plugin, error) {
	var (
		dirs  []cachedDir
		cache string
	)
	if m.opts.Cache {
		dirs = snapshotDirs(m.opts.SearchPaths)
		cache = cachePath(m.opts.CacheDir, m.opts.CacheName, m.opts.Prefix)
		if plugins, ok := readCache(cache, dirs); ok {
			logging.Debug("Plugins", "Using plugin cache %s", cache)
			return plugins, nil
		}
	}

	found := m.scan()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.opts.Concurrency)
	for i := range found {
		i := i
		g.Go(func() error {
			found[i].Description = m.describe(gctx, found[i].Path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if m.opts.Cache {
		if err := writeCache(cache, dirs, found); err != nil {
			logging.Warn("Plugins", "Failed to write plugin cache %s: %v", cache, err)
		}
	}
	return found, nil
}

// scan lists the prefixed executables of the search paths.
func (m *Middleware) scan() []Plugin {
	prefix := m.opts.Prefix + m.opts.Separator
	seen := map[string]bool{}
	var found []Plugin

	for _, dir := range m.opts.SearchPaths {
		if dir == "" {
			continue
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			base := entry.Name()
			if !strings.HasPrefix(base, prefix) || base == m.opts.Self || seen[base] {
				continue
			}
			rest := strings.TrimSuffix(strings.TrimPrefix(base, prefix), ".exe")
			if rest == "" {
				continue
			}

			path := filepath.Join(dir, base)
			if !isExecutable(path) {
				continue
			}
			seen[base] = true

			segments := strings.Split(rest, m.opts.Separator)
			found = append(found, Plugin{
				Name: strings.Join(strings.Fields(strings.Join(segments, " ")), " "),
				Path: path,
			})
		}
	}

	sort.Slice(found, func(i, j int) bool {
		return found[i].Name < found[j].Name
	})
	return found
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	return info.Mode().Perm()&0o111 != 0
}

// describe runs "<path> --help" and extracts the description paragraph.
// Probing failures only lose the description.
func (m *Middleware) describe(ctx context.Context, path string) string {
	ctx, cancel := context.WithTimeout(ctx, m.opts.Wait)
	defer cancel()

	cmd := exec.CommandContext(ctx, path, "--help")
	cmd.WaitDelay = time.Second
	out, err := cmd.Output()
	if err != nil {
		logging.Debug("Plugins", "Probing %s exited with %v", path, err)
	}
	return parseDescription(string(out))
}

// parseDescription returns the first paragraph of help output that is not
// the usage line, with whitespace collapsed. Help without a description
// paragraph, where a section such as "options:" follows the usage, yields "".
func parseDescription(help string) string {
	help = strings.ReplaceAll(help, "\r\n", "\n")
	for _, paragraph := range strings.Split(help, "\n\n") {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			continue
		}
		if strings.HasPrefix(strings.ToLower(paragraph), "usage:") {
			continue
		}
		firstLine, _, _ := strings.Cut(paragraph, "\n")
		if strings.HasSuffix(firstLine, ":") {
			return ""
		}
		return strings.Join(strings.Fields(paragraph), " ")
	}
	return ""
}
