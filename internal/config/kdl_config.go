package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"

	"github.com/standardbeagle/tmplctl/internal/cache"
	"github.com/standardbeagle/tmplctl/internal/transport"
)

// FileName is the project-local config file tmplctl looks for.
const FileName = ".tmplctl.kdl"

// Load reads FileName under projectRoot, layering it over Default.
// A missing file is not an error: the defaults stand alone.
func Load(projectRoot string) (*Config, error) {
	return LoadFile(projectRoot, FileName)
}

// LoadFile is Load with an explicit config file path, relative to
// projectRoot unless absolute, following the CLI's --config flag.
func LoadFile(projectRoot, configFile string) (*Config, error) {
	cfg := Default(projectRoot)

	path := configFile
	if !filepath.IsAbs(path) {
		path = filepath.Join(projectRoot, configFile)
	}
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if err := applyKDL(cfg, string(raw)); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// applyKDL overlays the KDL document's nodes onto cfg's defaults, one
// top-level node per config section, each walked independently so an
// unknown or malformed section never blocks the others from applying.
func applyKDL(cfg *Config, content string) error {
	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return err
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "render":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "max_nesting":
					if v, ok := firstIntArg(cn); ok {
						cfg.Render.MaxNesting = v
					}
				case "max_cache_size":
					if v, ok := firstIntArg(cn); ok {
						cfg.Render.MaxCacheSize = v
					}
				case "cache_enabled":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Render.CacheEnabled = b
					}
				}
			}
		case "cache":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "policy":
					if s, ok := firstStringArg(cn); ok {
						cfg.Cache.Policy = cache.Policy(s)
					}
				case "max_entries":
					if v, ok := firstIntArg(cn); ok {
						cfg.Cache.MaxEntries = v
					}
				case "max_memory_mb":
					if v, ok := firstIntArg(cn); ok {
						cfg.Cache.MaxMemoryMB = int64(v)
					}
				case "max_disk_mb":
					if v, ok := firstIntArg(cn); ok {
						cfg.Cache.MaxDiskMB = int64(v)
					}
				case "disk_dir":
					if s, ok := firstStringArg(cn); ok {
						cfg.Cache.DiskDir = resolvePath(cfg.Registry.Root, s)
					}
				case "sweep_interval_seconds":
					if v, ok := firstIntArg(cn); ok {
						cfg.Cache.SweepInterval = time.Duration(v) * time.Second
					}
				}
			}
		case "resolver":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "max_snapshots":
					if v, ok := firstIntArg(cn); ok {
						cfg.Resolver.MaxSnapshots = v
					}
				case "snapshot_dir":
					if s, ok := firstStringArg(cn); ok {
						cfg.Resolver.SnapshotDir = resolvePath(cfg.Registry.Root, s)
					}
				case "approval_deadline_hours":
					if v, ok := firstIntArg(cn); ok {
						cfg.Resolver.ApprovalDeadline = time.Duration(v) * time.Hour
					}
				}
			}
		case "transport":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "bandwidth":
					for _, bn := range cn.Children {
						if v, ok := firstIntArg(bn); ok {
							cfg.Transport.Bandwidth[transport.NetworkType(nodeName(bn))] = v
						}
					}
				case "circuit_failure_threshold":
					if v, ok := firstIntArg(cn); ok {
						cfg.Transport.CircuitBreaker.FailureThreshold = v
					}
				case "circuit_success_threshold":
					if v, ok := firstIntArg(cn); ok {
						cfg.Transport.CircuitBreaker.SuccessThreshold = v
					}
				case "circuit_timeout_seconds":
					if v, ok := firstIntArg(cn); ok {
						cfg.Transport.CircuitBreaker.Timeout = time.Duration(v) * time.Second
					}
				case "wake_interval_ms":
					if v, ok := firstIntArg(cn); ok {
						cfg.Transport.WakeInterval = time.Duration(v) * time.Millisecond
					}
				}
			}
		case "registry":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "root":
					if s, ok := firstStringArg(cn); ok {
						cfg.Registry.Root = resolvePath(cfg.Registry.Root, s)
					}
				case "max_depth":
					if v, ok := firstIntArg(cn); ok {
						cfg.Registry.MaxDepth = v
					}
				}
			}
		}
	}
	return nil
}

func resolvePath(root, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Clean(filepath.Join(root, p))
}

// Helper functions over the kdl-go document model: each pulls a single
// typed value out of a node's first argument.
func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}
