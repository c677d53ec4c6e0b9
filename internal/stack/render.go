// Package stack renders and operates the docker compose deployment of the node,
// nginx, Redis and Prometheus.
package stack

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"lineaops/internal/config"
)

//go:embed templates/*.tmpl
var embedded embed.FS

// File maps a template to its place under the deploy directory.
type File struct {
	Template string
	Output   string
}

// Files are rendered in this order.
var Files = []File{
	{Template: "docker-compose.yml.tmpl", Output: "docker-compose.yml"},
	{Template: "nginx.conf.tmpl", Output: filepath.Join("nginx", "nginx.conf")},
	{Template: "prometheus.yml.tmpl", Output: filepath.Join("prometheus", "prometheus.yml")},
	{Template: "env.tmpl", Output: ".env"},
}

var varRegex = regexp.MustCompile(`\$\{([A-Z_][A-Z0-9_]*)\}`)

// Vars are the substitutions for one deployment.
type Vars map[string]string

// VarsFromConfig collects the declared variables from the stack configuration.
func VarsFromConfig(cfg config.StackConfig) Vars {
	return Vars{
		"PUBLIC_IP":        cfg.PublicIP,
		"DOMAIN":           cfg.Domain,
		"PROJECT":          cfg.Project,
		"NODE_IMAGE":       cfg.Images.Node,
		"NGINX_IMAGE":      cfg.Images.Nginx,
		"REDIS_IMAGE":      cfg.Images.Redis,
		"PROMETHEUS_IMAGE": cfg.Images.Prometheus,
	}
}

// Substitute replaces ${NAME} for every declared name. Undeclared references are left
// as they are, and nginx variables like $host never match.
func Substitute(text string, vars Vars) string {
	return varRegex.ReplaceAllStringFunc(text, func(m string) string {
		name := varRegex.FindStringSubmatch(m)[1]
		if v, ok := vars[name]; ok {
			return v
		}
		return m
	})
}

// Unresolved lists the ${NAME} references left in text, sorted and deduplicated.
func Unresolved(text string) []string {
	seen := map[string]bool{}
	var names []string
	for _, m := range varRegex.FindAllStringSubmatch(text, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	sort.Strings(names)
	return names
}

// RenderOptions selects the template source and destination.
type RenderOptions struct {
	// TemplatesDir overrides the built-in templates when set.
	TemplatesDir string
	OutDir       string
	Vars         Vars
}

// Rendered describes one written file.
type Rendered struct {
	Path       string
	Unresolved []string
}

// Render writes every deployment file into OutDir.
func Render(opts RenderOptions) ([]Rendered, error) {
	src, err := templateFS(opts.TemplatesDir)
	if err != nil {
		return nil, err
	}

	var out []Rendered
	for _, f := range Files {
		data, err := fs.ReadFile(src, f.Template)
		if err != nil {
			return out, fmt.Errorf("failed to read template %s: %w", f.Template, err)
		}
		content := Substitute(string(data), opts.Vars)

		path := filepath.Join(opts.OutDir, f.Output)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return out, fmt.Errorf("failed to create directory for %s: %w", path, err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			return out, fmt.Errorf("failed to write %s: %w", path, err)
		}
		out = append(out, Rendered{Path: path, Unresolved: Unresolved(content)})
	}
	return out, nil
}

func templateFS(dir string) (fs.FS, error) {
	if dir == "" {
		return fs.Sub(embedded, "templates")
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("templates directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("templates directory %s is not a directory", dir)
	}
	return os.DirFS(dir), nil
}
