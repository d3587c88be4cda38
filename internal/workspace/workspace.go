// Package workspace discovers pipeline files in the local checkout tree.
//
// The tree under the repos directory has two layouts:
//
//	ansible-collections/<ns>.<name>/<branch>/ansible_collections/<ns>/<name>/.azure-pipelines/azure-pipelines.yml
//	<coreNs>/<coreName>/<branch>/.azure-pipelines/azure-pipelines.yml
package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	oerrors "github.com/azp-tools/matrix/internal/errors"
	"github.com/azp-tools/matrix/internal/output"
)

const (
	// CollectionsDir holds one directory per collection under the repos dir.
	CollectionsDir = "ansible-collections"

	// PipelineDir and PipelineFile locate the pipeline definition in a checkout.
	PipelineDir  = ".azure-pipelines"
	PipelineFile = "azure-pipelines.yml"

	collectionTree = "ansible_collections"
)

// ProjectRef identifies one project/branch.
type ProjectRef struct {
	Namespace string `json:"namespace" yaml:"namespace"`
	Name      string `json:"name" yaml:"name"`
	Branch    string `json:"branch" yaml:"branch"`
}

// String returns "namespace.name:branch".
func (r ProjectRef) String() string {
	return fmt.Sprintf("%s.%s:%s", r.Namespace, r.Name, r.Branch)
}

// Project is a discovered checkout.
type Project struct {
	Ref ProjectRef

	// Core is set for the core project checkout.
	Core bool

	// Dir is the checkout root.
	Dir string

	// Pipeline is the pipeline definition path inside Dir.
	Pipeline string
}

// ParseName splits "ns/name" or "ns.name" into namespace and name.
func ParseName(s string) (namespace, name string, err error) {
	sep := "/"
	if !strings.Contains(s, sep) {
		sep = "."
	}
	namespace, name, ok := strings.Cut(s, sep)
	if !ok || namespace == "" || name == "" || strings.ContainsAny(name, "/.") {
		return "", "", fmt.Errorf("invalid project name %q: expected namespace/name", s)
	}
	return namespace, name, nil
}

// LayoutError reports a directory that does not follow the expected layout.
type LayoutError struct {
	Path    string
	Message string
}

func (e *LayoutError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Options filters discovery.
type Options struct {
	// CoreProject is "ns/name" of the core project. Empty skips the core project.
	CoreProject string

	// CoreBranches limits the core project branches. Empty means all.
	CoreBranches []string

	// CollectionBranches limits collection branches. Empty means all.
	CollectionBranches []string

	// SkipCollections skips the collections tree.
	SkipCollections bool

	// RequirePipeline skips checkouts without a pipeline file.
	RequirePipeline bool
}

// Discover lists the checkouts under root, sorted by namespace, name and branch.
func Discover(root string, opts Options) ([]Project, error) {
	if _, err := os.Stat(root); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, oerrors.NewNotFoundError("repos directory not found", root,
				"Check out the projects first or set reposDir / --repos-dir")
		}
		return nil, fmt.Errorf("reading repos directory: %w", err)
	}

	var projects []Project

	if !opts.SkipCollections {
		found, err := discoverCollections(root, opts)
		if err != nil {
			return nil, err
		}
		projects = append(projects, found...)
	}

	if opts.CoreProject != "" {
		found, err := discoverCore(root, opts)
		if err != nil {
			return nil, err
		}
		projects = append(projects, found...)
	}

	slices.SortFunc(projects, func(a, b Project) int {
		return strings.Compare(a.Ref.Namespace+"\x00"+a.Ref.Name+"\x00"+a.Ref.Branch,
			b.Ref.Namespace+"\x00"+b.Ref.Name+"\x00"+b.Ref.Branch)
	})
	return projects, nil
}

func discoverCollections(root string, opts Options) ([]Project, error) {
	base := filepath.Join(root, CollectionsDir)
	collections, err := subdirs(base)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			output.Debug("no collections directory", "path", base)
			return nil, nil
		}
		return nil, fmt.Errorf("reading collections: %w", err)
	}

	var projects []Project
	for _, collection := range collections {
		namespace, name, ok := strings.Cut(collection, ".")
		if !ok || namespace == "" || name == "" {
			return nil, &LayoutError{
				Path:    filepath.Join(base, collection),
				Message: "collection directory must be named <namespace>.<name>",
			}
		}

		branches, err := subdirs(filepath.Join(base, collection))
		if err != nil {
			return nil, fmt.Errorf("reading branches of %s: %w", collection, err)
		}
		for _, branch := range branches {
			if !allowed(opts.CollectionBranches, branch) {
				continue
			}
			dir := filepath.Join(base, collection, branch, collectionTree, namespace, name)
			p := Project{
				Ref:      ProjectRef{Namespace: namespace, Name: name, Branch: branch},
				Dir:      dir,
				Pipeline: filepath.Join(dir, PipelineDir, PipelineFile),
			}
			if keep(p, opts) {
				projects = append(projects, p)
			}
		}
	}
	return projects, nil
}

func discoverCore(root string, opts Options) ([]Project, error) {
	namespace, name, err := ParseName(opts.CoreProject)
	if err != nil {
		return nil, err
	}

	base := filepath.Join(root, namespace, name)
	branches, err := subdirs(base)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			output.Debug("no core project checkout", "path", base)
			return nil, nil
		}
		return nil, fmt.Errorf("reading core project branches: %w", err)
	}

	var projects []Project
	for _, branch := range branches {
		if !allowed(opts.CoreBranches, branch) {
			continue
		}
		dir := filepath.Join(base, branch)
		p := Project{
			Ref:      ProjectRef{Namespace: namespace, Name: name, Branch: branch},
			Core:     true,
			Dir:      dir,
			Pipeline: filepath.Join(dir, PipelineDir, PipelineFile),
		}
		if keep(p, opts) {
			projects = append(projects, p)
		}
	}
	return projects, nil
}

func keep(p Project, opts Options) bool {
	check := p.Dir
	if opts.RequirePipeline {
		check = p.Pipeline
	}
	if _, err := os.Stat(check); err != nil {
		output.Debug("skipping checkout", "project", p.Ref.String(), "missing", check)
		return false
	}
	return true
}

func allowed(filter []string, branch string) bool {
	return len(filter) == 0 || slices.Contains(filter, branch)
}

// subdirs returns the sorted names of the directories in dir.
func subdirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// Globs returns shell glob patterns matching every pipeline file under root.
func Globs(root, coreProject string) []string {
	patterns := []string{
		filepath.Join(root, CollectionsDir, "*", "*", collectionTree, "*", "*", PipelineDir, PipelineFile),
	}
	if namespace, name, err := ParseName(coreProject); err == nil {
		patterns = append(patterns, filepath.Join(root, namespace, name, "*", PipelineDir, PipelineFile))
	}
	return patterns
}
