// Package report renders audit results as a markdown checklist, JSON, YAML
// or a terminal table.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/azp-tools/matrix/internal/audit"
	"github.com/azp-tools/matrix/internal/output"
	"github.com/azp-tools/matrix/internal/platform"
	"github.com/azp-tools/matrix/internal/reconcile"
)

// Options controls rendering.
type Options struct {
	Format output.Format

	// Header adds the explanatory preamble to markdown output.
	Header bool

	// DevelopmentBranch is named in the preamble.
	DevelopmentBranch string
}

// Render writes results to w in the requested format.
func Render(w io.Writer, results []audit.Result, opts Options) error {
	switch opts.Format {
	case output.FormatMarkdown, "":
		return Markdown(w, results, opts)
	case output.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(views(results))
	case output.FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(views(results)); err != nil {
			return err
		}
		return enc.Close()
	case output.FormatTable:
		_, err := fmt.Fprintln(w, Table(results))
		return err
	default:
		return fmt.Errorf("unsupported output format %q", opts.Format)
	}
}

// ProjectView is the structured form of one result.
type ProjectView struct {
	Project       string                  `json:"project" yaml:"project"`
	Namespace     string                  `json:"namespace" yaml:"namespace"`
	Name          string                  `json:"name" yaml:"name"`
	Branch        string                  `json:"branch" yaml:"branch"`
	Pipeline      string                  `json:"pipeline,omitempty" yaml:"pipeline,omitempty"`
	Status        string                  `json:"status" yaml:"status"`
	Remove        []platform.ID           `json:"remove,omitempty" yaml:"remove,omitempty"`
	Replace       []reconcile.Replacement `json:"replace,omitempty" yaml:"replace,omitempty"`
	Add           []platform.ID           `json:"add,omitempty" yaml:"add,omitempty"`
	Consider      []platform.ID           `json:"consider,omitempty" yaml:"consider,omitempty"`
	Found         []platform.ID           `json:"found,omitempty" yaml:"found,omitempty"`
	PlatformsUsed []platform.Group        `json:"platformsUsed,omitempty" yaml:"platformsUsed,omitempty"`
	Warnings      []string                `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Error         string                  `json:"error,omitempty" yaml:"error,omitempty"`
}

func views(results []audit.Result) []ProjectView {
	out := make([]ProjectView, 0, len(results))
	for i := range results {
		out = append(out, view(&results[i]))
	}
	return out
}

func view(r *audit.Result) ProjectView {
	v := ProjectView{
		Project:   r.Ref.String(),
		Namespace: r.Ref.Namespace,
		Name:      r.Ref.Name,
		Branch:    r.Ref.Branch,
		Pipeline:  r.Pipeline,
		Warnings:  r.Warnings,
	}
	if r.Failed() {
		v.Status = output.StatusError
		v.Error = causeOf(r.Err)
		return v
	}
	if r.Report != nil {
		v.Status = string(r.Report.Status)
		v.Remove = r.Report.ToRemove
		v.Replace = r.Report.ToReplace
		v.Add = r.Report.ToAdd
		v.Consider = r.Report.ToConsider
		v.Found = r.Report.Found
		v.PlatformsUsed = r.Report.PlatformsUsed
	}
	return v
}

// causeOf returns the message of a project failure without the project
// prefix, which every renderer already prints.
func causeOf(err error) string {
	var pe *audit.ProjectError
	if errors.As(err, &pe) {
		return pe.Err.Error()
	}
	return err.Error()
}

// Table renders a summary table of results.
func Table(results []audit.Result) string {
	tbl := output.NewTable("PROJECT", "STATUS", "REMOVE", "REPLACE", "ADD", "CONSIDER", "PLATFORMS").
		StatusColumn(1)

	for i := range results {
		v := view(&results[i])
		replace := make([]string, len(v.Replace))
		for j, r := range v.Replace {
			replace[j] = fmt.Sprintf("%s→%s", r.From, r.To)
		}
		groups := make([]string, len(v.PlatformsUsed))
		for j, g := range v.PlatformsUsed {
			groups[j] = string(g)
		}
		tbl.Row(
			v.Project,
			v.Status,
			joinIDs(v.Remove),
			strings.Join(replace, " "),
			joinIDs(v.Add),
			joinIDs(v.Consider),
			strings.Join(groups, " "),
		)
	}
	return tbl.String()
}

func joinIDs(ids []platform.ID) string {
	s := make([]string, len(ids))
	for i, id := range ids {
		s[i] = string(id)
	}
	return strings.Join(s, " ")
}
