// Package reconcile compares the platforms a project tests against the
// platform registry and derives the edits the project needs.
package reconcile

import (
	"slices"

	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/azp-tools/matrix/internal/platform"
)

// Status is the overall verdict for one project/branch.
type Status string

const (
	// StatusSkipped means the project tests no tracked platform.
	StatusSkipped Status = "Skipped"
	// StatusCurrent means no edits are needed.
	StatusCurrent Status = "Current"
	// StatusUpdate means at least one edit is listed.
	StatusUpdate Status = "Update"
)

// Replacement suggests swapping a deprecated platform for its successor.
type Replacement struct {
	From platform.ID `json:"from" yaml:"from"`
	To   platform.ID `json:"to" yaml:"to"`
}

// Report is the derived diff for one project/branch. All lists are sorted.
type Report struct {
	Status        Status           `json:"status" yaml:"status"`
	ToRemove      []platform.ID    `json:"toRemove,omitempty" yaml:"toRemove,omitempty"`
	ToReplace     []Replacement    `json:"toReplace,omitempty" yaml:"toReplace,omitempty"`
	ToAdd         []platform.ID    `json:"toAdd,omitempty" yaml:"toAdd,omitempty"`
	ToConsider    []platform.ID    `json:"toConsider,omitempty" yaml:"toConsider,omitempty"`
	Found         []platform.ID    `json:"found,omitempty" yaml:"found,omitempty"`
	PlatformsUsed []platform.Group `json:"platformsUsed,omitempty" yaml:"platformsUsed,omitempty"`
}

// Edits returns the number of itemized lines in the report.
func (r *Report) Edits() int {
	return len(r.ToRemove) + len(r.ToReplace) + len(r.ToAdd) + len(r.ToConsider)
}

// Reconcile derives the report for a found platform set. Every found id must
// be known to the registry.
func Reconcile(found sets.Set[platform.ID], reg *platform.Registry) (*Report, error) {
	report := &Report{Found: sets.List(found)}

	var unknown []platform.ID
	used := sets.New[platform.Group]()
	for _, id := range report.Found {
		group, m := reg.Lookup(id)
		if m == platform.Untracked {
			unknown = append(unknown, id)
			continue
		}
		used.Insert(group)
	}
	if len(unknown) > 0 {
		return nil, &UnknownPlatformError{IDs: unknown}
	}

	if len(report.Found) == 0 {
		report.Status = StatusSkipped
		return report, nil
	}
	report.PlatformsUsed = sets.List(used)

	// Successors already offered through a replacement are not offered again.
	offered := sets.New[platform.ID]()
	for _, id := range report.Found {
		if _, m := reg.Lookup(id); m != platform.Deprecated {
			continue
		}
		to, ok := reg.Replacement(id)
		if ok && !found.Has(to) {
			report.ToReplace = append(report.ToReplace, Replacement{From: id, To: to})
			offered.Insert(to)
			continue
		}
		report.ToRemove = append(report.ToRemove, id)
	}

	for id, group := range reg.Expected() {
		if found.Has(id) || offered.Has(id) {
			continue
		}
		if used.Has(group) {
			report.ToAdd = append(report.ToAdd, id)
		} else {
			report.ToConsider = append(report.ToConsider, id)
		}
	}
	slices.Sort(report.ToAdd)
	slices.Sort(report.ToConsider)

	if report.Edits() == 0 {
		report.Status = StatusCurrent
	} else {
		report.Status = StatusUpdate
	}
	return report, nil
}
