package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/azp-tools/matrix/internal/audit"
	"github.com/azp-tools/matrix/internal/reconcile"
)

const preamble = `
### Azure Pipelines Test Matrix Updates

Projects using Azure Pipelines to test against the ` + "`ansible-core` `{branch}`" + ` branch have been checked to verify their test matrix is up-to-date.

A report on each project's status, as well as the required and recommended actions are explained below.

#### Using the Checklist

Each project is given a status as follows:

- ` + "`Skipped`" + ` - The project was skipped because it does not use platforms that were evaluated. No action is necessary.
- ` + "`Current`" + ` - The project uses platforms that were evaluated, and all are current. No action is necessary.
- ` + "`Update`" + ` - The project uses platforms that were evaluated, and one or more changes are indicated.

The types of changes are as follows:

- ` + "`Remove`" + ` - The platform and version are deprecated and will be removed from ` + "`ansible-test`" + ` in the future. Remove the version from the matrix.
- ` + "`Replace`" + ` - The platform and version are deprecated and have a direct successor. Replace the version in the matrix.
- ` + "`Add`" + ` - The platform is already tested by the project, but the version is not. Add the version to the matrix.
- ` + "`Consider`" + ` - The platform is not yet tested by the project. Consider adding the version to the matrix.

> IMPORTANT: These changes should **only** be made for the portion of the test matrix tested against the ` + "`{branch}`" + ` branch of ` + "`ansible-core`" + `.

#### Checklist

`

// Markdown writes the results as a markdown checklist.
func Markdown(w io.Writer, results []audit.Result, opts Options) error {
	bw := bufio.NewWriter(w)

	if opts.Header {
		branch := opts.DevelopmentBranch
		if branch == "" {
			branch = "devel"
		}
		bw.WriteString(strings.ReplaceAll(preamble, "{branch}", branch))
	}

	for i := range results {
		writeProject(bw, &results[i])
	}

	return bw.Flush()
}

func writeProject(w *bufio.Writer, r *audit.Result) {
	ref := r.Ref.String()

	switch {
	case r.Failed():
		fmt.Fprintf(w, "- [ ] %s - Error: %s\n", ref, causeOf(r.Err))
	case r.Report == nil:
		return
	case r.Report.Status == reconcile.StatusUpdate:
		fmt.Fprintf(w, "- [ ] %s - %s\n", ref, r.Report.Status)
	default:
		fmt.Fprintf(w, "- [X] %s - %s\n", ref, r.Report.Status)
	}

	for _, warning := range r.Warnings {
		fmt.Fprintf(w, "  - Warning: %s\n", warning)
	}

	if r.Report == nil {
		return
	}
	for _, id := range r.Report.ToRemove {
		fmt.Fprintf(w, "  - [ ] Remove: %s\n", id)
	}
	for _, rep := range r.Report.ToReplace {
		fmt.Fprintf(w, "  - [ ] Replace: %s with %s\n", rep.From, rep.To)
	}
	for _, id := range r.Report.ToAdd {
		fmt.Fprintf(w, "  - [ ] Add: %s\n", id)
	}
	for _, id := range r.Report.ToConsider {
		fmt.Fprintf(w, "  - [ ] Consider: %s\n", id)
	}
}
