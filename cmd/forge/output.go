// cmd/forge/output.go
package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mstvb/forge/internal/commit"
	"github.com/mstvb/forge/internal/diff"
	forgeerr "github.com/mstvb/forge/internal/errors"
	"github.com/mstvb/forge/internal/remote"
	"github.com/mstvb/forge/internal/repo"
	"github.com/mstvb/forge/internal/workspace"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
)

var (
	success = color.New(color.FgGreen, color.Bold)
	failure = color.New(color.FgRed, color.Bold)

	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	blue   = color.New(color.FgBlue).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

func shortDigest(digest string) string {
	if len(digest) > 7 {
		return digest[:7]
	}
	return digest
}

func when(t time.Time) string {
	if t.IsZero() {
		return "unknown time"
	}
	return humanize.Time(t)
}

func printFailures(out io.Writer, report *forgeerr.Report) {
	if report == nil {
		return
	}
	for _, f := range report.Failures {
		fmt.Fprintf(out, "\t%s %s\n", red("✗"), f.Error())
	}
}

func printStatus(out io.Writer, st *workspace.StatusReport) {
	if st.Clean() && len(st.Staged) == 0 {
		fmt.Fprintln(out, "Nothing staged, working tree clean")
		return
	}

	section := func(title, hint, glyph string, paths []string) {
		if len(paths) == 0 {
			return
		}
		fmt.Fprintln(out, title)
		if hint != "" {
			fmt.Fprintf(out, "  (%s)\n", hint)
		}
		for _, p := range paths {
			fmt.Fprintf(out, "\t%s %s\n", glyph, p)
		}
		fmt.Fprintln(out)
	}

	section("Staged files:", "", green("✓"), st.Staged)
	section("Modified files:", `use "forge add <file>..." to stage, "forge restore <file>..." to discard`, yellow("M"), st.Modified)
	section("Deleted files:", `use "forge rm <file>..." to unstage, "forge restore <file>..." to bring back`, red("D"), st.Deleted)
	section("Untracked files:", `use "forge add <file>..." to stage`, blue("?"), st.Untracked)

	if st.Clean() {
		fmt.Fprintln(out, "Working tree matches the index")
	}
}

func printSummary(out io.Writer, diffs []*diff.FileDiff) {
	if len(diffs) == 0 {
		fmt.Fprintln(out, "No differences")
		return
	}

	var additions, deletions int
	for _, d := range diffs {
		if d.Binary() {
			fmt.Fprintf(out, "%-20s %s\n", statusLabel(d.Status), d.Path)
			continue
		}
		fmt.Fprintf(out, "%-20s %s %s %s\n", statusLabel(d.Status), d.Path,
			green(fmt.Sprintf("+%d", d.Additions())), red(fmt.Sprintf("-%d", d.Deletions())))
		additions += d.Additions()
		deletions += d.Deletions()
	}

	fmt.Fprintf(out, "\n%d file(s) changed, %s, %s\n", len(diffs),
		green(fmt.Sprintf("%d insertion(s)(+)", additions)),
		red(fmt.Sprintf("%d deletion(s)(-)", deletions)))
}

func printDetails(out io.Writer, diffs []*diff.FileDiff) {
	if len(diffs) == 0 {
		fmt.Fprintln(out, "No differences")
		return
	}
	for _, d := range diffs {
		fmt.Fprintf(out, "\n%s %s\n", statusLabel(d.Status), bold(d.Path))
		if d.Binary() {
			fmt.Fprintln(out, "Binary content, no textual diff")
			continue
		}
		printColoredDiff(out, d.Result.Format("a/"+d.Path, "b/"+d.Path))
	}
}

func statusLabel(s diff.Status) string {
	switch s {
	case diff.StatusNew:
		return green(string(s))
	case diff.StatusDeleted, diff.StatusDeletedBinary:
		return red(string(s))
	default:
		return yellow(string(s))
	}
}

func printColoredDiff(out io.Writer, text string) {
	added := color.New(color.FgGreen)
	removed := color.New(color.FgRed)
	header := color.New(color.FgCyan)

	for _, line := range strings.Split(strings.TrimSuffix(text, "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			fmt.Fprintln(out, bold(line))
		case strings.HasPrefix(line, "@@"):
			header.Fprintln(out, line)
		case strings.HasPrefix(line, "+"):
			added.Fprintln(out, line)
		case strings.HasPrefix(line, "-"):
			removed.Fprintln(out, line)
		default:
			fmt.Fprintln(out, line)
		}
	}
}

// printContent writes data as is, adding a final newline for text that
// lacks one so the prompt is not glued to the output.
func printContent(out io.Writer, data []byte) {
	if !diff.IsText(data) {
		fmt.Fprintf(out, "Binary content, %s\n", humanize.Bytes(uint64(len(data))))
		return
	}
	out.Write(data)
	if len(data) > 0 && data[len(data)-1] != '\n' {
		fmt.Fprintln(out)
	}
}

func printObjectHeader(out io.Writer, path, digest string, r *repo.Repository) {
	info, err := r.Objects.Stat(digest)
	if err != nil {
		fmt.Fprintf(out, "%s %s\n", bold(path), shortDigest(digest))
		return
	}
	fmt.Fprintf(out, "%s %s %s, stored %s\n", bold(path), shortDigest(digest),
		humanize.Bytes(uint64(info.Size)), humanize.Time(info.ModTime))
}

func printLog(out io.Writer, h *commit.History) {
	if len(h.Entries) == 0 {
		failure.Fprintln(out, "No snapshots yet")
		return
	}

	if h.Unsorted {
		fmt.Fprintln(out, yellow("HEAD is not set, listing all snapshots (unsorted)"))
	}
	for _, e := range h.Entries {
		marker := "  "
		if e.Digest == h.Head {
			marker = green("* ")
		}
		fmt.Fprintf(out, "%s%s %s %s | %s\n", marker,
			blue(shortDigest(e.Digest)), e.Commit.Timestamp, color.HiBlackString("(%s)", when(e.When)), e.Commit.Message)
	}
}

func printSync(out io.Writer, verb string, result *remote.Result) {
	for _, a := range result.Areas {
		if a.Skipped {
			fmt.Fprintf(out, "\t%s %s: nothing to copy\n", yellow("~"), a.Area)
			continue
		}
		fmt.Fprintf(out, "\t%s %s: %d item(s)\n", green("✓"), a.Area, a.Copied)
	}
	success.Fprintf(out, "%s %d item(s)\n", verb, result.Copied())
}
