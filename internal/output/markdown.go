// internal/output/markdown.go
package output

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/dsablic/klio/internal/age"
	"github.com/dsablic/klio/internal/analysis"
	"github.com/dsablic/klio/internal/bytesize"
	"github.com/dsablic/klio/internal/model"
	"github.com/dsablic/klio/internal/paginate"
)

// TopFindings is how many files are listed per risk category.
const TopFindings = 3

// WriteMarkdown writes a dashboard snapshot as GitHub-flavored markdown to w.
func WriteMarkdown(w io.Writer, snap model.Snapshot) error {
	stats := snap.Stats

	fmt.Fprintf(w, "# Drive Analysis Report\n\n")
	fmt.Fprintf(w, "**Directory:** %s\n", snap.DirectoryID)
	fmt.Fprintf(w, "**Generated:** %s\n\n", snap.GeneratedAt)

	// Summary totals
	fmt.Fprintf(w, "## Summary\n\n")
	fmt.Fprintf(w, "| Metric | Value |\n")
	fmt.Fprintf(w, "|--------|------:|\n")
	fmt.Fprintf(w, "| Documents | %s |\n", comma(stats.DocCount))
	fmt.Fprintf(w, "| Sensitive documents | %s |\n", comma(stats.SensitiveDocuments))
	fmt.Fprintf(w, "| Duplicate documents | %s |\n", comma(stats.DuplicateDocuments))
	fmt.Fprintf(w, "| Stale documents | %s |\n", comma(stats.StaleDocuments))
	fmt.Fprintf(w, "| Total storage | %s |\n\n", bytesize.Format(stats.TotalSize))

	if len(stats.TopOwners) > 0 {
		fmt.Fprintf(w, "Top owners:\n")
		for _, o := range stats.TopOwners {
			fmt.Fprintf(w, "- %s (%s files)\n", o.Owner, comma(o.Count))
		}
		fmt.Fprintln(w)
	}

	// Age distribution
	fmt.Fprintf(w, "## Age Distribution\n\n")
	fmt.Fprintf(w, "| Age | Documents | Size | Share |\n")
	fmt.Fprintf(w, "|-----|----------:|-----:|------:|\n")
	for _, s := range age.Summarize(stats) {
		fmt.Fprintf(w, "| %s | %s | %s | %.0f%% |\n", s.Bucket.Label(), comma(s.Count), bytesize.Format(s.Size), s.Percentage)
	}
	fmt.Fprintln(w)

	for _, b := range model.AgeBuckets {
		bucket := stats.AgeDistribution[b]
		fmt.Fprintf(w, "## %s\n\n", b.Label())

		fmt.Fprintf(w, "| File type | Count | Size | Share |\n")
		fmt.Fprintf(w, "|-----------|------:|-----:|------:|\n")
		for _, c := range TypeOrder(bucket.Types) {
			t := bucket.Types[c]
			fmt.Fprintf(w, "| %s | %s | %s | %.0f%% |\n", c, comma(t.Count), bytesize.Format(t.Size), t.Percentage)
		}
		fmt.Fprintln(w)

		fmt.Fprintf(w, "| Risk | Findings | Confidence | Share |\n")
		fmt.Fprintf(w, "|------|---------:|-----------:|------:|\n")
		for _, c := range model.RiskCategories {
			r := bucket.Risks[c]
			fmt.Fprintf(w, "| %s | %s | %.0f%% | %.0f%% |\n", c, comma(r.Count), r.Confidence*100, r.Percentage)
		}
		fmt.Fprintln(w)

		for _, c := range model.RiskCategories {
			top := analysis.TopFindings(bucket.Risks[c], TopFindings)
			if len(top) == 0 {
				continue
			}
			fmt.Fprintf(w, "Top %s findings:\n", c)
			for _, f := range top {
				fmt.Fprintf(w, "- %s (%s)\n", fileLink(f.File), f.FindingType)
			}
			fmt.Fprintln(w)
		}
	}

	return nil
}

// WriteFiles writes one page of a server-side file listing as a markdown
// table. The age column is relative to now.
func WriteFiles(w io.Writer, page paginate.Page[model.FileRef], now time.Time) error {
	fmt.Fprintf(w, "| Name | Age | Type | Modified | Owner | Size |\n")
	fmt.Fprintf(w, "|------|-----|------|----------|-------|-----:|\n")
	for _, f := range page.Items {
		label := "-"
		if b, ok := age.ClassifyTimestamp(f.ModifiedTime, now); ok {
			label = b.Label()
		}
		fmt.Fprintf(w, "| %s | %s | %s | %s | %s | %s |\n", fileLink(f), label, cell(f.MimeType), f.ModifiedTime, cell(f.Owner), bytesize.Format(f.Size))
	}
	footer(w, page)
	return nil
}

// WriteSensitive writes one page of the sensitive file review list.
func WriteSensitive(w io.Writer, page paginate.Page[model.SensitiveFile]) error {
	fmt.Fprintf(w, "| Name | Age | Category | Risk | Reason |\n")
	fmt.Fprintf(w, "|------|-----|----------|-----:|--------|\n")
	for _, f := range page.Items {
		fmt.Fprintf(w, "| %s | %s | %s | %.0f%% | %s |\n", fileLink(f.FileRef), f.Bucket.Label(), f.Category, f.RiskLevel*100, cell(f.Reason))
	}
	footer(w, page)
	return nil
}

func footer[T any](w io.Writer, page paginate.Page[T]) {
	fmt.Fprintf(w, "\nPage %d of %d (%s files)\n", page.Number, page.TotalPages, comma(page.TotalItems))
	if page.HasPrev() {
		fmt.Fprintf(w, "Previous: --page %d\n", page.Number-1)
	}
	if page.HasNext() {
		fmt.Fprintf(w, "Next: --page %d\n", page.Number+1)
	}
}

// WriteDirectories writes the directory list.
func WriteDirectories(w io.Writer, dirs []model.Directory) error {
	fmt.Fprintf(w, "| ID | Name | Modified |\n")
	fmt.Fprintf(w, "|----|------|----------|\n")
	for _, d := range dirs {
		fmt.Fprintf(w, "| %s | %s | %s |\n", d.ID, cell(d.Name), d.ModifiedTime)
	}
	return nil
}

// TypeOrder returns the file types of a bucket: the known ones in display
// order, then any others the backend reported, sorted.
func TypeOrder(types map[model.FileTypeCategory]model.TypeStat) []model.FileTypeCategory {
	order := make([]model.FileTypeCategory, 0, len(types))
	known := make(map[model.FileTypeCategory]bool, len(model.FileTypeCategories))
	for _, c := range model.FileTypeCategories {
		known[c] = true
		if _, ok := types[c]; ok {
			order = append(order, c)
		}
	}
	var extra []model.FileTypeCategory
	for c := range types {
		if !known[c] {
			extra = append(extra, c)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(order, extra...)
}

func fileLink(f model.FileRef) string {
	name := f.Name
	if name == "" {
		name = f.ID
	}
	name = cell(name)
	if f.WebViewLink == "" {
		return name
	}
	return fmt.Sprintf("[%s](%s)", name, cell(f.WebViewLink))
}

// cell escapes pipes so text cannot split a table cell.
func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func comma(n int) string {
	return humanize.Comma(int64(n))
}
