package render

import (
	"fmt"
	"strings"

	"github.com/yourusername/tickerlens/internal/view"
)

var cellEscaper = strings.NewReplacer("|", `\|`, "\n", " ")

// CompanyMarkdown renders a company page as GitHub-flavoured Markdown.
func CompanyMarkdown(p *view.CompanyPage) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s (%s)\n\n", p.Name, p.Symbol)

	if pr := p.Profile; pr != nil {
		fmt.Fprintf(&sb, "**Price:** %s %s\n\n", pr.Price, pr.Change)
		for _, f := range pr.Fields {
			fmt.Fprintf(&sb, "- **%s:** %s\n", f.Label, f.Value)
		}
		sb.WriteString("\n")
		if pr.Description != "" {
			sb.WriteString(pr.Description + "\n\n")
		}
	} else {
		sb.WriteString("_" + p.ProfileNote + "_\n\n")
	}

	writeSections(&sb, p.Sections)

	if p.Narrative != nil {
		sb.WriteString(p.Narrative.Markdown())
	} else {
		sb.WriteString("_" + p.NarrativeNote + "_\n")
	}
	return sb.String()
}

// ComparisonMarkdown renders a comparison page as GitHub-flavoured Markdown.
func ComparisonMarkdown(p *view.ComparisonPage) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Comparison: %s\n\n", strings.Join(p.Symbols, ", "))

	for _, w := range p.Warnings {
		sb.WriteString("> " + w + "\n")
	}
	if len(p.Warnings) > 0 {
		sb.WriteString("\n")
	}

	writeTable(&sb, p.Profiles)
	writeSections(&sb, p.Sections)

	if p.Comparison != nil {
		sb.WriteString(p.Comparison.Markdown())
	} else {
		sb.WriteString("_" + p.ComparisonNote + "_\n")
	}
	return sb.String()
}

func writeSections(sb *strings.Builder, secs []view.Section) {
	for _, s := range secs {
		sb.WriteString("## " + s.Title + "\n\n")
		if s.Empty() {
			sb.WriteString("_" + s.Placeholder + "_\n\n")
			continue
		}
		for _, t := range s.Tables {
			writeTable(sb, t)
		}
	}
}

func writeTable(sb *strings.Builder, t view.Table) {
	if t.Title != "" {
		sb.WriteString("### " + t.Title + "\n\n")
	}

	cols := t.Columns
	header := t.LabelHeader
	if len(cols) == 0 {
		// Single-value tables (key ratios, growth) still need a value column.
		cols = []string{"Value"}
		if header == "" {
			header = "Metric"
		}
	}

	sb.WriteString("| " + cellEscaper.Replace(header))
	for _, c := range cols {
		sb.WriteString(" | " + cellEscaper.Replace(c))
	}
	sb.WriteString(" |\n|---")
	for range cols {
		sb.WriteString("|---:")
	}
	sb.WriteString("|\n")

	for _, r := range t.Rows {
		if r.Kind == view.RowSection {
			sb.WriteString("| **" + cellEscaper.Replace(r.Label) + "**")
			for range cols {
				sb.WriteString(" | ")
			}
			sb.WriteString(" |\n")
			continue
		}
		label := cellEscaper.Replace(r.Label)
		if r.Kind == view.RowEmphasis {
			label = "**" + label + "**"
		}
		sb.WriteString("| " + label)
		for _, c := range r.Cells {
			sb.WriteString(" | " + cellEscaper.Replace(c.Text))
		}
		sb.WriteString(" |\n")
	}
	sb.WriteString("\n")
}
