// Package view turns company bundles into display-ready page models. Builders
// here are pure apart from placing charts in the caller's Session; nothing in
// this package writes HTML or bytes.
package view

import (
	"time"

	"github.com/yourusername/tickerlens/internal/analysis"
	"github.com/yourusername/tickerlens/internal/format"
)

type RowKind int

const (
	RowData     RowKind = iota
	RowSection          // category header spanning the table
	RowEmphasis         // totals and headline figures
)

type Cell struct {
	Text  string `json:"text"`
	Class string `json:"class,omitempty"` // "positive" / "negative"
}

type Row struct {
	Label string  `json:"label"`
	Kind  RowKind `json:"kind"`
	Cells []Cell  `json:"cells,omitempty"`
}

// Table is a labelled grid. Columns are period dates in single view and
// ticker symbols in compare view.
type Table struct {
	Title       string   `json:"title,omitempty"`
	LabelHeader string   `json:"labelHeader,omitempty"`
	Columns     []string `json:"columns,omitempty"`
	Rows        []Row    `json:"rows"`
}

// Section is one titled block of a page. A section with no data keeps its
// place and shows Placeholder instead.
type Section struct {
	Key         string       `json:"key"`
	Title       string       `json:"title"`
	Chart       *ChartHandle `json:"chart,omitempty"`
	Tables      []Table      `json:"tables,omitempty"`
	Placeholder string       `json:"placeholder,omitempty"`
}

func (s Section) Empty() bool { return s.Placeholder != "" }

type Field struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Class string `json:"class,omitempty"`
	URL   string `json:"url,omitempty"`
}

type ProfileCard struct {
	Name        string  `json:"name"`
	Symbol      string  `json:"symbol"`
	Image       string  `json:"image,omitempty"`
	Price       string  `json:"price"`
	Change      string  `json:"change"`
	ChangeClass string  `json:"changeClass,omitempty"`
	Description string  `json:"description"`
	Fields      []Field `json:"fields"`
}

// CompanyPage is the single-ticker view.
type CompanyPage struct {
	SessionID   string              `json:"sessionId"`
	Generation  int                 `json:"generation"`
	Symbol      string              `json:"symbol"`
	Name        string              `json:"name"`
	Profile     *ProfileCard        `json:"profile,omitempty"`
	ProfileNote string              `json:"profileNote,omitempty"`
	Sections    []Section           `json:"sections"`
	Narrative   *analysis.Narrative `json:"narrative,omitempty"`
	// NarrativeNote replaces the narrative when the bundle is too thin.
	NarrativeNote string    `json:"narrativeNote,omitempty"`
	GeneratedAt   time.Time `json:"generatedAt"`
}

// ComparisonPage is the multi-ticker view.
type ComparisonPage struct {
	SessionID      string               `json:"sessionId"`
	Generation     int                  `json:"generation"`
	Symbols        []string             `json:"symbols"`
	Warnings       []string             `json:"warnings,omitempty"`
	Profiles       Table                `json:"profiles"`
	Sections       []Section            `json:"sections"`
	Comparison     *analysis.Comparison `json:"comparison,omitempty"`
	ComparisonNote string               `json:"comparisonNote,omitempty"`
	GeneratedAt    time.Time            `json:"generatedAt"`
}

// ── Row specs ──────────────────────────────────────────

// rowSpec describes one row of a table whose columns are T values.
type rowSpec[T any] struct {
	label string
	kind  RowKind
	cell  func(T) Cell
}

func section[T any](label string) rowSpec[T] {
	return rowSpec[T]{label: label, kind: RowSection}
}

func plain[T any](label string, text func(T) string) rowSpec[T] {
	return rowSpec[T]{label: label, kind: RowData, cell: func(v T) Cell { return Cell{Text: text(v)} }}
}

func emph[T any](label string, text func(T) string) rowSpec[T] {
	return rowSpec[T]{label: label, kind: RowEmphasis, cell: func(v T) Cell { return Cell{Text: text(v)} }}
}

func signed[T any](label string, value func(T) *float64) rowSpec[T] {
	return rowSpec[T]{label: label, kind: RowData, cell: func(v T) Cell {
		p := value(v)
		return Cell{Text: format.PercentPtr(p), Class: format.SignClass(p)}
	}}
}

func buildRows[T any](cols []T, specs []rowSpec[T]) []Row {
	rows := make([]Row, 0, len(specs))
	for _, spec := range specs {
		r := Row{Label: spec.label, Kind: spec.kind}
		if spec.kind != RowSection {
			r.Cells = make([]Cell, len(cols))
			for i, c := range cols {
				r.Cells[i] = spec.cell(c)
			}
		}
		rows = append(rows, r)
	}
	return rows
}
