package view

import (
	"strconv"
)

// Slot names a chart position on a page. A session holds at most one live
// chart per slot.
type Slot string

const (
	SlotIncome   Slot = "income"
	SlotBalance  Slot = "balance"
	SlotCashFlow Slot = "cashflow"
)

// slotOrder is the display order of chart slots.
var slotOrder = []Slot{SlotIncome, SlotBalance, SlotCashFlow}

// Chart is a bar chart description handed to the browser-side renderer.
// Values are in millions.
type Chart struct {
	Slot        Slot      `json:"slot"`
	Title       string    `json:"title"`
	Labels      []string  `json:"labels"`
	Datasets    []Dataset `json:"datasets"`
	BeginAtZero bool      `json:"beginAtZero"`
}

type Dataset struct {
	Label           string    `json:"label"`
	Data            []float64 `json:"data"`
	BackgroundColor string    `json:"backgroundColor"`
	BorderColor     string    `json:"borderColor"`
	BorderWidth     int       `json:"borderWidth"`
}

var palette = [][3]int{
	{0, 123, 255},   // blue
	{220, 53, 69},   // red
	{40, 167, 69},   // green
	{255, 193, 7},   // yellow
	{111, 66, 193},  // purple
	{23, 162, 184},  // cyan
	{255, 102, 0},   // orange
	{0, 204, 153},   // teal
	{204, 0, 102},   // pink
	{102, 102, 102}, // gray
}

// Color returns palette entry i (wrapping) as an rgba() string.
func Color(i int, alpha float64) string {
	if i < 0 {
		i = -i
	}
	c := palette[i%len(palette)]
	return "rgba(" + strconv.Itoa(c[0]) + ", " + strconv.Itoa(c[1]) + ", " + strconv.Itoa(c[2]) + ", " +
		strconv.FormatFloat(alpha, 'f', -1, 64) + ")"
}

// RGB returns palette entry i as integer components, for the PDF renderer.
func RGB(i int) (int, int, int) {
	if i < 0 {
		i = -i
	}
	c := palette[i%len(palette)]
	return c[0], c[1], c[2]
}

func dataset(label string, color int, data []float64) Dataset {
	return Dataset{
		Label:           label,
		Data:            data,
		BackgroundColor: Color(color, 0.6),
		BorderColor:     Color(color, 1),
		BorderWidth:     1,
	}
}
