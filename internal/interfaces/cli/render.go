package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	apppurchasing "github.com/erp/purchasing/internal/application/purchasing"
	"github.com/erp/purchasing/internal/domain/purchasing"
	"github.com/erp/purchasing/internal/domain/shared"
)

var (
	accent  = lipgloss.Color("#2563EB") // blue
	fg      = lipgloss.Color("#E5E7EB") // light gray
	dim     = lipgloss.Color("#6B7280") // muted gray
	success = lipgloss.Color("#22C55E") // green
	danger  = lipgloss.Color("#EF4444") // red
	warning = lipgloss.Color("#F59E0B") // amber
	info    = lipgloss.Color("#38BDF8") // sky
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(accent)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(fg)
	dimStyle    = lipgloss.NewStyle().Foreground(dim)
	passStyle   = lipgloss.NewStyle().Foreground(success)
	failStyle   = lipgloss.NewStyle().Foreground(danger).Bold(true)
	fieldStyle  = lipgloss.NewStyle().Foreground(warning)
	totalStyle  = lipgloss.NewStyle().Bold(true).Foreground(fg)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 2)

	toneColors = map[string]lipgloss.Color{
		"success":   success,
		"warning":   warning,
		"info":      info,
		"secondary": dim,
	}
)

func statusBadge(s purchasing.Status) string {
	color, ok := toneColors[s.Tone()]
	if !ok {
		color = dim
	}
	return lipgloss.NewStyle().Bold(true).Foreground(color).Render(s.String())
}

// nameResolver turns reference ids into display names. A resolver without
// data shows "#<id>".
type nameResolver struct {
	data *purchasing.ReferenceData
}

func (n *nameResolver) supplier(id int64) string {
	if n.data == nil {
		return "#" + strconv.FormatInt(id, 10)
	}
	return n.data.SupplierName(id)
}

func (n *nameResolver) warehouse(id int64) string {
	if n.data == nil {
		return "#" + strconv.FormatInt(id, 10)
	}
	return n.data.WarehouseName(id)
}

func (n *nameResolver) product(id int64) string {
	if n.data == nil {
		return "#" + strconv.FormatInt(id, 10)
	}
	return n.data.ProductName(id)
}

// column is one table column; style, when set, is applied after padding
type column struct {
	title string
	right bool
	style func(row int) func(...string) string
}

// renderTable lays cells out in padded columns with a bold header row
func renderTable(w io.Writer, cols []column, rows [][]string) {
	widths := make([]int, len(cols))
	for i, c := range cols {
		widths[i] = lipgloss.Width(c.title)
	}
	for _, row := range rows {
		for i, cell := range row {
			if cw := lipgloss.Width(cell); cw > widths[i] {
				widths[i] = cw
			}
		}
	}

	var b strings.Builder
	for i, c := range cols {
		b.WriteString(headerStyle.Render(pad(c.title, widths[i], c.right)))
		b.WriteString("  ")
	}
	b.WriteString("\n")
	for r, row := range rows {
		for i, cell := range row {
			text := pad(cell, widths[i], cols[i].right)
			if cols[i].style != nil {
				if render := cols[i].style(r); render != nil {
					text = render(text)
				}
			}
			b.WriteString(text)
			b.WriteString("  ")
		}
		b.WriteString("\n")
	}
	fmt.Fprint(w, b.String())
}

func pad(s string, width int, right bool) string {
	gap := width - lipgloss.Width(s)
	if gap <= 0 {
		return s
	}
	if right {
		return strings.Repeat(" ", gap) + s
	}
	return s + strings.Repeat(" ", gap)
}

// renderOrderList prints one page of orders and the paging footer
func renderOrderList(w io.Writer, state apppurchasing.ListState, filter purchasing.Filter, names *nameResolver) {
	if len(state.Rows) == 0 {
		fmt.Fprintln(w, dimStyle.Render("No purchase orders found."))
		return
	}

	statuses := make([]purchasing.Status, len(state.Rows))
	rows := make([][]string, len(state.Rows))
	for i, o := range state.Rows {
		statuses[i] = o.Status
		rows[i] = []string{
			strconv.FormatInt(o.ID, 10),
			o.PONumber,
			names.supplier(o.SupplierID),
			names.warehouse(o.WarehouseID),
			o.OrderDate,
			o.Status.String(),
			strconv.Itoa(o.ItemCount()),
			o.GrandTotal.StringFixed(),
		}
	}
	renderTable(w, []column{
		{title: "ID", right: true},
		{title: "PO NUMBER"},
		{title: "SUPPLIER"},
		{title: "WAREHOUSE"},
		{title: "DATE"},
		{title: "STATUS", style: func(row int) func(...string) string {
			color, ok := toneColors[statuses[row].Tone()]
			if !ok {
				return nil
			}
			return lipgloss.NewStyle().Bold(true).Foreground(color).Render
		}},
		{title: "ITEMS", right: true},
		{title: "TOTAL", right: true},
	}, rows)

	r := shared.NewDisplayRange(filter.Page, filter.PageSize, state.TotalCount)
	fmt.Fprintln(w)
	fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("Showing %d-%d of %d  page %d/%d",
		r.Start, r.End, state.TotalCount, filter.Page, shared.TotalPages(state.TotalCount, filter.PageSize))))
}

// renderOrder prints an order header, its lines and totals
func renderOrder(w io.Writer, o purchasing.PurchaseOrder, names *nameResolver) {
	var head strings.Builder
	head.WriteString(titleStyle.Render(o.PONumber))
	head.WriteString("  ")
	head.WriteString(statusBadge(o.Status))
	if o.ID != 0 {
		head.WriteString(dimStyle.Render(fmt.Sprintf("  #%d", o.ID)))
	}
	head.WriteString("\n\n")
	fmt.Fprintf(&head, "%s %s\n", dimStyle.Render("Supplier: "), names.supplier(o.SupplierID))
	fmt.Fprintf(&head, "%s %s\n", dimStyle.Render("Warehouse:"), names.warehouse(o.WarehouseID))
	fmt.Fprintf(&head, "%s %s\n", dimStyle.Render("Ship to:  "), o.ShippingAddress)
	fmt.Fprintf(&head, "%s %s", dimStyle.Render("Date:     "), o.OrderDate)
	if o.Memo != "" {
		fmt.Fprintf(&head, "\n%s %s", dimStyle.Render("Memo:     "), o.Memo)
	}
	fmt.Fprintln(w, boxStyle.Render(head.String()))
	fmt.Fprintln(w)

	if len(o.Items) == 0 {
		fmt.Fprintln(w, dimStyle.Render("No line items."))
	} else {
		rows := make([][]string, len(o.Items))
		for i, item := range o.Items {
			rows[i] = []string{
				strconv.Itoa(i + 1),
				names.product(item.ProductID),
				strconv.FormatInt(item.Quantity, 10),
				item.UnitPrice.StringFixed(),
				item.LineTotal.StringFixed(),
			}
		}
		renderTable(w, []column{
			{title: "#", right: true},
			{title: "PRODUCT"},
			{title: "QTY", right: true},
			{title: "UNIT PRICE", right: true},
			{title: "LINE TOTAL", right: true},
		}, rows)
	}

	fmt.Fprintln(w)
	renderTotals(w, o.StoredTotals(), o.VatRate)
}

func renderTotals(w io.Writer, t purchasing.Totals, vatRate int64) {
	labels := []string{"Subtotal", fmt.Sprintf("VAT %d%%", vatRate), "Grand total"}
	values := []string{t.Subtotal.StringFixed(), t.VatAmount.StringFixed(), t.GrandTotal.StringFixed()}
	width := 0
	for _, v := range values {
		if len(v) > width {
			width = len(v)
		}
	}
	for i := range labels {
		line := fmt.Sprintf("%-12s %s", labels[i], pad(values[i], width, true))
		if i == len(labels)-1 {
			line = totalStyle.Render(line)
		}
		fmt.Fprintln(w, line)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
