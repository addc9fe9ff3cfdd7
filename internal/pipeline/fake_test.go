package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/dop251/goja"

	"github.com/law-makers/rasff/internal/engine"
	"github.com/law-makers/rasff/internal/engine/browser"
	"github.com/law-makers/rasff/internal/engine/datefilter"
)

// pageStub exposes the page-size control to scripts run by the pipeline.
// Dispatching "change" calls back into the fake page.
const pageStub = `
function Event(type) { this.type = type; }
var pageSize = {
	value: "25",
	dispatchEvent: function(e) {
		if (e.type === "change") { onPageSize(this.value); }
		return true;
	}
};
var document = {
	querySelector: function(sel) { return sel === pageSizeSelector ? pageSize : null; }
};
`

var fakeHeaders = []string{"Reference", "Notifying country", "Subject", "Date"}

// fakePage simulates the RASFF results screen for one session
type fakePage struct {
	rows      [][]string
	extraHTML string
	pageSize  int
	rangeDate string
	filtered  bool

	missing map[string]bool
	vm      *goja.Runtime

	navigated string
	clicks    []string
	closed    int

	// stale snapshots served after a state change before the new table shows
	stale    int
	previous string
}

func newFakePage(rows [][]string) *fakePage {
	p := &fakePage{rows: rows, pageSize: 25, missing: map[string]bool{}}
	p.vm = goja.New()
	p.vm.Set("pageSizeSelector", PageSizeSelector)
	p.vm.Set("onPageSize", func(v string) {
		var n int
		fmt.Sscanf(v, "%d", &n)
		p.change(func() { p.pageSize = n })
	})
	if _, err := p.vm.RunString(pageStub); err != nil {
		panic(err)
	}
	return p
}

// alertRows builds n rows where the given 1-based positions carry match
// as their date and every other row carries other.
func alertRows(n int, match, other string, positions ...int) [][]string {
	hit := map[int]bool{}
	for _, pos := range positions {
		hit[pos] = true
	}
	rows := make([][]string, 0, n)
	for i := 1; i <= n; i++ {
		date := other
		if hit[i] {
			date = match
		}
		rows = append(rows, []string{fmt.Sprintf("2025.%04d", i), "Spain", fmt.Sprintf("subject %d", i), date})
	}
	return rows
}

func (p *fakePage) change(apply func()) {
	p.previous = p.render()
	apply()
	p.stale = 1
}

func (p *fakePage) visibleRows() [][]string {
	rows := p.rows
	if p.filtered {
		var kept [][]string
		for _, r := range rows {
			if r[3] == p.rangeDate {
				kept = append(kept, r)
			}
		}
		rows = kept
	}
	if len(rows) > p.pageSize {
		rows = rows[:p.pageSize]
	}
	return rows
}

func (p *fakePage) render() string {
	var b strings.Builder
	b.WriteString(`<table class="eui-table eui-table--hoverable eui-table--responsive"><thead><tr>`)
	for _, h := range fakeHeaders {
		b.WriteString("<th>" + html.EscapeString(h) + "</th>")
	}
	b.WriteString("</tr></thead><tbody>")
	for _, r := range p.visibleRows() {
		b.WriteString("<tr>")
		for _, c := range r {
			b.WriteString("<td>" + html.EscapeString(c) + "</td>")
		}
		b.WriteString("</tr>")
	}
	b.WriteString(p.extraHTML)
	b.WriteString("</tbody></table>")
	return b.String()
}

func (p *fakePage) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.navigated = url
	return nil
}

func (p *fakePage) WaitUntil(ctx context.Context, selector string, timeout time.Duration) error {
	if p.missing[selector] {
		return engine.NavigationTimeout(selector, context.DeadlineExceeded)
	}
	return ctx.Err()
}

func (p *fakePage) Snapshot(ctx context.Context, selectors ...string) (string, error) {
	if p.stale > 0 {
		p.stale--
		return p.previous, nil
	}
	return p.render(), nil
}

func (p *fakePage) RunScript(ctx context.Context, fn string, res interface{}, args ...interface{}) error {
	expr, err := browser.CallExpression(fn, args...)
	if err != nil {
		return err
	}
	v, err := p.vm.RunString(expr)
	if err != nil {
		return err
	}
	b, err := json.Marshal(v.Export())
	if err != nil {
		return err
	}
	return json.Unmarshal(b, res)
}

func (p *fakePage) Click(ctx context.Context, selector string, timeout time.Duration) error {
	if p.missing[selector] {
		return engine.NavigationTimeout(selector, context.DeadlineExceeded)
	}
	p.clicks = append(p.clicks, selector)
	if selector == datefilter.DefaultRangeSelectors().Submit {
		p.change(func() { p.filtered = true })
	}
	return nil
}

func (p *fakePage) Close() error {
	p.closed++
	return nil
}

// fakeOpener hands out the same page for every session
type fakeOpener struct {
	page   *fakePage
	err    error
	opened int
}

func (o *fakeOpener) Open(ctx context.Context, cfg browser.Config) (browser.Session, error) {
	if o.err != nil {
		return nil, o.err
	}
	o.opened++
	return o.page, nil
}
