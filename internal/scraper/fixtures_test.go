// internal/scraper/fixtures_test.go
package scraper

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/valpere/ListScrapexter/internal/document"
)

const testBaseURL = "https://lists.example.com/sales/lists/people"

type contact struct {
	name    string
	title   string
	account string
	geo     string
	profile string
}

var (
	alice = contact{name: "Alice Moreau", title: "VP Engineering", account: "Acme", geo: "Paris, France", profile: "/in/alice"}
	bob   = contact{name: "Bob Smith", title: "CTO", geo: "Austin, Texas", profile: "/in/bob"}
	carol = contact{name: "Carol \"CJ\" Jones", title: "Head of Sales", account: "Globex", geo: "Berlin", profile: "/in/carol"}
	dave  = contact{name: "Dave Lee", title: "Engineer", account: "Initech", geo: "Toronto", profile: "/in/dave"}
	erin  = contact{name: "Erin Wu", title: "Designer", geo: "Seoul", profile: "/in/erin"}
)

// listPage renders rows at /html/body/main/div[1]/div[2]/div[table]/table/tbody.
func listPage(table int, row func(contact) string, contacts ...contact) string {
	var b strings.Builder
	b.WriteString("<html><head><title>List</title></head><body><main><div><div></div><div>")
	for i := 1; i < table; i++ {
		b.WriteString("<div></div>")
	}
	b.WriteString("<div><table><tbody>")
	for _, c := range contacts {
		b.WriteString("<tr>")
		b.WriteString(row(c))
		b.WriteString(accountCell(c))
		b.WriteString("<td>" + c.geo + "</td>")
		b.WriteString("</tr>")
	}
	b.WriteString("</tbody></table></div></div></div></main></body></html>")
	return b.String()
}

// userPage is the layout of a user-generated list.
func userPage(contacts ...contact) string {
	return listPage(4, func(c contact) string {
		return `<td><div><figure><a href="` + c.profile + `"><span>` + c.name + `</span></a></figure>` +
			`<div></div><div><div></div><div><span><div>` + c.title + `</div></span></div></div></div></td>`
	}, contacts...)
}

// systemPage is the layout of a system-generated list.
func systemPage(contacts ...contact) string {
	return listPage(5, func(c contact) string {
		return `<td><div><div></div><div><div><div><a href="` + c.profile + `">` + c.name + `</a></div></div>` +
			`<div><span><div>` + c.title + `</div></span></div></div></div></td>`
	}, contacts...)
}

func accountCell(c contact) string {
	if c.account == "" {
		return "<td></td>"
	}
	return `<td><div><div><div><a href="/company/x"><div><div><div><span>` + c.account +
		`</span></div></div></div></a></div></div></div></td>`
}

func parsePage(t *testing.T, html string) *document.HTML {
	t.Helper()
	doc, err := document.ParseString(html, testBaseURL)
	if err != nil {
		t.Fatalf("failed to parse page: %v", err)
	}
	return doc
}

func staticSession(t *testing.T, pages ...string) *StaticSession {
	t.Helper()
	docs := make([]document.Document, len(pages))
	for i, p := range pages {
		docs[i] = parsePage(t, p)
	}
	return NewStaticSession(docs...)
}

type fakeRecorder struct {
	mu        sync.Mutex
	pages     int
	records   int
	truncated int
	fallbacks []string
	exports   map[string]int
}

func (r *fakeRecorder) PageScanned(registry string, records, truncated int, elapsed time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pages++
	r.records += records
	r.truncated += truncated
}

func (r *fakeRecorder) FallbackUsed(from, to string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallbacks = append(r.fallbacks, from+"->"+to)
}

func (r *fakeRecorder) Exported(format string, rows int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.exports == nil {
		r.exports = make(map[string]int)
	}
	r.exports[format] += rows
}
