// Package extract scrapes country facts from Wikipedia pages into entity
// records.
package extract

import (
	"errors"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/duynguyendang/geoqa/pkg/normalize"
	"github.com/duynguyendang/geoqa/pkg/ontology"
)

// ErrNoInfobox is returned for a country page without an infobox table.
var ErrNoInfobox = errors.New("page has no infobox")

// CountryLink is one entry of the country list page.
type CountryLink struct {
	Name string `json:"name"`
	Link string `json:"link"`
}

// ParseCountryLinks returns the countries and territories listed in the first
// table of the population list page, in page order. A name seen twice keeps
// its first link.
func ParseCountryLinks(r io.Reader) ([]CountryLink, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	var out []CountryLink
	seen := make(map[string]bool)
	add := func(a *goquery.Selection) {
		title, hasTitle := a.Attr("title")
		href, hasHref := a.Attr("href")
		if !hasTitle || !hasHref || title == "" {
			return
		}
		name := normalize.Key(a.Text())
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		out = append(out, CountryLink{Name: name, Link: href})
	}

	doc.Find("table").First().Find("td").Each(func(_ int, td *goquery.Selection) {
		// Sovereign states link straight from the cell.
		td.ChildrenFiltered("a[title][href]").Each(func(_ int, a *goquery.Selection) { add(a) })
		// Territories sit in italics next to the sovereign's link.
		td.ChildrenFiltered("i").FilterFunction(func(_ int, i *goquery.Selection) bool {
			return i.ChildrenFiltered("a[href][title]").Length() > 0
		}).First().ChildrenFiltered("a:not([class])").First().Each(func(_ int, a *goquery.Selection) { add(a) })
	})
	return out, nil
}

// Leader is an office holder named in an infobox.
type Leader struct {
	Name string
	Link string
}

// Infobox is what a country page's infobox yields before leader birthdays
// are looked up.
type Infobox struct {
	Record        ontology.Record
	President     *Leader
	PrimeMinister *Leader
}

// ParseInfobox extracts a country's facts from its page. Missing values
// leave the matching record fields nil.
func ParseInfobox(r io.Reader, countryLink string) (Infobox, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return Infobox{}, err
	}
	box := doc.Find("table.infobox").First()
	if box.Length() == 0 {
		return Infobox{}, ErrNoInfobox
	}

	rows := box.Find("tr")
	out := Infobox{Record: ontology.Record{CountryLink: countryLink}}
	rec := &out.Record

	if l := leader(rows, func(s string) bool { return s == "President" }); l != nil {
		out.President = l
		rec.PresidentName, rec.PresidentLink = &l.Name, &l.Link
	}
	if l := leader(rows, func(s string) bool { return strings.Contains(s, "Prime Minister") }); l != nil {
		out.PrimeMinister = l
		rec.PrimeMinisterName, rec.PrimeMinisterLink = &l.Name, &l.Link
	}
	rec.CapitalName, rec.CapitalLink = capital(rows)
	rec.Area = area(rows)
	rec.Population = population(rows)
	rec.GovernmentTypes = governments(rows)
	return out, nil
}

// ParseBirthday returns the text of the first span.bday on a person's page.
func ParseBirthday(r io.Reader) (string, bool, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", false, err
	}
	bday := doc.Find("span.bday").First()
	if bday.Length() == 0 {
		return "", false, nil
	}
	return strings.TrimSpace(bday.Text()), true, nil
}

// ownText joins the text nodes directly under the selection's first node.
func ownText(s *goquery.Selection) string {
	if s.Length() == 0 {
		return ""
	}
	var b strings.Builder
	for c := s.Nodes[0].FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return strings.TrimSpace(b.String())
}

// rowWith returns the first row with a descendant whose own text satisfies
// match.
func rowWith(rows *goquery.Selection, match func(string) bool) *goquery.Selection {
	return rows.FilterFunction(func(_ int, tr *goquery.Selection) bool {
		found := false
		tr.Find("*").EachWithBreak(func(_ int, el *goquery.Selection) bool {
			found = match(ownText(el))
			return !found
		})
		return found
	}).First()
}

func leader(rows *goquery.Selection, header func(string) bool) *Leader {
	a := rowWith(rows, header).Find("td").First().Find("a").First()
	title, ok := a.Attr("title")
	href, hasHref := a.Attr("href")
	if !ok || !hasHref {
		return nil
	}
	return &Leader{Name: normalize.Key(title), Link: href}
}

func capital(rows *goquery.Selection) (*string, *string) {
	tr := rows.FilterFunction(func(_ int, tr *goquery.Selection) bool {
		return strings.Contains(ownText(tr.ChildrenFiltered("th")), "Capital")
	}).First()
	a := tr.Find("a").FilterFunction(func(_ int, a *goquery.Selection) bool {
		class, _ := a.Attr("class")
		href, _ := a.Attr("href")
		return !strings.Contains(class, "external") && !strings.Contains(href, "endnote")
	}).First()

	title, ok := a.Attr("title")
	href, hasHref := a.Attr("href")
	if !ok || !hasHref {
		return nil, nil
	}
	name := normalize.Key(title)
	return &name, &href
}

func area(rows *goquery.Selection) *uint64 {
	tr := rows.FilterFunction(func(_ int, tr *goquery.Selection) bool {
		return strings.Contains(tr.ChildrenFiltered("th").Text(), "Total")
	}).First()
	return number(firstText(tr.Find("td").First()))
}

func population(rows *goquery.Selection) *uint64 {
	header := rowWith(rows, func(s string) bool { return strings.Contains(s, "Population") })
	if header.Length() == 0 {
		return nil
	}
	return number(firstText(header.Next().Find("td").First()))
}

func governments(rows *goquery.Selection) *ontology.GovernmentTypes {
	tr := rows.FilterFunction(func(_ int, tr *goquery.Selection) bool {
		has := func(sel string) bool {
			return tr.Find(sel).FilterFunction(func(_ int, s *goquery.Selection) bool {
				return strings.Contains(ownText(s), "Government")
			}).Length() > 0
		}
		return has("a") || has("th")
	}).First()
	if tr.Length() == 0 {
		return nil
	}

	types := ontology.NewGovernmentTypes()
	tr.Find("td").Each(func(_ int, td *goquery.Selection) {
		for _, n := range td.Nodes {
			walkGovernment(n, types)
		}
	})
	if types.Len() == 0 {
		return nil
	}
	return types
}

// walkGovernment collects linked government types in document order until
// the de jure or de facto marker.
func walkGovernment(root *html.Node, types *ontology.GovernmentTypes) {
	var walk func(n *html.Node) bool
	walk = func(n *html.Node) bool {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch {
			case c.Type == html.TextNode:
				if t := strings.ToLower(c.Data); strings.Contains(t, "de jure") || strings.Contains(t, "de facto") {
					return false
				}
			case c.Type == html.ElementNode && c.Data == "a":
				title, href := attr(c, "title"), attr(c, "href")
				if title == "De jure" || title == "De facto" {
					return false
				}
				if title != "" && href != "" {
					types.Set(normalize.Key(title), href)
				}
			}
			if !walk(c) {
				return false
			}
		}
		return true
	}
	walk(root)
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// firstText returns the first non-blank text node under the selection's
// first node, in document order.
func firstText(s *goquery.Selection) string {
	if s.Length() == 0 {
		return ""
	}
	var found string
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.TextNode && strings.TrimSpace(n.Data) != "" {
			found = n.Data
			return true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(s.Nodes[0])
	return found
}

// number keeps the digits of the first word of s, so trailing notes such
// as "(2020 estimate)" are ignored. It returns nil when there are none.
func number(s string) *uint64 {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil
	}
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, fields[0])
	if digits == "" {
		return nil
	}
	n, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}
