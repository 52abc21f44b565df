package lookup

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/vietddude/finecheck/internal/core/config"
	"github.com/vietddude/finecheck/internal/core/domain"
)

const (
	noResultsPhrase = "không tìm thấy kết quả"
	separatorStyle  = "margin-bottom: 25px;"
)

// ParseResultPage extracts violation records from a results page using the
// default container selector.
func ParseResultPage(body []byte) domain.ParseOutcome {
	return parseResultPage(body, config.DefaultResultContainer)
}

// parseResultPage reads the container, splits it into one fragment per
// violation and maps each fragment's fields onto the record schema.
//
// A page that has fragments but yields no record is unreliable and asks for
// a retry. A container without fragments is an empty result.
func parseResultPage(body []byte, container string) domain.ParseOutcome {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return domain.ParseOutcome{Retry: true}
	}

	wrapper := doc.Find(container).First()
	if wrapper.Length() == 0 {
		return domain.ParseOutcome{Retry: true}
	}

	if strings.Contains(strings.ToLower(strings.TrimSpace(wrapper.Text())), noResultsPhrase) {
		return domain.ParseOutcome{Records: []domain.ViolationRecord{}}
	}

	fragments := splitFragments(wrapper.Get(0))
	records := make([]domain.ViolationRecord, 0, len(fragments))
	for _, frag := range fragments {
		if rec, ok := parseFragment(frag); ok {
			records = append(records, rec)
		}
	}

	return domain.ParseOutcome{
		Retry:   len(records) == 0 && len(fragments) > 0,
		Records: records,
	}
}

// splitFragments renders the container into one markup string per run
// between separator rules, in document order. An element that holds a
// separator somewhere below it is opened up and its children are split in
// turn; its own tags are dropped. Blank runs are dropped.
func splitFragments(container *html.Node) []string {
	var (
		fragments []string
		buf       bytes.Buffer
	)
	flush := func() {
		if s := buf.String(); strings.TrimSpace(s) != "" {
			fragments = append(fragments, s)
		}
		buf.Reset()
	}

	var walk func(parent *html.Node)
	walk = func(parent *html.Node) {
		for c := parent.FirstChild; c != nil; c = c.NextSibling {
			switch {
			case isSeparator(c):
				flush()
			case containsSeparator(c):
				walk(c)
			default:
				// Rendering into a bytes.Buffer only fails on malformed trees
				_ = html.Render(&buf, c)
			}
		}
	}
	walk(container)
	flush()
	return fragments
}

func containsSeparator(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if isSeparator(c) || containsSeparator(c) {
			return true
		}
	}
	return false
}

func isSeparator(n *html.Node) bool {
	if n.Type != html.ElementNode || n.DataAtom != atom.Hr {
		return false
	}
	for _, a := range n.Attr {
		if a.Key == "style" {
			return strings.TrimSpace(a.Val) == separatorStyle
		}
	}
	return false
}

// parseFragment maps the n-th .form-group onto the n-th schema key.
//
// A group with a label but no value is skipped and its position is not
// reused, so later groups keep their page position. Groups past the schema,
// or without a label and value pair, go to resolvingUnit as plain text.
func parseFragment(fragment string) (domain.ViolationRecord, bool) {
	var rec domain.ViolationRecord

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return rec, false
	}

	set := false
	doc.Find(".form-group").Each(func(idx int, el *goquery.Selection) {
		label := strings.TrimSpace(el.Find(".col-md-3").First().Text())
		value := strings.TrimSpace(el.Find(".col-md-9").First().Text())

		if value == "" && label != "" {
			return
		}

		if value != "" && idx < len(domain.RecordSchema) {
			rec.SetField(domain.RecordSchema[idx], value)
			set = true
			return
		}

		if text := strings.TrimSpace(el.Text()); text != "" {
			rec.ResolvingUnit = append(rec.ResolvingUnit, text)
			set = true
		}
	})

	return rec, set
}
