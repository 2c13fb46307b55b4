// Package linkedin holds everything the radar knows about LinkedIn job markup
// and URLs. When the site changes, this is the package to update.
package linkedin

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"go-keyword-radar/internal/dom"
	"go-keyword-radar/internal/entry"
)

// PageKind tells which watcher a page gets.
type PageKind int

const (
	PageOther PageKind = iota
	PageDetail
	PageList
)

func (k PageKind) String() string {
	switch k {
	case PageDetail:
		return "detail"
	case PageList:
		return "list"
	default:
		return "other"
	}
}

const (
	// DescriptionSelector matches the paragraphs of the job description pane.
	DescriptionSelector = `p[dir="ltr"]`
	// TitleSelector matches the displayed job title.
	TitleSelector = "h1"

	listItemSelector = "li[id^='ember']"
	jobIDAttr        = "data-occludable-job-id"
)

var (
	detailRegex    = regexp.MustCompile(`https://www\.linkedin\.com/jobs/view/(\d+)/`)
	listRegex      = regexp.MustCompile(`^https://www\.linkedin\.com/jobs/(collections/recommended|search)/.+`)
	batchOpenRegex = regexp.MustCompile(`^https://www\.linkedin\.com/jobs/(search|collections)/.*`)
	emberIDRegex   = regexp.MustCompile(`^ember\d+$`)
)

// Classify returns the page kind of a URL.
func Classify(pageURL string) PageKind {
	if detailRegex.MatchString(pageURL) {
		return PageDetail
	}
	if listRegex.MatchString(pageURL) {
		return PageList
	}
	return PageOther
}

// DetailURL returns the canonical job-view URL of a detail page, or "".
func DetailURL(pageURL string) string {
	m := detailRegex.FindStringSubmatch(pageURL)
	if m == nil {
		return ""
	}
	return entry.CanonicalURL(m[1])
}

// CurrentJobURL returns the canonical URL of the job shown in the detail pane
// of a list page. Without a currentJobId parameter the page URL is returned.
func CurrentJobURL(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return pageURL
	}
	id := u.Query().Get("currentJobId")
	if id == "" || strings.Trim(id, "0123456789") != "" {
		return pageURL
	}
	return entry.CanonicalURL(id)
}

// CanBatchOpen reports whether the batch-open feature works on pageURL.
func CanBatchOpen(pageURL string) bool {
	return batchOpenRegex.MatchString(pageURL)
}

// WrongPageMessage is shown when batch-open is requested elsewhere.
const WrongPageMessage = "Error: This feature works only on a webpage with a list of jobs.\nMake a search and try it again."

// ConfirmOpenMessage is the prompt shown before opening n job tabs.
func ConfirmOpenMessage(n int) string {
	return fmt.Sprintf("Would you like to open all the %d matches in new tabs?\n\nIMPORTANT: The tabs will open with a small delay between each to avoid overwhelming the browser.", n)
}

func listItems(doc dom.Document) ([]dom.Element, error) {
	items, err := doc.QueryAll(listItemSelector)
	if err != nil {
		return nil, fmt.Errorf("failed to query job list: %w", err)
	}
	out := items[:0]
	for _, it := range items {
		if emberIDRegex.MatchString(it.ID()) {
			out = append(out, it)
		}
	}
	return out, nil
}

// CountJobs counts the job cards of a list page that carry a job id.
func CountJobs(doc dom.Document) (int, error) {
	items, err := listItems(doc)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, it := range items {
		if _, ok := it.Attr(jobIDAttr); ok {
			n++
		}
	}
	return n, nil
}

// JobURLs returns the canonical URLs of the job cards currently in the list.
func JobURLs(doc dom.Document) ([]string, error) {
	items, err := listItems(doc)
	if err != nil {
		return nil, err
	}
	urls := []string{}
	for _, it := range items {
		id, _ := it.Attr(jobIDAttr)
		if id = strings.TrimSpace(id); id == "" {
			continue
		}
		urls = append(urls, entry.CanonicalURL(id))
	}
	return urls, nil
}
