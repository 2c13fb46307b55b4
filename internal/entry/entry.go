// Package entry renders matched jobs into the text records stored by the
// background service and written to the export file.
package entry

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	// ExportFilename is the name of the downloaded match list.
	ExportFilename = "matches_found.txt"

	jobViewBase = "https://www.linkedin.com/jobs/view/"
	dateLayout  = "02/01/2006 15:04"
)

// urlRegex must stay in sync with the "URL:" line written by Format.
var urlRegex = regexp.MustCompile(`URL\s*:?\s*(https?://www\.linkedin\.com/jobs/view/[\w\d\-_%/?=]*)`)

// Entry is a matched job before it is rendered.
type Entry struct {
	Title    string
	URL      string
	Keywords []string
	Date     time.Time
}

// String renders the entry with Format.
func (e Entry) String() string {
	return Format(e.Title, e.URL, e.Keywords, e.Date)
}

// Format renders the 4-line record:
//
//	Job Title: <title>
//	URL: <url>
//	Keywords: <k1, k2>
//	Date: DD/MM/YYYY HH:MM
func Format(title, url string, keywords []string, now time.Time) string {
	return fmt.Sprintf("Job Title: %s\nURL: %s\nKeywords: %s\nDate: %s\n",
		title, url, strings.Join(keywords, ", "), now.Local().Format(dateLayout))
}

// ExtractURL pulls the job-view URL out of a rendered record. It returns ""
// when the record has no recognisable URL line.
func ExtractURL(record string) string {
	m := urlRegex.FindStringSubmatch(record)
	if m == nil {
		return ""
	}
	return m[1]
}

// CanonicalURL builds the job-view URL for a numeric job id.
func CanonicalURL(jobID string) string {
	return jobViewBase + jobID + "/"
}

// Export renders the records the way the download button writes them:
// "#<n>\n<record>" blocks joined by a newline, which leaves a blank line
// between records since each record already ends in one.
func Export(records []string) string {
	blocks := make([]string, len(records))
	for i, r := range records {
		blocks[i] = fmt.Sprintf("#%d\n%s", i+1, r)
	}
	return strings.Join(blocks, "\n")
}

// Parse reads a record written by Format back into an Entry. Unknown lines
// are ignored; ok is false when the record has no URL.
func Parse(record string) (e Entry, ok bool) {
	for _, line := range strings.Split(record, "\n") {
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.TrimSpace(key) {
		case "Job Title":
			e.Title = value
		case "Keywords":
			for _, k := range strings.Split(value, ",") {
				if k = strings.TrimSpace(k); k != "" {
					e.Keywords = append(e.Keywords, k)
				}
			}
		case "Date":
			if t, err := time.ParseInLocation(dateLayout, value, time.Local); err == nil {
				e.Date = t
			}
		}
	}
	e.URL = ExtractURL(record)
	return e, e.URL != ""
}
