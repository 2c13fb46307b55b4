// Command replay runs the radar over a saved LinkedIn page, which is handy
// when the site markup changes and the selectors need checking.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"go-keyword-radar/internal/annotate"
	"go-keyword-radar/internal/dom/htmldoc"
	"go-keyword-radar/internal/filter"
	"go-keyword-radar/internal/scraper/linkedin"
	"go-keyword-radar/internal/watcher"
)

func main() {
	htmlPath := flag.String("html", "", "saved page to replay")
	pageURL := flag.String("url", "", "URL the page was saved from")
	keywords := flag.String("keywords", "", "comma separated keywords (default: built-in list)")
	depth := flag.Int("depth", annotate.DefaultDepth, "parent levels from card title to card")
	out := flag.String("out", "", "write the annotated page here")
	flag.Parse()

	if *htmlPath == "" || *pageURL == "" {
		flag.Usage()
		os.Exit(2)
	}

	f, err := os.Open(*htmlPath)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	doc, err := htmldoc.Parse(f)
	f.Close()
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	kw := filter.Resolve(filter.ParseKeywords(*keywords), filter.DefaultKeywords)
	var records []string
	sink := watcher.SinkFunc(func(record string) { records = append(records, record) })

	kind := linkedin.Classify(*pageURL)
	fmt.Printf("📄 %s page, keywords %v\n", kind, kw)

	switch kind {
	case linkedin.PageDetail:
		w := watcher.NewDetailWatcher(doc, linkedin.DetailURL(*pageURL), kw, sink, watcher.DefaultTiming)
		if !w.Evaluate() {
			fmt.Println("⌛ No job description in the saved page")
		}
	case linkedin.PageList:
		w := watcher.NewListWatcher(doc, func() string { return *pageURL }, kw, sink, annotate.NewEngine(*depth), watcher.NewCache(), watcher.DefaultTiming)
		if !w.Evaluate() {
			fmt.Println("⌛ No job description in the saved page")
		}
		count, err := linkedin.CountJobs(doc)
		if err != nil {
			log.Fatalf("❌ %v", err)
		}
		urls, _ := linkedin.JobURLs(doc)
		fmt.Printf("📋 %d jobs on the list, %d with ids\n", count, len(urls))
	default:
		fmt.Println("🤷 Not a job page, nothing to do")
	}

	for i, r := range records {
		fmt.Printf("#%d\n%s\n", i+1, r)
	}
	if len(records) == 0 {
		fmt.Println("No match")
	}

	if *out != "" {
		if err := os.WriteFile(*out, []byte(doc.HTML()), 0644); err != nil {
			log.Fatalf("❌ %v", err)
		}
		fmt.Printf("💾 Annotated page written to %s\n", *out)
	}
}
