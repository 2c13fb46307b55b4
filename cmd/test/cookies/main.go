package main

import (
	"flag"
	"fmt"
	"log"

	"go-keyword-radar/internal/browser"
)

func main() {
	path := flag.String("path", ".cookies/cookies-linkedin.json", "cookie export to check")
	flag.Parse()

	fmt.Println("🍪 Testing cookie loading...")

	cookies, err := browser.LoadCookies(*path)
	if err != nil {
		log.Fatalf("Failed to load cookies: %v", err)
	}

	fmt.Printf("✅ Loaded %d cookies\n", len(cookies))

	session := false
	for _, c := range cookies {
		if c.Name == "li_at" {
			session = true
			fmt.Printf("\nSession cookie:\n")
			fmt.Printf("Domain: %s\n", *c.Domain)
			if c.Expires != nil {
				fmt.Printf("Expires: %.0f\n", *c.Expires)
			}
		}
	}
	if !session {
		fmt.Println("⚠️ No li_at cookie, LinkedIn will show the logged out pages")
	}
}
