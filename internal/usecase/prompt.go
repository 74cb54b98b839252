package usecase

import (
	"fmt"
	"strings"
)

// buildPrompt renders the internal-linking instruction for one article title.
// Every URL is included; the list is never truncated.
func buildPrompt(title string, urls []string) string {
	var b strings.Builder
	fmt.Fprintln(&b, "Role:")
	fmt.Fprintln(&b, "You are an SEO specialist whose job is to suggest internal links.")
	fmt.Fprintln(&b)
	// not %q: it escapes the ZWNJ used in Persian titles
	fmt.Fprintln(&b, "The title of my new article is: \""+normalizePromptInput(title)+"\"")
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "These are the URLs listed in the site's sitemap:")
	fmt.Fprintln(&b, strings.Join(urls, ", "))
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "Task:")
	fmt.Fprintln(&b, "Based on my article title, find the URLs from the list above that are the most suitable to link to.")
	fmt.Fprintln(&b, "For each URL, suggest an anchor text (the title of the article behind that URL).")
	fmt.Fprintln(&b, "Write the anchor texts in the same language as my article title.")
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "Output Contract:")
	fmt.Fprintln(&b, outputContract())
	fmt.Fprintln(&b)
	fmt.Fprint(&b, "Only return the links with the strongest semantic relevance.")
	return b.String()
}

func outputContract() string {
	return strings.Join([]string{
		"Return a list where every suggestion is exactly these two lines:",
		"- **Anchor text:** [suggested anchor text]",
		"- **Link:** [URL]",
	}, "\n")
}

func normalizePromptInput(s string) string {
	return strings.Join(strings.Fields(strings.TrimSpace(s)), " ")
}
