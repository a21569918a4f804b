package blogservice

import "regexp"

// Only markup that can execute script is removed. Everything else is stored verbatim.
var (
	scriptBlockRX  = regexp.MustCompile(`(?is)<\s*script[^>]*>.*?<\s*/\s*script\s*>`)
	htmlTagRX      = regexp.MustCompile(`<[a-zA-Z][^>]*>`)
	eventHandlerRX = regexp.MustCompile(`(?i)\s+on[a-z]+\s*=\s*("[^"]*"|'[^']*'|[^\s>]+)`)
	jsLinkRX       = regexp.MustCompile(`(?i)\]\(\s*javascript:[^)\s]*\)`)
)

func sanitizeMarkdown(markdown string) string {
	out := scriptBlockRX.ReplaceAllString(markdown, "")
	out = htmlTagRX.ReplaceAllStringFunc(out, func(tag string) string {
		return eventHandlerRX.ReplaceAllString(tag, "")
	})
	return jsLinkRX.ReplaceAllString(out, "](#)")
}
