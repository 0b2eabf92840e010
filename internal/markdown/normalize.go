// Package markdown repairs the shape of model-produced Markdown before it
// reaches storage or the client. Model output sometimes carries literal
// `\n` escape sequences and fenced code blocks glued to surrounding prose;
// both break rendering downstream.
package markdown

import (
	"regexp"
	"strings"
)

// fenceRe matches a fenced code block with an optional language tag.
var fenceRe = regexp.MustCompile("(?s)```(\\w*)(.*?)```")

// Normalize replaces literal \n escape sequences with real newlines and
// guarantees a newline immediately after the opening fence and before the
// closing fence of every code block. It is applied both when persisting an
// assistant reply and when serving stored ones, and is idempotent, so
// the result is identical no matter which side ran it first.
func Normalize(content string) string {
	if !strings.Contains(content, "```") && !strings.Contains(content, `\n`) {
		return content
	}

	out := content
	if strings.Contains(out, "```") {
		out = fenceRe.ReplaceAllStringFunc(out, func(block string) string {
			m := fenceRe.FindStringSubmatch(block)
			lang, body := m[1], m[2]
			body = strings.ReplaceAll(body, `\n`, "\n")
			if !strings.HasPrefix(body, "\n") {
				body = "\n" + body
			}
			if !strings.HasSuffix(body, "\n") {
				body += "\n"
			}
			return "```" + lang + body + "```"
		})
	}
	return strings.ReplaceAll(out, `\n`, "\n")
}
