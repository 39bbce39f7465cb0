package source

import (
	"regexp"
	"strings"
)

var (
	spacesRegex        = regexp.MustCompile(`[ \t]+`)
	manyNewlinesRegex  = regexp.MustCompile(`\n{3,}`)
	newlinePadRegex    = regexp.MustCompile(` *\n *`)
	hashtagRegex       = regexp.MustCompile(`#\w+`)
	mentionRegex       = regexp.MustCompile(`@\w+`)
	manyDotsRegex      = regexp.MustCompile(`\.{3,}`)
	manyBangsRegex     = regexp.MustCompile(`!{2,}`)
)

// CleanText normalizes whitespace in free-text input: runs of spaces and
// tabs collapse to one space, runs of blank lines collapse to one, and
// padding around newlines is removed.
func CleanText(text string) string {
	text = spacesRegex.ReplaceAllString(text, " ")
	text = newlinePadRegex.ReplaceAllString(text, "\n")
	text = manyNewlinesRegex.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// CleanCaption normalizes an Instagram caption: whitespace normalization
// plus removal of social artifacts (hashtags, mentions, stacked punctuation)
// that carry no recipe content.
func CleanCaption(caption string) string {
	caption = hashtagRegex.ReplaceAllString(caption, "")
	caption = mentionRegex.ReplaceAllString(caption, "")
	caption = manyDotsRegex.ReplaceAllString(caption, "...")
	caption = manyBangsRegex.ReplaceAllString(caption, "!")
	return CleanText(caption)
}
