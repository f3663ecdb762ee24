// Package stripper removes comments from JavaScript and TypeScript source text.
//
// The transformation is an ordered sequence of regular-expression substitutions.
// It does not tokenize the input, so comment markers inside string, template or
// regex literals are treated like any other comment marker.
package stripper

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/compozy/clear-comments/pkg/logger"
)

var (
	// reSingleLine stops before the line terminator so CRLF input keeps its CR.
	reSingleLine = regexp.MustCompile(`//[^\r\n]*`)
	// reBlockNonDoc matches /* ... */ unless the opener is followed by a second
	// asterisk. RE2 has no lookahead, so the first body character is consumed
	// explicitly; it can never be the start of the closing */.
	reBlockNonDoc = regexp.MustCompile(`/\*[^*][\s\S]*?\*/`)
	reBlockAll    = regexp.MustCompile(`/\*[\s\S]*?\*/`)
	reHTMLComment = regexp.MustCompile(`<!--[\s\S]*?-->`)
	// whitespace follows JavaScript's \s, which also covers Unicode space
	// separators and the byte order mark
	reBlankLines = regexp.MustCompile(`(?m)^[\s\v\p{Zs}\x{FEFF}]*\n`)
)

// blankMarker stands in for pre-existing blank lines while the pipeline runs
// with BlankLinesPreserveExisting.
const blankMarker = "\x00"

// BlankLinePolicy controls the final blank-line pass.
type BlankLinePolicy string

const (
	// BlankLinesCollapse removes every empty or whitespace-only line.
	BlankLinesCollapse BlankLinePolicy = "collapse"
	// BlankLinesPreserveExisting keeps lines that were blank in the input and
	// removes only lines left blank by comment removal.
	BlankLinesPreserveExisting BlankLinePolicy = "preserve-existing"
)

// Pipeline is a compiled comment-removal pipeline. It is immutable after
// construction and safe for concurrent use.
type Pipeline struct {
	directives DirectiveSet
	custom     []*regexp.Regexp
	warnings   []string
	blankLines BlankLinePolicy
	log        logger.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger that receives custom pattern warnings.
func WithLogger(log logger.Logger) Option {
	return func(p *Pipeline) {
		if log != nil {
			p.log = log
		}
	}
}

// WithBlankLines sets the blank-line policy. Unknown values fall back to
// BlankLinesCollapse.
func WithBlankLines(policy BlankLinePolicy) Option {
	return func(p *Pipeline) {
		if policy == BlankLinesPreserveExisting {
			p.blankLines = policy
			return
		}
		p.blankLines = BlankLinesCollapse
	}
}

// NewPipeline compiles the custom patterns and returns a pipeline for the given
// directives. Patterns that fail to compile are skipped with a warning.
func NewPipeline(directives DirectiveSet, customPatterns []string, opts ...Option) *Pipeline {
	p := &Pipeline{
		directives: directives,
		blankLines: BlankLinesCollapse,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.log == nil {
		p.log = logger.GetDefault()
	}
	p.custom = make([]*regexp.Regexp, 0, len(customPatterns))
	for _, pattern := range customPatterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			msg := fmt.Sprintf("invalid custom pattern %q: %v", pattern, err)
			p.warnings = append(p.warnings, msg)
			p.log.Warn("skipping invalid custom pattern", "pattern", pattern, "error", err)
			continue
		}
		p.custom = append(p.custom, re)
	}
	return p
}

// Directives returns the directive set the pipeline was built with.
func (p *Pipeline) Directives() DirectiveSet {
	return p.directives
}

// CustomPatternCount returns the number of custom patterns that compiled.
func (p *Pipeline) CustomPatternCount() int {
	return len(p.custom)
}

// Warnings returns one message per skipped custom pattern.
func (p *Pipeline) Warnings() []string {
	return append([]string(nil), p.warnings...)
}

// Apply returns text with comments removed according to the pipeline. The
// input is never modified.
func (p *Pipeline) Apply(text string, fileType FileType) string {
	out := text
	marked := false
	if p.blankLines == BlankLinesPreserveExisting && !strings.Contains(out, blankMarker) {
		out = markBlankLines(out)
		marked = true
	}
	out = p.removeComments(out, fileType)
	if len(p.custom) > 0 {
		for _, re := range p.custom {
			out = re.ReplaceAllLiteralString(out, "")
		}
		out = p.removeComments(out, fileType)
	}
	out = collapseBlankLines(out)
	if marked {
		out = strings.ReplaceAll(out, blankMarker, "")
	}
	return out
}

// removeComments runs the directive passes until the text stops changing.
// A removal can join the halves of a new comment, as in "/<!-- -->/ x" in
// markup files. Every pass only deletes text, so the loop terminates.
func (p *Pipeline) removeComments(text string, fileType FileType) string {
	for {
		out := text
		if p.directives.Has(SingleLine) {
			out = reSingleLine.ReplaceAllLiteralString(out, "")
		}
		if p.directives.Has(MultiLine) {
			if p.directives.Has(JSDoc) {
				out = reBlockAll.ReplaceAllLiteralString(out, "")
			} else {
				out = reBlockNonDoc.ReplaceAllLiteralString(out, "")
			}
		}
		if p.directives.Has(HTML) && fileType.IsMarkup() {
			out = reHTMLComment.ReplaceAllLiteralString(out, "")
		}
		if out == text {
			return out
		}
		text = out
	}
}

// Strip removes comments from text in a single call. Custom patterns are
// compiled on every call; use NewPipeline when processing many files.
func Strip(text string, fileType FileType, directives DirectiveSet, customPatterns []string) string {
	return NewPipeline(directives, customPatterns).Apply(text, fileType)
}

// collapseBlankLines drops empty and whitespace-only lines, including a
// whitespace-only fragment after the last newline.
func collapseBlankLines(text string) string {
	out := reBlankLines.ReplaceAllLiteralString(text, "")
	tail := out
	if i := strings.LastIndexByte(out, '\n'); i >= 0 {
		tail = out[i+1:]
	}
	if tail != "" && isBlank(tail) {
		out = out[:len(out)-len(tail)]
	}
	return out
}

// markBlankLines replaces the content of every blank line with blankMarker,
// keeping a trailing CR so CRLF line endings survive the round trip.
func markBlankLines(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if i == len(lines)-1 {
			// text after the final newline is not a line of its own
			break
		}
		if !isBlank(line) {
			continue
		}
		if strings.HasSuffix(line, "\r") {
			lines[i] = blankMarker + "\r"
			continue
		}
		lines[i] = blankMarker
	}
	return strings.Join(lines, "\n")
}

// isBlank matches the whitespace class of reBlankLines.
func isBlank(s string) bool {
	return strings.TrimFunc(s, isSpace) == ""
}

func isSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', '\uFEFF':
		return true
	}
	return unicode.Is(unicode.Zs, r)
}
