package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	// The page embeds its app state as escaped JSON inside a script tag;
	// correct_steps is only reachable through that serialized form.
	correctStepsBlockRe = regexp.MustCompile(`(?s)\\"correct_steps\\":\[(.*?)\],\\"variation_of\\":`)
	stepTextEnRe        = regexp.MustCompile(`\\"text_en_us\\":\\"(.*?)\\"`)
	stepTextRe          = regexp.MustCompile(`\\"text\\":\\"(.*?)\\"`)

	unicodeEscapeRe = regexp.MustCompile(`\\u([0-9a-fA-F]{4})`)
	spaceRuns       = regexp.MustCompile(`\s+`)
)

// StepSource is one named strategy for recovering instruction steps. Sources
// are tried in priority order; the first that yields anything wins.
type StepSource struct {
	Name string
	Run  func() []string
}

// FirstSteps runs sources in order and returns the first non-empty result.
func FirstSteps(sources ...StepSource) []string {
	for _, src := range sources {
		if steps := src.Run(); len(steps) > 0 {
			return steps
		}
	}
	return nil
}

// Steps extracts ordered instruction lines for one exercise page, falling
// back from the embedded correct_steps JSON to the visible DOM.
func Steps(doc string, descriptionHTML string) []string {
	return FirstSteps(
		StepSource{Name: "correct_steps", Run: func() []string { return CorrectSteps(doc) }},
		StepSource{Name: "description_dom", Run: func() []string { return StepsFromHTML(descriptionHTML) }},
	)
}

// CorrectSteps recovers instruction texts from the escaped correct_steps
// block, preferring the localized text_en_us field over the generic text
// field. Results are deduplicated in order.
func CorrectSteps(doc string) []string {
	blockMatch := correctStepsBlockRe.FindStringSubmatch(doc)
	if blockMatch == nil {
		return nil
	}
	block := blockMatch[1]

	texts := collectStepTexts(block, stepTextEnRe)
	if len(texts) == 0 {
		texts = collectStepTexts(block, stepTextRe)
	}
	return dedupeStrings(texts)
}

func collectStepTexts(block string, re *regexp.Regexp) []string {
	var texts []string
	for _, m := range re.FindAllStringSubmatch(block, -1) {
		if t := strings.TrimSpace(UnescapeJSString(m[1])); t != "" {
			texts = append(texts, t)
		}
	}
	return texts
}

// StepsFromHTML derives steps from the visible list items and paragraphs of
// an HTML fragment, stripping tags and collapsing whitespace. Paragraphs
// duplicating a list item are dropped.
func StepsFromHTML(fragment string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return nil
	}

	var chunks []string
	doc.Find("li").Each(func(_ int, s *goquery.Selection) {
		if text := collapseText(s.Text()); text != "" {
			chunks = append(chunks, text)
		}
	})

	seen := make(map[string]bool, len(chunks))
	for _, c := range chunks {
		seen[c] = true
	}
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		text := collapseText(s.Text())
		if text == "" || seen[text] {
			return
		}
		seen[text] = true
		chunks = append(chunks, text)
	})

	return chunks
}

// UnescapeJSString undoes the JavaScript string escaping found in the
// embedded app-state JSON.
func UnescapeJSString(s string) string {
	s = strings.ReplaceAll(s, `\"`, `"`)
	s = strings.ReplaceAll(s, `\\`, `\`)
	s = strings.ReplaceAll(s, `\r\n`, "\n")
	s = strings.ReplaceAll(s, `\n`, "\n")
	s = strings.ReplaceAll(s, `\t`, "\t")
	return unicodeEscapeRe.ReplaceAllStringFunc(s, func(esc string) string {
		code, err := strconv.ParseUint(esc[2:], 16, 32)
		if err != nil {
			return esc
		}
		return string(rune(code))
	})
}

func collapseText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.TrimSpace(spaceRuns.ReplaceAllString(s, " "))
}

func dedupeStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
