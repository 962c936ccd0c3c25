package scanner

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ozolsandis/peoplebook-backend/internal/domain"
	pkgerrors "github.com/ozolsandis/peoplebook-backend/internal/pkg/errors"
)

// Attributes allowed to survive cleaning. Everything else (inline styles,
// tracking attributes, event handlers) is dropped.
var keptAttributes = map[string]bool{
	"src":   true,
	"alt":   true,
	"href":  true,
	"title": true,
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// ExtractContent parses one subject's HTML document into cleaned body markup,
// plain text, extracted photo credits and a word count.
func ExtractContent(raw []byte) (*domain.ExtractedContent, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, pkgerrors.ErrNoValidContent
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	doc.Find("style, script").Remove()

	credits := extractPhotoCredits(doc)
	promoteHeadings(doc)
	stripAttributes(doc)

	body := doc.Find("body")
	html, err := body.Html()
	if err != nil {
		return nil, fmt.Errorf("serialize body: %w", err)
	}

	text := strings.TrimSpace(whitespaceRun.ReplaceAllString(body.Text(), " "))
	if text == "" {
		return nil, pkgerrors.ErrNoValidContent
	}

	return &domain.ExtractedContent{
		HTML:         strings.TrimSpace(html),
		Text:         text,
		PhotoCredits: credits,
		WordCount:    len(strings.Fields(text)),
	}, nil
}

// extractPhotoCredits removes credit paragraphs from the document and returns
// them in document order with sequential Order values.
func extractPhotoCredits(doc *goquery.Document) []domain.PhotoCredit {
	credits := []domain.PhotoCredit{}
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(whitespaceRun.ReplaceAllString(s.Text(), " "))
		if !IsCreditParagraph(text) {
			return
		}
		credits = append(credits, domain.PhotoCredit{
			Text:  text,
			Order: len(credits),
		})
		s.Remove()
	})
	return credits
}

// promoteHeadings rewrites recurring boilerplate paragraphs into heading
// elements per the HeadingRules table.
func promoteHeadings(doc *goquery.Document) {
	fired := make(map[string]bool, len(HeadingRules))
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text == "" {
			return
		}
		for _, rule := range HeadingRules {
			if rule.Once && fired[rule.Name] {
				continue
			}
			if !rule.Match(text) {
				continue
			}
			inner, err := s.Html()
			if err != nil {
				return
			}
			s.ReplaceWithHtml(fmt.Sprintf("<h%d>%s</h%d>", rule.Level, inner, rule.Level))
			fired[rule.Name] = true
			return
		}
	})
}

// stripAttributes drops every attribute not in keptAttributes from every
// element in the document.
func stripAttributes(doc *goquery.Document) {
	doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		for _, node := range s.Nodes {
			kept := node.Attr[:0]
			for _, attr := range node.Attr {
				if keptAttributes[strings.ToLower(attr.Key)] {
					kept = append(kept, attr)
				}
			}
			node.Attr = kept
		}
	})
}
