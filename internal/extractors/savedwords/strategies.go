package savedwords

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/custodia-labs/starsync/internal/core/domain"
)

// Strategy names reported in domain.ExtractionResult.
const (
	StrategyPrimary   = "primary"
	StrategySecondary = "secondary"
	StrategyEmergency = "emergency"
)

// strategy finds word pairs in a parsed document.
type strategy struct {
	name string
	find func(doc *goquery.Document) []domain.RawWord
}

// defaultStrategies returns the strategies in priority order.
func defaultStrategies() []strategy {
	return []strategy{
		{name: StrategyPrimary, find: findSavedItems},
		{name: StrategySecondary, find: findListRows},
		{name: StrategyEmergency, find: findLangPairs},
	}
}

// Primary selectors.
const (
	savedItemSelector = "[data-saved-item], .saved-item"
	sourceSelector    = "[data-role='source'], .source-text"
	targetSelector    = "[data-role='target'], .target-text"
)

// findSavedItems reads explicit saved-item containers.
func findSavedItems(doc *goquery.Document) []domain.RawWord {
	var words []domain.RawWord
	doc.Find(savedItemSelector).Each(func(_ int, item *goquery.Selection) {
		src := item.Find(sourceSelector).First()
		tgt := item.Find(targetSelector).First()
		if src.Length() == 0 || tgt.Length() == 0 {
			return
		}
		words = append(words, domain.RawWord{
			SourceText: src.Text(),
			TargetText: tgt.Text(),
			SourceLang: firstAttr(item, src, "data-source-lang", "data-sl"),
			TargetLang: firstAttr(item, tgt, "data-target-lang", "data-tl"),
		})
	})
	return words
}

// Secondary selectors.
const (
	rowSelector      = "li[role='listitem'], tr.phrase-row, [role='row']"
	cellSelector     = "[role='cell'], [role='gridcell'], td"
	pairHeaderAttr   = "data-language-pair"
	pairHeaderSelect = "[data-language-pair]"
)

// findListRows reads rows whose first two non-empty cells are source and target.
// Languages come from the row's data attributes or the enclosing language-pair section.
func findListRows(doc *goquery.Document) []domain.RawWord {
	var words []domain.RawWord
	doc.Find(rowSelector).Each(func(_ int, row *goquery.Selection) {
		var cells []*goquery.Selection
		row.Find(cellSelector).EachWithBreak(func(_ int, cell *goquery.Selection) bool {
			if strings.TrimSpace(cell.Text()) != "" {
				cells = append(cells, cell)
			}
			return len(cells) < 2
		})
		if len(cells) < 2 {
			return
		}

		srcLang := row.AttrOr("data-sl", "")
		tgtLang := row.AttrOr("data-tl", "")
		if srcLang == "" || tgtLang == "" {
			if pair, ok := row.Closest(pairHeaderSelect).Attr(pairHeaderAttr); ok {
				s, t := splitPair(pair)
				if srcLang == "" {
					srcLang = s
				}
				if tgtLang == "" {
					tgtLang = t
				}
			}
		}
		if srcLang == "" {
			srcLang = cells[0].AttrOr("lang", "")
		}
		if tgtLang == "" {
			tgtLang = cells[1].AttrOr("lang", "")
		}

		words = append(words, domain.RawWord{
			SourceText: cells[0].Text(),
			TargetText: cells[1].Text(),
			SourceLang: srcLang,
			TargetLang: tgtLang,
		})
	})
	return words
}

// Emergency selectors.
const (
	regionSelector = "main, [role='main']"
	langSelector   = "[lang]"
)

// findLangPairs pairs the first two lang-tagged children of any element.
// It is the last resort and only looks inside the main region when one exists.
func findLangPairs(doc *goquery.Document) []domain.RawWord {
	region := doc.Find(regionSelector).First()
	if region.Length() == 0 {
		region = doc.Find("body")
	}

	var words []domain.RawWord
	region.Find("*").AddSelection(region).Each(func(_ int, parent *goquery.Selection) {
		tagged := parent.ChildrenFiltered(langSelector)
		if tagged.Length() < 2 {
			return
		}
		src := tagged.Eq(0)
		tgt := tagged.Eq(1)
		words = append(words, domain.RawWord{
			SourceText: src.Text(),
			TargetText: tgt.Text(),
			SourceLang: src.AttrOr("lang", ""),
			TargetLang: tgt.AttrOr("lang", ""),
		})
	})
	return words
}

// firstAttr returns the first non-empty value among the container's named
// attributes, falling back to the text node's own lang attribute.
func firstAttr(container, node *goquery.Selection, names ...string) string {
	for _, name := range names {
		if v := strings.TrimSpace(container.AttrOr(name, "")); v != "" {
			return v
		}
	}
	return node.AttrOr("lang", "")
}

// splitPair splits "en-de", "en→de", "en>de" or "en|de" into its two codes.
// Region subtags ("en-US→de") are only kept when an arrow-style separator is used.
func splitPair(pair string) (string, string) {
	for _, sep := range []string{"→", ">", "|"} {
		if s, t, ok := strings.Cut(pair, sep); ok {
			return strings.TrimSpace(s), strings.TrimSpace(t)
		}
	}
	if s, t, ok := strings.Cut(pair, "-"); ok {
		return strings.TrimSpace(s), strings.TrimSpace(t)
	}
	return "", ""
}
