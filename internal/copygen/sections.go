package copygen

import (
	"sort"
	"strings"
)

// The five labels the copy prompt asks for, in the order they are requested.
const (
	labelIntro           = "INTRO"
	labelDetails         = "DETAILS"
	labelMetaDescription = "META_DESCRIPTION"
	labelKeywords        = "KEYWORDS"
	labelCardSub         = "CARD_SUB"
)

var sectionLabels = []string{labelIntro, labelDetails, labelMetaDescription, labelKeywords, labelCardSub}

type sectionMark struct {
	label   string
	start   int // position of the label itself
	content int // position just past "LABEL:"
}

// parseSections extracts the labeled sections from a model response: each
// known "LABEL:" marker captures text up to the next known marker or the end
// of the response. Labels may arrive in any order; a missing label is simply
// absent from the result.
func parseSections(raw string) map[string]string {
	var marks []sectionMark
	for _, label := range sectionLabels {
		idx := strings.Index(raw, label+":")
		if idx < 0 {
			continue
		}
		marks = append(marks, sectionMark{
			label:   label,
			start:   idx,
			content: idx + len(label) + 1,
		})
	}

	sort.Slice(marks, func(i, j int) bool { return marks[i].start < marks[j].start })

	sections := make(map[string]string, len(marks))
	for i, mark := range marks {
		end := len(raw)
		if i+1 < len(marks) {
			end = marks[i+1].start
		}
		sections[mark.label] = strings.TrimSpace(raw[mark.content:end])
	}
	return sections
}
