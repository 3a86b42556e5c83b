package service

import (
	"prezstore/internal/model"
)

// ReconcileOrphans removes overlay elements whose ownership reference no
// longer matches any live slide, typically after slide deletion or reorder.
// An element is retained when its ParentSlideID matches the owning slide's
// stable SlideID, or when its legacy positional id still matches the slide's
// current position (see legacy.go). Everything else is dropped silently and
// counted.
//
// The document is modified in place; the return values are the total number
// of removed elements and a per-slide report.
func ReconcileOrphans(p *model.Presentation) (int, []ReconcileReport) {
	removed := 0
	reports := make([]ReconcileReport, 0, len(p.Slides))

	for i := range p.Slides {
		slide := &p.Slides[i]
		report := ReconcileReport{SlideID: slide.SlideID, Index: i}

		for _, collection := range slide.ElementCollections() {
			kept := (*collection)[:0]
			for _, el := range *collection {
				if ownsElement(slide, i, el) {
					kept = append(kept, el)
				} else {
					report.Removed++
				}
			}
			*collection = kept
		}

		removed += report.Removed
		reports = append(reports, report)
	}

	return removed, reports
}

// ownsElement decides whether the slide at the given index owns el. Stable
// ids win: a matching ParentSlideID ties the element to the slide's identity
// regardless of position. The positional fallback only applies to legacy
// element ids.
func ownsElement(slide *model.Slide, index int, el model.Element) bool {
	if el.ParentSlideID != "" && el.ParentSlideID == slide.SlideID {
		return true
	}
	return legacyIDMatchesPosition(el.ID, index)
}
