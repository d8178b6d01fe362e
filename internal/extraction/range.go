package extraction

import (
	"github.com/mcptools/mcp-pdf-reader/internal/pdferr"
)

// SelectPages normalises an optional 1-indexed (start, end) request into a
// concrete strictly-increasing page sequence within [1, totalPages].
//
// Policy: an omitted start defaults to 1 and an omitted end to the last
// page; a start below 1 is clamped to 1 and an end beyond the document is
// clamped to the last page. A request that is still unsatisfiable after
// clamping (start > end) fails with InvalidRange rather than silently
// returning nothing, so callers are told their request could not be met.
func SelectPages(start, end *int, totalPages int) ([]int, error) {
	if totalPages < 1 {
		return nil, pdferr.New(pdferr.KindCorruptDocument, "document has no pages")
	}

	first := 1
	if start != nil {
		first = *start
	}
	last := totalPages
	if end != nil {
		last = *end
	}

	if first < 1 {
		first = 1
	}
	if last > totalPages {
		last = totalPages
	}

	if first > last {
		return nil, pdferr.New(pdferr.KindInvalidRange,
			"unsatisfiable page range: start %d is beyond end %d (document has %d pages)", first, last, totalPages)
	}

	pages := make([]int, 0, last-first+1)
	for p := first; p <= last; p++ {
		pages = append(pages, p)
	}
	return pages, nil
}
