package extraction

import "fmt"

// Source identifies how a page's text was obtained.
type Source string

const (
	SourceNative Source = "native"
	SourceOCR    Source = "ocr"
)

// PageError is the per-page failure slot under the partial-failure policy:
// it marks a single page that could not be processed without aborting its
// siblings.
type PageError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// PageResult is the outcome of extracting one page. Created per call, never
// persisted. Text may legitimately be empty (a blank page is not a fault).
type PageResult struct {
	PageNumber int        `json:"page_number"`
	Text       string     `json:"text"`
	Source     Source     `json:"source"`
	Error      *PageError `json:"error,omitempty"`
}

// ImageArtifact is an embedded raster re-encoded for transport. Owned by the
// response; nothing is cached across calls.
type ImageArtifact struct {
	ID          string `json:"image_id"`
	PageNumber  int    `json:"page_number"`
	IndexOnPage int    `json:"index_on_page"`
	MimeType    string `json:"mime_type"`
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
	SizeBytes   int    `json:"size_bytes"`
	Data        string `json:"base64"`
}

// artifactID builds the stable identifier for an image on a page.
func artifactID(pageNum, index int) string {
	return fmt.Sprintf("p%d_img%d", pageNum, index)
}
