package providers

// Page holds the extracted text of a single document page.
type Page struct {
	// Number is the 1-based page number.
	Number int `json:"number"`

	// Text is the plain text of the page.
	Text string `json:"text"`
}

// PageImage holds a rendered document page.
type PageImage struct {
	// Page is the 1-based page number the image was rendered from.
	Page int `json:"page"`

	// Format is the image encoding, e.g. "png".
	Format string `json:"format"`

	// Data is the encoded image bytes.
	Data []byte `json:"-"`
}

// Element is a structural element identified on a document page by
// advanced document extraction.
type Element struct {
	// Type classifies the element, e.g. "paragraph" or "table".
	Type string `json:"type"`

	// Page is the 1-based page number the element appears on.
	Page int `json:"page"`

	// Text is the element's textual content.
	Text string `json:"text"`

	// Confidence is the extractor's confidence in the classification,
	// in [0.0, 1.0].
	Confidence float64 `json:"confidence"`
}

// ElementTypes lists the element classifications the ADE service is
// asked to produce. Extractors may return other types; consumers should
// treat unknown types as opaque.
var ElementTypes = []string{
	"title",
	"section_header",
	"paragraph",
	"list_item",
	"table",
	"figure",
	"caption",
	"footnote",
	"page_header",
	"page_footer",
}
