// Package pdf implements text extraction and page rendering for PDF
// documents.
//
// Text extraction uses a pure-Go PDF parser. Page rendering shells out
// to pdftoppm (poppler-utils) since no maintained pure-Go rasterizer
// exists; environments without poppler should wire a different
// providers.Imager.
package pdf
