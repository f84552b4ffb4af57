// Package extract turns PDF documents into rows of string cells.
//
// Each page is searched for tables first. Ruled tables are found from the
// rectangles drawn on the page; whitespace-aligned tables are found from
// the positions of text segments. A page without tables contributes one
// single-cell row per non-blank text line. Rows from all pages are
// concatenated in page order.
//
// Extraction is deterministic for a given input and never returns a
// partial result: any failure, including a panic inside the PDF reader,
// surfaces as an *ExtractionError.
//
// Basic usage:
//
//	x := extract.New(extract.DefaultOptions())
//	res, err := x.Extract(ctx, data)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.TotalRows, res.TotalPages)
package extract
