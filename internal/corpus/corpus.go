package corpus

// Page is one rasterized page image belonging to a source document.
type Page struct {
	Document string // source document identity (file name within the upload)
	Index    int    // zero-based page index within the corpus
	PNG      []byte
}

// Corpus is the ordered, immutable set of page images for one logical
// document. Order is stable and reproducible from the same source; no
// component mutates a corpus after construction.
type Corpus struct {
	pages []Page
}

// New builds a corpus from pages in their given order, assigning corpus-wide
// indices.
func New(pages []Page) *Corpus {
	owned := make([]Page, len(pages))
	copy(owned, pages)
	for i := range owned {
		owned[i].Index = i
	}
	return &Corpus{pages: owned}
}

// Len returns the number of pages.
func (c *Corpus) Len() int {
	return len(c.pages)
}

// Pages returns the ordered pages. Callers must not modify the returned
// slice contents.
func (c *Corpus) Pages() []Page {
	return c.pages
}
