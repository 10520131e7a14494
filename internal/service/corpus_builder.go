package service

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"sort"
	"strings"

	"baucheck/internal/corpus"
	"baucheck/internal/domain"
	"baucheck/internal/port"
)

// CorpusBuilder turns stored uploads back into image corpora. Rasterization
// is stable per document, so a corpus can be rebuilt from the original bytes
// at any time instead of persisting page images.
type CorpusBuilder struct {
	rasterizer port.Rasterizer
	dpi        int
}

// NewCorpusBuilder creates a CorpusBuilder rendering at the given DPI.
func NewCorpusBuilder(rasterizer port.Rasterizer, dpi int) *CorpusBuilder {
	return &CorpusBuilder{rasterizer: rasterizer, dpi: dpi}
}

// FromZip rasterizes every PDF inside a zip archive into one corpus. Archive
// entries are processed in name order so the page ordering is reproducible.
func (b *CorpusBuilder) FromZip(ctx context.Context, zipBytes []byte) (*corpus.Corpus, error) {
	reader, err := zip.NewReader(bytes.NewReader(zipBytes), int64(len(zipBytes)))
	if err != nil {
		return nil, fmt.Errorf("opening zip archive: %w", err)
	}

	var pdfs []*zip.File
	for _, f := range reader.File {
		if f.FileInfo().IsDir() {
			continue
		}
		name := f.Name
		if strings.HasPrefix(name, "__MACOSX/") || strings.HasPrefix(baseName(name), ".") {
			continue
		}
		if !strings.EqualFold(pathExt(name), ".pdf") {
			log.Printf("corpusBuilder.FromZip: skipping non-PDF entry %s", name)
			continue
		}
		pdfs = append(pdfs, f)
	}
	if len(pdfs) == 0 {
		return nil, domain.ErrEmptyArchive
	}
	sort.Slice(pdfs, func(i, j int) bool { return pdfs[i].Name < pdfs[j].Name })

	var pages []corpus.Page
	for _, f := range pdfs {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("opening zip entry %s: %w", f.Name, err)
		}
		pdfBytes, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("reading zip entry %s: %w", f.Name, err)
		}

		images, err := b.rasterizer.Rasterize(ctx, pdfBytes, b.dpi)
		if err != nil {
			return nil, fmt.Errorf("rasterizing %s: %w", f.Name, err)
		}
		for i, png := range images {
			pages = append(pages, corpus.Page{Document: baseName(f.Name), Index: i, PNG: png})
		}
	}
	if len(pages) == 0 {
		return nil, domain.ErrNoPagesRasterized
	}
	return corpus.New(pages), nil
}

// FromPDF rasterizes a single PDF into a corpus.
func (b *CorpusBuilder) FromPDF(ctx context.Context, name string, pdfBytes []byte) (*corpus.Corpus, error) {
	images, err := b.rasterizer.Rasterize(ctx, pdfBytes, b.dpi)
	if err != nil {
		return nil, fmt.Errorf("rasterizing %s: %w", name, err)
	}
	if len(images) == 0 {
		return nil, domain.ErrNoPagesRasterized
	}

	pages := make([]corpus.Page, 0, len(images))
	for i, png := range images {
		pages = append(pages, corpus.Page{Document: name, Index: i, PNG: png})
	}
	return corpus.New(pages), nil
}

func baseName(p string) string {
	if idx := strings.LastIndexByte(p, '/'); idx >= 0 {
		return p[idx+1:]
	}
	return p
}

func pathExt(p string) string {
	if idx := strings.LastIndexByte(p, '.'); idx >= 0 {
		return p[idx:]
	}
	return ""
}
