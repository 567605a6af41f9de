package pdf

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/boergens/typeset/charmap"
	"github.com/boergens/typeset/docmodel"
	gofont "github.com/boergens/typeset/font"
	"github.com/boergens/typeset/textlayout"
)

// BuildPDF lays out doc and renders it to a complete PDF 1.7 byte
// stream: every font actually used is rewritten down to the glyphs the
// document references and embedded once, charcter codes are assigned
// per font in first-use order, and each laid-out page becomes one PDF
// page with a single content stream.
func BuildPDF(doc *docmodel.Document) ([]byte, error) {
	pages, err := textlayout.LayoutDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("pdf: build: %w", err)
	}

	charMaps := make(map[*gofont.Font]*charmap.CharMap)
	var fonts []*gofont.Font // first-use order
	for _, page := range pages {
		for _, line := range page.Lines {
			for _, chunk := range line.Chunks {
				f := chunk.Style.Font
				if f == nil {
					continue
				}
				cm, ok := charMaps[f]
				if !ok {
					cm = charmap.New()
					charMaps[f] = cm
					fonts = append(fonts, f)
				}
				for _, r := range chunk.Text {
					if _, err := cm.Insert(r); err != nil {
						return nil, fmt.Errorf("pdf: build: %w", err)
					}
				}
			}
		}
	}

	sort.SliceStable(fonts, func(i, j int) bool {
		return fonts[i].Info.Family < fonts[j].Info.Family
	})

	pdfDoc := NewDocument(V1_7)
	fontRefs := make(map[*gofont.Font]FontRef, len(fonts))
	resourceFonts := make(map[Name]Ref, len(fonts))
	for i, f := range fonts {
		cm := charMaps[f]
		rewritten, err := gofont.Rewrite(f, cm.Table())
		if err != nil {
			return nil, fmt.Errorf("pdf: build: rewriting font %q: %w", f.Info.Family, err)
		}
		ref, err := EmbedFont(pdfDoc.Writer(), f, rewritten, cm)
		if err != nil {
			return nil, fmt.Errorf("pdf: build: embedding font %q: %w", f.Info.Family, err)
		}
		name := Name(fmt.Sprintf("F%d", i+1))
		fontRefs[f] = FontRef{Name: name, CharMap: cm}
		resourceFonts[name] = ref
	}

	for _, page := range pages {
		pb := pdfDoc.AddPage(doc.PageWidth, doc.PageHeight)
		for name, ref := range resourceFonts {
			pb.Resources().AddFont(name, ref)
		}

		cs := NewContentStream()
		cs.BeginText()
		for _, line := range page.Lines {
			if err := WriteLine(cs, line, fontRefs); err != nil {
				return nil, fmt.Errorf("pdf: build: %w", err)
			}
		}
		cs.EndText()

		contentRef := pdfDoc.AddContentStream(cs.Bytes())
		pb.SetContents(contentRef)
		pb.Finish()
	}

	var buf bytes.Buffer
	if err := pdfDoc.Finish(&buf); err != nil {
		return nil, fmt.Errorf("pdf: build: %w", err)
	}
	return buf.Bytes(), nil
}
