package document

import (
	"bytes"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	_ "image/jpeg"
	_ "image/png"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/mcptools/mcp-pdf-reader/internal/pdferr"
)

// RawImage is an embedded raster pulled from a page, still in the encoding
// pdfcpu wrote it with.
type RawImage struct {
	Data     []byte
	MimeType string
	Width    int
	Height   int
}

var mimeByExt = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
	".webp": "image/webp",
}

// PageImages extracts the embedded raster images of a page (1-indexed) in
// document order. A page with no embedded images returns an empty slice.
func (d *Document) PageImages(pageNum int) ([]RawImage, error) {
	tempDir, err := os.MkdirTemp("", "pdf_images_*")
	if err != nil {
		return nil, pdferr.Wrap(pdferr.KindInternal, err, "failed to create scratch directory")
	}
	defer os.RemoveAll(tempDir)

	selection := []string{strconv.Itoa(pageNum)}
	if err := api.ExtractImagesFile(d.path, tempDir, selection, d.conf); err != nil {
		return nil, pdferr.Wrap(pdferr.KindInternal, err, "failed to extract images from page %d", pageNum)
	}

	entries, err := os.ReadDir(tempDir)
	if err != nil {
		return nil, pdferr.Wrap(pdferr.KindInternal, err, "failed to list extracted images")
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := mimeByExt[strings.ToLower(filepath.Ext(entry.Name()))]; ok {
			names = append(names, entry.Name())
		}
	}
	// pdfcpu names extracted files <base>_<page>_Im<n>.<ext>. Sort by the
	// trailing image object number; plain lexical order would put Im10
	// before Im2.
	sortImageFiles(names)

	return readImages(tempDir, names)
}

// sortImageFiles orders pdfcpu output files by their image object number so
// artifact indices follow document order. Names without a parsable number
// fall back to lexical order among themselves.
func sortImageFiles(names []string) {
	sort.SliceStable(names, func(i, j int) bool {
		ni, iok := imageNumber(names[i])
		nj, jok := imageNumber(names[j])
		if iok && jok {
			return ni < nj
		}
		if iok != jok {
			return iok
		}
		return names[i] < names[j]
	})
}

// imageNumber pulls <n> out of a <base>_<page>_Im<n>.<ext> file name.
func imageNumber(name string) (int, bool) {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	idx := strings.LastIndex(base, "_Im")
	if idx < 0 {
		return 0, false
	}
	n, err := strconv.Atoi(base[idx+len("_Im"):])
	if err != nil {
		return 0, false
	}
	return n, true
}

func readImages(tempDir string, names []string) ([]RawImage, error) {
	images := make([]RawImage, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(tempDir, name))
		if err != nil {
			return nil, pdferr.Wrap(pdferr.KindInternal, err, "failed to read extracted image")
		}
		img := RawImage{
			Data:     data,
			MimeType: mimeByExt[strings.ToLower(filepath.Ext(name))],
		}
		if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
			img.Width = cfg.Width
			img.Height = cfg.Height
		}
		images = append(images, img)
	}
	return images, nil
}
