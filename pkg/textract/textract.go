// Package textract turns uploaded or pasted bytes into plain text sources.
package textract

import (
	"bytes"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/harrisonrobin/taskplan/pkg/extract"
)

const PastedSource = "pasted"

var pdfMagic = []byte("%PDF-")

// FromBytes returns the best-effort text of a file. PDFs go through the PDF
// reader, everything else is decoded as UTF-8 with invalid bytes dropped.
// Unreadable input yields "".
func FromBytes(name string, data []byte) string {
	if IsPDF(name, data) {
		return PDFText(data)
	}
	return strings.ToValidUTF8(string(data), "")
}

func IsPDF(name string, data []byte) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf") || bytes.HasPrefix(data, pdfMagic)
}

// PDFText extracts the plain text of every page. The pdf package panics on
// some malformed files, so panics are recovered as "".
func PDFText(data []byte) (text string) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("Warning: could not read pdf: %v", rec)
			text = ""
		}
	}()
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		log.Printf("Warning: could not open pdf: %v", err)
		return ""
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		log.Printf("Warning: could not extract pdf text: %v", err)
		return ""
	}
	out, err := io.ReadAll(plain)
	if err != nil {
		log.Printf("Warning: could not extract pdf text: %v", err)
		return ""
	}
	return string(out)
}

// File is one uploaded input.
type File struct {
	Name string
	Data []byte
}

// Collect builds the ordered source list: pasted text first, then each file.
// Blank inputs are skipped.
func Collect(pasted string, files []File) []extract.Source {
	var sources []extract.Source
	if strings.TrimSpace(pasted) != "" {
		sources = append(sources, extract.Source{Name: PastedSource, Text: pasted})
	}
	for _, f := range files {
		text := FromBytes(f.Name, f.Data)
		if strings.TrimSpace(text) == "" {
			continue
		}
		sources = append(sources, extract.Source{Name: filepath.Base(f.Name), Text: text})
	}
	return sources
}

// ReadFiles loads paths from disk; "-" reads r (normally stdin).
func ReadFiles(paths []string, stdin io.Reader) ([]File, error) {
	files := make([]File, 0, len(paths))
	for _, p := range paths {
		var data []byte
		var err error
		if p == "-" {
			data, err = io.ReadAll(stdin)
			p = "stdin"
		} else {
			data, err = os.ReadFile(p)
		}
		if err != nil {
			return nil, err
		}
		files = append(files, File{Name: p, Data: data})
	}
	return files, nil
}
