package extract

import (
	"net/http"
	"path/filepath"
	"strings"
)

type Kind string

const (
	KindImage   Kind = "image"
	KindPDF     Kind = "pdf"
	KindUnknown Kind = "unknown"
)

var imageTypes = map[string]struct{}{
	"image/png":  {},
	"image/jpeg": {},
	"image/webp": {},
}

var extTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
	".pdf":  "application/pdf",
}

// Document is an uploaded file held in memory for one request.
type Document struct {
	Name      string
	MediaType string
	Data      []byte
}

// NewDocument sniffs the media type from the bytes, falling back to the
// declared type and then the file extension when sniffing is inconclusive.
func NewDocument(name, declared string, data []byte) Document {
	return Document{Name: name, MediaType: DetectMediaType(name, declared, data), Data: data}
}

func DetectMediaType(name, declared string, data []byte) string {
	if len(data) > 0 {
		sniffed := baseType(http.DetectContentType(data))
		if sniffed == "application/pdf" {
			return sniffed
		}
		if _, ok := imageTypes[sniffed]; ok {
			return sniffed
		}
	}
	if d := baseType(declared); d == "application/pdf" {
		return d
	} else if _, ok := imageTypes[d]; ok {
		return d
	}
	if t, ok := extTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return t
	}
	if d := baseType(declared); d != "" {
		return d
	}
	return "application/octet-stream"
}

func (d Document) Kind() Kind {
	if d.MediaType == "application/pdf" {
		return KindPDF
	}
	if _, ok := imageTypes[d.MediaType]; ok {
		return KindImage
	}
	return KindUnknown
}

func baseType(mt string) string {
	mt = strings.ToLower(strings.TrimSpace(mt))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	if mt == "image/jpg" {
		return "image/jpeg"
	}
	return mt
}
