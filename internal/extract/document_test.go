package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	pngMagic  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	jpegMagic = []byte("\xff\xd8\xff\xe0\x00\x10JFIF")
	pdfMagic  = []byte("%PDF-1.4\n%garbage")
)

func TestDetectMediaType(t *testing.T) {
	cases := []struct {
		name, declared string
		data           []byte
		want           string
		kind           Kind
	}{
		{"scan.bin", "", pngMagic, "image/png", KindImage},
		{"photo", "application/octet-stream", jpegMagic, "image/jpeg", KindImage},
		{"report", "", pdfMagic, "application/pdf", KindPDF},
		{"rx.jpg", "", []byte("not really"), "image/jpeg", KindImage},
		{"rx", "image/jpg; charset=binary", []byte("??"), "image/jpeg", KindImage},
		{"notes.txt", "text/plain", []byte("hello"), "text/plain", KindUnknown},
		{"blob", "", nil, "application/octet-stream", KindUnknown},
	}
	for _, tc := range cases {
		doc := NewDocument(tc.name, tc.declared, tc.data)
		assert.Equal(t, tc.want, doc.MediaType, tc.name)
		assert.Equal(t, tc.kind, doc.Kind(), tc.name)
	}
}
