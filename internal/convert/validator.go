package convert

import (
	"bytes"
	"fmt"

	"github.com/freightlens/freightlens/internal/domain"
)

// MaxPDFBytes caps uploads. Matches the server's multipart limit.
const MaxPDFBytes = 32 << 20

var pdfMagic = []byte("%PDF-")

// ValidatePDF checks that the payload is a plausible PDF before any
// upstream call is made. Content sniffing, not extension checking: the
// payload arrives as bytes over HTTP.
func ValidatePDF(data []byte) error {
	if len(data) == 0 {
		return domain.ValidationError("no file supplied", nil)
	}

	if int64(len(data)) > MaxPDFBytes {
		return domain.ValidationError(fmt.Sprintf("file too large (%d bytes, max %d)", len(data), MaxPDFBytes), nil)
	}

	if !bytes.HasPrefix(data, pdfMagic) {
		return domain.ValidationError("file is not a PDF", nil)
	}

	return nil
}
