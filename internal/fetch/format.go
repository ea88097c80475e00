package fetch

import (
	"bytes"
	"mime"
	"strings"

	"eduparser/internal/scraper"
)

var (
	zipMagic = []byte("PK\x03\x04")
	// compound file binary header used by legacy .xls workbooks.
	cfbMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// DetectFormat sniffs the document format from its leading bytes. servers
// often label workbooks as text/html or octet-stream, so the declared
// content type is not trusted.
func DetectFormat(body []byte) scraper.Format {
	switch {
	case bytes.HasPrefix(body, zipMagic):
		return scraper.FormatXLSX
	case bytes.HasPrefix(body, cfbMagic):
		return scraper.FormatXLS
	}
	return scraper.FormatHTML
}

func isSpreadsheetType(mediaType string) bool {
	switch mediaType {
	case "application/vnd.ms-excel",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"application/x-msexcel",
		"application/x-ms-excel",
		"application/x-excel",
		"application/zip",
		"application/octet-stream":
		return true
	}
	return false
}

// checkContentType warns when the declared content type disagrees with the
// sniffed format. the document is still used as sniffed.
func (c *Client) checkContentType(doc scraper.Document) {
	if doc.ContentType == "" {
		return
	}
	mediaType, _, err := mime.ParseMediaType(doc.ContentType)
	if err != nil {
		c.tel.ReportWarning(report_fetch_content_type, doc.URL, doc.ContentType, err)
		return
	}
	mediaType = strings.ToLower(mediaType)

	declaredSpreadsheet := isSpreadsheetType(mediaType)
	if doc.Format.IsSpreadsheet() && !declaredSpreadsheet {
		c.tel.ReportWarning(report_fetch_content_type, doc.URL, doc.ContentType, doc.Format)
	}
	if doc.Format == scraper.FormatHTML && declaredSpreadsheet && mediaType != "application/octet-stream" {
		c.tel.ReportWarning(report_fetch_content_type, doc.URL, doc.ContentType, doc.Format)
	}
}
