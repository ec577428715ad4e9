package pdfvalidation

import (
	"bytes"
	"strings"
	"testing"
)

func TestValidatePDFBytesRejectsNonPDF(t *testing.T) {
	result, err := ValidatePDFBytes([]byte("not a pdf at all"), KRSLimits)
	if err != nil {
		t.Fatalf("ValidatePDFBytes returned error: %v", err)
	}
	if result.Valid {
		t.Error("non-PDF content passed validation")
	}
	if !strings.Contains(result.Error, "PDF header") {
		t.Errorf("unexpected error message: %q", result.Error)
	}
}

func TestValidatePDFBytesRejectsOversizedFile(t *testing.T) {
	content := make([]byte, (KRSLimits.MaxFileSizeMB+1)*1024*1024)
	copy(content, []byte("%PDF-1.7"))

	result, err := ValidatePDFBytes(content, KRSLimits)
	if err != nil {
		t.Fatalf("ValidatePDFBytes returned error: %v", err)
	}
	if result.Valid {
		t.Error("oversized file passed validation")
	}
	if !strings.Contains(result.Error, "size exceeds") {
		t.Errorf("unexpected error message: %q", result.Error)
	}
}

func TestValidatePDFBytesRejectsCorruptPDF(t *testing.T) {
	result, err := ValidatePDFBytes([]byte("%PDF-1.7\ngarbage body with no xref"), TranscriptLimits)
	if err != nil {
		t.Fatalf("ValidatePDFBytes returned error: %v", err)
	}
	if result.Valid {
		t.Error("corrupt PDF passed validation")
	}
}

func TestSanitizePDFTrimsTrailingGarbage(t *testing.T) {
	content := []byte("%PDF-1.7\nbody\n%%EOF\n\x00\x00extra bytes")
	sanitized := sanitizePDF(content)

	if !bytes.HasSuffix(sanitized, []byte("%%EOF\n")) {
		t.Errorf("trailing garbage not trimmed: %q", sanitized)
	}

	clean := []byte("%PDF-1.7\nbody\n%%EOF")
	if got := sanitizePDF(clean); !bytes.Equal(got, clean) {
		t.Errorf("clean content was modified: %q", got)
	}
}
