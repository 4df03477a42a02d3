package lsp

import (
	"github.com/quill-lang/quill/pkg/diag"
)

const diagnosticSource = "quill"

// publishDiagnostics sends the diagnostics of the document's latest parse.
func (s *Server) publishDiagnostics(uri string) {
	doc := s.documents.Get(uri)
	if doc == nil {
		return
	}

	s.sendNotification("textDocument/publishDiagnostics", &PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: documentDiagnostics(doc),
	})
}

// documentDiagnostics converts a unit's diagnostics in source order.
func documentDiagnostics(doc *Document) []Diagnostic {
	items := doc.Unit.Diagnostics().Sorted()
	out := make([]Diagnostic, 0, len(items))
	for _, d := range items {
		out = append(out, Diagnostic{
			Range:    doc.TokenRange(d.At),
			Severity: severityOf(d.Severity),
			Code:     d.Category.String(),
			Source:   diagnosticSource,
			Message:  d.Message,
		})
	}
	return out
}

func severityOf(s diag.Severity) DiagnosticSeverity {
	switch s {
	case diag.SeverityError:
		return DiagnosticSeverityError
	case diag.SeverityWarning:
		return DiagnosticSeverityWarning
	case diag.SeverityInfo:
		return DiagnosticSeverityInformation
	}
	return DiagnosticSeverityHint
}
