package lsp

import (
	"fmt"

	"github.com/alecthomas/participle/v2"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"loopc/internal/errors"
	"loopc/internal/ir"
)

// ConvertParseError converts a participle parse error into a single LSP
// diagnostic, the loopc counterpart of the teacher's ConvertParseErrors.
func ConvertParseError(err error) []protocol.Diagnostic {
	pe, ok := err.(participle.Error)
	if !ok {
		return []protocol.Diagnostic{{
			Range:    protocol.Range{},
			Severity: ptrSeverity(protocol.DiagnosticSeverityError),
			Source:   ptrString("loopc-parser"),
			Message:  err.Error(),
		}}
	}

	pos := pe.Position()
	return []protocol.Diagnostic{{
		Range: protocol.Range{
			Start: protocol.Position{Line: uint32(pos.Line - 1), Character: uint32(pos.Column - 1)},
			End:   protocol.Position{Line: uint32(pos.Line - 1), Character: uint32(pos.Column + 4)},
		},
		Severity: ptrSeverity(protocol.DiagnosticSeverityError),
		Source:   ptrString("loopc-parser"),
		Message:  pe.Message(),
	}}
}

// ConvertSemanticErrors converts the analyzer's CompilerError values into
// LSP diagnostics, warnings rendered at DiagnosticSeverityWarning.
func ConvertSemanticErrors(errs []errors.CompilerError) []protocol.Diagnostic {
	diagnostics := make([]protocol.Diagnostic, 0, len(errs))
	for _, e := range errs {
		severity := protocol.DiagnosticSeverityError
		if errors.IsWarning(e.Code) {
			severity = protocol.DiagnosticSeverityWarning
		}
		length := e.Length
		if length <= 0 {
			length = 1
		}
		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range: protocol.Range{
				Start: protocol.Position{Line: uint32(e.Position.Line - 1), Character: uint32(e.Position.Column - 1)},
				End:   protocol.Position{Line: uint32(e.Position.Line - 1), Character: uint32(e.Position.Column - 1 + length)},
			},
			Severity: ptrSeverity(severity),
			Source:   ptrString(fmt.Sprintf("loopc-semantic[%s]", e.Code)),
			Message:  e.Message,
		})
	}
	return diagnostics
}

// ConvertStatsNotice reports, as a single informational diagnostic anchored
// at the top of the file, how many loops FormBottomLoops converted. The IR
// does not carry source positions for individual loops, so a per-loop
// location isn't available; the aggregate count is still useful feedback
// while editing.
func ConvertStatsNotice(stats *ir.Stats) []protocol.Diagnostic {
	converted := stats.Count(ir.StatFormBottomLoop)
	if converted == 0 {
		return nil
	}
	return []protocol.Diagnostic{{
		Range: protocol.Range{
			Start: protocol.Position{Line: 0, Character: 0},
			End:   protocol.Position{Line: 0, Character: 1},
		},
		Severity: ptrSeverity(protocol.DiagnosticSeverityInformation),
		Source:   ptrString("loopc-optimizer"),
		Message:  fmt.Sprintf("FormBottomLoops converted %d loop(s) to bottom-tested form", converted),
	}}
}

func ptrSeverity(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity { return &s }

func ptrString(s string) *string { return &s }
