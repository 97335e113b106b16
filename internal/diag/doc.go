// Package diag defines the finding model shared by the analyzer, the outline
// projector, the language server and the CLI renderers.
//
// # Data model
//
// Finding is the central record. It contains:
//
//   - Range – zero-based line/character span to underline. Characters are
//     counted in UTF-16 code units so ranges can be handed to editors as is.
//   - Severity – SevInfo for a plain sighting, SevError for a conflict.
//   - Code – always RequirementMention; code actions key on it.
//   - Message – short human text.
//   - Source – the requirement ID the finding is about. The outline uses it
//     as the node label.
//   - Conflict – NoMismatch, DuplicateID or DuplicateTitle.
//   - Related – for conflicts, the location of the occurrence the finding
//     clashes with, plus a relation label ("duplicated id", "duplicated
//     title").
//
// Severity is derived from Conflict: a finding is an error exactly when its
// conflict kind is not NoMismatch. ReportBuilder enforces this, so producers
// should emit through it rather than building Finding values by hand.
//
// # Emitting findings
//
// Passes use a Reporter to decouple emission from storage:
//
//	diag.ReportConflict(r, diag.DuplicateID, rng, id, msg).
//		WithRelated(loc, "duplicated id").
//		Emit()
//
// BagReporter appends into a Bag, which keeps emission order. Order matters:
// consumers render findings exactly as they were produced.
//
// # Storage
//
// Collection is the per-document store. Each analysis pass replaces the list
// of a document wholesale; closing a document deletes its entry. Nothing is
// merged across passes.
package diag
