// Package core provides the business logic for filling DOCX templates with
// spreadsheet data.
//
// This package has no UI dependencies and knows nothing about file formats.
// Spreadsheets arrive through a [SheetDecoder] as rows of strings and templates
// through a [DocumentCodec] as a [Document]; web handlers, the CLI and tests
// all drive the same [Service].
//
// # Pipeline
//
// A generation ([Service.Generate]) runs these stages in order:
//
//  1. Decode the sheet into rows.
//  2. Normalize headers with [NormalizeKey] and rename known variants to
//     canonical fields with the [Vocabulary] ("Nº Portaria" -> NUMERO_PORTARIA).
//  3. Build the placeholder [Context] from the first record plus operator
//     globals, globals winning.
//  4. Sort records by the [OrderKey] of the order column ("45/2024" sorts as
//     (2024, 45)).
//  5. Replace {{KEY}} placeholders everywhere in the template, including
//     tables, headers and footers. Unknown keys stay literal.
//  6. Optionally replace the marker paragraph ("INSERIR CAMPO PORTARIAS") with
//     one block per record.
//
// Any failure aborts the run with a [*StageError] and no document bytes.
//
// # Errors
//
// Input problems are typed so callers can react to them: [*EmptyInputError],
// [*MarkerNotFoundError], [*NoOrderableColumnError] and [*DecodeError].
// [MapError] turns any of them into a [UserMessage] with a support code.
package core
