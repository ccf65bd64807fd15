// Package dataset reads URL records from delimited text files and writes
// categorization results.
//
// A Reader decodes its input from a named character encoding, skips a
// configurable number of leading lines, takes the next row as the header and
// checks that every field holding URLs is present before any record is
// returned. Records are then produced one at a time so arbitrarily large
// inputs stream through a categorization run.
//
// Results go to a Sink. Three formats are supported:
//
//   - csv: the input columns followed by one "<field>_<segment>" column per
//     categorized field and segment, in the input encoding
//   - jsonl: one JSON object per input record
//   - sqlite: one row per field and segment in the categorizations table
//
// Only '"' is supported as quote character.
package dataset
