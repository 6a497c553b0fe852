// Package contentstream scans PDF page-description streams into a typed
// operator stream and isolates the drawing fragments this tool cares about.
//
// The scanner is deliberately permissive: content streams in the wild carry
// stray bytes, unbalanced delimiters and vendor quirks, and a failure to
// tokenize one stream must never abort a whole document. Unknown bytes are
// skipped and malformed operands become raw (non-numeric) tokens.
//
// Beyond raw scanning the package provides:
//
//   - Segment: "q <6 operands> cm <body> Q" fragment isolation
//   - Normalize: whitespace-canonical comparison keys for fragment bodies
//   - BaseTransform: the page-level transform accumulated from the stream
//     header before the first q/BT/Do
//   - TextBlocks: BT..ET text block extraction with approximate positions
package contentstream
