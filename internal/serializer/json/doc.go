// Package json implements the façade's own UTF-8-correct JSON codec
// over the data tree, deliberately not wrapping encoding/json: the
// source's grammar tolerates 5-6 hex digit \uXXXX escapes, bare
// Infinity/-Infinity/NaN non-finite doubles, // and /* */ comments and
// unquoted barewords, none of which the standard library's decoder
// accepts, and the wire contract requires the former two on emit too.
package json
