// Package compose writes the final cited narrative.
//
// The composer numbers the surviving documents 1-based, hands them to the
// oracle as reference material, and asks for one flowing article whose
// claims cite their sources inline. It does not verify or rewrite the
// citations the oracle emits.
package compose
