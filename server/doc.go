// Package server exposes the query pipeline over HTTP.
//
// POST /query takes {query, top_k} plus an optional ?mode= parameter and
// returns the generated report with its references. A failed run degrades
// to a fixed fallback payload rather than an error status, so the response
// shape is the same for every outcome.
package server
