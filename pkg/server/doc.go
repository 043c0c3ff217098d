// Package server exposes the pipeline operations over HTTP.
//
// # Endpoints
//
// Every operation reads the document from the request body and takes its
// options from the query string:
//
//	POST /v1/normalize?in=yaml&out=json&indent=2&strict=true
//	POST /v1/convert?out=yaml
//	POST /v1/inspect
//	POST /v1/graph?format=svg&detailed=true
//	GET  /healthz
//	GET  /version
//	GET  /metrics
//
// When in is omitted it is taken from the Content-Type header, falling back
// to JSON. Successful document responses carry X-Cycler-Cache (hit or miss)
// and X-Cycler-Input-Hash headers.
//
// # Errors
//
// Failures are returned as a JSON object with the error code and a
// message, with the HTTP status derived from the code:
//
//	{"code":"DANGLING_REFERENCE","message":"reference $[\"x\"] does not resolve: ..."}
//
// Every response carries an X-Request-ID header, echoed from the request
// when present.
package server
