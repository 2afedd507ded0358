// Package http implements the report preview server: a small chi router
// serving a generated report directory over HTTP.
//
// # Routes
//
//	GET /                               the report HTML page
//	GET /report/*                       files inside the report directory
//	GET /api/health                     liveness JSON
//	GET /api/report/meta                run metadata from the data exports
//	GET /api/report/data/{module}       raw merged module data (json exports)
//
// The JSON endpoints read the files the data exporter wrote; nothing is
// recomputed at serve time. Requests resolving outside the report directory
// are answered with 404.
//
// # Error Handling
//
// API errors follow RFC 7807 Problem Details:
//
//	{
//	    "type": "/errors/not-found",
//	    "title": "Resource Not Found",
//	    "status": 404,
//	    "detail": "read glimpseqc_data.json: file does not exist",
//	    "instance": "/api/report/meta"
//	}
//
// # Testing
//
// Handlers are tested with httptest against a report directory written into
// t.TempDir().
package http
