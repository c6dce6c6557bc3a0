// Package drive provides a thin client for the Google Drive API operations
// this server exposes as tools.
//
// The client wraps three read-only operations:
//   - Listing files visible to the credential
//   - Searching files by name or full text, excluding trashed files
//   - Downloading a PDF's content into memory, gated on its MIME type
//
// OAuth Authentication:
// The client is constructed from an authenticated HTTP client produced by the
// google package; the OAuth scope is restricted to read-only Drive access.
//
// Failures are classified with sentinel errors (ErrNotPDF, ErrTooLarge) so
// the tool boundary can render them as fixed human-readable messages; all
// other errors carry the Drive API's native message wrapped.
//
// Example usage:
//
//	client, err := drive.NewClient(ctx, httpClient, logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	files, err := client.ListFiles(ctx, 50)
package drive
