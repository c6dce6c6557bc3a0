// Package google manages the OAuth credential used for all Google Drive
// access.
//
// The package owns two files: credentials.json (the installed-app OAuth
// client secret, read-only input) and token.json (the persisted access and
// refresh token, the only durable state of the server).
//
// Credential lifecycle:
//   - token.json is parsed at the start of each client acquisition; a
//     malformed file or one whose scope set does not cover the read-only
//     Drive scope is treated as absent
//   - an expired token with a refresh token is refreshed in place and the
//     refreshed token is persisted before a client is returned
//   - with no usable credential, an interactive authorization-code flow runs
//     against a local loopback listener and blocks until the user completes
//     consent in a browser
//
// Example usage:
//
//	mgr := google.NewManager("", "", slog.Default())
//	httpClient, err := mgr.Client(ctx)
//	if err != nil {
//	    return err
//	}
//	svc, err := drive.NewService(ctx, option.WithHTTPClient(httpClient))
package google
