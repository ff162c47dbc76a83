// Package http provides the HTTP client used to fetch cover art.
//
// Some image hosts reject requests from default HTTP clients, so the Client
// in this package identifies itself with a desktop browser User-Agent.
//
// # Basic Usage
//
//	client := http.NewClient()
//
//	// Fetch a thumbnail into memory
//	data, err := client.DownloadBytes(ctx, "https://i.ytimg.com/vi/FGBhQbmPwH8/hqdefault.jpg")
package http
