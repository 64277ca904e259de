// Package publish uploads the finished video to YouTube.
//
// Credentials are an OAuth2 client ID, client secret and a long-lived refresh
// token (see "pinpoint auth youtube"). BuildMetadata derives the title,
// description, tags and visibility from the puzzle date and configuration.
// Upload failures are returned as *Error carrying the HTTP status and response
// body reported by the API.
package publish
