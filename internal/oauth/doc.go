// Package oauth talks to the provider's OAuth2 endpoints on behalf of a
// registered client.
//
// The Client builds the browser authorization URL and performs the two
// token endpoint exchanges coa needs:
//
//   - authorization_code, after the browser redirect delivered a code;
//     the provider must answer with a refresh token.
//   - refresh_token, whenever a cached access token is stale; the provider
//     must answer with an access token.
//
// Every request carries the client's ID and secret as form fields. A
// response missing the expected token is reported as an errdefs.ServerError
// carrying the provider's "msg". No request is ever retried.
package oauth
