// Package authflow obtains a client's first tokens through the OAuth2
// authorization code flow.
//
// Coordinator.Start resolves the client, binds a local callback server on
// the fixed redirect port, opens the authorize URL in the browser and hands
// back a Flow. The first request to the callback path decides the outcome:
//
//	AwaitingRedirect -> Exchanging -> Complete
//	                 \            \-> Failed
//	                  \-> Failed (no code)
//
// The port doubles as the lock that keeps a second concurrent login from
// starting: its bind fails with errdefs.PortInUseError.
//
// There is no timeout on the redirect. Callers that give up call Flow.Close
// to release the port.
package authflow
