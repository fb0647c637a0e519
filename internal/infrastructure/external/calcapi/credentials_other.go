//go:build !(js && wasm)

package calcapi

import "net/http"

// includeCredentials is a no-op outside the browser; the client's cookie
// jar carries the session instead.
func includeCredentials(*http.Request) {}
