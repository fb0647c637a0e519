//go:build js && wasm

package calcapi

import "net/http"

// includeCredentials asks the wasm fetch transport to send the page's
// session cookie along with the request.
func includeCredentials(req *http.Request) {
	req.Header.Set("js.fetch:credentials", "include")
}
