package http

import (
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/gradecalc/gradeform/pkg/logger"
)

// newCalcProxy forwards requests to the calculation server unchanged,
// cookies and X-Request-ID included. When the upstream cannot be reached
// the page gets a 502 with a plain-text body, which it treats as a
// communication failure rather than as an error reported by the server.
func newCalcProxy(upstream *url.URL, log *logger.Logger) http.Handler {
	log = log.With(logger.Component("calc_proxy"), logger.String("upstream", upstream.String()))

	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(upstream)
			pr.SetXForwarded()
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			log.Error("calculation server unreachable",
				logger.Err(err),
				logger.String("path", r.URL.Path),
				logger.String(logger.RequestIDKey, getRequestID(r.Context())),
			)
			http.Error(w, "calculation server unavailable", http.StatusBadGateway)
		},
	}
}
