package oauth

import (
	"net/http"
	"strings"
)

// NormalizeSlashes collapses runs of consecutive slashes in the request
// path before routing. Some OAuth clients join the advertised base URL
// and a well-known suffix naively and produce paths like
// "//.well-known/oauth-protected-resource", which would otherwise miss
// every route.
func NormalizeSlashes(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "//") {
			r.URL.Path = collapseSlashes(r.URL.Path)
		}
		next.ServeHTTP(w, r)
	})
}

func collapseSlashes(p string) string {
	var b strings.Builder
	b.Grow(len(p))
	var prevSlash bool
	for i := 0; i < len(p); i++ {
		c := p[i]
		if c == '/' {
			if prevSlash {
				continue
			}
			prevSlash = true
		} else {
			prevSlash = false
		}
		b.WriteByte(c)
	}
	return b.String()
}
