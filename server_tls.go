//go:build !tinygo

package touchpad

import (
	"golang.org/x/crypto/acme/autocert"
)

// ServeTLS serves HTTPS for host with a Let's Encrypt certificate
func (s *Server) ServeTLS(host string) error {
	return s.Serve(autocert.NewListener(host))
}
