// Package middleware holds configuration for gin middleware shared by every route.
package middleware

import "github.com/gin-contrib/secure"

// SecurityConfig returns the response-header policy for a JSON API.
// HSTS is only sent on TLS requests; host checks and HTTPS redirects are left to the proxy.
func SecurityConfig() secure.Config {
	return secure.Config{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		IENoOpen:              true,
		ContentSecurityPolicy: "default-src 'none'; frame-ancestors 'none'",
		ReferrerPolicy:        "no-referrer",
		STSSeconds:            15552000,
		STSIncludeSubdomains:  true,
	}
}
