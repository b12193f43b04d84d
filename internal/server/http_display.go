package server

import "fmt"

// displayServerInfo shows server configuration information
func (s *Server) displayServerInfo(addr string, tlsEnabled bool) {
	scheme := "http"
	if tlsEnabled {
		scheme = "https"
	}
	fmt.Fprintf(s.out, "Serving on %s://%s\n", scheme, addr)
	if tlsEnabled {
		fmt.Fprintf(s.out, "TLS mode: %s\n", s.TLSConfig.Mode)
	}

	s.displayEndpoints()
	s.displayAuthInfo()
	s.displayRequestLimitInfo()
	s.displayRateLimitInfo()
}

// displayEndpoints shows available API endpoints
func (s *Server) displayEndpoints() {
	fmt.Fprintln(s.out, "Available endpoints:")
	fmt.Fprintln(s.out, "  GET  /health  - Health check")
	fmt.Fprintln(s.out, "  GET  /stats   - Server statistics")
	fmt.Fprintln(s.out, "  POST /match   - Score a resume against a job description")
	fmt.Fprintln(s.out, "  POST /batch   - Rank job descriptions for a resume")
	if s.MCP != nil {
		fmt.Fprintln(s.out, "  *    /mcp     - Model Context Protocol (streamable HTTP)")
	}
}

// displayAuthInfo shows authentication configuration
func (s *Server) displayAuthInfo() {
	if len(s.APIKeys) > 0 {
		fmt.Fprintf(s.out, "API authentication: ENABLED (%d keys configured)\n", len(s.APIKeys))
		return
	}
	fmt.Fprintln(s.out, "API authentication: DISABLED (no API keys configured)")
}

// displayRequestLimitInfo shows request size limit configuration
func (s *Server) displayRequestLimitInfo() {
	if s.MaxRequestSize > 0 {
		fmt.Fprintf(s.out, "Request size limit: %d bytes (%.1f MB)\n", s.MaxRequestSize, float64(s.MaxRequestSize)/(1024*1024))
		return
	}
	fmt.Fprintln(s.out, "Request size limit: DISABLED")
}

// displayRateLimitInfo shows rate limiting configuration
func (s *Server) displayRateLimitInfo() {
	if s.RateLimiter == nil {
		fmt.Fprintln(s.out, "Rate limiting: DISABLED")
		return
	}
	fmt.Fprintf(s.out, "Rate limiting: ENABLED (%d requests/min, burst: %d)\n",
		s.RateLimit.RequestsPerMin, s.RateLimit.BurstCapacity)
	if s.RateLimit.ByAPIKey {
		fmt.Fprintln(s.out, "  - Per API key rate limiting enabled")
	}
	if s.RateLimit.ByIP {
		fmt.Fprintln(s.out, "  - Per IP address rate limiting enabled")
	}
}
