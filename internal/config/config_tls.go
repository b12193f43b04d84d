package config

import "fmt"

// pemSource describes one piece of TLS material that may come from a file or inline content
type pemSource struct {
	name    string
	file    string
	content string
}

func (s pemSource) present() bool {
	return s.file != "" || s.content != ""
}

func (s pemSource) ambiguous() bool {
	return s.file != "" && s.content != ""
}

// ValidateTLSConfig validates the TLS configuration
func (c *Config) ValidateTLSConfig() error {
	tls := c.Server.TLS

	if err := validateTLSMode(tls); err != nil {
		return err
	}
	return validateTLSVersion(tls.MinVersion)
}

// validateTLSMode validates the TLS mode and the material it requires
func validateTLSMode(tls TLSConfig) error {
	cert := pemSource{"cert", tls.CertFile, tls.CertContent}
	key := pemSource{"key", tls.KeyFile, tls.KeyContent}
	ca := pemSource{"ca", tls.CAFile, tls.CAContent}

	var required []pemSource
	switch tls.Mode {
	case "disabled", "":
		return nil
	case "server":
		required = []pemSource{cert, key}
	case "mutual":
		required = []pemSource{cert, key, ca}
		if err := validateClientAuthPolicy(tls.ClientAuthPolicy); err != nil {
			return err
		}
	default:
		return fmt.Errorf("invalid TLS mode: %s (must be 'disabled', 'server', or 'mutual')", tls.Mode)
	}

	for _, src := range required {
		if !src.present() {
			return fmt.Errorf("TLS %s is required for %s mode (provide %sFile or %sContent)", src.name, tls.Mode, src.name, src.name)
		}
		if src.ambiguous() {
			return fmt.Errorf("cannot specify both %sFile and %sContent - choose one", src.name, src.name)
		}
	}
	return nil
}

// validateClientAuthPolicy validates the client authentication policy
func validateClientAuthPolicy(policy string) error {
	switch policy {
	case "require", "request", "verify", "":
		return nil
	default:
		return fmt.Errorf("invalid clientAuthPolicy: %s (must be 'require', 'request', or 'verify')", policy)
	}
}

// validateTLSVersion validates the minimum TLS version
func validateTLSVersion(version string) error {
	switch version {
	case "", "1.2", "1.3":
		return nil
	default:
		return fmt.Errorf("invalid TLS minVersion: %s (must be '1.2' or '1.3')", version)
	}
}
