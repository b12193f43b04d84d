package server

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"sync"
	"time"

	"atsgenie/internal/config"
	"atsgenie/internal/errors"
	"atsgenie/internal/watcher"
)

// certificateStore holds the serving certificate and reloads it when its files change
type certificateStore struct {
	mu       sync.RWMutex
	cert     *tls.Certificate
	notAfter time.Time
	loadedAt time.Time
	reloads  int
	failures int
	lastErr  string

	certFile string
	keyFile  string
	watcher  *watcher.FileWatcher
	logger   *errors.Logger
}

func newCertificateStore(cfg config.TLSConfig, logger *errors.Logger) (*certificateStore, error) {
	store := &certificateStore{logger: logger}

	if cfg.CertContent != "" && cfg.KeyContent != "" {
		cert, err := tls.X509KeyPair([]byte(cfg.CertContent), []byte(cfg.KeyContent))
		if err != nil {
			return nil, fmt.Errorf("failed to load server cert/key from content: %w", err)
		}
		store.set(&cert)
		return store, nil
	}

	if cfg.CertFile == "" || cfg.KeyFile == "" {
		return nil, fmt.Errorf("TLS certificate and key are required (provide either files or content)")
	}

	store.certFile, store.keyFile = cfg.CertFile, cfg.KeyFile
	if err := store.reload(); err != nil {
		return nil, err
	}
	return store, nil
}

// watch reloads the certificate whenever the key pair files change
func (cs *certificateStore) watch(debounce time.Duration) error {
	if cs.certFile == "" {
		return nil
	}

	fw, err := watcher.NewFileWatcher([]string{cs.certFile, cs.keyFile}, debounce, func([]string) {
		if err := cs.reload(); err != nil {
			cs.logger.LogError(err, "Failed to reload TLS certificates")
			return
		}
		cs.logger.Info("TLS certificates reloaded successfully")
	}, cs.logger)
	if err != nil {
		return err
	}
	if err := fw.Start(); err != nil {
		return err
	}
	cs.mu.Lock()
	cs.watcher = fw
	cs.mu.Unlock()
	return nil
}

func (cs *certificateStore) stop() error {
	if cs == nil || cs.watcher == nil {
		return nil
	}
	return cs.watcher.Stop()
}

func (cs *certificateStore) reload() error {
	cert, err := tls.LoadX509KeyPair(cs.certFile, cs.keyFile)
	if err != nil {
		cs.mu.Lock()
		cs.failures++
		cs.lastErr = err.Error()
		cs.mu.Unlock()
		return fmt.Errorf("failed to load server cert/key from files: %w", err)
	}
	cs.set(&cert)
	return nil
}

func (cs *certificateStore) set(cert *tls.Certificate) {
	notAfter := time.Time{}
	if leaf, err := x509.ParseCertificate(cert.Certificate[0]); err == nil {
		notAfter = leaf.NotAfter
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()
	if cs.cert != nil {
		cs.reloads++
	}
	cs.cert = cert
	cs.notAfter = notAfter
	cs.loadedAt = time.Now()
	cs.lastErr = ""
}

func (cs *certificateStore) getCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	if cs.cert == nil {
		return nil, fmt.Errorf("no server certificate loaded")
	}
	return cs.cert, nil
}

func (cs *certificateStore) status() map[string]any {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	status := map[string]any{
		"loaded_at":       cs.loadedAt.UTC().Format(time.RFC3339),
		"reload_count":    cs.reloads,
		"reload_failures": cs.failures,
		"auto_reload":     cs.watcher != nil,
	}
	if !cs.notAfter.IsZero() {
		status["expires_at"] = cs.notAfter.UTC().Format(time.RFC3339)
		status["expires_in_hours"] = int(time.Until(cs.notAfter).Hours())
	}
	if cs.lastErr != "" {
		status["last_error"] = cs.lastErr
	}
	return status
}
