package natsutil

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
)

var (
	// ErrCAParsingFailed is returned when CA certificate cannot be parsed
	ErrCAParsingFailed = errors.New("failed to parse CA certificate")
	// ErrIncompleteKeyPair is returned when only one of cert_file and key_file is set
	ErrIncompleteKeyPair = errors.New("cert_file and key_file must be set together")
)

// TLSFiles names the PEM files used for a TLS or mTLS connection.
type TLSFiles struct {
	CAFile     string `yaml:"ca_file"`
	CertFile   string `yaml:"cert_file"`
	KeyFile    string `yaml:"key_file"`
	ServerName string `yaml:"server_name"`
}

// IsSet reports whether any TLS material is configured.
func (f *TLSFiles) IsSet() bool {
	return f.CAFile != "" || f.CertFile != "" || f.KeyFile != ""
}

// TLSConfig builds a tls.Config for connecting to NATS. A client key pair
// turns it into mTLS.
func TLSConfig(files *TLSFiles) (*tls.Config, error) {
	conf := &tls.Config{
		ServerName: files.ServerName,
		MinVersion: tls.VersionTLS12,
	}

	if (files.CertFile == "") != (files.KeyFile == "") {
		return nil, ErrIncompleteKeyPair
	}

	if files.CertFile != "" {
		cert, err := tls.LoadX509KeyPair(files.CertFile, files.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load client certificate: %w", err)
		}

		conf.Certificates = []tls.Certificate{cert}
	}

	if files.CAFile != "" {
		caCert, err := os.ReadFile(files.CAFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA certificate: %w", err)
		}

		caPool := x509.NewCertPool()
		if !caPool.AppendCertsFromPEM(caCert) {
			return nil, ErrCAParsingFailed
		}

		conf.RootCAs = caPool
	}

	return conf, nil
}
