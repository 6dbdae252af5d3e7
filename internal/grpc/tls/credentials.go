// Package tls builds transport credentials for the gRPC health listener.
package tls

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"

	"google.golang.org/grpc/credentials"
)

var ErrMissingCA = errors.New("grpc tls: client certificate verification needs ca_file")

// ServerOptions mirrors the grpc.tls configuration block.
type ServerOptions struct {
	CertFile   string
	KeyFile    string
	CAFile     string
	ClientAuth string
}

// ServerCredentials loads the listener key pair and, when client
// certificates are requested, the CA pool used to check them.
func ServerCredentials(opts ServerOptions) (credentials.TransportCredentials, error) {
	clientAuth, err := ParseClientAuthType(opts.ClientAuth)
	if err != nil {
		return nil, err
	}
	if clientAuth != tls.NoClientCert && opts.CAFile == "" {
		return nil, ErrMissingCA
	}

	cert, err := tls.LoadX509KeyPair(opts.CertFile, opts.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("grpc tls: load key pair %s: %w", opts.CertFile, err)
	}

	config := &tls.Config{
		Certificates: []tls.Certificate{cert},
		ClientAuth:   clientAuth,
		MinVersion:   tls.VersionTLS12,
	}

	if opts.CAFile != "" {
		pem, err := os.ReadFile(opts.CAFile)
		if err != nil {
			return nil, fmt.Errorf("grpc tls: read ca_file: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("grpc tls: no certificates in %s", opts.CAFile)
		}
		config.ClientCAs = pool
	}

	return credentials.NewTLS(config), nil
}

// ParseClientAuthType maps the client_auth setting. "request" asks for a
// certificate without requiring one; a presented certificate is still
// verified against ca_file.
func ParseClientAuthType(authType string) (tls.ClientAuthType, error) {
	switch authType {
	case "", "none":
		return tls.NoClientCert, nil
	case "request":
		return tls.VerifyClientCertIfGiven, nil
	case "require":
		return tls.RequireAndVerifyClientCert, nil
	}
	return tls.NoClientCert, fmt.Errorf("grpc tls: client_auth %q is not one of none, request, require", authType)
}
