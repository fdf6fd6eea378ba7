package client

import (
	"crypto/tls"
	"crypto/x509"
	"net/http"
	"os"

	"github.com/pkg/errors"
)

// getTransport returns a plain transport unless all of the ca,
// certificate and key files are provided, in which case mutual tls is
// configured
func getTransport(sslCaFile, sslCrtFile, sslKeyFile string) (*http.Transport, error) {
	if sslCaFile == "" || sslCrtFile == "" || sslKeyFile == "" {
		return &http.Transport{}, nil
	}
	caCert, err := os.ReadFile(sslCaFile)
	if err != nil {
		return nil, errors.Wrap(err, "unable to read ca file")
	}
	caCertPool := x509.NewCertPool()
	if !caCertPool.AppendCertsFromPEM(caCert) {
		return nil, errors.Errorf("no certificates found in %s", sslCaFile)
	}
	certificate, err := tls.LoadX509KeyPair(sslCrtFile, sslKeyFile)
	if err != nil {
		return nil, errors.Wrap(err, "unable to load key pair")
	}
	return &http.Transport{
		TLSClientConfig: &tls.Config{
			// TLS versions below 1.2 are considered insecure
			// see https://www.rfc-editor.org/rfc/rfc7525.txt for details
			MinVersion:   tls.VersionTLS12,
			RootCAs:      caCertPool,
			Certificates: []tls.Certificate{certificate},
		},
	}, nil
}
