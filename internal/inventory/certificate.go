package inventory

import (
	"crypto/x509"
	"encoding/pem"
	"errors"
)

const (
	unknownField  = "UNKNOWN"
	managedIssuer = "Google"
)

var errNoPEMBlock = errors.New("no PEM certificate block")

type certificateDetails struct {
	issuer     string
	subject    string
	commonName string
}

// parsePEMCertificate reads the leaf certificate of a PEM chain.
func parsePEMCertificate(data string) (certificateDetails, error) {
	rest := []byte(data)
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			return certificateDetails{}, errNoPEMBlock
		}

		if block.Type != "CERTIFICATE" {
			continue
		}

		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return certificateDetails{}, err
		}

		return certificateDetails{
			issuer:     cert.Issuer.String(),
			subject:    cert.Subject.String(),
			commonName: cert.Subject.CommonName,
		}, nil
	}
}
