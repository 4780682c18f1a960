// Package keystore loads the elliptic-curve session key pair from a
// password-protected PKCS#12 container.
//
// Loading happens once at process start; the returned [KeyPair] is immutable
// and shared read-only for the process lifetime.
package keystore

import (
	"crypto/ecdsa"
	"fmt"
	"os"

	"software.sslmate.com/src/go-pkcs12"
)

// LoadError wraps any failure while reading or decoding a key container:
// missing file, wrong password, corrupt format, or a key of the wrong type.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("keystore: failed to load %q: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// KeyPair is the EC signing/verification pair extracted from the container.
type KeyPair struct {
	Private *ecdsa.PrivateKey
	Public  *ecdsa.PublicKey
}

// Load reads the PKCS#12 container at path and extracts its EC key pair.
// The container is expected to hold a single key entry together with its
// certificate; the alias is recorded for operator-facing errors only, since
// PKCS#12 friendly names are not addressable through the decoder.
func Load(path, password, alias string) (*KeyPair, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	key, cert, err := pkcs12.Decode(data, password)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	private, ok := key.(*ecdsa.PrivateKey)
	if !ok {
		return nil, &LoadError{Path: path, Err: fmt.Errorf("entry %q is not an EC private key (%T)", alias, key)}
	}

	public, ok := cert.PublicKey.(*ecdsa.PublicKey)
	if !ok {
		return nil, &LoadError{Path: path, Err: fmt.Errorf("certificate for %q is not an EC public key (%T)", alias, cert.PublicKey)}
	}

	return &KeyPair{Private: private, Public: public}, nil
}
