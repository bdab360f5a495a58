package domain

// Key holds custody of one address's keypair. PrivateKey and Secret are
// plaintext only while Encrypted is false; the flag flips to true exactly
// once and never back, after which both fields are ciphertext.
type Key struct {
	Address    string
	PublicKey  string
	PrivateKey string
	Secret     string
	Encrypted  bool
}
