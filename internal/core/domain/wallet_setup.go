package domain

// WalletSetup carries the in-progress creation or recovery parameters between
// the setup flow and wallet creation. It is transient: once the wallet is
// created the recovery words must not outlive it.
type WalletSetup struct {
	UserEmail             string
	UserPassword          string
	RecoveryMnemonicWords []string
	TestNetwork           bool
	WalletUUID            string
	WalletLocation        string
	BackupLocation        string
	WalletPasswordHash    string
	EncryptedMnemonicHash string
}

// WalletDefinition is one entry of the available-wallets index: enough to
// locate and open a wallet file without loading it.
type WalletDefinition struct {
	WalletUUID   string `json:"walletUUID"`
	CreationDate int64  `json:"creationDate"`
	Location     string `json:"location"`
	Network      string `json:"network"`
	UserEmail    string `json:"userEmail"`
	PasswordHash string `json:"passwordHash"`
	MnemonicHash string `json:"mnemonicHash"`
}
