package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const (
	// DatadirKey is the local data directory holding the wallet index and,
	// by default, the wallet stores
	DatadirKey = "DATA_DIR_PATH"
	// LogLevelKey are the different logging levels. For reference on the values https://godoc.org/github.com/sirupsen/logrus#Level
	LogLevelKey = "LOG_LEVEL"
	// NetworkKey is the ledger network to use. Either "LIVE" or "TEST"
	NetworkKey = "NETWORK"
	// LedgerEndpointKey is the websocket endpoint of the ledger server
	LedgerEndpointKey = "LEDGER_ENDPOINT"
	// FlushIntervalKey is the interval in milliseconds between background
	// flushes of an open wallet store
	FlushIntervalKey = "FLUSH_INTERVAL"
	// ScanLimitKey is the number of account lookups per second the discovery
	// engine is allowed to make against the ledger server
	ScanLimitKey = "SCAN_LIMIT"
	// WalletUUIDKey is the identifier of the wallet to open at startup. When
	// unset the daemon starts in first-run mode and waits for a Create
	WalletUUIDKey = "WALLET_UUID"

	// NetworkLive ...
	NetworkLive = "LIVE"
	// NetworkTest ...
	NetworkTest = "TEST"
)

var vip *viper.Viper
var defaultDatadir = btcutil.AppDataDir("cscwalletd", false)

func init() {
	vip = viper.New()
	vip.SetEnvPrefix("CSC")
	vip.AutomaticEnv()

	vip.SetDefault(DatadirKey, defaultDatadir)
	vip.SetDefault(LogLevelKey, 4)
	vip.SetDefault(NetworkKey, NetworkLive)
	vip.SetDefault(LedgerEndpointKey, "wss://ws01.casinocoin.org:4443")
	vip.SetDefault(FlushIntervalKey, 5000)
	vip.SetDefault(ScanLimitKey, 10)

	if err := validate(); err != nil {
		log.WithError(err).Panic("error while validating config")
	}

	if err := initDatadir(); err != nil {
		log.WithError(err).Panic("error while creating datadir")
	}
}

//GetString ...
func GetString(key string) string {
	return vip.GetString(key)
}

//GetInt ...
func GetInt(key string) int {
	return vip.GetInt(key)
}

//GetFloat ...
func GetFloat(key string) float64 {
	return vip.GetFloat64(key)
}

//GetDuration ...
func GetDuration(key string) time.Duration {
	return vip.GetDuration(key)
}

//GetBool ...
func GetBool(key string) bool {
	return vip.GetBool(key)
}

func GetDatadir() string {
	return GetString(DatadirKey)
}

// GetFlushInterval returns the store flush interval as a duration.
func GetFlushInterval() time.Duration {
	return time.Duration(GetInt(FlushIntervalKey)) * time.Millisecond
}

// Set a value for the given key
func Set(key string, value interface{}) {
	vip.Set(key, value)
}

// IsSet returns whether the give key is set
func IsSet(key string) bool {
	return vip.IsSet(key)
}

func validate() error {
	datadir := GetString(DatadirKey)
	if len(datadir) <= 0 {
		return fmt.Errorf("datadir must not be null")
	}

	networkName := GetString(NetworkKey)
	if networkName != NetworkLive && networkName != NetworkTest {
		return fmt.Errorf(
			"network must be either '%s' or '%s'", NetworkLive, NetworkTest,
		)
	}

	if GetString(LedgerEndpointKey) == "" {
		return fmt.Errorf("ledger endpoint must not be null")
	}

	if GetInt(ScanLimitKey) <= 0 {
		return fmt.Errorf("scan limit must be a positive number of lookups per second")
	}

	return nil
}

func initDatadir() error {
	datadir := GetDatadir()
	if err := makeDirectoryIfNotExists(datadir); err != nil {
		return err
	}
	return nil
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}

// WalletDbDir returns the directory of a wallet store under the default
// datadir.
func WalletDbDir(walletUUID string) string {
	return filepath.Join(GetDatadir(), walletUUID)
}
