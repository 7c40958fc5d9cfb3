// Package common provides shared types and constants used across the
// warpcrawl client-server communication layer.
package common

// Environment variable names for configuration.
const (
	// UserNameEnv and PasswordEnv hold the vol.moe credentials.
	UserNameEnv = "VOL_MOE_USER_NAME"
	PasswordEnv = "VOL_MOE_PASSWORD"

	// DownloadDirEnv is the root directory for downloaded chapters.
	DownloadDirEnv = "VOL_MOE_DOWNLOAD_DIR"

	// CookiesDirEnv is the directory holding one cookie file per site.
	CookiesDirEnv = "WARPCRAWL_COOKIES_DIR"

	// CookiesPersistenceEnv turns cookie persistence on or off.
	CookiesPersistenceEnv = "WARPCRAWL_COOKIES_PERSISTENCE"

	// CookieKeyEnv is a hex AES key used to seal the cookie files.
	CookieKeyEnv = "WARPCRAWL_COOKIE_KEY"

	// CookiePassphraseEnv derives the sealing key from a passphrase.
	CookiePassphraseEnv = "WARPCRAWL_COOKIE_PASSPHRASE"

	// RPCSecretEnv is the bearer token of the JSON-RPC endpoint.
	RPCSecretEnv = "WARPCRAWL_RPC_SECRET"

	// PortEnv is the TCP port of the JSON-RPC endpoint.
	PortEnv = "WARPCRAWL_PORT"

	// DebugEnv is the environment variable to enable debug logging.
	DebugEnv = "WARPCRAWL_DEBUG"
)
