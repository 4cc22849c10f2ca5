package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
)

type Configuration struct {
	WebServer struct {
		Address string `toml:"address" default:":8080" validate:"required"` // Listen address for the web application server e.g. ":8080" or "0.0.0.0:8080"
		TLSDir  string `toml:"tls_dir" default:""`                          // Directory containing a crt and a key file for TLS. Leave empty to use HTTP instead of HTTPS.
	} `toml:"web_server"` // Web server configuration

	Database struct {
		File string `toml:"file" default:"v2vlens.db" validate:"required"` // Path to the MySQL database file
	} `toml:"database"` // Database configuration

	Logs struct {
		WatchDir string   `toml:"watch_dir" default:"./logs_watch_dir"`                                // Optional. Directory to watch for new conversion logs. Whenever modifications are made to this directory, the application will pick up changes automatically.
		Patterns []string `toml:"patterns" default:"[\"**/*.log\"]" validate:"required,dive,required"` // Glob patterns (doublestar syntax) selecting which files in the watch directory are conversion logs
		Debounce int      `toml:"debounce_ms" default:"1500" validate:"required"`                      // Milliseconds to wait after the last write event before ingesting a changed log file
	} `toml:"logs"` // Conversion log ingestion configuration

	Auth struct {
		Username   string `toml:"username" default:"admin" validate:"required"`       // Operator username for the web API
		Password   string `toml:"password" default:"" validate:"required"`            // Operator password for the web API
		JWTSecret  string `toml:"jwt_secret" default:""`                              // Secret used to sign session tokens. Leave empty to generate a random one at startup (sessions won't survive restarts).
		JWTExpires int    `toml:"jwt_expires_hours" default:"12" validate:"required"` // Session token lifetime in hours
	} `toml:"auth"` // Web API authentication configuration

	DriverISO struct {
		Path    string `toml:"path" default:""`         // Optional. Path to a virtio-win driver ISO. When set, file copies recorded during conversions are matched back to driver files on the ISO.
		Testing bool   `toml:"testing" default:"false"` // Enable driver ISO testing mode. When running go tests, the driver ISO indexing suite will be executed.
	} `toml:"driver_iso"` // Windows virtio driver ISO configuration

	Collect struct {
		Enabled       bool   `toml:"enabled" default:"false"`                           // Enable periodic collection of conversion logs from remote conversion hosts
		InventoryFile string `toml:"inventory_file" default:"./hosts.yaml"`             // Path to the YAML inventory listing conversion hosts to collect logs from
		RemoteDir     string `toml:"remote_dir" default:"/var/log/virt-v2v"`            // Directory on the remote hosts where virt-v2v writes its logs
		IntervalMins  int    `toml:"interval_minutes" default:"30" validate:"required"` // Minutes between collection sweeps
		SSHPort       int    `toml:"ssh_port" default:"22" validate:"required"`         // SSH port on the conversion hosts
		PrivateKey    string `toml:"private_key" default:""`                            // Path to the SSH private key used to reach conversion hosts. Leave empty to use per-host passwords from the inventory.
	} `toml:"collect"` // Remote log collection configuration
}

var (
	Config           Configuration
	loadedConfigPath string
)

func LoadedConfigPath() string {
	return loadedConfigPath
}

func loadConfig(path string) (err error) {
	// Apply struct defaults BEFORE loading TOML (so TOML overrides)
	if err = defaults.Set(&Config); err != nil {
		err = fmt.Errorf("set defaults: %w", err)
		return
	}

	// Decode TOML file into struct
	if _, err = toml.DecodeFile(path, &Config); err != nil {
		err = fmt.Errorf("decode toml: %w", err)
		return
	}

	// Validate required fields
	if err = validator.New(validator.WithRequiredStructEnabled()).Struct(Config); err != nil {
		err = fmt.Errorf("validate config: %w", err)
	}

	return
}

// generateDefaultConfig writes a config.toml with all default values filled in.
// It will overwrite any existing file at path.
func generateDefaultConfig(path string) (err error) {
	var cfg Configuration

	// 1. Apply struct defaults
	if err = defaults.Set(&cfg); err != nil {
		err = fmt.Errorf("set defaults: %w", err)
		return
	}

	// NOTE: Do NOT validate here.
	// The default config is allowed to be "invalid" from a required-fields POV;
	// it's just a template for the user to fill in.
	// Validation happens in LoadConfig() when we actually load the file.

	// 2. Create / truncate the file
	var file *os.File
	if file, err = os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644); err != nil {
		err = fmt.Errorf("create config file: %w", err)
		return
	}

	defer file.Close()

	// 3. Encode as TOML
	var encoder *toml.Encoder = toml.NewEncoder(file)
	encoder.Indent = "    "
	if err = encoder.Encode(cfg); err != nil {
		err = fmt.Errorf("encode toml: %w", err)
	}

	return
}

func Init(path string) (err error) {
	if !filepath.IsAbs(path) {
		if path, err = filepath.Abs(path); err != nil {
			return err
		}
	}
	loadedConfigPath = path

	if _, err = os.Stat(path); err != nil {
		if err = generateDefaultConfig(path); err != nil {
			return
		}

		err = fmt.Errorf("no config file found, created a default config at %s. Please fill in the required values and try again", path)
		return
	}

	if err = loadConfig(path); err != nil {
		return err
	}

	return nil
}
