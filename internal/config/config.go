package config

import (
	"math/big"
	"os"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

const (
	day = uint64(24 * 60 * 60)

	VerifierRegistry = "registry"
	VerifierEVM      = "evm"
)

// Config holds all configuration values
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Blockchain BlockchainConfig
	Scheduler  SchedulerConfig
	Keeper     KeeperConfig
	Ledger     LedgerConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig holds database configuration. Driver "sqlite" treats DBName
// as the database file path.
type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// URL returns the database connection URL
func (c DatabaseConfig) URL() string {
	if c.Driver == "sqlite" {
		return c.DBName
	}
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + strconv.Itoa(c.Port) + "/" + c.DBName + "?sslmode=" + c.SSLMode
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL          string
	Password     string
	EventChannel string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret       string
	AccessExpiry time.Duration
}

// BlockchainConfig selects how contract addresses are verified.
type BlockchainConfig struct {
	RPCURL           string
	ContractVerifier string
}

// SchedulerConfig seeds the persisted scheduler settings on first start.
type SchedulerConfig struct {
	Address            common.Address
	Governor           common.Address
	ExecutionInterval  uint64
	ExpirationInterval uint64
	MaxGasPrice        *big.Int
}

// KeeperConfig drives the in-process keeper poller.
type KeeperConfig struct {
	Enabled         bool
	Address         common.Address
	TreasuryAddress common.Address
	PollSpec        string
	GasPerExecution uint64
	DefaultGasPrice *big.Int
}

// LedgerConfig holds the account allowed to pull ledger backend credit.
type LedgerConfig struct {
	Collector common.Address
}

// Load loads configuration from environment variables
func Load() *Config {
	governor := getEnvAsAddress("SCHEDULER_GOVERNOR", common.HexToAddress("0x0000000000000000000000000000000000000a01"))
	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Env:  getEnv("SERVER_ENV", "development"),
		},
		Database: DatabaseConfig{
			Driver:   getEnv("DB_DRIVER", "postgres"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "recurpay"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:          getEnv("REDIS_URL", "redis://localhost:6379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			EventChannel: getEnv("REDIS_EVENT_CHANNEL", "recurpay:events"),
		},
		JWT: JWTConfig{
			Secret:       getEnv("JWT_SECRET", "change-this-in-production"),
			AccessExpiry: getEnvAsDuration("JWT_ACCESS_EXPIRY", 24*time.Hour),
		},
		Blockchain: BlockchainConfig{
			RPCURL:           getEnv("EVM_RPC_URL", "https://sepolia.base.org"),
			ContractVerifier: getEnv("CONTRACT_VERIFIER", VerifierRegistry),
		},
		Scheduler: SchedulerConfig{
			Address:            getEnvAsAddress("SCHEDULER_ADDRESS", common.HexToAddress("0x00000000000000000000000000000000000005c0")),
			Governor:           governor,
			ExecutionInterval:  getEnvAsUint("SCHEDULER_EXECUTION_INTERVAL", 30*day),
			ExpirationInterval: getEnvAsUint("SCHEDULER_EXPIRATION_INTERVAL", 45*day),
			MaxGasPrice:        getEnvAsAmount("SCHEDULER_MAX_GAS_PRICE", big.NewInt(100_000_000_000)),
		},
		Keeper: KeeperConfig{
			Enabled:         getEnvAsBool("KEEPER_ENABLED", true),
			Address:         getEnvAsAddress("KEEPER_ADDRESS", common.HexToAddress("0x0000000000000000000000000000000000000a02")),
			TreasuryAddress: getEnvAsAddress("KEEPER_TREASURY_ADDRESS", common.HexToAddress("0x00000000000000000000000000000000000005c1")),
			PollSpec:        getEnv("KEEPER_POLL_SPEC", "@every 30s"),
			GasPerExecution: getEnvAsUint("KEEPER_GAS_PER_EXECUTION", 150_000),
			DefaultGasPrice: getEnvAsAmount("KEEPER_DEFAULT_GAS_PRICE", big.NewInt(1_000_000_000)),
		},
		Ledger: LedgerConfig{
			Collector: getEnvAsAddress("LEDGER_COLLECTOR", governor),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsUint(key string, defaultValue uint64) uint64 {
	if value := os.Getenv(key); value != "" {
		if v, err := strconv.ParseUint(value, 10, 64); err == nil {
			return v
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if v, err := strconv.ParseBool(value); err == nil {
			return v
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsAddress(key string, defaultValue common.Address) common.Address {
	if value := os.Getenv(key); common.IsHexAddress(value) {
		return common.HexToAddress(value)
	}
	return defaultValue
}

func getEnvAsAmount(key string, defaultValue *big.Int) *big.Int {
	if value := os.Getenv(key); value != "" {
		if v, ok := new(big.Int).SetString(value, 10); ok && v.Sign() >= 0 {
			return v
		}
	}
	return defaultValue
}
