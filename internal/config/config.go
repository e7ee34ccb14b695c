package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config represents the application configuration structure.
// It contains settings for the environment, HTTP server, database connection,
// authentication, background workers and the simulation defaults.
type Config struct {
	// Environment specifies the current running environment (development, production, etc.)
	Environment string `env:"ENVIRONMENT" env-default:"development" yaml:"environment"`
	// LogLevel overrides the environment's default log level when set.
	LogLevel string `env:"LOG_LEVEL" env-default:"" yaml:"logLevel"`

	// HTTP contains all HTTP server related configurations
	HTTP struct {
		// Addr is the address and port the HTTP server will listen on
		Addr string `env:"HTTP_ADDR" env-default:":8080" yaml:"addr"`
		// ReadTimeout is the maximum duration for reading the entire request, including the body
		ReadTimeout time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"1m" yaml:"readTimeout"`
		// ReadHeaderTimeout is the amount of time allowed to read request headers
		ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" env-default:"10s" yaml:"readHeaderTimeout"`
		// WriteTimeout is the maximum duration before timing out writes of the response
		WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"2m" yaml:"writeTimeout"`
		// IdleTimeout is the maximum amount of time to wait for the next request when keep-alives are enabled
		IdleTimeout time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"2m" yaml:"idleTimeout"`
		// RequestTimeout is the maximum time allowed for processing a single request
		RequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT" env-default:"10s" yaml:"requestTimeout"`
		// MaxHeaderBytes controls the maximum number of bytes the server will read parsing the request header
		MaxHeaderBytes int `env:"HTTP_MAX_HEADER_BYTES" env-default:"0" yaml:"maxHeaderBytes"`
		// MetricsPath defines the URL path where metrics are exposed
		MetricsPath string `env:"HTTP_METRICS_PATH" env-default:"/metrics" yaml:"metricsPath"`
		// AllowedOrigins lists the origins browsers may call the API from; "*" allows any
		AllowedOrigins []string `env:"HTTP_ALLOWED_ORIGINS" env-default:"*" env-separator:"," yaml:"allowedOrigins"`
	} `yaml:"http"`

	// Database contains all database connection related configurations
	Database struct {
		// Username for database authentication
		Username string `env:"DATABASE_USERNAME" env-default:"myuser" yaml:"username"`
		// Password for database authentication
		Password string `env:"DATABASE_PASSWORD" env-default:"mypassword" yaml:"password"`
		// Host is the database server hostname or IP address
		Host string `env:"DATABASE_HOST" env-default:"localhost" yaml:"host"`
		// Port is the database server port number
		Port int `env:"DATABASE_PORT" env-default:"5432" yaml:"port"`
		// SslMode defines the SSL mode for the database connection
		SslMode string `env:"DATABASE_SSL_MODE" env-default:"disable" yaml:"sslMode"`
		// DatabaseName is the name of the database to connect to
		DatabaseName string `env:"DATABASE_NAME" env-default:"wastepolicy" yaml:"name"`
		// MaxOpenConnections limits the number of open connections to the database
		MaxOpenConnections int `env:"DATABASE_MAX_OPEN_CONNECTIONS" env-default:"10" yaml:"maxOpenConnections"`
		// MaxIdleConnections limits the number of connections in the idle connection pool
		MaxIdleConnections int `env:"DATABASE_MAX_IDLE_CONNECTIONS" env-default:"8" yaml:"maxIdleConnections"`
		// ConnMaxLifetime is the maximum amount of time a connection may be reused
		ConnMaxLifetime time.Duration `env:"DATABASE_CONNECTION_MAX_LIFETIME" env-default:"3m" yaml:"connMaxLifetime"`
		// ConnMaxIdleTime is the maximum amount of time a connection may be idle
		ConnMaxIdleTime time.Duration `env:"DATABASE_CONNECTION_MAX_IDLE_TIME" env-default:"3m" yaml:"connMaxIdleTime"`
	} `yaml:"database"`

	// JWT holds the RS256 key pair. The public key verifies API tokens, the
	// private key is only needed by the jwt command.
	JWT struct {
		PublicKey  string `env:"JWT_PUBLIC_KEY"  yaml:"publicKey"`
		PrivateKey string `env:"JWT_PRIVATE_KEY" yaml:"privateKey"`
		// Issuer is stamped on tokens by the jwt command and, when set,
		// required on tokens accepted by the API.
		Issuer string `env:"JWT_ISSUER" env-default:"wastepolicy" yaml:"issuer"`
	} `yaml:"jwt"`

	// Worker configures the background run executor.
	Worker struct {
		// MaxWorkers is the number of runs River fetches concurrently.
		MaxWorkers int `env:"WORKER_MAX_WORKERS" env-default:"8" yaml:"maxWorkers"`
		// CPUBudget is the total weight of runs executing at once. Zero means GOMAXPROCS.
		CPUBudget int `env:"WORKER_CPU_BUDGET" env-default:"0" yaml:"cpuBudget"`
		// MaxAttempts is the number of times a failing run is retried.
		MaxAttempts int `env:"WORKER_MAX_ATTEMPTS" env-default:"3" yaml:"maxAttempts"`
		// JobTimeout bounds a single run execution.
		JobTimeout time.Duration `env:"WORKER_JOB_TIMEOUT" env-default:"1h" yaml:"jobTimeout"`
	} `yaml:"worker"`

	// Simulation holds defaults and limits applied to run parameters.
	Simulation struct {
		// ProfilesPath optionally points to a YAML file of barangay profiles.
		ProfilesPath    string `env:"SIMULATION_PROFILES_PATH"     yaml:"profilesPath"`
		Seed            int64  `env:"SIMULATION_SEED"              env-default:"42"    yaml:"seed"`
		Ticks           int    `env:"SIMULATION_TICKS"             env-default:"365"   yaml:"ticks"`
		MaxTicks        int    `env:"SIMULATION_MAX_TICKS"         env-default:"3650"  yaml:"maxTicks"`
		TicksPerQuarter int    `env:"SIMULATION_TICKS_PER_QUARTER" env-default:"90"    yaml:"ticksPerQuarter"`
		Quarters        int    `env:"SIMULATION_QUARTERS"          env-default:"12"    yaml:"quarters"`
		MaxQuarters     int    `env:"SIMULATION_MAX_QUARTERS"      env-default:"40"    yaml:"maxQuarters"`
	} `yaml:"simulation"`

	// Training holds the Q-learning hyper-parameters.
	Training struct {
		Episodes     int     `env:"TRAINING_EPISODES"      env-default:"200"  yaml:"episodes"`
		MaxEpisodes  int     `env:"TRAINING_MAX_EPISODES"  env-default:"5000" yaml:"maxEpisodes"`
		Alpha        float64 `env:"TRAINING_ALPHA"         env-default:"0.1"  yaml:"alpha"`
		Gamma        float64 `env:"TRAINING_GAMMA"         env-default:"0.95" yaml:"gamma"`
		Epsilon      float64 `env:"TRAINING_EPSILON"       env-default:"1"    yaml:"epsilon"`
		EpsilonDecay float64 `env:"TRAINING_EPSILON_DECAY" env-default:"0.99" yaml:"epsilonDecay"`
		EpsilonMin   float64 `env:"TRAINING_EPSILON_MIN"   env-default:"0.05" yaml:"epsilonMin"`
		EvalEvery    int     `env:"TRAINING_EVAL_EVERY"    env-default:"10"   yaml:"evalEvery"`
		EvalEpisodes int     `env:"TRAINING_EVAL_EPISODES" env-default:"1"    yaml:"evalEpisodes"`
	} `yaml:"training"`

	// Calibration holds the genetic search defaults.
	Calibration struct {
		Generations    int `env:"CALIBRATION_GENERATIONS"     env-default:"8"   yaml:"generations"`
		Population     int `env:"CALIBRATION_POPULATION"      env-default:"15"  yaml:"population"`
		MaxGenerations int `env:"CALIBRATION_MAX_GENERATIONS" env-default:"50"  yaml:"maxGenerations"`
		MaxPopulation  int `env:"CALIBRATION_MAX_POPULATION"  env-default:"100" yaml:"maxPopulation"`
	} `yaml:"calibration"`

	// Sensitivity holds the Sobol analysis defaults.
	Sensitivity struct {
		Samples    int `env:"SENSITIVITY_SAMPLES"     env-default:"64"  yaml:"samples"`
		MaxSamples int `env:"SENSITIVITY_MAX_SAMPLES" env-default:"512" yaml:"maxSamples"`
	} `yaml:"sensitivity"`

	// GracefulShutdownTimeout is the maximum duration to wait for ongoing requests to complete during shutdown
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_TIMEOUT" env-default:"10s" yaml:"gracefulShutdownTimeout"` //nolint: lll
}

// Load receives the path for yaml config file and returns a filled Config struct.
func Load(configPath string) (*Config, error) {
	var cfg Config
	err := cleanenv.ReadConfig(configPath, &cfg)
	if err != nil {
		return nil, fmt.Errorf("could not read config: %w", err)
	}

	return &cfg, nil
}

// Default returns a Config filled from defaults and the environment only.
func Default() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("could not read environment: %w", err)
	}

	return &cfg, nil
}
