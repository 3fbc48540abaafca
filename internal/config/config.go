package config

type Config struct {
	Server   ServerConfig   `json:"server" envPrefix:"SERVER_" validate:"required"`
	Database DatabaseConfig `json:"database" envPrefix:"DB_" validate:"required"`
	Redis    RedisConfig    `json:"redis" envPrefix:"REDIS_" validate:"required"`
	JWT      JWTConfig      `json:"jwt" envPrefix:"JWT_" validate:"required"`
	SignIn   SignInConfig   `json:"sign_in" envPrefix:"SIGNIN_"`
	Log      LogConfig      `json:"log" envPrefix:"LOG_"`
}

type ServerConfig struct {
	Port            string   `json:"port" env:"PORT" validate:"required,numeric"`
	Host            string   `json:"host" env:"HOST" validate:"required,hostname|ip"`
	ReadTimeout     Duration `json:"read_timeout" env:"READ_TIMEOUT" validate:"required,duration_gt0"`
	WriteTimeout    Duration `json:"write_timeout" env:"WRITE_TIMEOUT" validate:"required,duration_gt0"`
	ShutdownTimeout Duration `json:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT" validate:"required,duration_gt0"`
}

type DatabaseConfig struct {
	Host           string `json:"host" env:"HOST" validate:"required,hostname|ip"`
	Port           string `json:"port" env:"PORT" validate:"required,numeric"`
	User           string `json:"user" env:"USER" validate:"required"`
	Password       string `json:"password" env:"PASSWORD" validate:"required"`
	DBName         string `json:"db_name" env:"NAME" validate:"required"`
	SSLMode        string `json:"ssl_mode" env:"SSL_MODE" validate:"required,oneof=disable require verify-ca verify-full"`
	MigrationsPath string `json:"migrations_path" env:"MIGRATIONS_PATH" validate:"required"`
}

// RedisConfig describes the session store connection. Timeout bounds every
// single store round-trip.
type RedisConfig struct {
	StoreURL string   `json:"store_url" env:"STORE_URL" validate:"required,url"`
	Timeout  Duration `json:"timeout" env:"TIMEOUT" validate:"required,duration_gt0"`
}

type JWTConfig struct {
	SecretKey  string   `json:"secret_key" env:"SECRET_KEY" validate:"required"`
	AccessTTL  Duration `json:"access_ttl" env:"ACCESS_TTL" validate:"required,duration_gt0"`
	RefreshTTL Duration `json:"refresh_ttl" env:"REFRESH_TTL" validate:"required,duration_gt0"`
	ClockSkew  Duration `json:"clock_skew" env:"CLOCK_SKEW" validate:"gte=0"`
}

// SignInConfig throttles password guessing. MaxAttempts of 0 disables it.
type SignInConfig struct {
	MaxAttempts int      `json:"max_attempts" env:"MAX_ATTEMPTS" validate:"gte=0"`
	Window      Duration `json:"window" env:"WINDOW" validate:"required,duration_gt0"`
}

type LogConfig struct {
	Level string `json:"level" env:"LEVEL" validate:"omitempty,oneof=debug info warn error"`
}
