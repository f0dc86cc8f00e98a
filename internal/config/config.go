package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"  validate:"required"`
	Storage StorageConfig `mapstructure:"storage" validate:"required"`
	Auth    AuthConfig    `mapstructure:"auth"    validate:"required"`
	SMTP    SMTPConfig    `mapstructure:"smtp"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// StorageConfig locates the flat data files. Only the directory is
// configurable; the file names inside it are fixed.
type StorageConfig struct {
	Dir string `mapstructure:"dir" validate:"required"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret                   string `mapstructure:"jwt_secret"                     validate:"required,min=32"`
	TokenLifetimeMinutes        int    `mapstructure:"token_lifetime_minutes"         validate:"required,gt=0"`
	RefreshTokenLifetimeMinutes int    `mapstructure:"refresh_token_lifetime_minutes" validate:"required,gt=0"`
	BcryptCost                  int    `mapstructure:"bcrypt_cost"                    validate:"omitempty,gte=4,lte=31"`
}

// SMTPConfig contains the notification transport settings. All fields are
// optional: without a host the mailer records notifications locally instead
// of sending them.
type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"     validate:"omitempty,gt=0,lt=65536"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"     validate:"omitempty,email"`
}
