package config

import "time"

// BotConfig holds runtime configuration for the deploy bot.
type BotConfig struct {
	Environment string
	LogLevel    string
	MetricsAddr string

	DiscordToken string
	GuildID      string
	AdminRoleID  string

	MercadoPagoToken string
	SquareCloudKey   string

	SettingsPath string
	TempDir      string
	TicketPrefix string

	PollInterval    time.Duration
	PaymentTimeout  time.Duration
	DownloadTimeout time.Duration
	MaxArtifactSize int64

	PaymentLogChannel string
	DeployLogChannel  string
	AdminLogChannel   string
	ActionLogChannel  string
}

// LoadBotConfig constructs a BotConfig from environment variables.
func LoadBotConfig() BotConfig {
	return BotConfig{
		Environment: GetString("APP_ENV", "development"),
		LogLevel:    GetString("LOG_LEVEL", "info"),
		MetricsAddr: GetString("METRICS_ADDR", ":9190"),

		DiscordToken: GetString("DISCORD_TOKEN", ""),
		GuildID:      GetString("GUILD_ID", ""),
		AdminRoleID:  GetString("ADMIN_ROLE_ID", ""),

		MercadoPagoToken: GetString("MERCADO_PAGO_ACCESS_TOKEN", ""),
		SquareCloudKey:   GetString("SQUARECLOUD_API_KEY", ""),

		SettingsPath: GetString("SETTINGS_PATH", "data/admin-settings.json"),
		TempDir:      GetString("TEMP_DIR", "temp"),
		TicketPrefix: GetString("TICKET_PREFIX", "square-"),

		PollInterval:    time.Duration(GetInt("PAYMENT_POLL_SECONDS", 5)) * time.Second,
		PaymentTimeout:  time.Duration(GetInt("PAYMENT_TIMEOUT_MINUTES", 5)) * time.Minute,
		DownloadTimeout: time.Duration(GetInt("DOWNLOAD_TIMEOUT_SECONDS", 60)) * time.Second,
		MaxArtifactSize: int64(GetInt("MAX_ARTIFACT_MB", 100)) * 1024 * 1024,

		PaymentLogChannel: GetString("SC_PAYMENTS_LOGS", ""),
		DeployLogChannel:  GetString("SC_DEPLOY_LOGS", ""),
		AdminLogChannel:   GetString("SC_ADMIN_LOGS", ""),
		ActionLogChannel:  GetString("SC_ACTIONS_LOGS", ""),
	}
}
