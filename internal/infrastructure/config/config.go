package config

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"

	sharedConfig "github.com/chamberirc/chamberbnc/internal/shared/config"
	"github.com/chamberirc/chamberbnc/internal/shared/utils"
)

// DefaultRelayChannel is used when relay.channels is absent.
const DefaultRelayChannel = "#bnc.im"

// ConfigPathEnv names the environment variable holding an explicit config file path.
const ConfigPathEnv = "CHAMBERBNC_CONFIG"

type Config struct {
	Bot          sharedConfig.BotConfig                `mapstructure:"bot"`
	Admin        sharedConfig.AdminConfig              `mapstructure:"admin"`
	Servers      []sharedConfig.NetworkConfig          `mapstructure:"servers" validate:"required,min=1,dive"`
	ZNCServers   []sharedConfig.ProvisioningNodeConfig `mapstructure:"zncservers" validate:"dive"`
	Relay        sharedConfig.RelayConfig              `mapstructure:"relay"`
	Storage      sharedConfig.StorageConfig            `mapstructure:"storage"`
	Mail         sharedConfig.MailConfig               `mapstructure:"mail"`
	NotifyMail   []string                              `mapstructure:"notify_mail" validate:"dive,email"`
	Provisioning sharedConfig.ProvisioningConfig       `mapstructure:"provisioning"`
	RateLimit    sharedConfig.RateLimitConfig          `mapstructure:"ratelimit"`
	Reminders    sharedConfig.ReminderConfig           `mapstructure:"reminders"`
	HTTP         sharedConfig.HTTPConfig               `mapstructure:"http"`
	Logger       sharedConfig.LoggerConfig             `mapstructure:"logger"`
	Timezone     string                                `mapstructure:"timezone"`
}

// ProvisioningNode looks a node up by name, case-insensitively.
func (c *Config) ProvisioningNode(name string) (*sharedConfig.ProvisioningNodeConfig, bool) {
	for i := range c.ZNCServers {
		if strings.EqualFold(c.ZNCServers[i].Name, name) {
			return &c.ZNCServers[i], true
		}
	}
	return nil, false
}

// Network looks a chat network up by name, case-insensitively.
func (c *Config) Network(name string) (*sharedConfig.NetworkConfig, bool) {
	for i := range c.Servers {
		if strings.EqualFold(c.Servers[i].Name, name) {
			return &c.Servers[i], true
		}
	}
	return nil, false
}

// ChannelsFor returns the channels the bot joins on the named network; the
// admin network additionally joins the admin channel.
func (c *Config) ChannelsFor(network string) []string {
	channels := append([]string(nil), c.Bot.Channels...)
	if strings.EqualFold(c.Admin.Network, network) {
		channels = append(channels, c.Admin.Channel)
	}
	return sharedConfig.NormalizeChannels(channels)
}

var (
	appConfig   *Config
	appConfigMu sync.RWMutex
)

// Load reads the configuration file, applies environment overrides, then
// validates and normalises the result. An empty path searches the
// CHAMBERBNC_CONFIG variable and the default config directories.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	if path == "" {
		path = os.Getenv(ConfigPathEnv)
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("./config")
		v.AddConfigPath("./configs")
		v.AddConfigPath("../configs")
	}

	v.SetEnvPrefix("CHAMBERBNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := finalize(&config, v.IsSet("relay.channels")); err != nil {
		return nil, err
	}

	appConfigMu.Lock()
	appConfig = &config
	appConfigMu.Unlock()

	return &config, nil
}

// Get returns the loaded configuration
func Get() *Config {
	appConfigMu.RLock()
	defer appConfigMu.RUnlock()
	return appConfig
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("bot.command_prefix", "!")

	v.SetDefault("storage.request_db", "data/requests.csv")
	v.SetDefault("storage.ticket_db", "data/tickets.csv")
	v.SetDefault("storage.audit_log", "log/ticket-events.log")

	v.SetDefault("mail.port", 587)
	v.SetDefault("mail.from_name", "ChamberBNC")
	v.SetDefault("mail.helo_domain", "localhost")

	v.SetDefault("provisioning.settle_delay", 5*time.Second)

	v.SetDefault("ratelimit.backend", "memory")
	v.SetDefault("ratelimit.requests_per_hour", 5)
	v.SetDefault("ratelimit.redis.addr", "localhost:6379")

	v.SetDefault("reminders.pending_interval", 24*time.Hour)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output_path", "stdout")

	v.SetDefault("timezone", "UTC")
}

// finalize validates the decoded configuration and normalises channel names.
func finalize(c *Config, relayConfigured bool) error {
	if err := utils.ValidateStruct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := uniqueNames(c); err != nil {
		return err
	}
	if _, ok := c.Network(c.Admin.Network); !ok {
		return fmt.Errorf("invalid configuration: admin.network %q is not one of the configured servers", c.Admin.Network)
	}

	c.Bot.Channels = sharedConfig.NormalizeChannels(c.Bot.Channels)
	if len(c.Bot.Channels) == 0 {
		return fmt.Errorf("invalid configuration: bot.channels must include at least one channel")
	}
	c.Admin.Channel = sharedConfig.NormalizeChannel(c.Admin.Channel)

	c.Relay.Channels = sharedConfig.NormalizeChannels(c.Relay.Channels)
	if len(c.Relay.Channels) == 0 {
		if relayConfigured {
			return fmt.Errorf("invalid configuration: relay.channels must include at least one channel")
		}
		c.Relay.Channels = []string{DefaultRelayChannel}
	}

	if c.Provisioning.SettleDelay < 0 {
		return fmt.Errorf("invalid configuration: provisioning.settle_delay must not be negative")
	}
	return nil
}

func uniqueNames(c *Config) error {
	seen := make(map[string]bool, len(c.Servers))
	for _, s := range c.Servers {
		key := strings.ToLower(s.Name)
		if seen[key] {
			return fmt.Errorf("invalid configuration: duplicate server name %q", s.Name)
		}
		seen[key] = true
	}

	seen = make(map[string]bool, len(c.ZNCServers))
	for _, z := range c.ZNCServers {
		key := strings.ToLower(z.Name)
		if seen[key] {
			return fmt.Errorf("invalid configuration: duplicate zncserver name %q", z.Name)
		}
		seen[key] = true
	}
	return nil
}
