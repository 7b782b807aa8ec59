package config

import (
	"fmt"
	"strings"
	"time"
)

type BotConfig struct {
	Nick          string   `mapstructure:"nick" validate:"required"`
	User          string   `mapstructure:"user" validate:"required"`
	RealName      string   `mapstructure:"realname" validate:"required"`
	Channels      []string `mapstructure:"channels" validate:"required,min=1"`
	SASLName      string   `mapstructure:"sasl_name" validate:"required"`
	SASLPass      string   `mapstructure:"sasl_pass" validate:"required"`
	CommandPrefix string   `mapstructure:"command_prefix"`
}

// PrimaryChannel is the channel announcements go to on each network.
func (b *BotConfig) PrimaryChannel() string {
	if len(b.Channels) == 0 {
		return ""
	}
	return b.Channels[0]
}

type AdminConfig struct {
	Network string `mapstructure:"network" validate:"required"`
	Channel string `mapstructure:"channel" validate:"required"`
}

// NetworkConfig describes one chat network the bot joins.
type NetworkConfig struct {
	Name   string `mapstructure:"name" validate:"required"`
	Server string `mapstructure:"server" validate:"required"`
	Port   int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	SSL    bool   `mapstructure:"ssl"`
	SASL   *bool  `mapstructure:"sasl"`
}

// SASLEnabled defaults to true when the key is absent.
func (n *NetworkConfig) SASLEnabled() bool {
	return n.SASL == nil || *n.SASL
}

func (n *NetworkConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", n.Server, n.Port)
}

type PublicEndpoint struct {
	Panel   string `mapstructure:"panel"`
	Port    int    `mapstructure:"port"`
	SSLPort int    `mapstructure:"ssl_port"`
}

// ProvisioningNodeConfig describes a ZNC node and its admin login.
type ProvisioningNodeConfig struct {
	Name         string         `mapstructure:"name" validate:"required"`
	Addr         string         `mapstructure:"addr" validate:"required"`
	Port         int            `mapstructure:"port" validate:"required,min=1,max=65535"`
	SSL          bool           `mapstructure:"ssl"`
	Username     string         `mapstructure:"username" validate:"required"`
	Password     string         `mapstructure:"password" validate:"required"`
	TemplateUser string         `mapstructure:"template_user"`
	BindHost     string         `mapstructure:"bind_host"`
	Public       PublicEndpoint `mapstructure:"public"`
}

func (p *ProvisioningNodeConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", p.Addr, p.Port)
}

// OutboundBindHost falls back to the node address when no bind host is configured.
func (p *ProvisioningNodeConfig) OutboundBindHost() string {
	if p.BindHost != "" {
		return p.BindHost
	}
	return p.Addr
}

type RelayConfig struct {
	Channels []string `mapstructure:"channels"`
}

type StorageConfig struct {
	RequestDB string `mapstructure:"request_db" validate:"required"`
	TicketDB  string `mapstructure:"ticket_db" validate:"required"`
	AuditLog  string `mapstructure:"audit_log"`
}

type MailConfig struct {
	Host        string `mapstructure:"host" validate:"required"`
	Port        int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	FromAddress string `mapstructure:"from_address" validate:"required,email"`
	FromName    string `mapstructure:"from_name"`
	ReplyTo     string `mapstructure:"reply_to" validate:"omitempty,email"`
	HeloDomain  string `mapstructure:"helo_domain"`
}

type ProvisioningConfig struct {
	SettleDelay time.Duration `mapstructure:"settle_delay"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type RateLimitConfig struct {
	Backend         string      `mapstructure:"backend" validate:"omitempty,oneof=memory redis"`
	RequestsPerHour int         `mapstructure:"requests_per_hour" validate:"min=0"`
	Redis           RedisConfig `mapstructure:"redis"`
}

type ReminderConfig struct {
	PendingInterval time.Duration `mapstructure:"pending_interval"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// NormalizeChannel lowercases nothing but guarantees the leading '#'.
func NormalizeChannel(channel string) string {
	channel = strings.TrimSpace(channel)
	if channel == "" {
		return ""
	}
	if !strings.HasPrefix(channel, "#") {
		return "#" + channel
	}
	return channel
}

// NormalizeChannels prefixes every entry with '#', drops empties and removes
// case-insensitive duplicates while keeping the first spelling.
func NormalizeChannels(channels []string) []string {
	seen := make(map[string]bool, len(channels))
	out := make([]string, 0, len(channels))
	for _, c := range channels {
		n := NormalizeChannel(c)
		if n == "" {
			continue
		}
		key := strings.ToLower(n)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, n)
	}
	return out
}
