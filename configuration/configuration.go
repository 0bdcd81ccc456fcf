/*
 * Nuts esign
 * Copyright (C) 2020. Nuts community
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 */

package configuration

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/nuts-foundation/nuts-esign/logging"
)

// EnvPrefix is the prefix of environment variables overriding configuration keys, e.g. ESIGN_SEALSECRET
const EnvPrefix = "ESIGN"

// Configuration keys
const (
	ConfAddress         = "address"
	ConfPublicURL       = "publicUrl"
	ConfLinkTemplate    = "linkTemplate"
	ConfSealSecret      = "sealSecret"
	ConfOTPTTL          = "otpTtl"
	ConfLinkTTL         = "linkTtl"
	ConfRequiredRoles   = "requiredRoles"
	ConfMaxDocumentSize = "maxDocumentSize"
	ConfStampPage       = "stamp.page"
	ConfStampFontSize   = "stamp.fontSize"
	ConfStampTimezone   = "stamp.timezone"
	ConfStampLocale     = "stamp.locale"
	ConfStore           = "store"
	ConfPostgresDSN     = "postgresDsn"
	ConfBlobDir         = "blobDir"
	ConfLock            = "lock"
	ConfLockTTL         = "lockTtl"
	ConfRedisAddress    = "redis.address"
	ConfRedisPassword   = "redis.password"
	ConfRedisDB         = "redis.db"
	ConfNotifier        = "notifier"
	ConfWebhookURL      = "webhook.url"
	ConfWebhookSecret   = "webhook.secret"
	ConfWebhookTimeout  = "webhook.timeout"
)

// Backend names
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	NotifierLog     = "log"
	NotifierWebhook = "webhook"
)

// minSealSecretLength mirrors the minimum key material of the sealer
const minSealSecretLength = 32

// StampConfiguration holds the layout of the stamps on the final document
type StampConfiguration struct {
	Page     int    `mapstructure:"page"`
	FontSize int    `mapstructure:"fontSize"`
	Timezone string `mapstructure:"timezone"`
	Locale   string `mapstructure:"locale"`
}

// RedisConfiguration holds the connection to redis, used for the session lock
type RedisConfiguration struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// WebhookConfiguration holds the endpoint receiving notifications
type WebhookConfiguration struct {
	URL     string        `mapstructure:"url"`
	Secret  string        `mapstructure:"secret"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// EsignConfiguration holds all settings of the signing engine
type EsignConfiguration struct {
	Address         string               `mapstructure:"address"`
	PublicURL       string               `mapstructure:"publicUrl"`
	LinkTemplate    string               `mapstructure:"linkTemplate"`
	SealSecret      string               `mapstructure:"sealSecret"`
	OTPTTL          time.Duration        `mapstructure:"otpTtl"`
	LinkTTL         time.Duration        `mapstructure:"linkTtl"`
	RequiredRoles   []string             `mapstructure:"requiredRoles"`
	MaxDocumentSize int64                `mapstructure:"maxDocumentSize"`
	Stamp           StampConfiguration   `mapstructure:"stamp"`
	Store           string               `mapstructure:"store"`
	PostgresDSN     string               `mapstructure:"postgresDsn"`
	BlobDir         string               `mapstructure:"blobDir"`
	Lock            string               `mapstructure:"lock"`
	LockTTL         time.Duration        `mapstructure:"lockTtl"`
	Redis           RedisConfiguration   `mapstructure:"redis"`
	Notifier        string               `mapstructure:"notifier"`
	Webhook         WebhookConfiguration `mapstructure:"webhook"`
}

// Default config instance
var config *EsignConfiguration

// GetInstance returns the initialized configuration. If there is no initialized object, it returns an error
func GetInstance() (*EsignConfiguration, error) {
	if config == nil {
		return nil, errors.New("cannot get instance of uninitialized config")
	}
	return config, nil
}

// Initialize is the default way of initializing the config. It sets the global config variable and makes sure
// the app can access the config object through the whole application.
// The file is optional: an empty filename only applies defaults, environment variables and flags.
// The result is not validated, commands that need a complete configuration call Validate.
func Initialize(path, filename string, flags *pflag.FlagSet) error {
	c := DefaultConfiguration()
	if err := c.Load(path, filename, flags); err != nil {
		return err
	}
	config = &c
	return nil
}

// LoadConfigFromFile loads the given yaml file on top of the defaults
func LoadConfigFromFile(path, filename string) (*EsignConfiguration, error) {
	c := DefaultConfiguration()
	if err := c.LoadFromFile(path, filename); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadFromFile reads a yaml file, environment variables override its values
func (c *EsignConfiguration) LoadFromFile(path, filename string) error {
	return c.Load(path, filename, nil)
}

// Load merges, in increasing precedence, the current values, the yaml file, environment variables and changed flags
func (c *EsignConfiguration) Load(path, filename string, flags *pflag.FlagSet) error {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	c.registerDefaults(v)

	if filename != "" {
		logging.Log().Infof("Loading config from %s/%s.yaml", path, filename)
		v.AddConfigPath(path)
		v.SetConfigName(filename)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return err
		}
	}
	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return err
		}
	}
	return v.Unmarshal(c)
}

// registerDefaults makes every key known to viper so environment variables can override it
func (c *EsignConfiguration) registerDefaults(v *viper.Viper) {
	v.SetDefault(ConfAddress, c.Address)
	v.SetDefault(ConfPublicURL, c.PublicURL)
	v.SetDefault(ConfLinkTemplate, c.LinkTemplate)
	v.SetDefault(ConfSealSecret, c.SealSecret)
	v.SetDefault(ConfOTPTTL, c.OTPTTL)
	v.SetDefault(ConfLinkTTL, c.LinkTTL)
	v.SetDefault(ConfRequiredRoles, c.RequiredRoles)
	v.SetDefault(ConfMaxDocumentSize, c.MaxDocumentSize)
	v.SetDefault(ConfStampPage, c.Stamp.Page)
	v.SetDefault(ConfStampFontSize, c.Stamp.FontSize)
	v.SetDefault(ConfStampTimezone, c.Stamp.Timezone)
	v.SetDefault(ConfStampLocale, c.Stamp.Locale)
	v.SetDefault(ConfStore, c.Store)
	v.SetDefault(ConfPostgresDSN, c.PostgresDSN)
	v.SetDefault(ConfBlobDir, c.BlobDir)
	v.SetDefault(ConfLock, c.Lock)
	v.SetDefault(ConfLockTTL, c.LockTTL)
	v.SetDefault(ConfRedisAddress, c.Redis.Address)
	v.SetDefault(ConfRedisPassword, c.Redis.Password)
	v.SetDefault(ConfRedisDB, c.Redis.DB)
	v.SetDefault(ConfNotifier, c.Notifier)
	v.SetDefault(ConfWebhookURL, c.Webhook.URL)
	v.SetDefault(ConfWebhookSecret, c.Webhook.Secret)
	v.SetDefault(ConfWebhookTimeout, c.Webhook.Timeout)
}

// DefaultConfiguration returns a configuration with all defaults applied
func DefaultConfiguration() EsignConfiguration {
	c := EsignConfiguration{}
	c.SetDefaults()
	return c
}

// SetDefaults applies the default values
func (c *EsignConfiguration) SetDefaults() {
	c.Address = "localhost:1323"
	c.PublicURL = "http://localhost:1323"
	c.LinkTemplate = "{{{base_url}}}/signing/invite/{{{token}}}?sid={{{session_id}}}"
	c.OTPTTL = 300 * time.Second
	c.LinkTTL = 1800 * time.Second
	c.RequiredRoles = []string{"ORGANIZATION_A", "ORGANIZATION_B", "INDIVIDUAL"}
	c.MaxDocumentSize = 20 << 20
	c.Stamp = StampConfiguration{Page: -1, FontSize: 8, Timezone: "America/Sao_Paulo", Locale: "pt_BR"}
	c.Store = BackendMemory
	c.Lock = BackendMemory
	c.LockTTL = 30 * time.Second
	c.Notifier = NotifierLog
	c.Webhook.Timeout = 10 * time.Second
}

// Validate checks for missing and conflicting settings
func (c *EsignConfiguration) Validate() error {
	if len(c.SealSecret) < minSealSecretLength {
		return fmt.Errorf("%s must be at least %d characters", ConfSealSecret, minSealSecretLength)
	}
	if c.OTPTTL <= 0 || c.LinkTTL <= 0 {
		return fmt.Errorf("%s and %s must be positive", ConfOTPTTL, ConfLinkTTL)
	}
	if len(c.RequiredRoles) == 0 {
		return fmt.Errorf("%s must not be empty", ConfRequiredRoles)
	}
	switch c.Store {
	case BackendMemory:
	case BackendPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("%s is required for store %s", ConfPostgresDSN, c.Store)
		}
	default:
		return fmt.Errorf("unknown %s: %s", ConfStore, c.Store)
	}
	switch c.Lock {
	case BackendMemory:
	case BackendRedis:
		if c.Redis.Address == "" {
			return fmt.Errorf("%s is required for lock %s", ConfRedisAddress, c.Lock)
		}
	default:
		return fmt.Errorf("unknown %s: %s", ConfLock, c.Lock)
	}
	switch c.Notifier {
	case NotifierLog:
	case NotifierWebhook:
		if c.Webhook.URL == "" || c.Webhook.Secret == "" {
			return fmt.Errorf("%s and %s are required for notifier %s", ConfWebhookURL, ConfWebhookSecret, c.Notifier)
		}
	default:
		return fmt.Errorf("unknown %s: %s", ConfNotifier, c.Notifier)
	}
	return nil
}
