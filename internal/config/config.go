package config

import (
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv = "WEDRAFTSYNC_CONFIG"
	appIDEnv      = "WX_APPID"
	appSecretEnv  = "WX_APPSECRET"
	databaseEnv   = "DATABASE_DSN"

	defaultAPIBaseURL = "https://api.weixin.qq.com"
	defaultTextFolder = "./articles"
	defaultCacheFile  = ".access_token_cache.json"
	defaultLogFile    = "upload_log.txt"
)

// Config holds high-level settings required across the application.
type Config struct {
	TextFolder         string `yaml:"text_folder"`
	UseFilenameAsTitle bool   `yaml:"use_filename_as_title"`

	AppID       string `yaml:"appid"`
	Secret      string `yaml:"secret"`
	WxAppID     string `yaml:"wx_appid"`
	WxAppSecret string `yaml:"wx_appsecret"`

	ContentIsMarkdown  bool   `yaml:"content_is_markdown"`
	Digest             string `yaml:"digest"`
	ShowCoverPic       bool   `yaml:"show_cover_pic"`
	NeedOpenComment    bool   `yaml:"need_open_comment"`
	OnlyFansCanComment bool   `yaml:"only_fans_can_comment"`

	APIBaseURL string `yaml:"api_base_url"`
	CacheFile  string `yaml:"cache_file"`
	LogFile    string `yaml:"log_file"`
	HistoryDSN string `yaml:"history_dsn"`

	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig selects the diagnostic verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Credentials resolves the appid/secret pair through the accepted key
// aliases, in priority order: appid over wx_appid, secret over wx_appsecret.
func (c Config) Credentials() (appid, secret string) {
	appid = firstNonEmpty(c.AppID, c.WxAppID)
	secret = firstNonEmpty(c.Secret, c.WxAppSecret)
	return appid, secret
}

// Load reads YAML configuration (if present) and applies environment
// overrides. A missing or unparseable file falls back to defaults; it is
// never an error.
func Load(path string) Config {
	cfg := defaultConfig()

	if env := os.Getenv(configPathEnv); env != "" {
		path = env
	}

	if raw, err := os.ReadFile(path); err != nil {
		log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
	} else if err := yaml.Unmarshal(raw, &cfg); err != nil {
		log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
		cfg = defaultConfig()
	}

	cfg.applyEnvOverrides()
	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(appIDEnv); v != "" {
		c.AppID = v
	}

	if v := os.Getenv(appSecretEnv); v != "" {
		c.Secret = v
	}

	if v := os.Getenv(databaseEnv); v != "" {
		c.HistoryDSN = v
	}
}

func defaultConfig() Config {
	return Config{
		TextFolder:         defaultTextFolder,
		UseFilenameAsTitle: true,
		APIBaseURL:         defaultAPIBaseURL,
		CacheFile:          defaultCacheFile,
		LogFile:            defaultLogFile,
		Logging:            LoggingConfig{Level: "info"},
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
