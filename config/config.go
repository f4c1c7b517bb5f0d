package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v2"
)

type SysConfig struct {
	Appid    string `yaml:"appid" json:"appid"`
	Location string `yaml:"location" json:"location"`
	Workdir  string `yaml:"workdir" json:"workdir"`
	Debug    bool   `yaml:"debug" json:"debug"`
}

type WebConfig struct {
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	Secret   string `yaml:"secret" json:"secret"`
	FrontDir string `yaml:"frontdir" json:"frontdir"`
}

type DBConfig struct {
	Type   string `yaml:"type" json:"type"`
	Host   string `yaml:"host" json:"host"`
	Port   int    `yaml:"port" json:"port"`
	Name   string `yaml:"name" json:"name"`
	User   string `yaml:"user" json:"user"`
	Passwd string `yaml:"passwd" json:"passwd"`
	Debug  bool   `yaml:"debug" json:"debug"`
}

type LogConfig struct {
	Mode       string `yaml:"mode" json:"mode"`
	FileEnable bool   `yaml:"file_enable" json:"file_enable"`
	Filename   string `yaml:"filename" json:"filename"`
}

type SmtpConfig struct {
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
	From     string `yaml:"from" json:"from"`
	To       string `yaml:"to" json:"to"`
}

type AppConfig struct {
	System   SysConfig  `yaml:"system" json:"system"`
	Web      WebConfig  `yaml:"web" json:"web"`
	Database DBConfig   `yaml:"database" json:"database"`
	Logger   LogConfig  `yaml:"logger" json:"logger"`
	Smtp     SmtpConfig `yaml:"smtp" json:"smtp"`
}

func (c *AppConfig) GetLogDir() string {
	return filepath.Join(c.System.Workdir, "logs")
}

func (c *AppConfig) GetDataDir() string {
	return filepath.Join(c.System.Workdir, "data")
}

func (c *AppConfig) InitDirs() error {
	if err := os.MkdirAll(c.GetLogDir(), 0o755); err != nil {
		return err
	}
	return os.MkdirAll(c.GetDataDir(), 0o755)
}

var DefaultAppConfig = &AppConfig{
	System: SysConfig{
		Appid:    "ToughStore",
		Location: "Asia/Shanghai",
		Workdir:  "/var/toughstore",
		Debug:    true,
	},
	Web: WebConfig{
		Host:     "0.0.0.0",
		Port:     5000,
		Secret:   "9b6de5cc-store-1162-4478-pos-a3dd2570",
		FrontDir: "./front",
	},
	Database: DBConfig{
		Type:   "postgres",
		Host:   "127.0.0.1",
		Port:   5432,
		Name:   "toughstore",
		User:   "postgres",
		Passwd: "root",
		Debug:  false,
	},
	Logger: LogConfig{
		Mode:       "development",
		FileEnable: true,
		Filename:   "/var/toughstore/toughstore.log",
	},
}

func setEnvValue(name string, f func(v string)) {
	var evalue = os.Getenv(name)
	if evalue != "" {
		f(evalue)
	}
}

func setEnvInt64Value(name string, f func(v int64)) {
	var evalue = os.Getenv(name)
	if evalue == "" {
		return
	}
	p, err := cast.ToInt64E(evalue)
	if err == nil {
		f(p)
	}
}

func setEnvBoolValue(name string, f func(v bool)) {
	var evalue = os.Getenv(name)
	if evalue == "" {
		return
	}
	p, err := cast.ToBoolE(evalue)
	if err == nil {
		f(p)
	}
}

// LoadConfig reads the YAML configuration file and applies TOUGHSTORE_*
// environment overrides. A missing file falls back to defaults.
func LoadConfig(cfile string) *AppConfig {
	appcfg := new(AppConfig)
	*appcfg = *DefaultAppConfig
	if cfile != "" {
		if data, err := os.ReadFile(cfile); err == nil {
			appcfg = new(AppConfig)
			if err := yaml.Unmarshal(data, appcfg); err != nil {
				panic(errors.Wrap(err, fmt.Sprintf("parse config %s", cfile)))
			}
		}
	}

	setEnvValue("TOUGHSTORE_SYSTEM_WORKDIR", func(v string) { appcfg.System.Workdir = v })
	setEnvValue("TOUGHSTORE_SYSTEM_LOCATION", func(v string) { appcfg.System.Location = v })
	setEnvBoolValue("TOUGHSTORE_SYSTEM_DEBUG", func(v bool) { appcfg.System.Debug = v })

	setEnvValue("TOUGHSTORE_WEB_HOST", func(v string) { appcfg.Web.Host = v })
	setEnvValue("TOUGHSTORE_WEB_SECRET", func(v string) { appcfg.Web.Secret = v })
	setEnvValue("TOUGHSTORE_WEB_FRONTDIR", func(v string) { appcfg.Web.FrontDir = v })
	setEnvInt64Value("TOUGHSTORE_WEB_PORT", func(v int64) { appcfg.Web.Port = int(v) })

	setEnvValue("TOUGHSTORE_DB_TYPE", func(v string) { appcfg.Database.Type = v })
	setEnvValue("TOUGHSTORE_DB_HOST", func(v string) { appcfg.Database.Host = v })
	setEnvValue("TOUGHSTORE_DB_NAME", func(v string) { appcfg.Database.Name = v })
	setEnvValue("TOUGHSTORE_DB_USER", func(v string) { appcfg.Database.User = v })
	setEnvValue("TOUGHSTORE_DB_PWD", func(v string) { appcfg.Database.Passwd = v })
	setEnvInt64Value("TOUGHSTORE_DB_PORT", func(v int64) { appcfg.Database.Port = int(v) })
	setEnvBoolValue("TOUGHSTORE_DB_DEBUG", func(v bool) { appcfg.Database.Debug = v })

	setEnvValue("TOUGHSTORE_LOGGER_MODE", func(v string) { appcfg.Logger.Mode = v })
	setEnvBoolValue("TOUGHSTORE_LOGGER_FILE_ENABLE", func(v bool) { appcfg.Logger.FileEnable = v })
	setEnvValue("TOUGHSTORE_LOGGER_FILENAME", func(v string) { appcfg.Logger.Filename = v })

	setEnvValue("TOUGHSTORE_SMTP_HOST", func(v string) { appcfg.Smtp.Host = v })
	setEnvInt64Value("TOUGHSTORE_SMTP_PORT", func(v int64) { appcfg.Smtp.Port = int(v) })
	setEnvValue("TOUGHSTORE_SMTP_USERNAME", func(v string) { appcfg.Smtp.Username = v })
	setEnvValue("TOUGHSTORE_SMTP_PASSWORD", func(v string) { appcfg.Smtp.Password = v })
	setEnvValue("TOUGHSTORE_SMTP_FROM", func(v string) { appcfg.Smtp.From = v })
	setEnvValue("TOUGHSTORE_SMTP_TO", func(v string) { appcfg.Smtp.To = v })

	return appcfg
}
