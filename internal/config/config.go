package config

import (
	"time"

	"github.com/spf13/viper"
)

// DefaultExtensions is used when neither arguments nor the config file name
// any extensions.
var DefaultExtensions = []string{
	"ms-python.black-formatter",
}

type Config struct {
	Marketplace     string
	QueryURL        string
	DownloadBaseURL string
	OpenVSXURL      string

	QueryTimeout    time.Duration
	DownloadTimeout time.Duration
	UserAgent       string

	DownloadDir string
	ChunkSize   int

	Extensions []string

	Host     string
	Port     int
	CertFile string
	KeyFile  string

	Debug bool
}

func init() {
	SetDefaults(viper.GetViper())
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("marketplace.type", "microsoft")
	v.SetDefault("marketplace.query_url", "https://marketplace.visualstudio.com/_apis/public/gallery/extensionquery")
	v.SetDefault("marketplace.download_base_url", "https://marketplace.visualstudio.com/_apis/public/gallery/publishers")
	v.SetDefault("marketplace.openvsx_url", "https://open-vsx.org/api/-/query")

	v.SetDefault("http.query_timeout", 10*time.Second)
	v.SetDefault("http.download_timeout", 30*time.Second)
	v.SetDefault("http.user_agent", "vsixget/1.0")

	v.SetDefault("download.directory", ".")
	v.SetDefault("download.chunk_size", 8192)

	v.SetDefault("extensions.items", DefaultExtensions)

	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8080)
}

func GetConfig() Config {
	return FromViper(viper.GetViper())
}

func FromViper(v *viper.Viper) Config {
	return Config{
		Marketplace:     v.GetString("marketplace.type"),
		QueryURL:        v.GetString("marketplace.query_url"),
		DownloadBaseURL: v.GetString("marketplace.download_base_url"),
		OpenVSXURL:      v.GetString("marketplace.openvsx_url"),

		QueryTimeout:    v.GetDuration("http.query_timeout"),
		DownloadTimeout: v.GetDuration("http.download_timeout"),
		UserAgent:       v.GetString("http.user_agent"),

		DownloadDir: v.GetString("download.directory"),
		ChunkSize:   v.GetInt("download.chunk_size"),

		Extensions: v.GetStringSlice("extensions.items"),

		Host:     v.GetString("server.host"),
		Port:     v.GetInt("server.port"),
		CertFile: v.GetString("server.tls_cert"),
		KeyFile:  v.GetString("server.tls_key"),

		Debug: v.GetBool("log.debug"),
	}
}
