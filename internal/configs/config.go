// Package configs for work with configurations
package configs

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Official Digg Daily endpoints, the same ones the player widget on
// digg.com uses. Compiled in as defaults, overridable from the config file.
const (
	DefaultEndpoint  = "https://sxuww3gfy4.execute-api.us-east-2.amazonaws.com/prod/episodes"
	DefaultCDNBase   = "https://d3tha58ojcqcpf.cloudfront.net/prod/episodes"
	DefaultUserAgent = "DiggDailyRSS/2.0 (Podcast Feed Generator)"
)

const (
	defaultTimeout         = 30
	defaultCachePath       = "var/episodes.json"
	defaultOutputDir       = "output"
	defaultEnclosureLength = 5000000
)

// Conf for config yaml
type Conf struct {
	API struct {
		Endpoint  string `yaml:"endpoint"`
		CDNBase   string `yaml:"cdn_base"`
		Timeout   int    `yaml:"timeout"` // seconds
		UserAgent string `yaml:"user_agent"`
	} `yaml:"api"`
	Cache struct {
		Backend string `yaml:"backend"` // json, bolt, sqlite or memory
		Path    string `yaml:"path"`
	} `yaml:"cache"`
	Feed struct {
		URL             string `yaml:"url"` // public self-referencing feed url
		OutputDir       string `yaml:"output_dir"`
		EnclosureLength int64  `yaml:"enclosure_length"`
	} `yaml:"feed"`
	Channel      Channel `yaml:"channel"`
	CloudStorage struct {
		EndPointURL string `yaml:"endpoint_url"`
		Bucket      string `yaml:"bucket"`
		Region      string `yaml:"region"`
		Secrets     struct {
			Key    string `yaml:"aws_key"`
			Secret string `yaml:"aws_secret"`
		} `yaml:"secrets"`
	} `yaml:"cloud_storage"`
}

// Channel defines the fixed podcast metadata rendered into every feed.
type Channel struct {
	Title       string `yaml:"title"`
	Link        string `yaml:"link"`
	Description string `yaml:"description"`
	Language    string `yaml:"language"`
	Author      string `yaml:"author"`
	OwnerName   string `yaml:"owner_name"`
	OwnerEmail  string `yaml:"owner_email"`
	Category    string `yaml:"category"`
	Subcategory string `yaml:"subcategory"`
	Image       string `yaml:"image"`
	Explicit    string `yaml:"explicit"`
	Copyright   string `yaml:"copyright"` // rendered with the current year appended
}

// Load config from file
func Load(fileName string) (res *Conf, err error) {
	res = &Conf{}
	data, err := os.ReadFile(fileName) // nolint
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, res); err != nil {
		return nil, err
	}

	res.setDefaults()
	return res, nil
}

func (c *Conf) setDefaults() {
	if c.API.Endpoint == "" {
		c.API.Endpoint = DefaultEndpoint
	}
	if c.API.CDNBase == "" {
		c.API.CDNBase = DefaultCDNBase
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = defaultTimeout
	}
	if c.API.UserAgent == "" {
		c.API.UserAgent = DefaultUserAgent
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = "json"
	}
	if c.Cache.Path == "" {
		c.Cache.Path = defaultCachePath
	}
	if c.Feed.OutputDir == "" {
		c.Feed.OutputDir = defaultOutputDir
	}
	if c.Feed.EnclosureLength == 0 {
		c.Feed.EnclosureLength = defaultEnclosureLength
	}
	if c.Channel.Explicit == "" {
		c.Channel.Explicit = "false"
	}
}
