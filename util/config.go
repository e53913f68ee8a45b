package util

import (
	_ "embed"
	"fmt"
	"gopkg.in/yaml.v3"
	"log"
	"os"
	"strconv"
)

const Name = "mimus"
const ConfigFileName = "config.yaml"

//go:embed config_default.yaml
var embeddedConfig []byte

type AppConfig struct {
	Conf struct {
		Host      string
		SshPort   int    `yaml:"sshPort"`
		HttpPort  int    `yaml:"httpPort"`
		SslDomain string `yaml:"sslDomain"`
		// NoProxy disables the caching media proxy; image entities then
		// report their original URL and dimensions only.
		NoProxy bool `yaml:"noProxy"`
		// Posting-rate thresholds for statuses/update. Zero disables a window.
		PostsPerDay   int `yaml:"postsPerDay"`
		PostsPerWeek  int `yaml:"postsPerWeek"`
		PostsPerMonth int `yaml:"postsPerMonth"`
	}
}

func ReadConf() (*AppConfig, error) {

	c := &AppConfig{}

	// Try to resolve config file path (local first, then user dir)
	configPath := ResolveFilePath(ConfigFileName)

	var buf []byte
	var err error

	// Try to read from resolved path
	buf, err = os.ReadFile(configPath)
	if err != nil {
		// If file doesn't exist, use embedded config and create user config file
		log.Printf("Config file not found at %s, using embedded defaults", configPath)
		buf = embeddedConfig

		// Try to write default config to user config directory
		configDir, dirErr := GetConfigDir()
		if dirErr == nil {
			userConfigPath := configDir + "/" + ConfigFileName
			writeErr := os.WriteFile(userConfigPath, embeddedConfig, 0644)
			if writeErr != nil {
				log.Printf("Warning: could not write default config to %s: %v", userConfigPath, writeErr)
			} else {
				log.Printf("Created default config file at %s", userConfigPath)
			}
		}
	}

	err = yaml.Unmarshal(buf, c)
	if err != nil {
		return nil, fmt.Errorf("in config file: %w", err)
	}

	envHost := os.Getenv("MIMUS_HOST")
	envSshPort := os.Getenv("MIMUS_SSHPORT")
	envHttpPort := os.Getenv("MIMUS_HTTPPORT")
	envSslDomain := os.Getenv("MIMUS_SSLDOMAIN")
	envNoProxy := os.Getenv("MIMUS_NOPROXY")
	envPostsPerDay := os.Getenv("MIMUS_POSTS_PER_DAY")
	envPostsPerWeek := os.Getenv("MIMUS_POSTS_PER_WEEK")
	envPostsPerMonth := os.Getenv("MIMUS_POSTS_PER_MONTH")

	if envHost != "" {
		c.Conf.Host = envHost
	}

	if envSshPort != "" {
		v, err := strconv.Atoi(envSshPort)
		if err != nil {
			fmt.Println(err)
		}
		c.Conf.SshPort = v
	}

	if envHttpPort != "" {
		v, err := strconv.Atoi(envHttpPort)
		if err != nil {
			fmt.Println(err)
		}
		c.Conf.HttpPort = v
	}

	if envSslDomain != "" {
		c.Conf.SslDomain = envSslDomain
	}

	if envNoProxy == "true" {
		c.Conf.NoProxy = true
	}

	if envPostsPerDay != "" {
		v, err := strconv.Atoi(envPostsPerDay)
		if err != nil {
			fmt.Println(err)
		}
		c.Conf.PostsPerDay = v
	}

	if envPostsPerWeek != "" {
		v, err := strconv.Atoi(envPostsPerWeek)
		if err != nil {
			fmt.Println(err)
		}
		c.Conf.PostsPerWeek = v
	}

	if envPostsPerMonth != "" {
		v, err := strconv.Atoi(envPostsPerMonth)
		if err != nil {
			fmt.Println(err)
		}
		c.Conf.PostsPerMonth = v
	}

	return c, nil
}

// BaseURL returns the canonical https base URL of this instance.
func (c *AppConfig) BaseURL() string {
	return fmt.Sprintf("https://%s", c.Conf.SslDomain)
}
