package archive

import (
	"fmt"
	"net/url"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const (
	defaultHost    = "localhost"
	defaultPort    = 5432
	defaultSSLMode = "disable"
)

// Config defines the archive database connection and fixed-point scales
// used to render payload prices and sizes into numeric columns.
type Config struct {
	Host       string
	Port       int
	User       string
	Password   string
	Database   string
	SSLMode    string
	Params     map[string]string
	ConnString string

	InsertBatch int
	PriceScale  int
	SizeScale   int
}

func (c Config) withDefaults() Config {
	if c.InsertBatch <= 0 {
		c.InsertBatch = defaultInsertBatch
	}
	return c
}

func open(cfg Config) (*gorm.DB, error) {
	dsn, err := cfg.dsn()
	if err != nil {
		return nil, err
	}
	return gorm.Open(postgres.Open(dsn), &gorm.Config{})
}

func (c Config) dsn() (string, error) {
	if c.ConnString != "" {
		return c.ConnString, nil
	}

	host := c.Host
	if host == "" {
		host = defaultHost
	}
	port := c.Port
	if port == 0 {
		port = defaultPort
	}
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = defaultSSLMode
	}

	u := &url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", host, port),
	}
	if c.User != "" {
		if c.Password != "" {
			u.User = url.UserPassword(c.User, c.Password)
		} else {
			u.User = url.User(c.User)
		}
	}
	if c.Database != "" {
		u.Path = "/" + c.Database
	}

	query := url.Values{}
	query.Set("sslmode", sslMode)
	for key, value := range c.Params {
		if key == "" {
			continue
		}
		query.Set(key, value)
	}
	u.RawQuery = query.Encode()

	return u.String(), nil
}
