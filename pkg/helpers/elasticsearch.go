package helpers

import (
	"github.com/elastic/go-elasticsearch/v8"
)

// NewESClient creates an Elasticsearch client for the given addresses.
// Credentials are optional for local clusters.
func NewESClient(addrs []string, username, password string) (*elasticsearch.Client, error) {
	cfg := elasticsearch.Config{
		Addresses: addrs,
		Username:  username,
		Password:  password,
	}
	return elasticsearch.NewClient(cfg)
}
