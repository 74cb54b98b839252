package domain

import "errors"

// ErrProjectNotFound is returned when a project identifier is not registered.
var ErrProjectNotFound = errors.New("project not found")

// Project is a website whose sitemap feeds link suggestions.
type Project struct {
	ID         string `mapstructure:"id"`
	Name       string `mapstructure:"name"`
	SitemapURL string `mapstructure:"sitemap_url"`
}
