package snippet

import (
	"embed"
	"io/fs"
)

//go:embed messages/*.json
var messages embed.FS

// FS returns the text bundles shipped with the storefront.
func FS() fs.FS {
	return messages
}

// File describes one text bundle.
type File interface {
	// Name is the bundle name, e.g. "messages.en-GB".
	Name() string
	// Path is the location of the JSON file inside the bundle FS.
	Path() string
	// ISO is the locale code the bundle translates into.
	ISO() string
	Author() string
	// IsBase marks the complete bundle of a locale that others extend.
	IsBase() bool
}

// EnGB is the base English bundle.
type EnGB struct{}

func (EnGB) Name() string   { return "messages.en-GB" }
func (EnGB) Path() string   { return "messages/messages.en-GB.json" }
func (EnGB) ISO() string    { return "en-GB" }
func (EnGB) Author() string { return "Shopware" }
func (EnGB) IsBase() bool   { return true }
