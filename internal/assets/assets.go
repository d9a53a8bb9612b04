// Package assets provides the HTML templates served by the web form.
// Templates can be loaded from embedded files or a custom filesystem path.
package assets

// IndexTemplate is the name of the download form page.
const IndexTemplate = "index"

// defaultLoader is the package-level embedded loader.
var defaultLoader = NewEmbeddedLoader()

// LoadTemplate loads an HTML template by name using the default embedded loader.
// The name should not include the .html extension or path components.
// Returns ErrTemplateNotFound if the template does not exist.
// Returns ErrInvalidAssetName if the name contains path separators or traversal.
func LoadTemplate(name string) (string, error) {
	return defaultLoader.LoadTemplate(name)
}
