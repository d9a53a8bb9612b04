// Package assets provides the HTML templates served by the web form.
//
// # Loader Architecture
//
//	AssetLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - loads from go:embed filesystem (built-in form)
//	    ├── FilesystemLoader  - loads from custom directory on disk
//	    └── AssetResolver     - combines both with custom-first fallback
//
// AssetResolver is the loader used by the web server. It tries the custom
// FilesystemLoader first and falls back to EmbeddedLoader when a template is
// not found, so a single page can be overridden while the rest stay built in.
//
// # Directory Structure
//
//	{basePath}/
//	└── templates/
//	    └── {name}.html          # e.g. index.html
//
// # Security
//
// Template names are validated to prevent path traversal attacks.
// FilesystemLoader resolves symlinks and verifies paths stay within basePath.
package assets
