package entity

import (
	"net/url"
	"path"
	"strings"
)

// ResourceKind tells where a resource lives
type ResourceKind string

const (
	ResourceKindRemote ResourceKind = "remote"
	ResourceKindLocal  ResourceKind = "local"
)

// Resource references a model artifact (weights, config, vocabulary, merges).
// It is resolved to a local path by the model library at load time.
type Resource struct {
	Kind ResourceKind
	// Name is the cache sub-directory for remote resources, e.g. "bart-large-mnli/config"
	Name string
	// URL is the download location of a remote resource
	URL string
	// Path is the file path of a local resource
	Path string
}

// RemoteResource creates a reference to a downloadable artifact
func RemoteResource(name, rawURL string) Resource {
	return Resource{Kind: ResourceKindRemote, Name: name, URL: rawURL}
}

// LocalResource creates a reference to a file already on disk
func LocalResource(filePath string) Resource {
	return Resource{Kind: ResourceKindLocal, Path: filePath}
}

// FileName returns the base name the resource is stored under
func (r Resource) FileName() string {
	if r.Kind == ResourceKindLocal {
		return path.Base(r.Path)
	}
	u, err := url.Parse(r.URL)
	if err != nil || u.Path == "" {
		return path.Base(r.URL)
	}
	return path.Base(u.Path)
}

// Repository returns the hub repository id ("owner/name") of a remote
// resource hosted as <host>/<owner>/<name>/resolve/<rev>/<file>.
// It returns "" when the URL does not follow that layout.
func (r Resource) Repository() string {
	if r.Kind != ResourceKindRemote {
		return ""
	}
	u, err := url.Parse(r.URL)
	if err != nil {
		return ""
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 4 || parts[2] != "resolve" {
		return ""
	}
	return parts[0] + "/" + parts[1]
}

// String describes the resource for logs and errors
func (r Resource) String() string {
	if r.Kind == ResourceKindLocal {
		return r.Path
	}
	return r.URL
}
