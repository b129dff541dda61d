package utils

const (
	ContentTypeHeader        = "Content-Type"
	ContentDispositionHeader = "Content-Disposition"
	AcceptHeader             = "Accept"
	UserAgentHeader          = "User-Agent"
)

const (
	JSONContentType        = "application/json"
	OctetStreamContentType = "application/octet-stream"
)

const (
	GalleryAPIVersion = "application/json;api-version=7.1-preview.1"
)

const (
	VSIXExtension    = ".vsix"
	DefaultChunkSize = 8192
)
