package constants

import "time"

// Content types of the JSON:API wire format.
const (
	// ContentTypeJSONAPI is the ordinary single-item content type.
	ContentTypeJSONAPI = "application/vnd.api+json"

	// ContentTypeJSONAPIBulk marks a request whose data member is an array
	// of resource objects for batched create/update/delete.
	ContentTypeJSONAPIBulk = `application/vnd.api+json;profile="bulk"`
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second
)

// Retry limits.
const (
	// DefaultRetryMax is the default maximum number of retries.
	DefaultRetryMax = 5

	// DefaultRetryWaitMin is the minimum wait time between retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait time between retries.
	DefaultRetryWaitMax = 10 * time.Second
)

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)
