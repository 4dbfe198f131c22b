package etag

import "strings"

// DefaultKeyPrefix namespaces validator keys in Redis.
const DefaultKeyPrefix = "dashboard:etag"

// Key generates the Redis key for a request URL.
// Format: <namespace>:<url>
//
// Example:
//
//	dashboard:etag:/api/workspace/1?skipCount=0
//
// The URL is kept verbatim: matching is literal, so "/api/x" and "/api/x/"
// are distinct keys.
func Key(namespace, url string) string {
	namespace = strings.TrimSuffix(namespace, ":")
	if namespace == "" {
		namespace = DefaultKeyPrefix
	}
	return namespace + ":" + url
}
