package utils

// Application constants
const (
	// Application name
	AppName = "JewelSphere"

	// Default port
	DefaultPort = "8080"

	// Default log directory
	DefaultLogDir = "logs"

	// Default pagination limit
	DefaultPaginationLimit = 10

	// Maximum pagination limit
	MaxPaginationLimit = 100

	// Context key holding the request-scoped identity
	IdentityContextKey = "identity"

	// Context key holding the request id
	RequestIDContextKey = "RequestID"
)
