package grapherror

// Category represents the main error category of an exploration session
type Category string

const (
	// CategoryProtocol indicates a malformed or unsupported client message
	CategoryProtocol Category = "protocol"

	// CategoryLookup indicates an actor or movie lookup failed
	CategoryLookup Category = "lookup"

	// CategoryRateLimit indicates the client sent messages too quickly
	CategoryRateLimit Category = "rate_limit"

	// CategoryWebSocket indicates WebSocket connection/communication errors
	CategoryWebSocket Category = "websocket"

	// CategoryGraph indicates graph expansion errors
	CategoryGraph Category = "graph"

	// CategoryInternal indicates internal server errors
	CategoryInternal Category = "internal"
)

// String returns the string representation of the category
func (c Category) String() string {
	return string(c)
}

// Protocol Subcategories
const (
	SubcategoryProtocolInvalidJSON  = "invalid_json"
	SubcategoryProtocolUnknownType  = "unknown_type"
	SubcategoryProtocolInvalidValue = "invalid_value"
)

// Lookup Subcategories
const (
	SubcategoryLookupNotFound    = "not_found"
	SubcategoryLookupUnavailable = "unavailable"
	SubcategoryLookupTimeout     = "timeout"
)

// WebSocket Subcategories
const (
	SubcategoryWSRead       = "read"
	SubcategoryWSWrite      = "write"
	SubcategoryWSUpgrade    = "upgrade"
	SubcategoryWSSlowClient = "slow_client"
)

// Graph Subcategories
const (
	// SubcategoryGraphExpand indicates collaborators could not be added
	SubcategoryGraphExpand = "expand"
)

// Internal Subcategories
const (
	// SubcategoryInternalPanic indicates a panic was recovered
	SubcategoryInternalPanic = "panic"

	// SubcategoryInternalConfig indicates configuration error
	SubcategoryInternalConfig = "config"
)
