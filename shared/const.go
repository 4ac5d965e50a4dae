package shared

const (
	UserID = "user_id"

	// Anonymous viewers collapse into a single bucket when counting
	// unique viewers.
	AnonymousViewer = "anonymous"

	// Share token length in hex characters (32 random bytes).
	ShareTokenLength = 64
)
