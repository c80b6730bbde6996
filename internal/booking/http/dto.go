package http

// BookBody is the payload for booking a desk.
// Days is a pointer so that 0 reaches the engine and is reported as a validation error.
type BookBody struct {
	Days *int `json:"days" binding:"required"`
}

type SetEnabledBody struct {
	Enabled *bool `json:"enabled" binding:"required"`
}
