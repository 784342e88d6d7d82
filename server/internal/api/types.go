package api

// DatasetResponse is the payload for GET /api/v1/dataset.
type DatasetResponse struct {
	Records    int      `json:"records"`
	Sites      []string `json:"sites"`
	MinPayload float64  `json:"min_payload"`
	MaxPayload float64  `json:"max_payload"`
}

// errorResponse is a generic JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}
