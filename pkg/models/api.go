package models

// ErrorResponse is the JSON body returned for any failed API request.
type ErrorResponse struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// CORSConfig controls cross-origin access to the API.
type CORSConfig struct {
	AllowedOrigins   []string `json:"allowed_origins,omitempty"`
	AllowCredentials bool     `json:"allow_credentials,omitempty"`
}
