package dto

// CreateOperatorRequest is the body of POST /api/v1/operators
type CreateOperatorRequest struct {
	Name string `json:"name"`
}

// CreateAccountRequest is the body of POST /api/v1/operators/{operator_id}/accounts
type CreateAccountRequest struct {
	PhoneNumber string `json:"phone_number"`
	Name        string `json:"name"`
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status  string            `json:"status"`
	Service string            `json:"service"`
	Checks  map[string]string `json:"checks"`
}
