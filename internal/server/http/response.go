package http

type apiError struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func errorResponse(message string, err error) apiError {
	resp := apiError{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	return resp
}
