package emailprovider

// SendEmailRequest тело запроса POST /emails.
type SendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// SendEmailResponse ответ на успешную отправку.
type SendEmailResponse struct {
	ID string `json:"id"`
}

// errorResponse тело ответа с ошибкой.
type errorResponse struct {
	StatusCode int    `json:"statusCode"`
	Name       string `json:"name"`
	Message    string `json:"message"`
}
