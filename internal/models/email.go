package models

// Email транзакционное письмо. В этом же виде сообщение публикуется в очередь.
type Email struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}
