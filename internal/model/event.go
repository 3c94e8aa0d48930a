package model

// EmailDeliveryEvent is the payload consumed from the delivery queue.
type EmailDeliveryEvent struct {
	To            string   `json:"to"`
	From          string   `json:"from"`
	Subject       string   `json:"subject"`
	BodyType      BodyType `json:"body_type"`
	PlainTextBody string   `json:"plain_text_body"`
	HTMLBody      string   `json:"html_body"`
	EmailType     string   `json:"email_type"` // routing + metrics label only
}
