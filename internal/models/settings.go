package models

type Settings struct {
	WelcomeMessage        string
	PaymentSuccessMessage string
	CompletionMessage     string
}
