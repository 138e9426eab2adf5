package email

import "fmt"

// VerificationMail arma el mail con el link de verificación.
// baseURL es el origin del front-end; el token viaja como query param y el
// front lo postea a /v1/auth/verify-email.
func VerificationMail(baseURL, token string) (subject, htmlBody, textBody string) {
	link := fmt.Sprintf("%s/auth/verify-email?token=%s", baseURL, token)
	subject = "Verify your email"
	htmlBody = fmt.Sprintf(`<a href="%s">Click here to verify your email</a>`, link)
	textBody = "Verify your email: " + link
	return subject, htmlBody, textBody
}
