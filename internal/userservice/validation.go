package userservice

import (
	"regexp"

	"github.com/sushihentaime/blogcontent/internal/common"
)

const (
	minUsernameLen = 3
	maxUsernameLen = 25
	minPasswordLen = 8
	// bytes, bcrypt rejects anything longer
	maxPasswordLen = 72

	passwordRulesMsg = "must be between 8 and 72 characters long and contain at least one uppercase letter, one lowercase letter, one number, and one symbol"
)

var (
	emailRX    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	usernameRX = regexp.MustCompile("^[a-zA-Z0-9]+$")

	passwordClasses = []*regexp.Regexp{
		regexp.MustCompile("[A-Z]"),
		regexp.MustCompile("[a-z]"),
		regexp.MustCompile("[0-9]"),
		regexp.MustCompile(`[#?!@$%^&*_\\-]`),
	}
)

// validateRegistration checks every field of a sign-up request.
func validateRegistration(v *common.Validator, username, email, password string) {
	validateUsername(v, username)
	validateEmail(v, email)
	validatePassword(v, password)
}

// validateCredentials only requires presence. Password rules are not re-applied at login.
func validateCredentials(v *common.Validator, username, password string) {
	v.Check(username != "", "username", "must be provided")
	v.Check(password != "", "password", "must be provided")
}

func validateUsername(v *common.Validator, username string) {
	v.Check(username != "", "username", "must be provided")
	v.Check(v.CheckStringLength(username, minUsernameLen, maxUsernameLen), "username", "must be between 3 and 25 characters long")
	v.Check(usernameRX.MatchString(username), "username", "must only contain letters and numbers")
}

func validateEmail(v *common.Validator, email string) {
	v.Check(email != "", "email", "must be provided")
	v.Check(emailRX.MatchString(email), "email", "must be a valid email address")
}

func validatePassword(v *common.Validator, password string) {
	v.Check(password != "", "password", "must be provided")
	v.Check(strongPassword(v, password), "password", passwordRulesMsg)
}

func strongPassword(v *common.Validator, password string) bool {
	if !v.CheckStringLength(password, minPasswordLen, maxPasswordLen) || len(password) > maxPasswordLen {
		return false
	}

	for _, rx := range passwordClasses {
		if !rx.MatchString(password) {
			return false
		}
	}

	return true
}

func validateToken(v *common.Validator, token string) {
	v.Check(token != "", "token", "must be provided")
}

func validateID(v *common.Validator, id int64, name string) {
	v.Check(id > 0, name, "must be greater than zero")
}
