package respond

import (
	"regexp"
)

var (
	// key=... in catalog request URLs
	apiKeyParamPattern = regexp.MustCompile(`([?&]key=)[^&\s"]+`)

	// password in a postgres:// DSN
	dbPasswordPattern = regexp.MustCompile(`://([^:/@\s]+):([^@\s]+)@`)

	// password=... in a key/value DSN
	dsnPasswordPattern = regexp.MustCompile(`(password=)\S+`)
)

// SanitizeError は機密情報をマスクしたエラーメッセージを返す
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	msg = apiKeyParamPattern.ReplaceAllString(msg, "${1}****")
	msg = dbPasswordPattern.ReplaceAllString(msg, "://$1:****@")
	msg = dsnPasswordPattern.ReplaceAllString(msg, "${1}****")
	return msg
}
