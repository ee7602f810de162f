package auth

import "strings"

const (
	// MethodMarketplace marks operators signed in with marketplace admin credentials.
	MethodMarketplace = "marketplace"
)

// Principal is the signed-in operator. The console holds the operator's
// marketplace tokens and acts on the backend with them.
type Principal struct {
	Email        string
	AccessToken  string
	RefreshToken string
	Method       string
}

func (p Principal) Valid() bool {
	return p.Email != "" && p.AccessToken != ""
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
