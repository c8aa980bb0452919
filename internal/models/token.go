package models

// Token kinds carried in the token_type claim.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// TokenDetails is a signed access/refresh pair. The expiry fields are unix
// timestamps kept for internal bookkeeping and never serialized.
type TokenDetails struct {
	AccessToken  string `json:"access"`
	RefreshToken string `json:"refresh"`
	AtExpires    int64  `json:"-"`
	RtExpires    int64  `json:"-"`
}
