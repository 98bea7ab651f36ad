package domain

// Supported OAuth2 providers
const (
	ProviderGoogle = "google"
	ProviderNaver  = "naver"
	ProviderKakao  = "kakao"
)

// ProviderInfo is the provider-neutral view of an OAuth2 user profile
type ProviderInfo struct {
	Provider   string
	ProviderID string
	Email      string
	Nickname   string
	Name       string
	ImageURL   string
}
