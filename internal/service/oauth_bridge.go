package service

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/prperemyshlev/wms-server/internal/domain"
	"github.com/prperemyshlev/wms-server/internal/utils"
)

const defaultNickname = "user"

// NormalizeProviderInfo converts a provider's user-info attributes into a ProviderInfo.
// Google returns a flat object, Naver nests it under "response" and Kakao splits it
// between the top level and kakao_account.profile.
func NormalizeProviderInfo(provider string, attrs map[string]any) (*domain.ProviderInfo, error) {
	var info *domain.ProviderInfo

	switch provider {
	case domain.ProviderGoogle:
		info = &domain.ProviderInfo{
			ProviderID: stringAttr(attrs, "sub"),
			Email:      stringAttr(attrs, "email"),
			Name:       stringAttr(attrs, "name"),
			Nickname:   stringAttr(attrs, "given_name"),
			ImageURL:   stringAttr(attrs, "picture"),
		}
	case domain.ProviderNaver:
		response, ok := mapAttr(attrs, "response")
		if !ok {
			return nil, fmt.Errorf("naver: missing response object: %w", ErrInvalidProviderResponse)
		}
		info = &domain.ProviderInfo{
			ProviderID: stringAttr(response, "id"),
			Email:      stringAttr(response, "email"),
			Name:       stringAttr(response, "name"),
			Nickname:   stringAttr(response, "nickname"),
			ImageURL:   stringAttr(response, "profile_image"),
		}
	case domain.ProviderKakao:
		info = &domain.ProviderInfo{ProviderID: stringAttr(attrs, "id")}
		if account, ok := mapAttr(attrs, "kakao_account"); ok {
			info.Email = stringAttr(account, "email")
			if profile, ok := mapAttr(account, "profile"); ok {
				info.Nickname = stringAttr(profile, "nickname")
				info.ImageURL = stringAttr(profile, "profile_image_url")
			}
		}
	default:
		return nil, fmt.Errorf("provider %q: %w", provider, ErrUnsupportedProvider)
	}

	if info.ProviderID == "" {
		return nil, fmt.Errorf("%s: missing user id: %w", provider, ErrInvalidProviderResponse)
	}

	info.Provider = provider
	info.Email = utils.SanitizeEmail(info.Email)
	if info.Email != "" && !utils.ValidateEmail(info.Email) {
		return nil, fmt.Errorf("%s: malformed email: %w", provider, ErrInvalidProviderResponse)
	}

	return info, nil
}

// placeholderEmail stands in for providers that do not share an address
func placeholderEmail(info *domain.ProviderInfo) string {
	return fmt.Sprintf("%s_%s@users.noreply.wms", info.Provider, info.ProviderID)
}

// baseNickname is the provider nickname (or name) followed by the first six
// characters of the provider id
func baseNickname(info *domain.ProviderInfo) string {
	nickname := utils.SanitizeNickname(info.Nickname)
	if nickname == "" {
		nickname = utils.SanitizeNickname(info.Name)
	}
	if nickname == "" {
		nickname = defaultNickname
	}

	id := info.ProviderID
	if len(id) > 6 {
		id = id[:6]
	}

	// 36 runes plus "_" and the 6 char id stays well inside nickname VARCHAR(100)
	if r := []rune(nickname); len(r) > 36 {
		nickname = string(r[:36])
	}
	return nickname + "_" + id
}

func stringAttr(attrs map[string]any, key string) string {
	switch v := attrs[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	}
	return ""
}

func mapAttr(attrs map[string]any, key string) (map[string]any, bool) {
	m, ok := attrs[key].(map[string]any)
	return m, ok
}
