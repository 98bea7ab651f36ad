package service

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prperemyshlev/wms-server/internal/domain"
)

func TestNormalizeProviderInfo(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		attrs    map[string]any
		want     domain.ProviderInfo
	}{
		{
			name:     "google flat attributes",
			provider: domain.ProviderGoogle,
			attrs: map[string]any{
				"sub":        "1098765432",
				"email":      "Alice@Gmail.com",
				"name":       "Alice Kim",
				"given_name": "Alice",
				"picture":    "https://img.example/a.png",
			},
			want: domain.ProviderInfo{
				Provider: "google", ProviderID: "1098765432", Email: "alice@gmail.com",
				Nickname: "Alice", Name: "Alice Kim", ImageURL: "https://img.example/a.png",
			},
		},
		{
			name:     "naver nested under response",
			provider: domain.ProviderNaver,
			attrs: map[string]any{
				"resultcode": "00",
				"response": map[string]any{
					"id":            "nv-abcdef123",
					"email":         "bob@naver.com",
					"nickname":      "bobby",
					"name":          "Bob",
					"profile_image": "https://img.example/b.png",
				},
			},
			want: domain.ProviderInfo{
				Provider: "naver", ProviderID: "nv-abcdef123", Email: "bob@naver.com",
				Nickname: "bobby", Name: "Bob", ImageURL: "https://img.example/b.png",
			},
		},
		{
			name:     "kakao nested twice with numeric id",
			provider: domain.ProviderKakao,
			attrs: map[string]any{
				"id": json.Number("3141592653"),
				"kakao_account": map[string]any{
					"email": "carol@kakao.com",
					"profile": map[string]any{
						"nickname":          "carol",
						"profile_image_url": "https://img.example/c.png",
					},
				},
			},
			want: domain.ProviderInfo{
				Provider: "kakao", ProviderID: "3141592653", Email: "carol@kakao.com",
				Nickname: "carol", ImageURL: "https://img.example/c.png",
			},
		},
		{
			name:     "kakao without email consent",
			provider: domain.ProviderKakao,
			attrs: map[string]any{
				"id": float64(42),
				"kakao_account": map[string]any{
					"profile": map[string]any{"nickname": "dave"},
				},
			},
			want: domain.ProviderInfo{Provider: "kakao", ProviderID: "42", Nickname: "dave"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := NormalizeProviderInfo(tt.provider, tt.attrs)
			require.NoError(t, err)
			assert.Equal(t, tt.want, *info)
		})
	}
}

func TestNormalizeProviderInfoErrors(t *testing.T) {
	_, err := NormalizeProviderInfo("github", map[string]any{"id": "1"})
	assert.ErrorIs(t, err, ErrUnsupportedProvider)

	_, err = NormalizeProviderInfo(domain.ProviderNaver, map[string]any{"id": "1"})
	assert.ErrorIs(t, err, ErrInvalidProviderResponse)

	_, err = NormalizeProviderInfo(domain.ProviderGoogle, map[string]any{"email": "a@b.com"})
	assert.ErrorIs(t, err, ErrInvalidProviderResponse)

	_, err = NormalizeProviderInfo(domain.ProviderGoogle, map[string]any{"sub": "1", "email": "not-an-email"})
	assert.ErrorIs(t, err, ErrInvalidProviderResponse)
}

func TestBaseNickname(t *testing.T) {
	assert.Equal(t, "bobby_nv-abc", baseNickname(&domain.ProviderInfo{Nickname: "bobby", ProviderID: "nv-abcdef123"}))
	assert.Equal(t, "AliceKim_1098", baseNickname(&domain.ProviderInfo{Name: "Alice Kim", ProviderID: "1098"}))
	assert.Equal(t, "user_42", baseNickname(&domain.ProviderInfo{Nickname: "  !!  ", ProviderID: "42"}))
	assert.Equal(t, "홍길동_314159", baseNickname(&domain.ProviderInfo{Nickname: "홍길동", ProviderID: "3141592653"}))

	long := baseNickname(&domain.ProviderInfo{Nickname: strings.Repeat("a", 120), ProviderID: "777"})
	assert.Equal(t, strings.Repeat("a", 36)+"_777", long)
}

func TestPlaceholderEmail(t *testing.T) {
	info := &domain.ProviderInfo{Provider: "kakao", ProviderID: "42"}
	assert.Equal(t, "kakao_42@users.noreply.wms", placeholderEmail(info))
}
