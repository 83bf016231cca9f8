package provider

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAccessToken_Expired(t *testing.T) {
	tests := []struct {
		name      string
		expiresIn time.Duration
		margin    time.Duration
		want      bool
	}{
		{
			name:      "正常系: 有効期限内",
			expiresIn: 10 * time.Minute,
			margin:    30 * time.Second,
			want:      false,
		},
		{
			name:      "正常系: 期限切れ",
			expiresIn: -time.Minute,
			margin:    0,
			want:      true,
		},
		{
			name:      "正常系: マージン内は期限切れ扱い",
			expiresIn: 10 * time.Second,
			margin:    30 * time.Second,
			want:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := NewAccessToken("tok", tt.expiresIn)
			assert.Equal(t, tt.want, token.Expired(tt.margin))
		})
	}
}

func TestRequestError_Error(t *testing.T) {
	reqErr := &RequestError{StatusCode: 422, Body: `{"message":"bad amount"}`}
	assert.Contains(t, reqErr.Error(), "422")
	assert.Contains(t, reqErr.Error(), "bad amount")

	timeoutErr := &RequestError{Timeout: true}
	assert.Contains(t, timeoutErr.Error(), "timed out")
}
