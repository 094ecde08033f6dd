package users_test

import (
	"testing"

	users "github.com/goliatone/go-users"
	"github.com/stretchr/testify/assert"
)

func TestBearerFromHeader(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{
			name:   "standard bearer header",
			header: "Bearer abc.def.ghi",
			want:   "abc.def.ghi",
		},
		{
			name:   "lowercase scheme",
			header: "bearer abc.def.ghi",
			want:   "abc.def.ghi",
		},
		{
			name:   "surrounding whitespace",
			header: "  Bearer abc.def.ghi  ",
			want:   "abc.def.ghi",
		},
		{
			name:    "empty header",
			header:  "",
			wantErr: true,
		},
		{
			name:    "scheme only",
			header:  "Bearer",
			wantErr: true,
		},
		{
			name:    "scheme with empty token",
			header:  "Bearer   ",
			wantErr: true,
		},
		{
			name:    "wrong scheme",
			header:  "Basic abc.def.ghi",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := users.BearerFromHeader(tt.header)

			if tt.wantErr {
				assert.ErrorIs(t, err, users.ErrTokenMissing)
				assert.Empty(t, raw)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.want, raw)
		})
	}
}

func TestTokenValidatorFunc(t *testing.T) {
	t.Run("nil func reports malformed", func(t *testing.T) {
		var fn users.TokenValidatorFunc

		_, err := fn.Validate("anything")
		assert.ErrorIs(t, err, users.ErrTokenMalformed)
	})

	t.Run("delegates to the wrapped func", func(t *testing.T) {
		called := false
		fn := users.TokenValidatorFunc(func(tokenString string) (users.AuthClaims, error) {
			called = true
			return nil, users.ErrTokenExpired
		})

		_, err := fn.Validate("anything")
		assert.True(t, called)
		assert.ErrorIs(t, err, users.ErrTokenExpired)
	})
}
