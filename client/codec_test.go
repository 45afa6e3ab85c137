package client_test

import (
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solidario/estoque/client"
)

func makeToken(t *testing.T, payload map[string]any) string {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	return header + "." + base64.RawURLEncoding.EncodeToString(body) + ".assinatura-qualquer"
}

func TestDecodeAccessToken(t *testing.T) {
	t.Run("extracts identity from a well formed payload", func(t *testing.T) {
		token := makeToken(t, map[string]any{
			"sub":    "maria@ong.com",
			"userId": 42,
			"nome":   "Maria Silva",
			"perfil": "ADMIN",
		})

		identity, err := client.DecodeAccessToken(token)
		require.NoError(t, err)
		assert.Equal(t, int64(42), identity.ID)
		assert.Equal(t, "Maria Silva", identity.Nome)
		assert.Equal(t, "maria@ong.com", identity.Email)
		assert.Equal(t, "ADMIN", identity.Perfil)
		assert.True(t, identity.IsAdmin())
	})

	t.Run("falls back to the id claim when userId is absent", func(t *testing.T) {
		token := makeToken(t, map[string]any{
			"sub":    "joao@ong.com",
			"id":     7,
			"nome":   "João",
			"perfil": "VOLUNTARIO",
		})

		identity, err := client.DecodeAccessToken(token)
		require.NoError(t, err)
		assert.Equal(t, int64(7), identity.ID)
		assert.False(t, identity.IsAdmin())
	})

	t.Run("rejects tokens without three segments", func(t *testing.T) {
		for _, raw := range []string{"", "abc", "a.b", "a.b.c.d"} {
			identity, err := client.DecodeAccessToken(raw)
			assert.Error(t, err, raw)
			assert.Nil(t, identity, raw)
		}
	})

	t.Run("rejects malformed base64", func(t *testing.T) {
		identity, err := client.DecodeAccessToken("cabecalho.%%%%.assinatura")
		assert.Error(t, err)
		assert.Nil(t, identity)
	})

	t.Run("rejects truncated JSON", func(t *testing.T) {
		segment := base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"x@y.com","no`))
		identity, err := client.DecodeAccessToken("h." + segment + ".s")
		assert.Error(t, err)
		assert.Nil(t, identity)
	})

	t.Run("rejects payloads missing required fields", func(t *testing.T) {
		cases := map[string]map[string]any{
			"sem userId nem id": {"sub": "a@b.com", "nome": "A", "perfil": "ADMIN"},
			"sem nome":          {"sub": "a@b.com", "userId": 1, "perfil": "ADMIN"},
			"sem sub":           {"userId": 1, "nome": "A", "perfil": "ADMIN"},
			"sem perfil":        {"sub": "a@b.com", "userId": 1, "nome": "A"},
			"perfil desconhecido": {
				"sub": "a@b.com", "userId": 1, "nome": "A", "perfil": "GERENTE",
			},
			"userId não positivo": {
				"sub": "a@b.com", "userId": 0, "nome": "A", "perfil": "ADMIN",
			},
		}
		for name, payload := range cases {
			identity, err := client.DecodeAccessToken(makeToken(t, payload))
			assert.Error(t, err, name)
			assert.Nil(t, identity, name)
		}
	})
}
