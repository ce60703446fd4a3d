package service

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDialogPayloadRoundTrip(t *testing.T) {
	t.Parallel()

	key := "dialog-hmac-key"
	p := DialogPayload{ClientID: "client-1", Code: "authorization-code-value"}

	token, err := EncodeDialogPayload(key, p)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	decoded, err := DecodeDialogPayload(key, token)
	require.NoError(t, err)
	require.Equal(t, p, decoded)
}

func TestDialogPayloadRejectsTampering(t *testing.T) {
	t.Parallel()

	key := "dialog-hmac-key"
	token, err := EncodeDialogPayload(key, DialogPayload{ClientID: "client-1", Code: "code-a"})
	require.NoError(t, err)

	tampered := token + "x"
	_, err = DecodeDialogPayload(key, tampered)
	require.ErrorIs(t, err, ErrDialogPayloadInvalid)
}

func TestDialogPayloadRejectsWrongKey(t *testing.T) {
	t.Parallel()

	token, err := EncodeDialogPayload("key-a", DialogPayload{ClientID: "client-1", Code: "code-a"})
	require.NoError(t, err)

	_, err = DecodeDialogPayload("key-b", token)
	require.ErrorIs(t, err, ErrDialogPayloadInvalid)
}

func TestDialogPayloadRejectsMalformedToken(t *testing.T) {
	t.Parallel()

	_, err := DecodeDialogPayload("key", "not-a-valid-payload-at-all")
	require.ErrorIs(t, err, ErrDialogPayloadInvalid)
}
