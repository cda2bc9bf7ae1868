package signer_test

import (
	"crypto/hmac"
	"crypto/sha1" //nolint:gosec
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"hash"
	"net/url"
	"strings"
	"testing"

	"github.com/lestrrat-go/cloudstack/signer"
	"github.com/stretchr/testify/require"
)

func expectedSignature(h func() hash.Hash, canonical, secret string) string {
	mac := hmac.New(h, []byte(secret))
	mac.Write([]byte(strings.ToLower(canonical)))
	return url.QueryEscape(base64.StdEncoding.EncodeToString(mac.Sum(nil)))
}

func TestSign(t *testing.T) {
	t.Parallel()

	const canonical = "apiKey=K&command=listVirtualMachines&list=all"
	const secret = "S"

	testcases := []struct {
		Algorithm signer.Algorithm
		Hash      func() hash.Hash
	}{
		{Algorithm: signer.HMACSHA1, Hash: sha1.New},
		{Algorithm: signer.HMACSHA256, Hash: sha256.New},
		{Algorithm: signer.HMACSHA512, Hash: sha512.New},
	}

	for _, tc := range testcases {
		t.Run(string(tc.Algorithm), func(t *testing.T) {
			t.Parallel()

			sig, err := signer.Sign(tc.Algorithm, canonical, secret)
			require.NoError(t, err)
			// base64 output never contains spaces, so QueryEscape agrees with Escape here
			require.Equal(t, expectedSignature(tc.Hash, canonical, secret), sig)

			again, err := signer.Sign(tc.Algorithm, canonical, secret)
			require.NoError(t, err)
			require.Equal(t, sig, again, "signatures must be deterministic")
		})
	}
}

func TestSignLowercasesInput(t *testing.T) {
	t.Parallel()

	upper, err := signer.Sign(signer.HMACSHA1, "apiKey=K&command=listZones", "S")
	require.NoError(t, err)
	lower, err := signer.Sign(signer.HMACSHA1, "apikey=k&command=listzones", "S")
	require.NoError(t, err)
	require.Equal(t, upper, lower)
}

func TestSignChangesWithInput(t *testing.T) {
	t.Parallel()

	a, err := signer.Sign(signer.Default, "command=listzones&id=1", "S")
	require.NoError(t, err)
	b, err := signer.Sign(signer.Default, "command=listzones&id=2", "S")
	require.NoError(t, err)
	c, err := signer.Sign(signer.Default, "command=listzones&id=1", "T")
	require.NoError(t, err)

	require.NotEqual(t, a, b)
	require.NotEqual(t, a, c)
}

func TestSignErrors(t *testing.T) {
	t.Parallel()

	_, err := signer.Sign(signer.HMACSHA1, "command=listzones", "")
	require.ErrorIs(t, err, signer.ErrMissingKey)

	_, err = signer.Sign(signer.Algorithm("rsa-pss-sha512"), "command=listzones", "S")
	require.ErrorIs(t, err, signer.ErrUnsupportedAlgorithm)
}

func TestParseAlgorithm(t *testing.T) {
	t.Parallel()

	alg, err := signer.ParseAlgorithm("")
	require.NoError(t, err)
	require.Equal(t, signer.HMACSHA1, alg)

	alg, err = signer.ParseAlgorithm("HMAC-SHA256")
	require.NoError(t, err)
	require.Equal(t, signer.HMACSHA256, alg)

	_, err = signer.ParseAlgorithm("md5")
	require.ErrorIs(t, err, signer.ErrUnsupportedAlgorithm)
}
