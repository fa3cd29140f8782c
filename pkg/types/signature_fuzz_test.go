package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func FuzzSignatureFromBytes(f *testing.F) {
	f.Add([]byte{})
	f.Add(make([]byte, SignatureLength))
	f.Add(make([]byte, SignatureLength-1))
	f.Add(make([]byte, SignatureLength+1))

	f.Fuzz(func(t *testing.T, b []byte) {
		sig, err := SignatureFromBytes(b)
		if len(b) != SignatureLength {
			require.Error(t, err)
			return
		}
		require.NoError(t, err)
		require.Equal(t, b, sig.Bytes())

		// every 64-byte value survives both textual encodings
		fromHex, err := SignatureFromHex(sig.Hex())
		require.NoError(t, err)
		require.Equal(t, sig, fromHex)

		fromBase58, err := SignatureFromBase58(sig.String())
		require.NoError(t, err)
		require.Equal(t, sig, fromBase58)
	})
}

func FuzzSignatureFromText(f *testing.F) {
	f.Add("")
	f.Add("zz")
	f.Add("0OIl")
	f.Add("5VERv8NMvzbJMEkV8xnrLkEaWRtSz9CosKDYjCJjBRnbJLgp8uirBgmQpjKhoR4tjF3ZpRzrFmBV6UjKdiSZkQUW")

	// decoders must never panic and never return a value of the wrong size
	f.Fuzz(func(t *testing.T, s string) {
		if sig, err := SignatureFromHex(s); err == nil {
			require.Len(t, sig.Bytes(), SignatureLength)
		}
		if sig, err := SignatureFromBase58(s); err == nil {
			require.Len(t, sig.Bytes(), SignatureLength)
		}
		if pk, err := PublicKeyFromBase58(s); err == nil {
			require.Len(t, pk.Bytes(), PublicKeyLength)
		}
	})
}
