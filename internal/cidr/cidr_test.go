package cidr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_ExactNoMask(t *testing.T) {
	b, err := Parse("10.20.206.46")
	require.NoError(t, err)
	assert.Equal(t, -1, b.PrefixBits)
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse("not-an-ip/8")
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestContains_SelfContainment(t *testing.T) {
	addr, err := ParseAddr("10.20.206.46")
	require.NoError(t, err)

	assert.True(t, Contains(Block{Base: addr, PrefixBits: -1}, addr))
	assert.True(t, Contains(Block{Base: addr, PrefixBits: 0}, addr))

	other, err := ParseAddr("1.2.3.4")
	require.NoError(t, err)
	assert.True(t, Contains(Block{Base: addr, PrefixBits: 0}, other))
}

func TestContains_FamilyExclusion(t *testing.T) {
	v4, err := ParseAddr("10.0.0.1")
	require.NoError(t, err)
	v6, err := ParseAddr("::1")
	require.NoError(t, err)

	assert.False(t, Contains(Block{Base: v4, PrefixBits: 0}, v6))
	assert.False(t, Contains(Block{Base: v6, PrefixBits: 0}, v4))
}

func TestContains_PartialByteMask(t *testing.T) {
	b := MustParse("10.20.206.46/30")
	in, _ := ParseAddr("10.20.206.44")
	out, _ := ParseAddr("10.20.206.48")

	assert.True(t, Contains(b, in))
	assert.False(t, Contains(b, out))
}

func TestAnyContains_ShortCircuits(t *testing.T) {
	ranges := []Block{MustParse("10.0.0.0/8"), MustParse("192.168.0.0/16")}
	a, _ := ParseAddr("192.168.1.1")
	assert.True(t, AnyContains(ranges, a))

	b, _ := ParseAddr("8.8.8.8")
	assert.False(t, AnyContains(ranges, b))
}

func TestChainSemantics(t *testing.T) {
	a, _ := ParseAddr("10.0.0.1")
	b, _ := ParseAddr("192.168.0.1")
	chain := []Addr{a, b}

	allowList := []Block{MustParse("10.0.0.0/8")}
	assert.False(t, Allowed(chain, allowList))
	assert.True(t, Denied(chain, allowList))

	both := []Block{MustParse("10.0.0.0/8"), MustParse("192.168.0.0/16")}
	assert.True(t, Allowed(chain, both))
	assert.True(t, Denied(chain, both))
}

func TestDefaultPrivateAndPublicPartition(t *testing.T) {
	priv := DefaultPrivate()
	pub := DefaultPublic()
	assert.NotEmpty(t, priv)
	assert.NotEmpty(t, pub)

	privAddr, _ := ParseAddr("192.168.1.1")
	assert.True(t, AnyContains(priv, privAddr))
	assert.False(t, AnyContains(pub, privAddr))

	pubAddr, _ := ParseAddr("8.8.8.8")
	assert.True(t, AnyContains(pub, pubAddr))
	assert.False(t, AnyContains(priv, pubAddr))
}

func TestStaticListSource(t *testing.T) {
	src := Static([]Block{MustParse("10.0.0.0/8")})
	assert.Len(t, src.Load(), 1)
}
