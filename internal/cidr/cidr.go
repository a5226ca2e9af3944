package cidr

import (
	"net"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrMalformed is returned by Parse when the input text is not a valid
// addr or addr/mask. Contains and the chain predicates only ever see
// already-parsed Blocks, so this error never arises on the request path.
var ErrMalformed = errors.New("cidr: malformed address or mask")

// Family distinguishes IPv4 from IPv6 addresses. Two addresses of
// different families never compare equal and never contain one another.
type Family int

const (
	V4 Family = iota
	V6
)

// Addr is the parsed form of a textual IPv4 or IPv6 address: a family tag
// plus a fixed-length byte sequence (4 bytes for V4, 16 for V6).
type Addr struct {
	Family Family
	Bytes  []byte
}

// Equal reports whether two addresses have the same family and bytes.
func (a Addr) Equal(b Addr) bool {
	if a.Family != b.Family || len(a.Bytes) != len(b.Bytes) {
		return false
	}
	for i := range a.Bytes {
		if a.Bytes[i] != b.Bytes[i] {
			return false
		}
	}
	return true
}

func (a Addr) String() string {
	return net.IP(a.Bytes).String()
}

// Block is a CIDR range: a base address plus a prefix length. PrefixBits
// == -1 encodes "exact match, no mask".
type Block struct {
	Base       Addr
	PrefixBits int
}

func (b Block) String() string {
	if b.PrefixBits < 0 {
		return b.Base.String()
	}
	return b.Base.String() + "/" + strconv.Itoa(b.PrefixBits)
}

// ParseAddr parses a bare textual IPv4 or IPv6 address (no mask).
func ParseAddr(text string) (Addr, error) {
	ip := net.ParseIP(strings.TrimSpace(text))
	if ip == nil {
		return Addr{}, errors.Wrapf(ErrMalformed, "address %q", text)
	}
	return addrFromIP(ip), nil
}

func addrFromIP(ip net.IP) Addr {
	if v4 := ip.To4(); v4 != nil {
		return Addr{Family: V4, Bytes: append([]byte(nil), v4...)}
	}
	return Addr{Family: V6, Bytes: append([]byte(nil), ip.To16()...)}
}

// Parse accepts "ip" or "ip/prefix" and returns the corresponding Block.
// On failure it returns ErrMalformed (wrapped); lists are parsed up front
// (cmd/gateway rejects a malformed CIDR at config load, MustParse panics),
// so a malformed block never reaches a request.
func Parse(text string) (Block, error) {
	text = strings.TrimSpace(text)
	addrPart, maskPart, hasMask := strings.Cut(text, "/")

	addr, err := ParseAddr(addrPart)
	if err != nil {
		return Block{}, errors.Wrapf(ErrMalformed, "cidr %q", text)
	}

	if !hasMask {
		return Block{Base: addr, PrefixBits: -1}, nil
	}

	bits, err := strconv.Atoi(maskPart)
	if err != nil {
		return Block{}, errors.Wrapf(ErrMalformed, "cidr %q: bad prefix", text)
	}
	maxBits := 8 * len(addr.Bytes)
	if bits < 0 || bits > maxBits {
		return Block{}, errors.Wrapf(ErrMalformed, "cidr %q: prefix out of range", text)
	}
	return Block{Base: addr, PrefixBits: bits}, nil
}

// MustParse is Parse that panics on error, for literal default-set tables.
func MustParse(text string) Block {
	b, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return b
}

// Contains reports whether addr falls within block.
func Contains(block Block, addr Addr) bool {
	if block.Base.Family != addr.Family {
		return false
	}
	if block.PrefixBits == -1 {
		return block.Base.Equal(addr)
	}

	whole := block.PrefixBits / 8
	partial := block.PrefixBits % 8

	for i := 0; i < whole; i++ {
		if block.Base.Bytes[i] != addr.Bytes[i] {
			return false
		}
	}
	if partial == 0 {
		return true
	}
	mask := byte((uint16(0xFF00) >> uint(partial)) & 0xFF)
	return block.Base.Bytes[whole]&mask == addr.Bytes[whole]&mask
}

// AnyContains reports whether any block in ranges contains addr. It
// short-circuits on the first match.
func AnyContains(ranges []Block, addr Addr) bool {
	for _, b := range ranges {
		if Contains(b, addr) {
			return true
		}
	}
	return false
}

// Allowed reports whether every address in chain is contained in
// allowList. A request must pass through only permitted intermediaries.
func Allowed(chain []Addr, allowList []Block) bool {
	for _, a := range chain {
		if !AnyContains(allowList, a) {
			return false
		}
	}
	return true
}

// Denied reports whether any address in chain is contained in denyList.
// One bad hop poisons the chain.
func Denied(chain []Addr, denyList []Block) bool {
	for _, a := range chain {
		if AnyContains(denyList, a) {
			return true
		}
	}
	return false
}

// ListSource abstracts a dynamic or static source of CIDR blocks so a
// middleware can read the current value of an allow/deny/bypass list per
// request without imposing a mutation discipline on the caller.
type ListSource interface {
	Load() []Block
}

type staticList []Block

func (s staticList) Load() []Block { return []Block(s) }

// Static wraps a literal slice of blocks as a ListSource whose Load always
// returns the same value.
func Static(blocks []Block) ListSource { return staticList(blocks) }

// FuncSource adapts a plain function to ListSource, for callers backed by
// an atomic pointer, a config reloader, etc.
type FuncSource func() []Block

func (f FuncSource) Load() []Block { return f() }
