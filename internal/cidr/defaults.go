package cidr

// Default well-known sets (§6.3): private ranges (RFC 1918 / RFC 4193) used
// as the allow_ips default, and a partition of the non-private address
// space used as the deny_ips default.

var privateV4 = []Block{
	MustParse("10.0.0.0/8"),
	MustParse("172.16.0.0/12"),
	MustParse("192.168.0.0/16"),
}

var privateV6 = []Block{
	MustParse("fc00::/7"),
}

var publicV4 = []Block{
	MustParse("0.0.0.0/5"),
	MustParse("8.0.0.0/7"),
	MustParse("11.0.0.0/8"),
	MustParse("12.0.0.0/6"),
	MustParse("16.0.0.0/4"),
	MustParse("32.0.0.0/3"),
	MustParse("64.0.0.0/2"),
	MustParse("128.0.0.0/3"),
	MustParse("160.0.0.0/5"),
	MustParse("168.0.0.0/6"),
	MustParse("172.0.0.0/12"),
	MustParse("172.32.0.0/11"),
	MustParse("172.64.0.0/10"),
	MustParse("172.128.0.0/9"),
	MustParse("173.0.0.0/8"),
	MustParse("174.0.0.0/7"),
	MustParse("176.0.0.0/4"),
	MustParse("192.0.0.0/9"),
	MustParse("192.128.0.0/11"),
	MustParse("192.160.0.0/13"),
	MustParse("192.169.0.0/16"),
	MustParse("192.170.0.0/15"),
	MustParse("192.172.0.0/14"),
	MustParse("192.176.0.0/12"),
	MustParse("192.192.0.0/10"),
	MustParse("193.0.0.0/8"),
	MustParse("194.0.0.0/7"),
	MustParse("196.0.0.0/6"),
	MustParse("200.0.0.0/5"),
	MustParse("208.0.0.0/4"),
}

var publicV6 = []Block{
	MustParse("::/1"),
	MustParse("8000::/2"),
	MustParse("c000::/3"),
	MustParse("e000::/4"),
	MustParse("f000::/5"),
	MustParse("f800::/6"),
	MustParse("fe00::/7"),
}

// DefaultPrivate returns the RFC 1918 IPv4 ranges plus the RFC 4193 IPv6
// range — the default allow_ips list.
func DefaultPrivate() []Block {
	out := make([]Block, 0, len(privateV4)+len(privateV6))
	out = append(out, privateV4...)
	out = append(out, privateV6...)
	return out
}

// DefaultPublic returns the pre-computed partition of the non-private
// address space — the default deny_ips list.
func DefaultPublic() []Block {
	out := make([]Block, 0, len(publicV4)+len(publicV6))
	out = append(out, publicV4...)
	out = append(out, publicV6...)
	return out
}
