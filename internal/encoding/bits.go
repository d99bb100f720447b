package encoding

// BitSet packs up to 8 boolean flags, declared consecutively in a method's
// argument list, into a single octet — the AMQP 0-9-1 "bit" field rule.
// Queue/Exchange declare arguments (passive, durable, exclusive, auto_delete,
// no_wait) are the canonical user of this helper.
type BitSet uint8

// Set sets or clears bit i (0 = least significant, first-declared field).
func (b *BitSet) Set(i int, v bool) {
	if v {
		*b |= 1 << uint(i)
	} else {
		*b &^= 1 << uint(i)
	}
}

// Get reports whether bit i is set.
func (b BitSet) Get(i int) bool {
	return b&(1<<uint(i)) != 0
}
