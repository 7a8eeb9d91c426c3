package driver

// Chain is a run of adjacent 8-bit cells treated as one big-endian
// integer. Cell 0 is the most significant. Compound operations compute
// on the combined value and store every cell back, most significant
// cell first.
type Chain []uint8

// Uint returns the combined unsigned value.
func (c Chain) Uint() uint64 {
	var v uint64
	for _, b := range c {
		v = v<<8 | uint64(b)
	}
	return v
}

// Int returns the combined value sign-extended from the top cell.
func (c Chain) Int() int64 {
	v := c.Uint()
	bits := uint(len(c)) * 8
	if bits > 0 && bits < 64 && v&(1<<(bits-1)) != 0 {
		v |= ^uint64(0) << bits
	}
	return int64(v)
}

// Set splits v across the cells, dropping bits above the chain width.
func (c Chain) Set(v uint64) {
	n := len(c)
	for i := range c {
		c[i] = uint8(v >> (8 * uint(n-1-i)))
	}
}

func (c Chain) mask() uint64 {
	bits := uint(len(c)) * 8
	if bits >= 64 {
		return ^uint64(0)
	}
	return 1<<bits - 1
}

// Add adds v and reports the carry out of the top cell.
func (c Chain) Add(v uint64) bool {
	cur := c.Uint()
	sum := (cur + v) & c.mask()
	c.Set(sum)
	return sum < cur || v > c.mask()
}

// Sub subtracts v and reports the borrow out of the top cell.
func (c Chain) Sub(v uint64) bool {
	cur := c.Uint()
	c.Set((cur - v) & c.mask())
	return v > cur
}

// Shl shifts left by n bits.
func (c Chain) Shl(n uint) {
	c.Set(c.Uint() << n)
}

// Shr shifts right by n bits.
func (c Chain) Shr(n uint) {
	c.Set(c.Uint() >> n)
}

// Inc adds one and returns the value held before the increment.
func (c Chain) Inc() uint64 {
	v := c.Uint()
	c.Add(1)
	return v
}

// Dec subtracts one and returns the value held before the decrement.
func (c Chain) Dec() uint64 {
	v := c.Uint()
	c.Sub(1)
	return v
}

// Reg16 is a 16-bit value stored as a high cell followed by a low cell.
type Reg16 [2]uint8

// Chain returns a view over both cells.
func (r *Reg16) Chain() Chain { return r[:] }

func (r Reg16) Uint16() uint16 { return uint16(r[0])<<8 | uint16(r[1]) }

func (r *Reg16) Set(v uint16) {
	r[0] = uint8(v >> 8)
	r[1] = uint8(v)
}

func (r Reg16) Hi() uint8 { return r[0] }
func (r Reg16) Lo() uint8 { return r[1] }

// Inc advances the value by one and returns the previous value.
func (r *Reg16) Inc() uint16 {
	return uint16(r.Chain().Inc())
}
