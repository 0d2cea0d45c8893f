package circuit

import (
	"fmt"

	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/math/bits"
)

const (
	WordBits  = 64
	WordBytes = 8
)

// Word is an unsigned 64-bit integer laid out as 64 boolean wires.
// Bytes are little-endian and the bits of each byte are stored most-significant first,
// so the wires of a Word are exactly the message bit stream of its 8 bytes.
type Word [WordBits]frontend.Variable

// wirePos maps the k-th least significant bit of the value to its wire index.
func wirePos(k int) int {
	return (k/8)*8 + 7 - k%8
}

// ConstantWord returns the constant wires of x.
func ConstantWord(x uint64) Word {
	var w Word
	for k := 0; k < WordBits; k++ {
		w[wirePos(k)] = (x >> k) & 1
	}
	return w
}

// WordFromBits builds a Word from 64 wires given in Word order.
func WordFromBits(wires []frontend.Variable) Word {
	if len(wires) != WordBits {
		panic(fmt.Sprintf("word needs %d wires, got %d", WordBits, len(wires)))
	}
	var w Word
	copy(w[:], wires)
	return w
}

// Bits returns the wires of w in Word order.
func (w Word) Bits() []frontend.Variable {
	out := make([]frontend.Variable, WordBits)
	copy(out, w[:])
	return out
}

// canonical returns the wires of w least significant bit first.
func (w Word) canonical() [WordBits]frontend.Variable {
	var c [WordBits]frontend.Variable
	for k := 0; k < WordBits; k++ {
		c[k] = w[wirePos(k)]
	}
	return c
}

func fromCanonical(c []frontend.Variable) Word {
	if len(c) != WordBits {
		panic(fmt.Sprintf("word needs %d wires, got %d", WordBits, len(c)))
	}
	var w Word
	for k := 0; k < WordBits; k++ {
		w[wirePos(k)] = c[k]
	}
	return w
}

// reverseBytes swaps the byte order of w and keeps the bit order inside each byte.
// Applied to a Word it yields the value most significant bit first.
func reverseBytes(w Word) Word {
	var out Word
	for b := 0; b < WordBytes; b++ {
		copy(out[(WordBytes-1-b)*8:(WordBytes-b)*8], w[b*8:(b+1)*8])
	}
	return out
}

// NotBit returns 1 - a. a must be boolean.
func NotBit(api frontend.API, a frontend.Variable) frontend.Variable {
	r := api.Sub(1, a)
	if _, isConst := api.Compiler().ConstantValue(r); !isConst {
		api.Compiler().MarkBoolean(r)
	}
	return r
}

// XorBit computes a XOR b from NOT and AND gates only:
// not(and(not a, not b)) AND not(and(a, b)).
func XorBit(api frontend.API, a, b frontend.Variable) frontend.Variable {
	or := NotBit(api, api.And(NotBit(api, a), NotBit(api, b)))
	nand := NotBit(api, api.And(a, b))
	return api.And(or, nand)
}

// XorWords returns the bitwise XOR of a and b.
func XorWords(api frontend.API, a, b Word) Word {
	var out Word
	for i := range out {
		out[i] = XorBit(api, a[i], b[i])
	}
	return out
}

// TripleXorWords returns a ^ b ^ c.
func TripleXorWords(api frontend.API, a, b, c Word) Word {
	return XorWords(api, XorWords(api, a, b), c)
}

// NotWord returns the bitwise complement of a.
func NotWord(api frontend.API, a Word) Word {
	var out Word
	for i := range out {
		out[i] = NotBit(api, a[i])
	}
	return out
}

// AddWordsWrapping returns a + b mod 2^64.
// Each word is split into 32-bit halves which are added natively; the carry of the low half
// is read from a 33-bit decomposition and fed into the high half, whose carry is dropped.
func AddWordsWrapping(api frontend.API, a, b Word) Word {
	ca, cb := a.canonical(), b.canonical()

	lo := api.Add(LeSum(api, ca[:32]), LeSum(api, cb[:32]))
	loBits := bits.ToBinary(api, lo, bits.WithNbDigits(33))

	hi := api.Add(LeSum(api, ca[32:]), LeSum(api, cb[32:]), loBits[32])
	hiBits := bits.ToBinary(api, hi, bits.WithNbDigits(33))

	sum := make([]frontend.Variable, 0, WordBits)
	sum = append(sum, loBits[:32]...)
	sum = append(sum, hiBits[:32]...)
	return fromCanonical(sum)
}

// TripleAddWordsWrapping returns a + b + c mod 2^64 as two chained additions.
func TripleAddWordsWrapping(api frontend.API, a, b, c Word) Word {
	return AddWordsWrapping(api, AddWordsWrapping(api, a, b), c)
}

// RotateRightWord rotates w right by amount bits. Rotation only permutes wires.
func RotateRightWord(w Word, amount int) Word {
	if amount <= 0 || amount >= WordBits {
		panic(fmt.Sprintf("rotation amount must be in (0, %d), got %d", WordBits, amount))
	}
	seq := reverseBytes(w)
	var rotated Word
	for i := range seq {
		rotated[(i+amount)%WordBits] = seq[i]
	}
	return reverseBytes(rotated)
}

// LeSum recomposes little-endian boolean wires into a field element.
// The wires are not re-constrained to be boolean.
func LeSum(api frontend.API, digits []frontend.Variable) frontend.Variable {
	if len(digits) >= api.Compiler().FieldBitLen() {
		panic(fmt.Sprintf("%d bits may overflow a %d-bit field", len(digits), api.Compiler().FieldBitLen()))
	}
	return bits.FromBinary(api, digits, bits.WithUnconstrainedInputs())
}

// splitOffset decomposes a byte offset into the low and high counter words.
// Offsets are bounded below 2^64 so the high word is always zero.
func splitOffset(api frontend.API, offset frontend.Variable) (Word, Word) {
	lo := bits.ToBinary(api, offset, bits.WithNbDigits(WordBits))
	return fromCanonical(lo), ConstantWord(0)
}
