package wire

// LLMQType values as defined by the Dash consensus parameters. Only the
// types referenced by the processor's test fixtures and DIP-0024 rotation
// are named; any unrecognized type falls back to LLMQParams's zero value
// handling in LLMQSize/LLMQThreshold (an explicit Malformed decode error),
// since an unknown type means the bitset sizes (and therefore the rest of
// the wire layout) cannot be determined.
const (
	LLMQType50_60         uint8 = 1
	LLMQType400_60        uint8 = 2
	LLMQType400_85        uint8 = 3
	LLMQType100_67        uint8 = 4
	LLMQType60_75         uint8 = 5 // DIP-0024 rotated, mainnet
	LLMQType25_67         uint8 = 6
	LLMQTypeTest          uint8 = 100
	LLMQTypeDevnet        uint8 = 101
	LLMQTypeTestV17       uint8 = 102
	LLMQTypeTestDIP0024   uint8 = 103 // DIP-0024 rotated, testnet
	LLMQTypeDevnetDIP0024 uint8 = 104
)

// llmqParams holds the member-count and signing-threshold for one LLMQType.
type llmqParams struct {
	Size      int
	Threshold int
	// DKGInterval is the cycle length c used by the rotated-quorum selector
	// (spec.md §4.6): quarters are drawn from h, h-c, h-2c, h-3c.
	DKGInterval int
	Rotated     bool
}

var llmqParamsByType = map[uint8]llmqParams{
	LLMQType50_60:         {Size: 50, Threshold: 30, DKGInterval: 24, Rotated: false},
	LLMQType400_60:        {Size: 400, Threshold: 240, DKGInterval: 24 * 12, Rotated: false},
	LLMQType400_85:        {Size: 400, Threshold: 340, DKGInterval: 24 * 24, Rotated: false},
	LLMQType100_67:        {Size: 100, Threshold: 67, DKGInterval: 24, Rotated: false},
	LLMQType60_75:         {Size: 60, Threshold: 45, DKGInterval: 24, Rotated: true},
	LLMQType25_67:         {Size: 25, Threshold: 17, DKGInterval: 24, Rotated: false},
	LLMQTypeTest:          {Size: 3, Threshold: 2, DKGInterval: 24, Rotated: false},
	LLMQTypeDevnet:        {Size: 12, Threshold: 6, DKGInterval: 24, Rotated: false},
	LLMQTypeTestV17:       {Size: 3, Threshold: 2, DKGInterval: 24, Rotated: false},
	LLMQTypeTestDIP0024:   {Size: 4, Threshold: 2, DKGInterval: 24, Rotated: true},
	LLMQTypeDevnetDIP0024: {Size: 12, Threshold: 6, DKGInterval: 24, Rotated: true},
}

// LLMQSize returns N, the declared signer/valid-member bitset size for
// llmqType, and false if the type is unrecognized.
func LLMQSize(llmqType uint8) (int, bool) {
	p, ok := llmqParamsByType[llmqType]
	return p.Size, ok
}

// LLMQThreshold returns the minimum popcount required of the signers and
// valid-members bitsets for llmqType, and false if unrecognized.
func LLMQThreshold(llmqType uint8) (int, bool) {
	p, ok := llmqParamsByType[llmqType]
	return p.Threshold, ok
}

// LLMQDKGInterval returns the cycle length c for a rotated llmqType, and
// false if the type is unrecognized or not rotated.
func LLMQDKGInterval(llmqType uint8) (int, bool) {
	p, ok := llmqParamsByType[llmqType]
	if !ok || !p.Rotated {
		return 0, false
	}
	return p.DKGInterval, true
}

// LLMQIsRotated reports whether llmqType uses DIP-0024 deterministic
// rotated membership (C6) rather than DKG-session membership.
func LLMQIsRotated(llmqType uint8) bool {
	p, ok := llmqParamsByType[llmqType]
	return ok && p.Rotated
}
