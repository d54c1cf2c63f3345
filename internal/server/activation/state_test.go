package activation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeState(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		recorded bool
		pending  bool
	}{
		{"missing", "", false, false},
		{"empty", "", true, false},
		{"active", "active", true, false},
		{"code", "ab3#kmnpqr", true, true},
		{"active prefix is a code", "active2", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := decodeState(tt.raw, tt.recorded)
			assert.Equal(t, tt.pending, st.IsPending())
			assert.Equal(t, !tt.pending, st.IsConsumed())
			code, ok := st.Code()
			assert.Equal(t, tt.pending, ok)
			if ok {
				assert.Equal(t, tt.raw, code)
			}
		})
	}
}

func TestEncodeState(t *testing.T) {
	assert.Equal(t, "active", encodeState(Consumed()))
	assert.Equal(t, "x7y8z9abcd", encodeState(Pending("x7y8z9abcd")))
	assert.Equal(t, Pending("x7y8z9abcd"), decodeState(encodeState(Pending("x7y8z9abcd")), true))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "pending", Pending("c").String())
	assert.Equal(t, "consumed", Consumed().String())
	assert.Equal(t, Consumed(), State{})
}
