package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type report struct {
	TopK  [][]int   `json:"topk"`
	Score []float64 `json:"score"`
	Level int       `json:"level"`
}

func TestByName(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			c, ok := ByName(name)
			require.True(t, ok)
			assert.Equal(t, name, c.Name())
		})
	}

	_, ok := ByName("msgpack")
	assert.False(t, ok)
}

func TestCodecs_Agree(t *testing.T) {
	in := report{
		TopK:  [][]int{{1, 0, 2}, {0, 3, 0}},
		Score: []float64{1.5, 0.25},
		Level: 2,
	}

	std, err := JSON{}.Marshal(in)
	require.NoError(t, err)
	fast, err := GoJSON{}.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, string(std), string(fast))

	var out report
	require.NoError(t, Default.Unmarshal(std, &out))
	assert.Equal(t, in, out)
}
