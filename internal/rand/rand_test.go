package rand

import (
	"testing"

	"github.com/oneconcern/datasets/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLetterString(t *testing.T) {
	name := LetterString(20)
	require.Len(t, name, 20)
	assert.NoError(t, model.ValidateDatasetName(name))
	assert.NotEqual(t, name, LetterString(20))
}

func TestBytes(t *testing.T) {
	assert.Len(t, Bytes(1024), 1024)
	assert.Empty(t, Bytes(0))
}

func benchmarkBytes(b *testing.B, size int) {
	for n := 0; n < b.N; n++ {
		_ = Bytes(size)
	}
}

func BenchmarkBytes1000(b *testing.B)    { benchmarkBytes(b, 1000) }
func BenchmarkBytes1000000(b *testing.B) { benchmarkBytes(b, 1000000) }
