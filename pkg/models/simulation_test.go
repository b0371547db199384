package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulationParametersClone(t *testing.T) {
	p := SimulationParameters{Paths: 10, Maturities: []float64{1, 2}, Strikes: []float64{100}}
	c := p.Clone()

	c.Maturities[0] = 9
	c.Strikes[0] = 9
	assert.Equal(t, 1.0, p.Maturities[0])
	assert.Equal(t, 100.0, p.Strikes[0])
	assert.Equal(t, 50, p.Tuples())
}

func TestDetailedSlotsSerializeEmptyAsNull(t *testing.T) {
	var r SimulationResult
	r.Detailed[4] = &DetailedSample{Column: 4, Prices: []float64{1.5}}

	data, err := json.Marshal(&r)
	require.NoError(t, err)

	var decoded struct {
		Detailed []*DetailedSample `json:"detailed"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded.Detailed, DetailedSlots)
	assert.Nil(t, decoded.Detailed[0])
	assert.Equal(t, []float64{1.5}, decoded.Detailed[4].Prices)
	assert.Equal(t, 1, r.PopulatedSlots())
}
