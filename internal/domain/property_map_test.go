package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPropertyMap_InsertionOrderPreserved(t *testing.T) {
	m := NewPropertyMap()
	m.Set("size", "M")
	m.Set("color", "red")
	m.Set("material", "leather")

	assert.Equal(t, []string{"size", "color", "material"}, m.Names())
}

func TestPropertyMap_SetReplacesKeepingPosition(t *testing.T) {
	m := NewPropertyMap()
	m.Set("size", "M")
	m.Set("color", "red")
	m.Set("size", "L")

	assert.Equal(t, []string{"size", "color"}, m.Names())
	assert.Equal(t, "L", m.First("size"))
}

func TestPropertyMap_Contains(t *testing.T) {
	m := NewPropertyMap()
	m.Set("color", "red", "blue")

	assert.True(t, m.Contains("color", "blue"))
	assert.False(t, m.Contains("color", "green"))
	assert.False(t, m.Contains("size", "M"))
}

func TestPropertyMap_CloneIsIndependent(t *testing.T) {
	m := NewPropertyMap()
	m.Set("color", "red")

	c := m.Clone()
	c.Set("color", "blue")
	c.Set("size", "M")

	assert.Equal(t, "red", m.First("color"))
	assert.False(t, m.Has("size"))
}

func TestPropertyMap_Equal(t *testing.T) {
	a := NewPropertyMap()
	a.Set("color", "red")
	a.Set("size", "M")

	b := NewPropertyMap()
	b.Set("color", "red")
	b.Set("size", "M")

	assert.True(t, a.Equal(b))

	// Same pairs, different insertion order: not equal, order matters for
	// the display grouping.
	c := NewPropertyMap()
	c.Set("size", "M")
	c.Set("color", "red")
	assert.False(t, a.Equal(c))
}

func TestPropertyMap_JSONRoundTripKeepsOrder(t *testing.T) {
	m := NewPropertyMap()
	m.Set("size", "M")
	m.Set("color", "red")

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"size":["M"],"color":["red"]}`, string(data))

	var back PropertyMap
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, []string{"size", "color"}, back.Names())
	assert.Equal(t, "red", back.First("color"))
}

func TestPropertyMap_UnmarshalBareStringValue(t *testing.T) {
	var m PropertyMap
	require.NoError(t, json.Unmarshal([]byte(`{"color":"red","size":["M"]}`), &m))

	assert.Equal(t, []string{"red"}, m.Get("color"))
	assert.Equal(t, []string{"M"}, m.Get("size"))
}

func TestPropertyMap_UnmarshalRejectsNonObject(t *testing.T) {
	var m PropertyMap
	assert.Error(t, json.Unmarshal([]byte(`["color"]`), &m))
}
