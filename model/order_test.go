package model_test

import (
	"testing"

	"CourierBot/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParcel(t *testing.T) {
	t.Run("declared value is kept as entered", func(t *testing.T) {
		var p model.Parcel
		assert.False(t, p.Has(model.FieldValue))
		assert.Equal(t, "", p.Text(model.FieldValue))

		p.Set(model.FieldValue, "12.5")
		require.NotNil(t, p.Value)
		assert.Equal(t, "12.5", *p.Value)
		assert.Equal(t, "12.5", p.Text(model.FieldValue))

		p.Unset(model.FieldValue)
		assert.Nil(t, p.Value)
	})

	t.Run("size is stored as a number", func(t *testing.T) {
		var p model.Parcel
		p.Set(model.FieldSize, "3")
		require.NotNil(t, p.Size)
		assert.Equal(t, 3, *p.Size)
		assert.Equal(t, "3", p.Text(model.FieldSize))

		p.Set(model.FieldSize, "big")
		assert.Equal(t, 3, *p.Size)
	})
}

func TestAddress(t *testing.T) {
	var a model.Address
	a.Set(model.FieldNote, "")
	assert.True(t, a.Has(model.FieldNote))
	assert.Equal(t, "", a.Text(model.FieldNote))

	a.Set(model.FieldFullName, "Jane Doe")
	a.SetLocation(41.01, 28.97)
	a.ClearText()
	assert.Equal(t, "", a.Text(model.FieldFullName))
	assert.False(t, a.Has(model.FieldFullName))
	assert.True(t, a.Has(model.FieldLocation))
}
