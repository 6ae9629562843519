package model_test

import (
	"testing"

	"github.com/calcmesh/calcmesh/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringTableDedupsAndRefcounts(t *testing.T) {
	st := model.NewStringTable()
	id1 := st.Intern("hello")
	id2 := st.Intern("hello")
	assert.Equal(t, id1, id2)
	assert.Equal(t, 1, st.Count())

	st.Release(id1)
	got, ok := st.Get(id1)
	assert.True(t, ok)
	assert.Equal(t, "hello", got)

	st.Release(id2)
	_, ok = st.Get(id1)
	assert.False(t, ok)
	assert.Equal(t, 0, st.Count())
}

func TestStyleCatalogDefaultStyleIsZero(t *testing.T) {
	sc := model.NewStyleCatalog()
	id := sc.Intern(model.DefaultStyle())
	assert.Equal(t, uint32(0), id)
	assert.Equal(t, model.DefaultStyle(), sc.Get(0))
}

func TestStyleCatalogInternsDistinctStyles(t *testing.T) {
	sc := model.NewStyleCatalog()
	bold := model.DefaultStyle()
	bold.Font.Bold = true

	id1 := sc.Intern(bold)
	id2 := sc.Intern(bold)
	assert.Equal(t, id1, id2)
	assert.NotEqual(t, uint32(0), id1)

	other := model.DefaultStyle()
	other.Font.Italic = true
	id3 := sc.Intern(other)
	assert.NotEqual(t, id1, id3)
}

func TestStyleCatalogReleaseRemovesUnreferenced(t *testing.T) {
	sc := model.NewStyleCatalog()
	s := model.DefaultStyle()
	s.Font.Size = 14
	id := sc.Intern(s)
	sc.Release(id)
	assert.Equal(t, model.DefaultStyle(), sc.Get(id))
}
