package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/swapi-mirror/internal/model"
)

func TestSelectKinds(t *testing.T) {
	kinds, err := selectKinds([]string{"people", "films", "people"}, false)
	require.NoError(t, err)
	assert.Equal(t, []model.Kind{model.KindPeople, model.KindFilms}, kinds)

	kinds, err = selectKinds(nil, true)
	require.NoError(t, err)
	assert.Equal(t, model.Kinds, kinds)

	_, err = selectKinds(nil, false)
	assert.Error(t, err)
	_, err = selectKinds([]string{"droids"}, false)
	assert.Error(t, err)
	_, err = selectKinds([]string{"films"}, true)
	assert.Error(t, err)
}
