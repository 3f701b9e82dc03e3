package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camden-git/labelloopbackend/models"
)

func TestLabelCreateRules(t *testing.T) {
	f := newFixture(t)

	_, err := f.labels.Create(99, "cat")
	assert.ErrorIs(t, err, ErrNotFound)

	a, err := f.datasets.Create("a", nil, nil)
	require.NoError(t, err)
	b, err := f.datasets.Create("b", nil, nil)
	require.NoError(t, err)

	_, err = f.labels.Create(a.ID, "cat")
	require.NoError(t, err)
	_, err = f.labels.Create(a.ID, "cat")
	assert.ErrorIs(t, err, ErrConflict)
	_, err = f.labels.Create(b.ID, "cat")
	assert.NoError(t, err, "same name in another dataset is allowed")
}

func TestLabelRenameAndSearch(t *testing.T) {
	f := newFixture(t)

	ds, err := f.datasets.Create("ds", nil, []string{"cat", "dog"})
	require.NoError(t, err)
	labels, err := f.labels.ListByDataset(ds.ID)
	require.NoError(t, err)
	require.Len(t, labels, 2)

	_, err = f.labels.Update(labels[0].ID, "dog")
	assert.ErrorIs(t, err, ErrConflict)

	renamed, err := f.labels.Update(labels[0].ID, "Kitten")
	require.NoError(t, err)
	assert.Equal(t, "Kitten", renamed.Name)

	found, err := f.labels.Search("kit", &ds.ID)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, renamed.ID, found[0].ID)

	items, total, err := f.labels.List(0, 1, "")
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, items, 1)

	_, err = f.labels.Update(999, "x")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLabelStatsRoundTrip(t *testing.T) {
	f := newFixture(t)

	ds, err := f.datasets.Create("animals", nil, nil)
	require.NoError(t, err)
	label, err := f.labels.Create(ds.ID, "cat")
	require.NoError(t, err)

	uploads, err := f.images.PrepareUpload(ds.ID, []FileDescriptor{
		{Filename: "1.jpg", FileSize: 1, MimeType: "image/jpeg"},
		{Filename: "2.jpg", FileSize: 1, MimeType: "image/jpeg"},
	})
	require.NoError(t, err)
	for _, u := range uploads {
		_, err := f.annotations.Create(u.ImageID, label.ID, models.BoundingBox{})
		require.NoError(t, err)
	}

	stats, err := f.labels.Stats(label.ID)
	require.NoError(t, err)
	assert.Equal(t, label.ID, stats.ID)
	assert.Equal(t, "cat", stats.Name)
	assert.EqualValues(t, 2, stats.AnnotationCount)
	assert.Equal(t, "animals", stats.DatasetName)

	require.NoError(t, f.labels.Delete(label.ID))
	_, err = f.labels.Stats(label.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, f.labels.Delete(label.ID), ErrNotFound)
}
