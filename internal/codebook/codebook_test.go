package codebook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	clusters := []Cluster{
		{ID: 0, SumD: 1.5, Npoints: 10, Centroid: []byte{0xAA, 0xBB}},
		{ID: 1, SumD: 2.25, Npoints: 20, Centroid: []byte{0x01, 0x02}},
	}
	cb, err := New(clusters, 2)
	require.NoError(t, err)

	data := cb.Serialize()
	got, err := Deserialize(data, 2)
	require.NoError(t, err)
	require.Equal(t, cb.Clusters, got.Clusters)
}

func TestDeserialize_RejectsNonMultipleSize(t *testing.T) {
	_, err := Deserialize(make([]byte, 13), 2)
	require.Error(t, err)
}

func TestQuantize_PicksMinimumHammingDistance(t *testing.T) {
	clusters := []Cluster{
		{ID: 0, Centroid: []byte{0x00}},
		{ID: 1, Centroid: []byte{0x0F}},
		{ID: 2, Centroid: []byte{0xFF}},
	}
	cb, err := New(clusters, 1)
	require.NoError(t, err)

	word, dist := cb.Quantize([]byte{0x0E}) // one bit off from cluster 1 (0x0F)
	assert.Equal(t, uint32(1), word)
	assert.Equal(t, 1, dist)
}

func TestQuantize_TiesBreakToMaximumClusterID(t *testing.T) {
	clusters := []Cluster{
		{ID: 0, Centroid: []byte{0x00}},
		{ID: 1, Centroid: []byte{0xFF}},
	}
	cb, err := New(clusters, 1)
	require.NoError(t, err)

	// Equidistant (4 bits) from both centroids.
	word, _ := cb.Quantize([]byte{0x0F})
	assert.Equal(t, uint32(1), word)
}

func TestQuantize_ClipsDistanceTo255(t *testing.T) {
	centroid := make([]byte, 40) // 320 bits, more than enough to exceed 255
	d := make([]byte, 40)
	for i := range d {
		d[i] = 0xFF
	}
	cb, err := New([]Cluster{{ID: 0, Centroid: centroid}}, 40)
	require.NoError(t, err)

	_, dist := cb.Quantize(d)
	assert.Equal(t, 255, dist)
}
