package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadata_ZeroValue(t *testing.T) {
	var md Metadata

	assert.Equal(t, 0, md.Len())
	assert.Empty(t, md.Keys())
	_, ok := md.Get("missing")
	assert.False(t, ok)

	md.Set("a", "1")
	assert.Equal(t, 1, md.Len())
}

func TestMetadata_PreservesInsertionOrder(t *testing.T) {
	md := NewMetadata("Facility.name", "NSLSII", "Beamline.name", "ISS", "Scan.uid", "abc")

	assert.Equal(t, []string{"Facility.name", "Beamline.name", "Scan.uid"}, md.Keys())
}

func TestMetadata_SetExistingKeepsPosition(t *testing.T) {
	md := NewMetadata("a", "1", "b", "2")
	md.Set("a", "3")

	assert.Equal(t, []string{"a", "b"}, md.Keys())
	v, ok := md.Get("a")
	require.True(t, ok)
	assert.Equal(t, "3", v)
}

func TestMetadata_Lookup(t *testing.T) {
	md := NewMetadata("Scan.id", "42", "Scan.uid", "abc")

	v, ok := md.Lookup("Scan-uid", "Scan.uid", "Scan.id")
	require.True(t, ok)
	assert.Equal(t, "abc", v)

	_, ok = md.Lookup("nope", "never")
	assert.False(t, ok)
}

func TestMetadata_Delete(t *testing.T) {
	md := NewMetadata("a", "1", "b", "2", "c", "3")
	md.Delete("b")
	md.Delete("missing")

	assert.Equal(t, []string{"a", "c"}, md.Keys())
	assert.False(t, md.Has("b"))
}

func TestMetadata_CloneIsIndependent(t *testing.T) {
	md := NewMetadata("a", "1")
	clone := md.Clone()
	clone.Set("a", "changed")
	clone.Set("b", "2")

	v, _ := md.Get("a")
	assert.Equal(t, "1", v)
	assert.False(t, md.Has("b"))
	assert.Equal(t, []string{"a", "b"}, clone.Keys())
}

func TestMetadata_Map(t *testing.T) {
	md := NewMetadata("a", "1", "b", "2")

	assert.Equal(t, map[string]any{"a": "1", "b": "2"}, md.Map())
}

func TestSafeKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Scan.uid", "Scan-uid"},
		{"Element.edge.energy", "Element-edge-energy"},
		{"plain", "plain"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SafeKey(tt.in))
		})
	}
}
