package attrs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/routelab/editdriver/internal/screen"
)

func TestLookupKnown(t *testing.T) {
	r := Planedit()

	d, err := r.Lookup(K("route", "inspect", "repeat"))
	require.NoError(t, err)
	assert.Equal(t, "repeat", d.Label)
	assert.Equal(t, screen.Offset{DX: panelDX, DY: firstRowDY + 1}, d.Loc)
	assert.False(t, d.Bool)
}

func TestLookupUnknownFailsFast(t *testing.T) {
	r := Planedit()

	_, err := r.Lookup(K("edge", "inspect", "banana"))
	require.Error(t, err)

	var uae *UnknownAttributeError
	require.ErrorAs(t, err, &uae)
	assert.Equal(t, K("edge", "inspect", "banana"), uae.Key)
	assert.Contains(t, err.Error(), "edge/inspect/banana")
}

func TestNewRegistryRejectsDuplicates(t *testing.T) {
	d := Descriptor{Key: K("edge", "inspect", "id"), Label: "id"}
	_, err := NewRegistry([]Descriptor{d, d})
	assert.ErrorContains(t, err, "duplicate attribute")
}

func TestDescriptorAccepts(t *testing.T) {
	r := Planedit()

	repeat, err := r.Lookup(K("route", "inspect", "repeat"))
	require.NoError(t, err)
	duration, err := r.Lookup(K("containerStopEdge", "create", "duration"))
	require.NoError(t, err)

	tests := []struct {
		desc  Descriptor
		value string
		want  bool
	}{
		{repeat, "13", true},
		{repeat, "-12.5", true},
		{repeat, "dummy", false},
		{duration, "30", true},
		{duration, "0", true},
		{duration, "-20", false},
		{duration, "30.2", false},
		{duration, "dummy", false},
	}
	for _, tt := range tests {
		got, err := tt.desc.Accepts(tt.value)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s accepts %q", tt.desc.Key, tt.value)
	}
}

func TestBooleanFieldsAcceptAnything(t *testing.T) {
	r := Planedit()

	d, err := r.Lookup(K("stopEdge", "create", "durationEnable"))
	require.NoError(t, err)
	assert.True(t, d.Bool)

	ok, err := d.Accepts("whatever")
	require.NoError(t, err)
	assert.True(t, ok)
}

// Catalogue health: every non-boolean field carries a rule, every boolean
// carries none, and click targets land in the attribute panel.
func TestCatalogueConsistency(t *testing.T) {
	r := Planedit()
	require.Positive(t, r.Len())

	for _, d := range r.All() {
		if d.Bool {
			assert.Nil(t, d.Rule, "%s is a toggle, rules do not apply", d.Key)
		} else {
			assert.NotNil(t, d.Rule, "%s needs a validity rule", d.Key)
		}
		assert.Equal(t, panelDX, d.Loc.DX, "%s must sit in the panel column", d.Key)
		assert.GreaterOrEqual(t, d.Loc.DY, firstRowDY, "%s row", d.Key)
		assert.NotEmpty(t, d.Label, "%s label", d.Key)
	}
}
